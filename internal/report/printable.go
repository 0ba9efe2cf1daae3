// Package report renders the printable installment report.
package report

import (
	"html/template"
	"io"
	"strings"

	"github.com/segyhp/loan-console/internal/domain"
	"github.com/segyhp/loan-console/pkg/utils"
)

var funcs = template.FuncMap{
	"money":       utils.FormatCurrency,
	"date":        utils.FormatDate,
	"statusClass": func(s domain.InstallmentStatus) string { return "status-" + strings.ToLower(string(s)) },
	"principal":   func(i *domain.Installment) string { return utils.FormatCurrency(i.PrincipalOrZero()) },
	"total":       func(i *domain.Installment) string { return utils.FormatCurrency(i.TotalOrZero()) },
	"stamp":       func(r *domain.ReportResponse) string { return r.GeneratedAt.Format("02/01/2006 15:04") },
}

var printable = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Installment report - loan {{.LoanID}}</title>
<style>
	body { font-family: Arial, sans-serif; margin: 20px; color: #333; }
	.header { text-align: center; margin-bottom: 30px; border-bottom: 2px solid #3b82f6; padding-bottom: 20px; }
	.info, .totals { background: #f8fafc; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
	table { width: 100%; border-collapse: collapse; margin-top: 20px; font-size: 12px; }
	th, td { border: 1px solid #e2e8f0; padding: 8px; text-align: left; }
	th { background-color: #f8fafc; font-weight: bold; color: #374151; }
	tr:nth-child(even) { background-color: #f9fafb; }
	.status-pending { color: #d97706; font-weight: bold; }
	.status-paid { color: #059669; font-weight: bold; }
	.status-overdue { color: #dc2626; font-weight: bold; }
	.footer { margin-top: 30px; text-align: center; font-size: 10px; color: #6b7280; }
</style>
</head>
<body onload="window.print()">
<div class="header">
	<h1>Installment report</h1>
	<p>Loan management system</p>
</div>
<div class="info">
	<h3>Loan</h3>
	<p><strong>Loan ID:</strong> {{.LoanID}}</p>
	<p><strong>Generated on:</strong> {{date .GeneratedAt}}</p>
	<p><strong>Installments:</strong> {{.Summary.Count}}</p>
</div>
<table>
	<thead>
		<tr>
			<th>#</th>
			<th>Scheduled date</th>
			<th>Principal</th>
			<th>Interest</th>
			<th>Fees</th>
			<th>Insurance</th>
			<th>Total</th>
			<th>Remaining balance</th>
			<th>Status</th>
		</tr>
	</thead>
	<tbody>
	{{- range .Installments}}
		<tr>
			<td>{{.InstallmentNumber}}</td>
			<td>{{date .ScheduledDate}}</td>
			<td>{{principal .}}</td>
			<td>{{money .Interest}}</td>
			<td>{{money .Fees}}</td>
			<td>{{money .Insurance}}</td>
			<td><strong>{{total .}}</strong></td>
			<td>{{money .RemainingBalance}}</td>
			<td class="{{statusClass .Status}}">{{.Status}}</td>
		</tr>
	{{- end}}
	</tbody>
</table>
<div class="totals">
	<h3>Summary</h3>
	<p><strong>Total installments:</strong> {{.Summary.Count}}</p>
	<p><strong>Paid:</strong> {{.Summary.PaidCount}}</p>
	<p><strong>Pending:</strong> {{.Summary.PendingCount}}</p>
	<p><strong>Overdue:</strong> {{.Summary.OverdueCount}}</p>
	<p><strong>Total due:</strong> {{money .Summary.TotalDue}}</p>
</div>
<div class="footer">
	<p>Generated automatically by the loan management system</p>
	<p>{{stamp .}}</p>
</div>
</body>
</html>
`))

// Render writes the printable HTML report
func Render(w io.Writer, r *domain.ReportResponse) error {
	return printable.Execute(w, r)
}
