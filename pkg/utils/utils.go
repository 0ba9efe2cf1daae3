package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Page is the slice window of one page over n items
type Page struct {
	Page       int
	TotalPages int
	Start      int
	End        int
}

// Paginate computes the window for a 1-based page. Out-of-range pages are
// clamped to the first or last page.
func Paginate(total, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		return Page{Page: 1, TotalPages: 0}
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{Page: page, TotalPages: totalPages, Start: start, End: end}
}

// ParsePage reads a page query value; anything unparsable means the first page
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// FormatCurrency renders an amount in soles with thousands separators, e.g. "S/ 1,234.50".
// Soles are grouped with commas and use a dot for decimals, the English pattern.
func FormatCurrency(amount decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	formatted := p.Sprint(number.Decimal(amount.Abs().Round(2).InexactFloat64(), number.Scale(2)))
	if amount.Round(2).IsNegative() {
		return "-S/ " + formatted
	}
	return "S/ " + formatted
}

// FormatDate renders a calendar date as dd/mm/yyyy; the zero time renders empty
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
