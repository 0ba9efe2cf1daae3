package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/config"
	"github.com/segyhp/loan-console/internal/domain"
	"github.com/segyhp/loan-console/pkg/utils"
)

// Sender handles sending operator alerts via SMTP
type Sender struct {
	cfg    config.AlertConfig
	to     []string
	logger logrus.FieldLogger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger logrus.FieldLogger) *Sender {
	return &Sender{
		cfg:    cfg.Alert,
		to:     cfg.AlertRecipients(),
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// NotifyStuck mails the list of payments that were charged but not recorded
func (s *Sender) NotifyStuck(_ context.Context, entries []*domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = s.to
	e.Subject = fmt.Sprintf("%d installment payment(s) charged but not recorded", len(entries))
	e.Text = []byte(StuckPaymentsBody(entries))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if err := s.send(e, addr, auth); err != nil {
		s.logger.WithError(err).Errorf("Failed to send stuck payment alert to %s", strings.Join(s.to, ","))
		return fmt.Errorf("failed to send alert: %w", err)
	}

	s.logger.Infof("Alert sent to %s: %s", strings.Join(s.to, ","), e.Subject)
	return nil
}

// StuckPaymentsBody renders the alert text
func StuckPaymentsBody(entries []*domain.JournalEntry) string {
	var b strings.Builder
	b.WriteString("The following payments were posted to the ledger but could not be\n")
	b.WriteString("settled automatically. Do not retry them; reconcile manually.\n")
	b.WriteString("Entries marked DUPLICATE charged an installment someone else already paid.\n\n")
	for _, entry := range entries {
		b.WriteString("- ")
		if entry.Status == domain.JournalStatusDuplicate {
			b.WriteString("DUPLICATE ")
		}
		fmt.Fprintf(&b, "loan %s, installment %s: %s via %s, reference %s, key %s, posted %s",
			entry.LoanID,
			entry.InstallmentID,
			utils.FormatCurrency(entry.Amount),
			entry.PaymentMethod,
			entry.Reference,
			entry.IdempotencyKey,
			entry.CreatedAt.Format("2006-01-02 15:04"),
		)
		if entry.LastError != "" {
			fmt.Fprintf(&b, " (%s)", entry.LastError)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nLoan console")
	return b.String()
}
