// Package reconcile settles payment attempts whose ledger movement went
// through but whose schedule update was never confirmed.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/segyhp/loan-console/internal/client"
	"github.com/segyhp/loan-console/internal/domain"
	"github.com/segyhp/loan-console/internal/repository"
	customError "github.com/segyhp/loan-console/pkg/errors"
)

const defaultBatchSize = 200

// Alerter tells operators about payments that need manual attention
type Alerter interface {
	NotifyStuck(ctx context.Context, entries []*domain.JournalEntry) error
}

type Result struct {
	Checked   int
	Resolved  int
	Stuck     int
	Duplicate int
	Failed    int
}

type Reconciler struct {
	journal     repository.JournalRepository
	schedule    client.ScheduleClient
	alerter     Alerter
	concurrency int
	minAge      time.Duration
	batchSize   int
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewReconciler builds a reconciler. Entries younger than minAge are left alone
// so that attempts still in flight are not judged. alerter may be nil.
func NewReconciler(
	journal repository.JournalRepository,
	schedule client.ScheduleClient,
	alerter Alerter,
	concurrency int,
	minAge time.Duration,
	log logrus.FieldLogger,
) *Reconciler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reconciler{
		journal:     journal,
		schedule:    schedule,
		alerter:     alerter,
		concurrency: concurrency,
		minAge:      minAge,
		batchSize:   defaultBatchSize,
		log:         log,
		now:         time.Now,
	}
}

// Run checks every open journal entry against the schedule service once
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	entries, err := r.journal.ListOpen(ctx, r.now().Add(-r.minAge), r.batchSize)
	if err != nil {
		return nil, customError.WrapDatabaseError(fmt.Errorf("list open journal entries: %w", err))
	}

	result := &Result{Checked: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	byLoan := make(map[string][]*domain.JournalEntry)
	for _, entry := range entries {
		byLoan[entry.LoanID] = append(byLoan[entry.LoanID], entry)
	}

	var (
		mu      sync.Mutex
		flagged []*domain.JournalEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for loanID, loanEntries := range byLoan {
		g.Go(func() error {
			outcome := r.reconcileLoan(gctx, loanID, loanEntries)

			mu.Lock()
			defer mu.Unlock()
			result.Resolved += outcome.resolved
			result.Stuck += outcome.stuck
			result.Duplicate += outcome.duplicate
			result.Failed += outcome.failed
			flagged = append(flagged, outcome.flagged...)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	if len(flagged) > 0 && r.alerter != nil {
		if err := r.alerter.NotifyStuck(ctx, flagged); err != nil {
			r.log.WithError(err).Error("failed to alert about stuck payments")
		}
	}

	r.log.WithFields(logrus.Fields{
		"checked":   result.Checked,
		"resolved":  result.Resolved,
		"stuck":     result.Stuck,
		"duplicate": result.Duplicate,
		"failed":    result.Failed,
	}).Info("reconciliation finished")

	return result, nil
}

type loanOutcome struct {
	resolved  int
	stuck     int
	duplicate int
	failed    int
	// entries that just became STUCK or DUPLICATE
	flagged []*domain.JournalEntry
}

func (r *Reconciler) reconcileLoan(ctx context.Context, loanID string, entries []*domain.JournalEntry) loanOutcome {
	log := r.log.WithField("loan_id", loanID)

	installments, err := r.schedule.ListByLoan(ctx, loanID)
	if err != nil {
		log.WithError(err).Warn("could not load schedule for reconciliation")
		return loanOutcome{failed: len(entries)}
	}

	byID := make(map[string]*domain.Installment, len(installments))
	for _, inst := range installments {
		byID[inst.ID] = inst
	}

	var outcome loanOutcome
	for _, entry := range entries {
		entryLog := log.WithFields(logrus.Fields{
			"installment_id":  entry.InstallmentID,
			"idempotency_key": entry.IdempotencyKey,
		})

		status, reason := judge(entry, byID[entry.InstallmentID])
		if err := r.journal.UpdateStatus(ctx, entry.IdempotencyKey, status, reason); err != nil {
			entryLog.WithError(err).WithField("status", status).Error("failed to update journal entry")
			outcome.failed++
			continue
		}

		switch status {
		case domain.JournalStatusResolved:
			entryLog.Info("payment reconciled")
			outcome.resolved++
			continue
		case domain.JournalStatusDuplicate:
			entryLog.WithField("reason", reason).Error("duplicate charge needs refund review")
			outcome.duplicate++
		default:
			entryLog.WithField("reason", reason).Warn("payment needs manual reconciliation")
			outcome.stuck++
		}

		previous := entry.Status
		entry.Status = status
		entry.LastError = reason
		if previous != domain.JournalStatusStuck {
			outcome.flagged = append(outcome.flagged, entry)
		}
	}
	return outcome
}

// judge decides the next journal status of an open entry. A PAID installment
// only settles the entry when this attempt may have registered it; after the
// schedule service refused the registration, PAID means someone else paid.
func judge(entry *domain.JournalEntry, inst *domain.Installment) (string, string) {
	switch {
	case inst == nil:
		return domain.JournalStatusStuck, "installment not found in schedule"
	case inst.Status == domain.InstallmentStatusPaid && entry.Status == domain.JournalStatusRejected:
		reason := "installment was paid by another payment; ledger movement is a duplicate charge"
		if entry.LastError != "" {
			reason = fmt.Sprintf("%s (schedule service: %s)", reason, entry.LastError)
		}
		return domain.JournalStatusDuplicate, reason
	case inst.Status == domain.InstallmentStatusPaid:
		return domain.JournalStatusResolved, ""
	default:
		return domain.JournalStatusStuck, fmt.Sprintf("installment still %s after ledger movement", inst.Status)
	}
}
