package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-console/internal/domain"
)

var testDB *sqlx.DB

// setupTestDB connects to TEST_DATABASE_URL; tests skip when it is unset
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping journal integration test")
	}

	if testDB == nil {
		db, err := sqlx.Connect("postgres", dsn)
		require.NoError(t, err)
		require.NoError(t, Migrate(context.Background(), db))
		testDB = db
	}

	cleanupTestData(testDB)
	return testDB
}

func cleanupTestData(db *sqlx.DB) {
	db.Exec("DELETE FROM payment_journal")
}

func newEntry(installmentID string) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:             uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
		LoanID:         "LOAN-1",
		InstallmentID:  installmentID,
		Amount:         decimal.RequireFromString("150.00"),
		PaymentMethod:  "CASH",
		Reference:      "REF1",
	}
}

func TestJournalRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepository(db)
	ctx := context.Background()

	entry := newEntry("1")
	require.NoError(t, repo.RecordLedgerPosted(ctx, entry))
	assert.Equal(t, domain.JournalStatusLedgerPosted, entry.Status)

	open, err := repo.HasOpenEntry(ctx, "1")
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, repo.UpdateStatus(ctx, entry.IdempotencyKey, domain.JournalStatusRecorded, ""))

	open, err = repo.HasOpenEntry(ctx, "1")
	require.NoError(t, err)
	assert.False(t, open)
}

func TestJournalRepository_ListOpen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepository(db)
	ctx := context.Background()

	posted := newEntry("1")
	recorded := newEntry("2")
	stuck := newEntry("3")
	rejected := newEntry("4")
	duplicate := newEntry("5")
	for _, e := range []*domain.JournalEntry{posted, recorded, stuck, rejected, duplicate} {
		require.NoError(t, repo.RecordLedgerPosted(ctx, e))
	}
	require.NoError(t, repo.UpdateStatus(ctx, recorded.IdempotencyKey, domain.JournalStatusRecorded, ""))
	require.NoError(t, repo.UpdateStatus(ctx, stuck.IdempotencyKey, domain.JournalStatusStuck, "installment still PENDING"))
	require.NoError(t, repo.UpdateStatus(ctx, rejected.IdempotencyKey, domain.JournalStatusRejected, "already paid"))
	require.NoError(t, repo.UpdateStatus(ctx, duplicate.IdempotencyKey, domain.JournalStatusDuplicate, "paid by another payment"))

	entries, err := repo.ListOpen(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.IdempotencyKey)
	}
	assert.ElementsMatch(t, []string{posted.IdempotencyKey, stuck.IdempotencyKey, rejected.IdempotencyKey}, keys)

	open, err := repo.HasOpenEntry(ctx, "4")
	require.NoError(t, err)
	assert.True(t, open)
	open, err = repo.HasOpenEntry(ctx, "5")
	require.NoError(t, err)
	assert.False(t, open)
	for _, e := range entries {
		assert.True(t, e.Amount.Equal(decimal.RequireFromString("150")))
	}

	entries, err = repo.ListOpen(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournalRepository_UpdateUnknownKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepository(db)

	err := repo.UpdateStatus(context.Background(), "missing", domain.JournalStatusResolved, "")

	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestJournalRepository_DuplicateKeyRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewJournalRepository(db)
	ctx := context.Background()

	entry := newEntry("1")
	require.NoError(t, repo.RecordLedgerPosted(ctx, entry))

	duplicate := newEntry("1")
	duplicate.IdempotencyKey = entry.IdempotencyKey
	assert.Error(t, repo.RecordLedgerPosted(ctx, duplicate))
}

func TestNoopJournalRepository(t *testing.T) {
	repo := NewNoopJournalRepository()
	ctx := context.Background()

	assert.NoError(t, repo.RecordLedgerPosted(ctx, newEntry("1")))
	assert.NoError(t, repo.UpdateStatus(ctx, "k", domain.JournalStatusRecorded, ""))

	open, err := repo.HasOpenEntry(ctx, "1")
	assert.NoError(t, err)
	assert.False(t, open)

	entries, err := repo.ListOpen(ctx, time.Now(), 10)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
