package repositories

import (
	"context"
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// Note: context is included on every operation for cancellation/timeouts.
// Every persistence write is a suspend point.

// AccountRepository defines persistence operations for accounts, their ledger
// lines and their audit snapshots. Writes that mutate an account always append
// a snapshot in the same transaction.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account, snapshot domain.AccountSnapshot) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error)
	// UpdateAccount persists metadata and activation changes only; the posting
	// path is the sole writer of balance, debit_total and credit_total.
	UpdateAccount(ctx context.Context, account domain.Account, snapshot domain.AccountSnapshot) error
	ListLedgerLines(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerLine, *string, error)
	ListSnapshots(ctx context.Context, accountID string) ([]domain.AccountSnapshot, error)

	// In-transaction helpers used by the posting path. Rows are locked with
	// FOR UPDATE so concurrent approvals against the same account serialize.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)
	ApplyPostingLineInTx(ctx context.Context, tx pgx.Tx, account domain.Account, line domain.LedgerLine, snapshot domain.AccountSnapshot) error
}

// EntryRepository defines persistence operations for journal entries.
// ApproveEntry owns the whole posting transaction: post reference assignment,
// account locking, per-line mutation, snapshots and the status flip commit or
// roll back as one unit.
type EntryRepository interface {
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
	ApproveEntry(ctx context.Context, entryID string, reviewer string, now time.Time) (*domain.JournalEntry, error)
	RejectEntry(ctx context.Context, entryID string, reviewer string, reason string, now time.Time) (*domain.JournalEntry, error)
}

// ReportingRepository provides read-only aggregates over the ledger.
type ReportingRepository interface {
	GetTrialBalanceData(ctx context.Context) ([]domain.TrialBalanceRow, error)
}

// RepositoryProvider bundles the repositories for dependency injection.
type RepositoryProvider struct {
	AccountRepo   AccountRepository
	EntryRepo     EntryRepository
	ReportingRepo ReportingRepository
}
