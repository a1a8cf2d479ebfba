package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEntryRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

// newPgxEntryRepository creates a new repository for journal entry data.
// It needs the account repository for the in-transaction posting helpers.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo *PgxAccountRepository) *PgxEntryRepository {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepository
var _ portsrepo.EntryRepository = (*PgxEntryRepository)(nil)

const entryColumns = `entry_id, entry_type, description, status, post_reference, rejection_reason,
	reviewed_by, reviewed_at, files, created_at, created_by, last_updated_at, last_updated_by`

// scanEntry reads one journal entry row in entryColumns order.
func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var files []byte
	err := row.Scan(
		&e.EntryID,
		&e.EntryType,
		&e.Description,
		&e.Status,
		&e.PostReference,
		&e.RejectionReason,
		&e.ReviewedBy,
		&e.ReviewedAt,
		&files,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return e, err
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &e.Files); err != nil {
			return e, fmt.Errorf("failed to decode files metadata for entry %s: %w", e.EntryID, err)
		}
	}
	return e, nil
}

// SaveEntry persists a new Pending entry and its lines atomically.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var files any
	if len(entry.Files) > 0 {
		encoded, marshalErr := json.Marshal(entry.Files)
		if marshalErr != nil {
			return apperrors.NewAppError(500, "failed to encode files metadata for entry "+entry.EntryID, marshalErr)
		}
		files = encoded
	}

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.EntryType,
		entry.Description,
		entry.Status,
		entry.PostReference,
		entry.RejectionReason,
		entry.ReviewedBy,
		entry.ReviewedAt,
		files,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal entry "+entry.EntryID, mapPgError(err))
	}

	lineQuery := `
		INSERT INTO entry_lines (line_id, entry_id, account_id, side, amount, position)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			line.EntryID,
			line.AccountID,
			line.Side,
			line.Amount,
			line.Position,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for entry "+entry.EntryID, mapPgError(err))
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry with its lines in application order.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	lines, err := r.findLines(ctx, r.Pool, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// findLines loads an entry's lines ordered by position (debits first, then
// credits, each side in declared order).
func (r *PgxEntryRepository) findLines(ctx context.Context, q queryer, entryID string) ([]domain.EntryLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, side, amount, position
		FROM entry_lines
		WHERE entry_id = $1
		ORDER BY position;
	`
	rows, err := q.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, mapPgError(err))
	}
	defer rows.Close()

	lines := []domain.EntryLine{}
	for rows.Next() {
		var l domain.EntryLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.AccountID, &l.Side, &l.Amount, &l.Position); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}
	return lines, nil
}

// ListEntries retrieves a page of entries, optionally filtered by status,
// newest first. Lines are not included.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries`
	orderByClause := `ORDER BY created_at DESC, entry_id DESC`

	conditions := ""
	args := []any{}
	if status != nil {
		args = append(args, *status)
		conditions = fmt.Sprintf("WHERE status = $%d", len(args))
	}
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		clause := fmt.Sprintf("(created_at, entry_id) < ($%d, $%d)", len(args)-1, len(args))
		if conditions == "" {
			conditions = "WHERE " + clause
		} else {
			conditions += " AND " + clause
		}
	}
	args = append(args, fetchLimit)
	query := fmt.Sprintf("%s %s %s LIMIT $%d;", baseQuery, conditions, orderByClause, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", scanErr)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

// nextPostReference increments the persisted counter and formats the fresh
// reference. Running inside the approval transaction makes issued numbers
// strictly increasing and unique: the counter row lock serializes concurrent
// approvals, and a rollback simply leaves a gap.
func (r *PgxEntryRepository) nextPostReference(ctx context.Context, tx pgx.Tx) (domain.PostReference, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		UPDATE post_reference_counter
		SET last_value = last_value + 1
		WHERE singleton
		RETURNING last_value;
	`).Scan(&n)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to advance post reference counter", mapPgError(err))
	}
	return domain.NewPostReference(n), nil
}

// ApproveEntry posts a pending entry: it assigns a fresh post reference, then
// applies every debit and credit line to its account in declared order, with
// a ledger line and an audit snapshot per touched account state, and finally
// flips the entry to Approved. Everything happens in one transaction; a
// failure anywhere rolls the whole approval back and the entry stays Pending
// with zero account changes.
func (r *PgxEntryRepository) ApproveEntry(ctx context.Context, entryID string, reviewer string, now time.Time) (entry *domain.JournalEntry, err error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && err != nil {
			// The database could not confirm the rollback; some line mutations
			// may have been applied. This must surface loudly and is never
			// retried.
			err = fmt.Errorf("%w: approval of entry %s failed (%v) and rollback could not be confirmed: %v",
				apperrors.ErrIncompletePosting, entryID, err, rbErr)
		}
	}()

	locked, err := r.lockEntryForReview(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	lines, err := r.findLines(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	postRef, err := r.nextPostReference(ctx, tx)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	accounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	// Lines arrive ordered by position: every debit line, then every credit
	// line, each side in its declared order.
	steps, err := buildPostingSteps(accounts, lines, postRef, reviewer, now)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if err := r.accountRepo.ApplyPostingLineInTx(ctx, tx, step.account, step.line, step.snapshot); err != nil {
			return nil, err
		}
	}

	refStr := postRef.String()
	updateQuery := `
		UPDATE journal_entries
		SET status = $2, post_reference = $3, reviewed_by = $4, reviewed_at = $5,
		    last_updated_at = $5, last_updated_by = $4
		WHERE entry_id = $1;
	`
	if _, err = tx.Exec(ctx, updateQuery, entryID, domain.Approved, refStr, reviewer, now); err != nil {
		return nil, apperrors.NewAppError(500, "failed to mark entry "+entryID+" approved", mapPgError(err))
	}

	if err = r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	locked.Status = domain.Approved
	locked.PostReference = &refStr
	locked.ReviewedBy = &reviewer
	locked.ReviewedAt = &now
	locked.LastUpdatedAt = now
	locked.LastUpdatedBy = reviewer
	locked.Lines = lines
	return locked, nil
}

// RejectEntry moves a pending entry to Rejected with the given reason.
// No account is touched.
func (r *PgxEntryRepository) RejectEntry(ctx context.Context, entryID string, reviewer string, reason string, now time.Time) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	entry, err := r.lockEntryForReview(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	updateQuery := `
		UPDATE journal_entries
		SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5,
		    last_updated_at = $5, last_updated_by = $4
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, entryID, domain.Rejected, reason, reviewer, now); err != nil {
		return nil, apperrors.NewAppError(500, "failed to mark entry "+entryID+" rejected", mapPgError(err))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Status = domain.Rejected
	entry.RejectionReason = &reason
	entry.ReviewedBy = &reviewer
	entry.ReviewedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = reviewer
	return entry, nil
}

// lockEntryForReview loads and row-locks an entry, enforcing that it is still
// Pending. Terminal states are never re-opened.
func (r *PgxEntryRepository) lockEntryForReview(ctx context.Context, tx pgx.Tx, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`

	entry, err := scanEntry(tx.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to lock entry "+entryID, mapPgError(err))
	}
	if entry.Status.Terminal() {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrIllegalTransition, entryID, entry.Status)
	}
	return &entry, nil
}
