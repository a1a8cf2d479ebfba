package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/finbooks/finbooks_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, account_number, name, category, subcategory, description, normal_side,
	initial_balance, debit_total, credit_total, balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// scanAccount reads one account row in accountColumns order.
func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.AccountNumber,
		&a.Name,
		&a.Category,
		&a.Subcategory,
		&a.Description,
		&a.NormalSide,
		&a.InitialBalance,
		&a.DebitTotal,
		&a.CreditTotal,
		&a.Balance,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

// SaveAccount inserts a new account together with its initial audit snapshot.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account, snapshot domain.AccountSnapshot) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, query,
		account.AccountID,
		account.AccountNumber,
		account.Name,
		account.Category,
		account.Subcategory,
		account.Description,
		account.NormalSide,
		account.InitialBalance,
		account.DebitTotal,
		account.CreditTotal,
		account.Balance,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: account number or name already in use", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}

	if err := r.insertSnapshotInTx(ctx, tx, snapshot); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing IDs are
// simply absent from the map; callers decide whether that is an error.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}
	return accountsMap, nil
}

// ListAccounts retrieves a page of active accounts using token pagination,
// newest first.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active = TRUE`
	orderByClause := `ORDER BY created_at DESC, account_id DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := baseQuery + ` AND (created_at, account_id) < ($1, $2) ` + orderByClause + ` LIMIT $3;`
		rows, err = r.Pool.Query(ctx, query, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := baseQuery + ` ` + orderByClause + ` LIMIT $1;`
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, fetchLimit)
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan account row", scanErr)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}

	var nextTokenVal *string
	if len(accounts) > limit {
		last := accounts[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.AccountID)
		nextTokenVal = &token
		accounts = accounts[:limit]
	}
	return accounts, nextTokenVal, nil
}

// UpdateAccount persists metadata/activation changes and appends the audit
// snapshot atomically. Monetary columns are untouched: only the posting path
// writes balance, debit_total and credit_total.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account, snapshot domain.AccountSnapshot) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE accounts
		SET name = $2, category = $3, subcategory = $4, description = $5, is_active = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Category,
		account.Subcategory,
		account.Description,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapPgError(err); errors.Is(mapped, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: account name already in use", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to execute update account %s: %w", account.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.insertSnapshotInTx(ctx, tx, snapshot); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ListLedgerLines retrieves a page of an account's ledger lines in posting
// order (the order the approval loop applied them).
func (r *PgxAccountRepository) ListLedgerLines(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT seq, line_id, account_id, post_reference, side, amount, posted_at, posted_by, position
		FROM ledger_lines
		WHERE account_id = $1
	`
	orderByClause := `ORDER BY seq`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastPostedAt, lastSeqStr, decodeErr := pagination.DecodeToken(*nextToken)
		_ = lastPostedAt // Ordering is by seq alone; posted_at rides along in the token for debuggability.
		lastSeq, parseErr := strconv.ParseInt(lastSeqStr, 10, 64)
		if decodeErr != nil || parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(decodeErr, parseErr))
		}
		query := baseQuery + ` AND seq > $2 ` + orderByClause + ` LIMIT $3;`
		rows, err = r.Pool.Query(ctx, query, accountID, lastSeq, fetchLimit)
	} else {
		query := baseQuery + ` ` + orderByClause + ` LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, accountID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger lines for account "+accountID, err)
	}
	defer rows.Close()

	type seqLine struct {
		seq  int64
		line domain.LedgerLine
	}
	lines := make([]seqLine, 0, fetchLimit)
	for rows.Next() {
		var sl seqLine
		if scanErr := rows.Scan(
			&sl.seq,
			&sl.line.LineID,
			&sl.line.AccountID,
			&sl.line.PostReference,
			&sl.line.Side,
			&sl.line.Amount,
			&sl.line.PostedAt,
			&sl.line.PostedBy,
			&sl.line.Position,
		); scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger line row for account "+accountID, scanErr)
		}
		lines = append(lines, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(lines) > limit {
		last := lines[limit-1]
		token := pagination.EncodeToken(last.line.PostedAt, strconv.FormatInt(last.seq, 10))
		nextTokenVal = &token
		lines = lines[:limit]
	}

	results := make([]domain.LedgerLine, len(lines))
	for i, sl := range lines {
		results[i] = sl.line
	}
	return results, nextTokenVal, nil
}

// ListSnapshots retrieves all audit snapshots of an account, oldest first.
func (r *PgxAccountRepository) ListSnapshots(ctx context.Context, accountID string) ([]domain.AccountSnapshot, error) {
	query := `
		SELECT snapshot_id, account_id, account_number, name, category, subcategory, description, normal_side,
		       initial_balance, debit_total, credit_total, balance, is_active, updated_by, created_at
		FROM account_snapshots
		WHERE account_id = $1
		ORDER BY created_at, snapshot_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query snapshots for account "+accountID, err)
	}
	defer rows.Close()

	snapshots := []domain.AccountSnapshot{}
	for rows.Next() {
		var s domain.AccountSnapshot
		if err := rows.Scan(
			&s.SnapshotID,
			&s.AccountID,
			&s.AccountNumber,
			&s.Name,
			&s.Category,
			&s.Subcategory,
			&s.Description,
			&s.NormalSide,
			&s.InitialBalance,
			&s.DebitTotal,
			&s.CreditTotal,
			&s.Balance,
			&s.IsActive,
			&s.UpdatedBy,
			&s.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan snapshot row for account "+accountID, err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating snapshot rows for account "+accountID, err)
	}
	return snapshots, nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the
// rows for update. Must be called within a transaction. Rows are locked in
// ascending account_id order so concurrent approvals acquire locks in the
// same sequence and cannot deadlock each other.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	sorted := make([]string, len(accountIDs))
	copy(sorted, accountIDs)
	sort.Strings(sorted)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`

	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", mapPgError(err))
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", scanErr)
		}
		accountsMap[account.AccountID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", mapPgError(err))
	}

	// A missing account fails the whole approval; lines are never skipped
	// silently.
	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock all referenced accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyPostingLineInTx applies one posting line's effect on one account as a
// unit: the balance/total update, the appended ledger line and the appended
// audit snapshot. The account passed in already carries its post-line state.
func (r *PgxAccountRepository) ApplyPostingLineInTx(ctx context.Context, tx pgx.Tx, account domain.Account, line domain.LedgerLine, snapshot domain.AccountSnapshot) error {
	updateQuery := `
		UPDATE accounts
		SET debit_total = $2, credit_total = $3, balance = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, updateQuery,
		account.AccountID,
		account.DebitTotal,
		account.CreditTotal,
		account.Balance,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update balances for account "+account.AccountID, mapPgError(err))
	}
	if cmdTag.RowsAffected() == 0 {
		// Cannot happen after the lock step found the row.
		return fmt.Errorf("%w: account %s disappeared during posting", apperrors.ErrNotFound, account.AccountID)
	}

	lineQuery := `
		INSERT INTO ledger_lines (line_id, account_id, post_reference, side, amount, posted_at, posted_by, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, lineQuery,
		line.LineID,
		line.AccountID,
		line.PostReference,
		line.Side,
		line.Amount,
		line.PostedAt,
		line.PostedBy,
		line.Position,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append ledger line for account "+account.AccountID, mapPgError(err))
	}

	return r.insertSnapshotInTx(ctx, tx, snapshot)
}

// insertSnapshotInTx appends one audit snapshot row. Snapshots are write-once;
// no update or delete statement exists for account_snapshots anywhere in this
// package.
func (r *PgxAccountRepository) insertSnapshotInTx(ctx context.Context, tx pgx.Tx, snapshot domain.AccountSnapshot) error {
	query := `
		INSERT INTO account_snapshots (snapshot_id, account_id, account_number, name, category, subcategory, description, normal_side,
		                               initial_balance, debit_total, credit_total, balance, is_active, updated_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		snapshot.SnapshotID,
		snapshot.AccountID,
		snapshot.AccountNumber,
		snapshot.Name,
		snapshot.Category,
		snapshot.Subcategory,
		snapshot.Description,
		snapshot.NormalSide,
		snapshot.InitialBalance,
		snapshot.DebitTotal,
		snapshot.CreditTotal,
		snapshot.Balance,
		snapshot.IsActive,
		snapshot.UpdatedBy,
		snapshot.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append snapshot for account "+snapshot.AccountID, mapPgError(err))
	}
	return nil
}
