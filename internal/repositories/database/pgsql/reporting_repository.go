package pgsql

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

func newPgxReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetTrialBalanceData returns one row per active account with its balance
// placed in the debit or credit column. A positive balance sits on the
// account's normal side; a negative balance flips to the opposite column.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT account_id, account_number, name, category, normal_side, balance
		FROM accounts
		WHERE is_active = TRUE
		ORDER BY account_number;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance data", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var normalSide domain.NormalSide
		var balance decimal.Decimal
		if err := rows.Scan(&row.AccountID, &row.AccountNumber, &row.Name, &row.Category, &normalSide, &balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}

		side := normalSide
		if balance.IsNegative() {
			if side == domain.NormalDebit {
				side = domain.NormalCredit
			} else {
				side = domain.NormalDebit
			}
		}
		if side == domain.NormalDebit {
			row.Debit = balance.Abs()
			row.Credit = decimal.Zero
		} else {
			row.Debit = decimal.Zero
			row.Credit = balance.Abs()
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return result, nil
}
