package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// AccountSvcFacade exposes account management to the transport layer.
// Account monetary state is never writable through this facade; only the
// posting engine mutates balances.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, params dto.ListParams) ([]domain.Account, *string, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error)
	SetAccountActive(ctx context.Context, accountID string, active bool, updaterID string) (*domain.Account, error)
	ListLedgerLines(ctx context.Context, accountID string, params dto.ListParams) ([]domain.LedgerLine, *string, error)
	ListSnapshots(ctx context.Context, accountID string) ([]domain.AccountSnapshot, error)
}
