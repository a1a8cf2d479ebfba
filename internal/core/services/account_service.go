package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
)

// accountService provides account management operations. It owns metadata and
// activation; monetary state flows exclusively through the posting engine.
type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a new active account and its initial audit snapshot.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	normalSide := domain.NormalSide(req.NormalSide)
	if !normalSide.Valid() {
		return nil, fmt.Errorf("%w: normal side must be DEBIT or CREDIT", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		AccountNumber:  req.AccountNumber,
		Name:           req.Name,
		Category:       domain.AccountCategory(req.Category),
		Subcategory:    req.Subcategory,
		Description:    req.Description,
		NormalSide:     normalSide,
		InitialBalance: req.InitialBalance,
		DebitTotal:     decimal.Zero,
		CreditTotal:    decimal.Zero,
		Balance:        req.InitialBalance,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	snapshot := domain.SnapshotOf(account, uuid.NewString(), creatorID, now)
	if err := s.accountRepo.SaveAccount(ctx, account, snapshot); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_number", req.AccountNumber))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_number", account.AccountNumber))
	return &account, nil
}

// GetAccountByID retrieves a single account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves a page of active accounts.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListParams) ([]domain.Account, *string, error) {
	accounts, nextToken, err := s.accountRepo.ListAccounts(ctx, params.Limit, params.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nextToken, nil
}

// UpdateAccount applies metadata edits and appends an audit snapshot when
// anything actually changed. Balance, debit and credit totals are not
// editable here under any circumstances.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, updaterID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != account.Name {
		account.Name = *req.Name
		updated = true
	}
	if req.Category != nil && domain.AccountCategory(*req.Category) != account.Category {
		account.Category = domain.AccountCategory(*req.Category)
		updated = true
	}
	if req.Subcategory != nil && *req.Subcategory != account.Subcategory {
		account.Subcategory = *req.Subcategory
		updated = true
	}
	if req.Description != nil && *req.Description != account.Description {
		account.Description = *req.Description
		updated = true
	}

	if !updated {
		logger.Debug("No account fields changed", slog.String("account_id", accountID))
		return account, nil
	}

	now := time.Now().UTC()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = updaterID

	snapshot := domain.SnapshotOf(*account, uuid.NewString(), updaterID, now)
	if err := s.accountRepo.UpdateAccount(ctx, *account, snapshot); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// SetAccountActive toggles the active flag. Deactivation is only permitted at
// zero balance; accounts are never physically deleted.
func (s *accountService) SetAccountActive(ctx context.Context, accountID string, active bool, updaterID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.IsActive == active {
		return account, nil
	}
	if !active && !account.Balance.IsZero() {
		return nil, fmt.Errorf("%w: account %s has balance %s and cannot be deactivated", apperrors.ErrValidation, accountID, account.Balance.String())
	}

	now := time.Now().UTC()
	account.IsActive = active
	account.LastUpdatedAt = now
	account.LastUpdatedBy = updaterID

	snapshot := domain.SnapshotOf(*account, uuid.NewString(), updaterID, now)
	if err := s.accountRepo.UpdateAccount(ctx, *account, snapshot); err != nil {
		logger.Error("Failed to update account active status", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account active status updated", slog.String("account_id", accountID), slog.Bool("is_active", active))
	return account, nil
}

// ListLedgerLines retrieves a page of the account's posted ledger lines.
func (s *accountService) ListLedgerLines(ctx context.Context, accountID string, params dto.ListParams) ([]domain.LedgerLine, *string, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}
	lines, nextToken, err := s.accountRepo.ListLedgerLines(ctx, accountID, params.Limit, params.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger lines for account %s: %w", accountID, err)
	}
	return lines, nextToken, nil
}

// ListSnapshots retrieves the account's audit trail, oldest first.
func (s *accountService) ListSnapshots(ctx context.Context, accountID string) ([]domain.AccountSnapshot, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	snapshots, err := s.accountRepo.ListSnapshots(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for account %s: %w", accountID, err)
	}
	return snapshots, nil
}
