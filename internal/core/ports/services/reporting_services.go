package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// ReportingSvcFacade exposes read-only ledger reports.
type ReportingSvcFacade interface {
	TrialBalance(ctx context.Context) (*domain.TrialBalance, error)
}
