package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// EntrySvcFacade exposes the journal entry lifecycle: submission into Pending,
// then exactly one transition to Approved or Rejected.
type EntrySvcFacade interface {
	SubmitEntry(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error)
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, *string, error)
	ApproveEntry(ctx context.Context, entryID string, reviewerID string) (*domain.JournalEntry, error)
	RejectEntry(ctx context.Context, entryID string, reason string, reviewerID string) (*domain.JournalEntry, error)
}
