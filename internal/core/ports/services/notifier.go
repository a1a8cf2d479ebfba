package services

import (
	"context"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

// Notifier is the outbound notification collaborator. Calls are fire-and-forget
// from the core's perspective: implementations report failures through their
// own channels and must never abort a posting.
type Notifier interface {
	// EntrySubmitted tells reviewers a new entry awaits review.
	EntrySubmitted(ctx context.Context, recipients []string, entry domain.JournalEntry)
	// EntryResolved tells the entry's creator the review outcome.
	EntryResolved(ctx context.Context, entry domain.JournalEntry, outcome domain.EntryStatus)
}
