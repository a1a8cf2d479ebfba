// Package notify holds outbound notification adapters. The core only sees the
// Notifier port; delivery failures are logged and never surface to callers.
package notify

import (
	"context"
	"log/slog"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
)

// SlogNotifier writes notification events to structured logs. It stands in for
// an email or chat integration; swapping delivery means swapping this adapter.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a log-backed notifier.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{logger: logger}
}

var _ portssvc.Notifier = (*SlogNotifier)(nil)

func (n *SlogNotifier) EntrySubmitted(ctx context.Context, recipients []string, entry domain.JournalEntry) {
	n.logger.InfoContext(ctx, "Notification: journal entry awaiting review",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_type", string(entry.EntryType)),
		slog.String("amount", entry.SideTotal(domain.Debit).String()),
		slog.Any("recipients", recipients))
}

func (n *SlogNotifier) EntryResolved(ctx context.Context, entry domain.JournalEntry, outcome domain.EntryStatus) {
	n.logger.InfoContext(ctx, "Notification: journal entry reviewed",
		slog.String("entry_id", entry.EntryID),
		slog.String("outcome", string(outcome)),
		slog.String("recipient", entry.CreatedBy))
}
