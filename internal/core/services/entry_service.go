package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/dto"
	"github.com/finbooks/finbooks_app/internal/middleware"
	"github.com/finbooks/finbooks_app/internal/utils/posting"
)

// maxApprovalAttempts bounds retries of an approval that lost a lock or
// serialization race. Only retryable conflicts re-enter the loop; a posting
// whose rollback could not be confirmed is never retried.
const maxApprovalAttempts = 3

// entryService drives the journal entry lifecycle: validation on submit,
// and the Pending -> Approved/Rejected transition on review.
type entryService struct {
	entryRepo   portsrepo.EntryRepository
	accountRepo portsrepo.AccountRepository
	notifier    portssvc.Notifier
	reviewers   []string
}

// NewEntryService creates a new journal entry service. reviewers are the
// notification recipients for newly submitted entries.
func NewEntryService(entryRepo portsrepo.EntryRepository, accountRepo portsrepo.AccountRepository, notifier portssvc.Notifier, reviewers []string) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		notifier:    notifier,
		reviewers:   reviewers,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// SubmitEntry validates and persists a new Pending entry. Nothing touches
// account balances here; monetary effects happen only on approval.
func (s *entryService) SubmitEntry(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entryID := uuid.NewString()
	lines := make([]domain.EntryLine, 0, len(req.Debit)+len(req.Credit))
	position := 0
	for _, l := range req.Debit {
		lines = append(lines, domain.EntryLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: l.AccountID,
			Side:      domain.Debit,
			Amount:    l.Amount,
			Position:  position,
		})
		position++
	}
	for _, l := range req.Credit {
		lines = append(lines, domain.EntryLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: l.AccountID,
			Side:      domain.Credit,
			Amount:    l.Amount,
			Position:  position,
		})
		position++
	}

	if err := posting.ValidateBalanced(lines); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	accountIDs := uniqueAccountIDs(lines)
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for entry: %w", err)
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, id)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
	}

	files := make([]domain.Attachment, len(req.Files))
	for i, f := range req.Files {
		files[i] = domain.Attachment{Name: f.Name, Ref: f.Ref}
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryType:   domain.EntryType(req.EntryType),
		Description: req.Description,
		Status:      domain.Pending,
		Lines:       lines,
		Files:       files,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	logger.Info("Journal entry submitted",
		slog.String("entry_id", entryID),
		slog.String("entry_type", string(entry.EntryType)),
		slog.Int("line_count", len(lines)))

	go s.notifier.EntrySubmitted(context.WithoutCancel(ctx), s.reviewers, entry)

	return &entry, nil
}

// GetEntryByID retrieves a single journal entry with its lines.
func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	return entry, nil
}

// ListEntries retrieves a page of entries, optionally filtered by status.
func (s *entryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	var status *domain.EntryStatus
	if params.Status != nil {
		st := domain.EntryStatus(*params.Status)
		status = &st
	}
	entries, nextToken, err := s.entryRepo.ListEntries(ctx, status, params.Limit, params.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nextToken, nil
}

// ApproveEntry posts a Pending entry to the ledger. The repository runs the
// whole posting as one transaction; lock and serialization conflicts are
// retried a bounded number of times. An unconfirmed rollback surfaces as
// ErrIncompletePosting and is never retried.
func (s *entryService) ApproveEntry(ctx context.Context, entryID string, reviewerID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var entry *domain.JournalEntry
	var err error
	for attempt := 1; attempt <= maxApprovalAttempts; attempt++ {
		entry, err = s.entryRepo.ApproveEntry(ctx, entryID, reviewerID, time.Now().UTC())
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxApprovalAttempts {
			logger.Warn("Approval hit a concurrency conflict, retrying",
				slog.String("entry_id", entryID),
				slog.Int("attempt", attempt))
			continue
		}
		if errors.Is(err, apperrors.ErrIncompletePosting) {
			logger.Error("Posting left in unknown state, manual reconciliation required",
				slog.String("entry_id", entryID),
				slog.String("error", err.Error()))
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Journal entry approved",
		slog.String("entry_id", entryID),
		slog.String("post_reference", derefOrEmpty(entry.PostReference)),
		slog.String("reviewed_by", reviewerID))

	go s.notifier.EntryResolved(context.WithoutCancel(ctx), *entry, domain.Approved)

	return entry, nil
}

// RejectEntry closes a Pending entry without posting. The reason is mandatory
// and recorded verbatim.
func (s *entryService) RejectEntry(ctx context.Context, entryID string, reason string, reviewerID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}

	entry, err := s.entryRepo.RejectEntry(ctx, entryID, reviewerID, reason, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Info("Journal entry rejected",
		slog.String("entry_id", entryID),
		slog.String("reviewed_by", reviewerID))

	go s.notifier.EntryResolved(context.WithoutCancel(ctx), *entry, domain.Rejected)

	return entry, nil
}

// uniqueAccountIDs returns the distinct account IDs across lines in first-seen
// order.
func uniqueAccountIDs(lines []domain.EntryLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
