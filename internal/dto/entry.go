package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one debit or credit line of a proposed entry.
type EntryLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// AttachmentRequest is opaque metadata for a file already stored by the
// external attachment collaborator.
type AttachmentRequest struct {
	Name string `json:"name" binding:"required"`
	Ref  string `json:"ref" binding:"required"`
}

// CreateEntryRequest is the payload for submitting a journal entry.
// Debit and credit are ordered sequences; their declared order is the order
// lines are applied on approval.
type CreateEntryRequest struct {
	EntryType   string              `json:"entryType" binding:"required,oneof=STANDARD ADJUSTING CLOSING"`
	Description string              `json:"description" binding:"required"`
	Debit       []EntryLineRequest  `json:"debit" binding:"required,min=1,dive"`
	Credit      []EntryLineRequest  `json:"credit" binding:"required,min=1,dive"`
	Files       []AttachmentRequest `json:"files,omitempty" binding:"omitempty,dive"`
}

// RejectEntryRequest carries the mandatory rejection reason.
type RejectEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListEntriesParams filters and paginates the entry list.
type ListEntriesParams struct {
	Status    *string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// EntryLineResponse is the wire representation of one entry line.
type EntryLineResponse struct {
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
}

// EntryResponse is the wire representation of a journal entry.
type EntryResponse struct {
	EntryID         string              `json:"entryID"`
	EntryType       string              `json:"entryType"`
	Description     string              `json:"description"`
	Status          string              `json:"status"`
	PostReference   *string             `json:"postReference,omitempty"`
	RejectionReason *string             `json:"rejectionReason,omitempty"`
	ReviewedBy      *string             `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty"`
	Debit           []EntryLineResponse `json:"debit"`
	Credit          []EntryLineResponse `json:"credit"`
	Files           []AttachmentRequest `json:"files,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	CreatedBy       string              `json:"createdBy"`
}

// ToEntryResponse converts a domain.JournalEntry to its wire form, splitting
// lines back into the two-sided shape callers submitted.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	toLines := func(lines []domain.EntryLine) []EntryLineResponse {
		out := make([]EntryLineResponse, len(lines))
		for i, l := range lines {
			out[i] = EntryLineResponse{AccountID: l.AccountID, Amount: l.Amount}
		}
		return out
	}

	files := make([]AttachmentRequest, len(e.Files))
	for i, f := range e.Files {
		files[i] = AttachmentRequest{Name: f.Name, Ref: f.Ref}
	}
	if len(files) == 0 {
		files = nil
	}

	return EntryResponse{
		EntryID:         e.EntryID,
		EntryType:       string(e.EntryType),
		Description:     e.Description,
		Status:          string(e.Status),
		PostReference:   e.PostReference,
		RejectionReason: e.RejectionReason,
		ReviewedBy:      e.ReviewedBy,
		ReviewedAt:      e.ReviewedAt,
		Debit:           toLines(e.DebitLines()),
		Credit:          toLines(e.CreditLines()),
		Files:           files,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
}
