package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether an entry line is a debit or a credit.
// It shares its literal convention with NormalSide on purpose: a line
// increases an account's balance iff the two match.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	Pending  EntryStatus = "PENDING"
	Approved EntryStatus = "APPROVED"
	Rejected EntryStatus = "REJECTED"
)

// Terminal reports whether no further transition is permitted.
func (s EntryStatus) Terminal() bool {
	return s == Approved || s == Rejected
}

// EntryType classifies a journal entry. It drives notification routing only;
// the posting engine treats all types identically.
type EntryType string

const (
	Standard  EntryType = "STANDARD"
	Adjusting EntryType = "ADJUSTING"
	Closing   EntryType = "CLOSING"
)

// EntryLine is one debit or credit line of a journal entry, referencing a
// single account. Amount is always positive; the side carries the sign.
type EntryLine struct {
	LineID    string          `json:"lineID"`
	EntryID   string          `json:"entryID"`
	AccountID string          `json:"accountID"`
	Side      EntrySide       `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Position  int             `json:"position"` // Application order on approval, debits before credits
}

// Attachment is opaque metadata for a file stored by an external collaborator.
type Attachment struct {
	Name string `json:"name"`
	Ref  string `json:"ref"` // Stable storage reference (URL or key)
}

// JournalEntry represents a submitted, two-sided financial event.
// It is created Pending and transitions exactly once to Approved or Rejected.
type JournalEntry struct {
	EntryID         string       `json:"entryID"` // Primary Key (UUID)
	EntryType       EntryType    `json:"entryType"`
	Description     string       `json:"description"`
	Status          EntryStatus  `json:"status"`
	PostReference   *string      `json:"postReference,omitempty"`   // Assigned on approval only
	RejectionReason *string      `json:"rejectionReason,omitempty"` // Present only when Rejected
	ReviewedBy      *string      `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewedAt,omitempty"`
	Files           []Attachment `json:"files,omitempty"`
	Lines           []EntryLine  `json:"lines,omitempty"`
	AuditFields
}

// DebitLines returns the entry's debit lines in declared order.
func (e *JournalEntry) DebitLines() []EntryLine {
	return e.linesOn(Debit)
}

// CreditLines returns the entry's credit lines in declared order.
func (e *JournalEntry) CreditLines() []EntryLine {
	return e.linesOn(Credit)
}

func (e *JournalEntry) linesOn(side EntrySide) []EntryLine {
	out := make([]EntryLine, 0, len(e.Lines))
	for _, l := range e.Lines {
		if l.Side == side {
			out = append(out, l)
		}
	}
	return out
}

// SideTotal sums the amounts on one side of the entry.
func (e *JournalEntry) SideTotal(side EntrySide) decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == side {
			total = total.Add(l.Amount)
		}
	}
	return total
}
