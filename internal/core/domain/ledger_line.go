package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is a single recorded effect of one approved posting on one
// account. Lines are append-only and chronological per account; together with
// the account's initial balance they reproduce its stored balance exactly.
type LedgerLine struct {
	LineID        string          `json:"lineID"`
	AccountID     string          `json:"accountID"`
	PostReference string          `json:"postReference"` // Links back to the originating entry
	Side          EntrySide       `json:"side"`
	Amount        decimal.Decimal `json:"amount"`
	PostedAt      time.Time       `json:"postedAt"`
	PostedBy      string          `json:"postedBy"` // Approver identity
	Position      int             `json:"position"` // Order within the originating approval
}
