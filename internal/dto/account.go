package dto

import (
	"time"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for creating a ledger account.
type CreateAccountRequest struct {
	AccountNumber  string          `json:"accountNumber" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	Category       string          `json:"category" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subcategory    string          `json:"subcategory"`
	Description    string          `json:"description"`
	NormalSide     string          `json:"normalSide" binding:"required,oneof=DEBIT CREDIT"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// UpdateAccountRequest carries metadata edits. Monetary fields are absent on
// purpose: balance, debit and credit totals are owned by the posting engine.
type UpdateAccountRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subcategory *string `json:"subcategory,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SetAccountActiveRequest toggles an account's active flag.
type SetAccountActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// AccountResponse is the wire representation of an account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	AccountNumber  string          `json:"accountNumber"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory"`
	Description    string          `json:"description"`
	NormalSide     string          `json:"normalSide"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	DebitTotal     decimal.Decimal `json:"debitTotal"`
	CreditTotal    decimal.Decimal `json:"creditTotal"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// LedgerLineResponse is the wire representation of one posted ledger line.
type LedgerLineResponse struct {
	LineID        string          `json:"lineID"`
	PostReference string          `json:"postReference"`
	Side          string          `json:"side"`
	Amount        decimal.Decimal `json:"amount"`
	PostedAt      time.Time       `json:"postedAt"`
	PostedBy      string          `json:"postedBy"`
}

// SnapshotResponse is the wire representation of an audit snapshot.
type SnapshotResponse struct {
	SnapshotID  string          `json:"snapshotID"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	NormalSide  string          `json:"normalSide"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"isActive"`
	UpdatedBy   string          `json:"updatedBy"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to its wire form.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		AccountNumber:  a.AccountNumber,
		Name:           a.Name,
		Category:       string(a.Category),
		Subcategory:    a.Subcategory,
		Description:    a.Description,
		NormalSide:     string(a.NormalSide),
		InitialBalance: a.InitialBalance,
		DebitTotal:     a.DebitTotal,
		CreditTotal:    a.CreditTotal,
		Balance:        a.Balance,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		CreatedBy:      a.CreatedBy,
	}
}

// ToLedgerLineResponses converts a slice of ledger lines to wire form.
func ToLedgerLineResponses(lines []domain.LedgerLine) []LedgerLineResponse {
	out := make([]LedgerLineResponse, len(lines))
	for i, l := range lines {
		out[i] = LedgerLineResponse{
			LineID:        l.LineID,
			PostReference: l.PostReference,
			Side:          string(l.Side),
			Amount:        l.Amount,
			PostedAt:      l.PostedAt,
			PostedBy:      l.PostedBy,
		}
	}
	return out
}

// ToSnapshotResponses converts a slice of snapshots to wire form.
func ToSnapshotResponses(snaps []domain.AccountSnapshot) []SnapshotResponse {
	out := make([]SnapshotResponse, len(snaps))
	for i, s := range snaps {
		out[i] = SnapshotResponse{
			SnapshotID:  s.SnapshotID,
			Name:        s.Name,
			Category:    string(s.Category),
			Subcategory: s.Subcategory,
			NormalSide:  string(s.NormalSide),
			DebitTotal:  s.DebitTotal,
			CreditTotal: s.CreditTotal,
			Balance:     s.Balance,
			IsActive:    s.IsActive,
			UpdatedBy:   s.UpdatedBy,
			CreatedAt:   s.CreatedAt,
		}
	}
	return out
}
