package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is a frozen copy of an account's full mutable state, taken
// after every mutation of the account (posting or metadata edit). Snapshots
// are append-only: never mutated, never deleted.
type AccountSnapshot struct {
	SnapshotID     string          `json:"snapshotID"`
	AccountID      string          `json:"accountID"`
	AccountNumber  string          `json:"accountNumber"`
	Name           string          `json:"name"`
	Category       AccountCategory `json:"category"`
	Subcategory    string          `json:"subcategory"`
	Description    string          `json:"description"`
	NormalSide     NormalSide      `json:"normalSide"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	DebitTotal     decimal.Decimal `json:"debitTotal"`
	CreditTotal    decimal.Decimal `json:"creditTotal"`
	Balance        decimal.Decimal `json:"balance"`
	IsActive       bool            `json:"isActive"`
	UpdatedBy      string          `json:"updatedBy"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// SnapshotOf captures the account's state at the moment of the call.
func SnapshotOf(a Account, snapshotID, actor string, now time.Time) AccountSnapshot {
	return AccountSnapshot{
		SnapshotID:     snapshotID,
		AccountID:      a.AccountID,
		AccountNumber:  a.AccountNumber,
		Name:           a.Name,
		Category:       a.Category,
		Subcategory:    a.Subcategory,
		Description:    a.Description,
		NormalSide:     a.NormalSide,
		InitialBalance: a.InitialBalance,
		DebitTotal:     a.DebitTotal,
		CreditTotal:    a.CreditTotal,
		Balance:        a.Balance,
		IsActive:       a.IsActive,
		UpdatedBy:      actor,
		CreatedAt:      now,
	}
}
