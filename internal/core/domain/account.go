package domain

import (
	"github.com/shopspring/decimal"
)

// NormalSide is the side on which an account's balance naturally increases.
// Exactly two values exist; all side comparisons must go through this type.
type NormalSide string

const (
	NormalDebit  NormalSide = "DEBIT"
	NormalCredit NormalSide = "CREDIT"
)

// Valid reports whether the normal side is one of the two known values.
func (s NormalSide) Valid() bool {
	return s == NormalDebit || s == NormalCredit
}

// AccountCategory is the top-level classification of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// Account represents a ledger account within the core domain.
// Balance, DebitTotal and CreditTotal are mutated only by the posting engine;
// account-edit operations touch metadata fields exclusively.
type Account struct {
	AccountID      string          `json:"accountID"`     // Primary Key (UUID)
	AccountNumber  string          `json:"accountNumber"` // Unique, user-facing
	Name           string          `json:"name"`          // Unique
	Category       AccountCategory `json:"category"`
	Subcategory    string          `json:"subcategory"`
	Description    string          `json:"description"`
	NormalSide     NormalSide      `json:"normalSide"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	DebitTotal     decimal.Decimal `json:"debitTotal"`  // Cumulative posted debits
	CreditTotal    decimal.Decimal `json:"creditTotal"` // Cumulative posted credits
	Balance        decimal.Decimal `json:"balance"`     // Signed running balance
	IsActive       bool            `json:"isActive"`
	AuditFields
}
