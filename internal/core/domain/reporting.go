package domain

import "github.com/shopspring/decimal"

// TrialBalanceRow is one account's column placement in a trial balance
// report. An account appears in the column of its normal side when its
// balance is positive, and in the opposite column when negative.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	Category      AccountCategory `json:"category"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalance is the full report with column totals. Balanced is true iff
// total debits equal total credits, which holds whenever every posting went
// through the approval path.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}
