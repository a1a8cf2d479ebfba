// Package posting holds the arithmetic at the heart of the ledger: how one
// debit or credit line moves an account's balance, and what makes an entry
// balanced. It is used by both services and repositories so the convention
// lives in exactly one place.
package posting

import (
	"fmt"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta returns the balance change a line applies to an account:
// +amount when the line's side matches the account's normal side, -amount
// otherwise. Amount must be positive; the side carries the sign.
func SignedDelta(side domain.EntrySide, normalSide domain.NormalSide, amount decimal.Decimal) (decimal.Decimal, error) {
	if !normalSide.Valid() {
		return decimal.Zero, fmt.Errorf("unknown normal side %q", normalSide)
	}
	if string(side) == string(normalSide) {
		return amount, nil
	}
	return amount.Neg(), nil
}

// ValidateBalanced checks the fundamental double-entry law on a set of lines:
// both sides non-empty, every amount strictly positive, and the debit sum
// equal to the credit sum. Sums use decimal arithmetic, so equality is exact.
func ValidateBalanced(lines []domain.EntryLine) error {
	debitSum := decimal.Zero
	creditSum := decimal.Zero
	debitCount, creditCount := 0, 0

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("line amount must be positive for account %s, got %s", line.AccountID, line.Amount.String())
		}
		switch line.Side {
		case domain.Debit:
			debitSum = debitSum.Add(line.Amount)
			debitCount++
		case domain.Credit:
			creditSum = creditSum.Add(line.Amount)
			creditCount++
		default:
			return fmt.Errorf("unknown entry side %q for account %s", line.Side, line.AccountID)
		}
	}

	if debitCount == 0 || creditCount == 0 {
		return fmt.Errorf("entry must have at least one debit and one credit line")
	}
	if !debitSum.Equal(creditSum) {
		return fmt.Errorf("entry does not balance: debits sum to %s, credits sum to %s", debitSum.String(), creditSum.String())
	}
	return nil
}

// ReplayBalance recomputes an account balance from its initial balance and
// ledger lines, independently of the stored balance. Callers use it to verify
// the ledger invariant.
func ReplayBalance(initial decimal.Decimal, normalSide domain.NormalSide, lines []domain.LedgerLine) (decimal.Decimal, error) {
	balance := initial
	for _, line := range lines {
		delta, err := SignedDelta(line.Side, normalSide, line.Amount)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(delta)
	}
	return balance, nil
}
