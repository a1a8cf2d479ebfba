package pgsql

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/utils/posting"
)

// postingStep is the full effect of one entry line on its account: the
// account's post-line state, the ledger line to append and the audit snapshot
// of that state.
type postingStep struct {
	account  domain.Account
	line     domain.LedgerLine
	snapshot domain.AccountSnapshot
}

// buildPostingSteps applies every entry line to its account in position order
// and returns one step per line. accounts is keyed by account ID and must hold
// every referenced account, active; the map is updated in place so later lines
// against the same account see the effects of earlier ones. Pure computation,
// no I/O: the caller persists the steps inside its transaction.
func buildPostingSteps(accounts map[string]domain.Account, lines []domain.EntryLine, postRef domain.PostReference, reviewer string, now time.Time) ([]postingStep, error) {
	steps := make([]postingStep, 0, len(lines))
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s referenced by line at position %d", apperrors.ErrNotFound, line.AccountID, line.Position)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive and cannot be posted to", apperrors.ErrValidation, line.AccountID)
		}

		delta, err := posting.SignedDelta(line.Side, account.NormalSide, line.Amount)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to compute signed delta for account "+line.AccountID, err)
		}

		account.Balance = account.Balance.Add(delta)
		if line.Side == domain.Debit {
			account.DebitTotal = account.DebitTotal.Add(line.Amount)
		} else {
			account.CreditTotal = account.CreditTotal.Add(line.Amount)
		}
		account.LastUpdatedAt = now
		account.LastUpdatedBy = reviewer

		steps = append(steps, postingStep{
			account: account,
			line: domain.LedgerLine{
				LineID:        uuid.NewString(),
				AccountID:     account.AccountID,
				PostReference: postRef.String(),
				Side:          line.Side,
				Amount:        line.Amount,
				PostedAt:      now,
				PostedBy:      reviewer,
				Position:      line.Position,
			},
			snapshot: domain.SnapshotOf(account, uuid.NewString(), reviewer, now),
		})

		accounts[line.AccountID] = account
	}
	return steps, nil
}
