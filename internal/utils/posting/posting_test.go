package posting_test

import (
	"testing"

	"github.com/finbooks/finbooks_app/internal/core/domain"
	"github.com/finbooks/finbooks_app/internal/utils/posting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name       string
		side       domain.EntrySide
		normalSide domain.NormalSide
		amount     string
		want       string
		wantErr    bool
	}{
		{name: "debit to debit-normal increases", side: domain.Debit, normalSide: domain.NormalDebit, amount: "50", want: "50"},
		{name: "credit to debit-normal decreases", side: domain.Credit, normalSide: domain.NormalDebit, amount: "50", want: "-50"},
		{name: "credit to credit-normal increases", side: domain.Credit, normalSide: domain.NormalCredit, amount: "12.34", want: "12.34"},
		{name: "debit to credit-normal decreases", side: domain.Debit, normalSide: domain.NormalCredit, amount: "12.34", want: "-12.34"},
		{name: "unknown normal side", side: domain.Debit, normalSide: "L", amount: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := posting.SignedDelta(tt.side, tt.normalSide, d(tt.amount))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestValidateBalanced(t *testing.T) {
	line := func(side domain.EntrySide, amount string) domain.EntryLine {
		return domain.EntryLine{AccountID: "acc-1", Side: side, Amount: d(amount)}
	}

	tests := []struct {
		name    string
		lines   []domain.EntryLine
		wantErr string
	}{
		{
			name:  "balanced two lines",
			lines: []domain.EntryLine{line(domain.Debit, "100"), line(domain.Credit, "100")},
		},
		{
			name: "balanced many lines with cents",
			lines: []domain.EntryLine{
				line(domain.Debit, "33.33"), line(domain.Debit, "66.67"),
				line(domain.Credit, "50.00"), line(domain.Credit, "50.00"),
			},
		},
		{
			name:    "unbalanced sums",
			lines:   []domain.EntryLine{line(domain.Debit, "100"), line(domain.Credit, "90")},
			wantErr: "does not balance",
		},
		{
			name:    "missing credit side",
			lines:   []domain.EntryLine{line(domain.Debit, "100")},
			wantErr: "at least one debit and one credit",
		},
		{
			name:    "missing debit side",
			lines:   []domain.EntryLine{line(domain.Credit, "100")},
			wantErr: "at least one debit and one credit",
		},
		{
			name:    "zero amount",
			lines:   []domain.EntryLine{line(domain.Debit, "0"), line(domain.Credit, "0")},
			wantErr: "must be positive",
		},
		{
			name:    "negative amount",
			lines:   []domain.EntryLine{line(domain.Debit, "-5"), line(domain.Credit, "-5")},
			wantErr: "must be positive",
		},
		{
			name:    "unknown side",
			lines:   []domain.EntryLine{{AccountID: "acc-1", Side: "BOTH", Amount: d("5")}},
			wantErr: "unknown entry side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := posting.ValidateBalanced(tt.lines)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestReplayBalance(t *testing.T) {
	lines := []domain.LedgerLine{
		{Side: domain.Debit, Amount: d("50")},
		{Side: domain.Credit, Amount: d("20")},
		{Side: domain.Debit, Amount: d("5.25")},
	}

	got, err := posting.ReplayBalance(d("100"), domain.NormalDebit, lines)
	require.NoError(t, err)
	assert.True(t, d("135.25").Equal(got), "got %s", got)

	got, err = posting.ReplayBalance(d("100"), domain.NormalCredit, lines)
	require.NoError(t, err)
	assert.True(t, d("64.75").Equal(got), "got %s", got)
}
