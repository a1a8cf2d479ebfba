package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finbooks/finbooks_app/internal/core/domain"
)

func TestEntryStatusTerminal(t *testing.T) {
	tests := []struct {
		status   domain.EntryStatus
		terminal bool
	}{
		{domain.Pending, false},
		{domain.Approved, true},
		{domain.Rejected, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.Terminal())
		})
	}
}

func TestJournalEntrySides(t *testing.T) {
	entry := domain.JournalEntry{
		Lines: []domain.EntryLine{
			{AccountID: "a1", Side: domain.Debit, Amount: decimal.NewFromInt(30), Position: 0},
			{AccountID: "a2", Side: domain.Debit, Amount: decimal.NewFromInt(20), Position: 1},
			{AccountID: "a3", Side: domain.Credit, Amount: decimal.NewFromInt(50), Position: 2},
		},
	}

	debits := entry.DebitLines()
	credits := entry.CreditLines()

	assert.Len(t, debits, 2)
	assert.Len(t, credits, 1)
	assert.Equal(t, "a1", debits[0].AccountID)
	assert.Equal(t, "a2", debits[1].AccountID)
	assert.Equal(t, "a3", credits[0].AccountID)

	assert.True(t, entry.SideTotal(domain.Debit).Equal(decimal.NewFromInt(50)))
	assert.True(t, entry.SideTotal(domain.Credit).Equal(decimal.NewFromInt(50)))
}
