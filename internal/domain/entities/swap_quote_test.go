package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSwapQuoteStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from SwapQuoteStatus
		to   SwapQuoteStatus
		ok   bool
	}{
		{SwapQuoteStatusActive, SwapQuoteStatusDepositReceived, true},
		{SwapQuoteStatusActive, SwapQuoteStatusExpired, true},
		{SwapQuoteStatusActive, SwapQuoteStatusFailed, true},
		{SwapQuoteStatusActive, SwapQuoteStatusExecuting, false},
		{SwapQuoteStatusActive, SwapQuoteStatusCompleted, false},

		{SwapQuoteStatusDepositReceived, SwapQuoteStatusExecuting, true},
		{SwapQuoteStatusDepositReceived, SwapQuoteStatusFailed, true},
		{SwapQuoteStatusDepositReceived, SwapQuoteStatusExpired, false},
		{SwapQuoteStatusDepositReceived, SwapQuoteStatusCompleted, false},
		{SwapQuoteStatusDepositReceived, SwapQuoteStatusActive, false},

		{SwapQuoteStatusExecuting, SwapQuoteStatusCompleted, true},
		{SwapQuoteStatusExecuting, SwapQuoteStatusFailed, true},
		{SwapQuoteStatusExecuting, SwapQuoteStatusExpired, false},

		{SwapQuoteStatusCompleted, SwapQuoteStatusFailed, false},
		{SwapQuoteStatusExpired, SwapQuoteStatusDepositReceived, false},
		{SwapQuoteStatusFailed, SwapQuoteStatusActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestSwapQuoteStatus_IsTerminal(t *testing.T) {
	assert.False(t, SwapQuoteStatusActive.IsTerminal())
	assert.False(t, SwapQuoteStatusDepositReceived.IsTerminal())
	assert.False(t, SwapQuoteStatusExecuting.IsTerminal())
	assert.True(t, SwapQuoteStatusCompleted.IsTerminal())
	assert.True(t, SwapQuoteStatusExpired.IsTerminal())
	assert.True(t, SwapQuoteStatusFailed.IsTerminal())
}

func TestSwapQuote_IsExpired(t *testing.T) {
	now := time.Now()
	q := &SwapQuote{Status: SwapQuoteStatusActive, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, q.IsExpired(now))

	q.ExpiresAt = now.Add(time.Minute)
	assert.False(t, q.IsExpired(now))

	// Only ACTIVE quotes expire.
	q.Status = SwapQuoteStatusDepositReceived
	q.ExpiresAt = now.Add(-time.Hour)
	assert.False(t, q.IsExpired(now))
}
