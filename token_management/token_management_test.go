package token_management

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsedTokens_Accumulates(t *testing.T) {
	tm := NewTokenManager()
	tm.UsedTokens(100, 20)
	tm.UsedTokens(50, 5)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 175, total)
	assert.Equal(t, 150, input)
	assert.Equal(t, 25, output)
	assert.Equal(t, 2, tm.Snapshot("anthropic", "unknown").Calls)
}

func TestUsedTokens_ConcurrentSafe(t *testing.T) {
	tm := NewTokenManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.UsedTokens(1, 1)
		}()
	}
	wg.Wait()

	total, _, _ := tm.GetCurrentTokenUsage()
	assert.Equal(t, 100, total)
}

func TestCalculateCost_UsesEmbeddedPrices(t *testing.T) {
	tm := NewTokenManager()
	cost := tm.CalculateCost("anthropic", "claude-3-5-sonnet-20241022", 1_000_000, 1_000_000)
	assert.InDelta(t, 18.0, cost, 0.0001)

	assert.Zero(t, tm.CalculateCost("anthropic", "no-such-model", 1000, 1000))
}

func TestExceedsBudget(t *testing.T) {
	tm := NewTokenManager()
	assert.False(t, tm.ExceedsBudget("anthropic", "claude-3-5-sonnet-20241022", 0, 0))

	tm.UsedTokens(600, 400)
	assert.True(t, tm.ExceedsBudget("anthropic", "claude-3-5-sonnet-20241022", 1000, 0))
	assert.False(t, tm.ExceedsBudget("anthropic", "claude-3-5-sonnet-20241022", 2000, 0))
	assert.True(t, tm.ExceedsBudget("anthropic", "claude-3-5-sonnet-20241022", 0, 0.001))
}

func TestClearToken(t *testing.T) {
	tm := NewTokenManager()
	tm.UsedTokens(10, 10)
	tm.ClearToken()

	snapshot := tm.Snapshot("ollama", "llama3.1")
	require.Zero(t, snapshot.TotalTokens)
	assert.Zero(t, snapshot.Calls)
}
