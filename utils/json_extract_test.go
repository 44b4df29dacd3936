package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Scope     string `json:"scope"`
	Reasoning string `json:"reasoning"`
}

func TestExtractJSON_Fenced(t *testing.T) {
	var s sample
	err := ExtractJSON("Sure:\n```json\n{\"scope\": \"FULL_FILE\", \"reasoning\": \"broad\"}\n```\n", &s)
	require.NoError(t, err)
	assert.Equal(t, "FULL_FILE", s.Scope)
	assert.Equal(t, "broad", s.Reasoning)
}

func TestExtractJSON_BareWithBracesInStrings(t *testing.T) {
	var s sample
	err := ExtractJSON(`Answer: {"scope": "TARGETED_NODES", "reasoning": "uses {curly} text"} done`, &s)
	require.NoError(t, err)
	assert.Equal(t, "uses {curly} text", s.Reasoning)
}

func TestExtractJSON_Array(t *testing.T) {
	var items []sample
	require.NoError(t, ExtractJSON(`[{"scope":"A"},{"scope":"B"}]`, &items))
	assert.Len(t, items, 2)
}

func TestExtractJSON_Missing(t *testing.T) {
	var s sample
	assert.ErrorIs(t, ExtractJSON("no json here", &s), ErrNoJSON)
	assert.Error(t, ExtractJSON("{broken", &s))
}
