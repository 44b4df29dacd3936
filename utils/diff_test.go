package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("<h1>Hello</h1>", "<h1>  Hello</h1>"))
	assert.InDelta(t, 0.9, Similarity("abcdefghij", "abcdefghiX"), 0.001)
	assert.Less(t, Similarity("<button>Sign in</button>", "<footer/>"), 0.5)
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestLineDiff(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nB\nc\n"

	out := LineDiff("src/App.tsx", before, after, 2)
	assert.Contains(t, out, "--- src/App.tsx")
	assert.Contains(t, out, "-b\n")
	assert.Contains(t, out, "+B\n")
	assert.Contains(t, out, " a\n")

	assert.Empty(t, LineDiff("x", before, before, 2))
}
