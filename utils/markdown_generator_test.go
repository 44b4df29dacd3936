package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageFromPath(t *testing.T) {
	assert.Equal(t, "CSS", LanguageFromPath("src/index.css"))
	assert.Equal(t, "plaintext", LanguageFromPath("notes.unknownext"))
}

func TestRenderCode(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderCode(context.Background(), &out, "body { color: red; }\n", "css", "dracula"))
	assert.Contains(t, out.String(), "color")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out.Reset()
	assert.ErrorIs(t, RenderCode(ctx, &out, "a\nb\n", "css", "dracula"), context.Canceled)
}

func TestRenderDiff(t *testing.T) {
	var out bytes.Buffer
	RenderDiff(&out, LineDiff("src/App.tsx", "<h1>Hi</h1>\n", "<h1>Hello</h1>\n", 2))

	assert.Contains(t, out.String(), "src/App.tsx")
	assert.Contains(t, out.String(), "-<h1>Hi</h1>")
	assert.Contains(t, out.String(), "+<h1>Hello</h1>")
}
