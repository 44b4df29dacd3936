package code_analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeBlock(t *testing.T) {
	code, err := ExtractCodeBlock("Here you go:\n```tsx\nexport default function A() {}\n```\nDone.")
	require.NoError(t, err)
	assert.Equal(t, "export default function A() {}\n", code)

	code, err = ExtractCodeBlock("import x from 'y';\nexport default x;")
	require.NoError(t, err)
	assert.Contains(t, code, "import x")

	_, err = ExtractCodeBlock("I cannot help with that.")
	assert.ErrorIs(t, err, ErrNoCodeBlock)

	_, err = ExtractCodeBlock("```\n\n```")
	assert.ErrorIs(t, err, ErrNoCodeBlock)
}

func TestExtractCodeChanges(t *testing.T) {
	response := "File: src/App.tsx\n```tsx\nconst a = 1;\n```\n\n### `src/components/Nav.tsx`\n```tsx\nconst b = 2;\n```\n"
	changes := ExtractCodeChanges(response)

	require.Len(t, changes, 2)
	assert.Equal(t, "src/App.tsx", changes[0].RelativePath)
	assert.Equal(t, "const a = 1;\n", changes[0].Code)
	assert.Equal(t, "tsx", changes[0].Language)
	assert.Equal(t, "src/components/Nav.tsx", changes[1].RelativePath)
}

func TestIsNoChangeResponse(t *testing.T) {
	assert.True(t, IsNoChangeResponse("NO_CHANGES"))
	assert.True(t, IsNoChangeResponse("  no modification needed because ..."))
	assert.False(t, IsNoChangeResponse("```tsx\n```"))
}

func TestExtractCodeFor(t *testing.T) {
	response := "File: src/App.tsx\n```tsx\nconst a = 1;\n```\n\nFile: src/components/Nav.tsx\n```tsx\nconst b = 2;\n```\n"

	code, err := ExtractCodeFor(response, "src/components/Nav.tsx")
	require.NoError(t, err)
	assert.Equal(t, "const b = 2;\n", code)

	code, err = ExtractCodeFor("```tsx\nconst c = 3;\n```", "src/Footer.tsx")
	require.NoError(t, err)
	assert.Equal(t, "const c = 3;\n", code)
}
