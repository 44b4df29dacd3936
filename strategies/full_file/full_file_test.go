package full_file

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/providers/mock"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/strategies/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_WritesPreservingRewrite(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	rewritten := strings.Replace(testkit.AppSource, "<h1>Welcome</h1>", "<h1>Hello</h1>", 1)
	provider := mock.New(testkit.Fenced(rewritten))

	result, err := NewProcessor(provider, 5).Execute(context.Background(), testkit.Request(t, root, "say Hello instead of Welcome", nil))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"src/App.tsx"}, result.ModifiedFiles)
	assert.Equal(t, rewritten, testkit.ReadFile(t, root, "src/App.tsx"))
	require.Len(t, result.Changes, 1)
	assert.True(t, result.Changes[0].Success)
	assert.Equal(t, "structure preserved", result.Changes[0].Details.Reasoning)
	assert.Equal(t, []string{"App"}, result.Changes[0].Details.Components)

	assert.Contains(t, provider.Requests[0].Prompt, "- import Header from './components/Header';")
	assert.Contains(t, provider.Requests[0].Prompt, "- component App")
}

func TestExecute_RepairsDroppedImport(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	rewritten := strings.Replace(testkit.AppSource, "import Header from './components/Header';\n", "", 1)
	rewritten = strings.Replace(rewritten, "Welcome</h1>", "Hello</h1>", 1)

	result, err := NewProcessor(mock.New(testkit.Fenced(rewritten)), 5).Execute(context.Background(), testkit.Request(t, root, "say Hello instead of Welcome", nil))
	require.NoError(t, err)

	require.True(t, result.Success)
	written := testkit.ReadFile(t, root, "src/App.tsx")
	assert.Contains(t, written, "import Header from './components/Header';")
	assert.Contains(t, written, "<h1>Hello</h1>")
	assert.Equal(t, "structure repaired after rewrite", result.Changes[0].Details.Reasoning)
}

func TestExecute_RejectsRewriteWithoutComponent(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	broken := "import React from 'react';\nimport Header from './components/Header';\n\nexport default function Main() {\n  return <Header />;\n}\n"

	result, err := NewProcessor(mock.New(testkit.Fenced(broken)), 5).Execute(context.Background(), testkit.Request(t, root, "say Hello instead of Welcome", nil))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.ModifiedFiles)
	require.Len(t, result.Changes, 1)
	assert.False(t, result.Changes[0].Success)
	assert.Equal(t, testkit.AppSource, testkit.ReadFile(t, root, "src/App.tsx"))
}

func TestExecute_ProviderFailureEscalates(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())

	_, err := NewProcessor(mock.Failing(errors.New("overloaded")), 5).Execute(context.Background(), testkit.Request(t, root, "say Hello instead of Welcome", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestExecute_StopsAtCap(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	provider := mock.New(
		testkit.Fenced(strings.Replace(testkit.AppSource, `className="app"`, `className="app min-h-screen"`, 1)),
		testkit.Fenced(strings.Replace(testkit.HeaderSource, `className="bg-white"`, `className="bg-gray-50"`, 1)),
	)

	result, err := NewProcessor(provider, 1).Execute(context.Background(), testkit.Request(t, root, "tweak className values", nil))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.ModifiedFiles, 1)
	assert.Equal(t, 1, provider.Calls())
}

func TestExecute_NoChangesAnswer(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())

	result, err := NewProcessor(mock.New("NO_CHANGES"), 5).Execute(context.Background(), testkit.Request(t, root, "say Hello instead of Welcome", nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.Changes)
	assert.NotEmpty(t, result.Reasoning)
}

func TestSelectCandidates_TargetFilesFirst(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	snapshot := testkit.Snapshot(t, root)
	scope := &models.ModificationScope{Kind: models.ScopeFullFile, TargetFiles: []string{"src/components/Header.tsx", "missing.tsx"}, Reasoning: "x"}

	files := SelectCandidates(snapshot, scope, "Welcome", 0)
	require.Len(t, files, 2)
	assert.Equal(t, "src/components/Header.tsx", files[0].RelativePath)
	assert.Equal(t, "src/App.tsx", files[1].RelativePath)
}

func TestExecute_EmptyProject(t *testing.T) {
	root := t.TempDir()
	result, err := NewProcessor(mock.New(), 5).Execute(context.Background(), testkit.Request(t, root, "anything", nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestExecute_NoProvider(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())

	result, err := NewProcessor(nil, 5).Execute(context.Background(), testkit.Request(t, root, "restyle the app", nil))
	assert.ErrorIs(t, err, strategies.ErrNoProvider)
	assert.Nil(t, result)
	assert.Equal(t, testkit.AppSource, testkit.ReadFile(t, root, "src/App.tsx"))
}
