package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "reactforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestProjectSummary_Upsert(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	summary, err := store.GetProjectSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, summary)

	require.NoError(t, store.SaveProjectSummary(ctx, "p1", "created About page"))
	require.NoError(t, store.SaveProjectSummary(ctx, "p1", "created About page\nrenamed button"))

	summary, err = store.GetProjectSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "created About page\nrenamed button", summary)
}

func TestModificationSummaries_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &models.ModificationSummary{SessionID: "s", ProjectID: "p1", Prompt: "add About page", Scope: models.ScopeComponentAddition,
		Approach: "component_addition", Success: true, AddedFiles: []string{"src/pages/About.tsx"}, Summary: "added About", CreatedAt: base}
	second := &models.ModificationSummary{SessionID: "s", ProjectID: "p1", Prompt: "rename", Scope: models.ScopeTextBased,
		Approach: "text_based", ModifiedFiles: []string{"src/App.tsx"}, Summary: "renamed", CreatedAt: base.Add(time.Second)}
	other := &models.ModificationSummary{SessionID: "s", ProjectID: "p2", Prompt: "x", Scope: models.ScopeFullFile, Approach: "full_file"}

	for _, s := range []*models.ModificationSummary{first, second, other} {
		require.NoError(t, store.SaveModificationSummary(ctx, s))
	}
	assert.NotEmpty(t, first.ID)

	summaries, err := store.ListModificationSummaries(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "renamed", summaries[0].Summary)
	assert.False(t, summaries[0].Success)
	assert.Equal(t, []string{"src/App.tsx"}, summaries[0].ModifiedFiles)
	assert.Equal(t, models.ScopeComponentAddition, summaries[1].Scope)
	assert.True(t, summaries[1].Success)
	assert.Equal(t, []string{"src/pages/About.tsx"}, summaries[1].AddedFiles)
	assert.True(t, summaries[1].CreatedAt.Equal(base))
}

func TestConversations(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	conv, err := store.CreateConversation(ctx, "p1", "landing page")
	require.NoError(t, err)
	for _, m := range [][2]string{{"user", "add a pricing section"}, {"assistant", "created PricingSection"}, {"user", "make it purple"}} {
		_, err := store.AddMessage(ctx, conv.ID, m[0], m[1])
		require.NoError(t, err)
	}

	messages, err := store.Messages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "add a pricing section", messages[0].Content)

	context2, err := store.ConversationContext(ctx, conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "assistant: created PricingSection\nuser: make it purple\n", context2)
}

func TestOpen_Reopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveProjectSummary(ctx, "p", "kept"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	summary, err := reopened.GetProjectSummary(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "kept", summary)
}
