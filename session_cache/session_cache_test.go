package session_cache

import (
	"context"
	"errors"
	"testing"

	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]contracts.ISessionCache {
	fileCache, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	return map[string]contracts.ISessionCache{
		"memory": NewMemoryCache(),
		"file":   fileCache,
	}
}

func TestBackends_ValuesListsAndClear(t *testing.T) {
	ctx := context.Background()
	for name, cache := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := cache.Get(ctx, "s1", "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, cache.Set(ctx, "s1", "k", []byte("v1")))
			require.NoError(t, cache.Set(ctx, "s1", "k", []byte("v2")))
			require.NoError(t, cache.Set(ctx, "s2", "k", []byte("other")))

			v, ok, err := cache.Get(ctx, "s1", "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("v2"), v)

			for _, item := range []string{"a", "b", "c"} {
				require.NoError(t, cache.AppendToList(ctx, "s1", "list", []byte(item)))
			}
			items, err := cache.GetList(ctx, "s1", "list")
			require.NoError(t, err)
			assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, items)

			require.NoError(t, cache.Clear(ctx, "s1"))
			_, ok, _ = cache.Get(ctx, "s1", "k")
			assert.False(t, ok)
			items, _ = cache.GetList(ctx, "s1", "list")
			assert.Empty(t, items)

			v, ok, _ = cache.Get(ctx, "s2", "k")
			assert.True(t, ok)
			assert.Equal(t, []byte("other"), v)
		})
	}
}

func TestFileCache_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileCache(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "s", "k", []byte("persisted")))

	second, err := NewFileCache(dir)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "s", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("persisted"), v)
}

type brokenCache struct {
	panics bool
}

func (b brokenCache) fail() error {
	if b.panics {
		panic("connection reset")
	}
	return errors.New("cache offline")
}

func (b brokenCache) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, b.fail()
}
func (b brokenCache) Set(context.Context, string, string, []byte) error { return b.fail() }
func (b brokenCache) AppendToList(context.Context, string, string, []byte) error {
	return b.fail()
}
func (b brokenCache) GetList(context.Context, string, string) ([][]byte, error) {
	return nil, b.fail()
}
func (b brokenCache) Clear(context.Context, string) error { return b.fail() }

func TestSafeCache_NeverFails(t *testing.T) {
	ctx := context.Background()
	for name, inner := range map[string]contracts.ISessionCache{
		"error": brokenCache{},
		"panic": brokenCache{panics: true},
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			cache := NewSafeCache(inner)

			v, ok, err := cache.Get(ctx, "s", "k")
			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, v)
			assert.NoError(t, cache.Set(ctx, "s", "k", []byte("v")))
			assert.NoError(t, cache.AppendToList(ctx, "s", "l", []byte("v")))
			items, err := cache.GetList(ctx, "s", "l")
			assert.NoError(t, err)
			assert.Empty(t, items)
			assert.NoError(t, cache.Clear(ctx, "s"))
		})
	}
}

func TestSafeCache_PassesThrough(t *testing.T) {
	ctx := context.Background()
	cache := NewSafeCache(NewMemoryCache())

	require.NoError(t, cache.Set(ctx, "s", "k", []byte("v")))
	v, ok, _ := cache.Get(ctx, "s", "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestSnapshotAndLedgerMirror(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	_, ok := LoadSnapshot(ctx, cache, "s")
	assert.False(t, ok)

	snapshot := codeModels.NewProjectSnapshot("/work")
	snapshot.Files["src/App.tsx"] = &codeModels.ProjectFile{RelativePath: "src/App.tsx", ComponentName: "App", IsMainFile: true}
	require.NoError(t, SaveSnapshot(ctx, cache, "s", snapshot))

	loaded, ok := LoadSnapshot(ctx, cache, "s")
	require.True(t, ok)
	assert.Equal(t, "App", loaded.Files["src/App.tsx"].ComponentName)
	assert.Equal(t, "src/App.tsx", loaded.MainFile().RelativePath)

	require.NoError(t, cache.Set(ctx, "s", SnapshotKey, []byte("not gob")))
	_, ok = LoadSnapshot(ctx, cache, "s")
	assert.False(t, ok)

	require.NoError(t, AppendChange(ctx, cache, "s", models.ModificationChange{ID: "1", FilePath: "src/App.tsx", Success: true}))
	require.NoError(t, cache.AppendToList(ctx, "s", LedgerKey, []byte("{broken")))
	require.NoError(t, AppendChange(ctx, cache, "s", models.ModificationChange{ID: "2", FilePath: "src/Header.tsx"}))

	changes := LoadChanges(ctx, cache, "s")
	require.Len(t, changes, 2)
	assert.Equal(t, "1", changes[0].ID)
	assert.Equal(t, "2", changes[1].ID)
}

func TestPendingComponent(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	_, ok := LoadPendingComponent(ctx, cache, "s")
	assert.False(t, ok)

	require.NoError(t, SavePendingComponent(ctx, cache, "s", &models.GenerationResult{
		Name: "About", Type: models.ComponentTypePage, FilePath: "src/pages/About.tsx", RoutePath: "/about", Content: "ignored",
	}))
	pending, ok := LoadPendingComponent(ctx, cache, "s")
	require.True(t, ok)
	assert.Equal(t, "About", pending.Name)
	assert.Equal(t, "/about", pending.RoutePath)
	assert.Empty(t, pending.Content)

	require.NoError(t, cache.Set(ctx, "s", PendingComponentKey, nil))
	_, ok = LoadPendingComponent(ctx, cache, "s")
	assert.False(t, ok)
}
