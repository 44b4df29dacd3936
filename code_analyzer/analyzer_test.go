package code_analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapshot(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/App.tsx":                  appSource,
		"src/components/Header.tsx":    headerSource,
		"src/components/ui/button.tsx": vendoredButtonSource,
		"src/lib/slot.tsx":             vendoredButtonSource,
		"src/index.css":                "@tailwind base;",
		"node_modules/react/index.js":  "module.exports = {}",
		"dist/assets/index.js":         "console.log(1)",
		"README.md":                    "# readme",
	})

	analyzer := NewCodeAnalyzer(filepath.Join(t.TempDir(), "cache"))
	snapshot, err := analyzer.BuildSnapshot(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/App.tsx", "src/components/Header.tsx", "src/index.css"}, snapshot.Paths())

	app, ok := snapshot.Get("src/App.tsx")
	require.True(t, ok)
	assert.True(t, app.IsMainFile)
	assert.True(t, app.HasButtons)
	assert.True(t, app.HasSignIn)
	assert.Equal(t, "App", app.ComponentName)
	assert.Equal(t, models.FileTypeComponent, app.FileType)
	assert.NotZero(t, app.ContentHash)
	assert.NotEmpty(t, app.Elements)

	css, _ := snapshot.Get("src/index.css")
	assert.Equal(t, models.FileTypeStyle, css.FileType)
	assert.Equal(t, snapshot.MainFile(), app)
}

func TestBuildSnapshot_CacheReuse(t *testing.T) {
	root := writeProject(t, map[string]string{"src/App.tsx": appSource})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	analyzer := NewCodeAnalyzer(cacheDir).(*CodeAnalyzer)
	_, err := analyzer.BuildSnapshot(context.Background(), root)
	require.NoError(t, err)
	snapshot, err := analyzer.BuildSnapshot(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, snapshot.Files, 1)
	assert.Equal(t, int64(1), analyzer.cacheManager.GetPerformanceStats().CacheHits)
}

func TestBuildSnapshot_EmptyAndMissingRoot(t *testing.T) {
	analyzer := NewCodeAnalyzer("")

	snapshot, err := analyzer.BuildSnapshot(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())

	snapshot, err = analyzer.BuildSnapshot(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
}

func TestBuildSnapshot_RespectsGitignore(t *testing.T) {
	root := writeProject(t, map[string]string{
		".gitignore":          "generated/\n",
		"src/App.tsx":         appSource,
		"generated/client.ts": "export const x = 1;",
	})

	snapshot, err := NewCodeAnalyzer("").BuildSnapshot(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/App.tsx"}, snapshot.Paths())
}

func TestRefreshFiles(t *testing.T) {
	root := writeProject(t, map[string]string{"src/App.tsx": appSource, "src/components/Header.tsx": headerSource})
	analyzer := NewCodeAnalyzer("")
	snapshot, err := analyzer.BuildSnapshot(context.Background(), root)
	require.NoError(t, err)

	updated := "export default function App() { return <main>Hello</main> }\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "src/App.tsx"), []byte(updated), 0644))
	require.NoError(t, os.Remove(filepath.Join(root, "src/components/Header.tsx")))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src/pages"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src/pages/About.tsx"), []byte("export default function About() { return <div/> }\n"), 0644))

	require.NoError(t, analyzer.RefreshFiles(context.Background(), snapshot, []string{"src/App.tsx", "src/components/Header.tsx", "src/pages/About.tsx"}))

	app, _ := snapshot.Get("src/App.tsx")
	assert.Equal(t, updated, app.Content)
	_, exists := snapshot.Get("src/components/Header.tsx")
	assert.False(t, exists)
	about, ok := snapshot.Get("src/pages/About.tsx")
	require.True(t, ok)
	assert.Equal(t, models.FileTypePage, about.FileType)
}

func TestGetCacheStats(t *testing.T) {
	disabled, err := NewCodeAnalyzer("").GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, false, disabled["cache_enabled"])

	root := writeProject(t, map[string]string{"src/App.tsx": appSource})
	analyzer := NewCodeAnalyzer(filepath.Join(t.TempDir(), "cache"))
	_, err = analyzer.BuildSnapshot(context.Background(), root)
	require.NoError(t, err)

	stats, err := analyzer.GetCacheStats()
	require.NoError(t, err)
	assert.Equal(t, true, stats["cache_enabled"])
	assert.Equal(t, 1, stats["cache_files"])
	assert.Equal(t, int64(1), stats["requests"])

	removed, err := analyzer.CleanExpiredCache(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
