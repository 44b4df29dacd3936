package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/meysamhadeli/reactforge/deploy/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func TestBundle_SkipsIgnoredPaths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"package.json":                `{"name":"shop"}`,
		"src/App.tsx":                 "export default function App() { return null }\n",
		"node_modules/react/index.js": "module.exports = {}",
		"dist/index.html":             "<html></html>",
		".git/HEAD":                   "ref: refs/heads/main",
		".env":                        "API_KEY=secret",
		".gitignore":                  ".env\n",
	})

	bundle, err := NewPackager().Bundle(root)
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "package.json", "src/App.tsx"}, bundle.Files)
	assert.Len(t, bundle.Hash, 16)

	reader, err := zip.NewReader(bytes.NewReader(bundle.Data), int64(len(bundle.Data)))
	require.NoError(t, err)
	require.Len(t, reader.File, 3)
	assert.Equal(t, "src/App.tsx", reader.File[2].Name)
	f, err := reader.File[2].Open()
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "export default function App() { return null }\n", string(content))
}

func TestBundle_Errors(t *testing.T) {
	_, err := NewPackager().Bundle(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = NewPackager().Bundle(writeTree(t, map[string]string{"node_modules/x.js": "x"}))
	assert.ErrorContains(t, err, "no files to package")
}

// buildServer answers "running" for the first pending polls, then final.
func buildServer(t *testing.T, pending int32, final buildStatusResponse) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/builds", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/zip", r.Header.Get("Content-Type"))
		assert.Equal(t, "shop", r.URL.Query().Get("project"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "zipdata", string(body))
		_ = json.NewEncoder(w).Encode(buildStatusResponse{ID: "b-1", Status: models.BuildQueued})
	})
	mux.HandleFunc("/builds/b-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) <= pending {
			_ = json.NewEncoder(w).Encode(buildStatusResponse{ID: "b-1", Status: models.BuildRunning})
			return
		}
		_ = json.NewEncoder(w).Encode(final)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &polls
}

var testBundle = &models.Bundle{Data: []byte("zipdata"), Hash: "abc"}

func TestTrigger_Succeeds(t *testing.T) {
	server, polls := buildServer(t, 2, buildStatusResponse{
		ID: "b-1", Status: models.BuildSucceeded,
		DownloadURL: "https://cdn.example.com/b-1.zip", PreviewURL: "https://shop.example.com",
	})

	result, err := NewHTTPBuildTrigger(server.URL+"/", time.Millisecond, 10).Trigger(context.Background(), "shop", testBundle)
	require.NoError(t, err)
	assert.Equal(t, "b-1", result.BuildID)
	assert.Equal(t, "https://cdn.example.com/b-1.zip", result.DownloadURL)
	assert.Equal(t, "https://shop.example.com", result.PreviewURL)
	assert.Equal(t, 3, result.Polls)
	assert.Equal(t, int32(3), polls.Load())
}

func TestTrigger_TimesOut(t *testing.T) {
	server, polls := buildServer(t, 100, buildStatusResponse{})

	_, err := NewHTTPBuildTrigger(server.URL, time.Millisecond, 4).Trigger(context.Background(), "shop", testBundle)
	assert.ErrorIs(t, err, ErrBuildTimeout)
	assert.Equal(t, int32(4), polls.Load())
}

func TestTrigger_BuildFailure(t *testing.T) {
	server, _ := buildServer(t, 0, buildStatusResponse{ID: "b-1", Status: models.BuildFailed, Error: "tsc exited 2"})

	_, err := NewHTTPBuildTrigger(server.URL, time.Millisecond, 4).Trigger(context.Background(), "shop", testBundle)
	assert.ErrorIs(t, err, ErrBuildFailed)
	assert.ErrorContains(t, err, "tsc exited 2")
}

func TestTrigger_SubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bundle too large", http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	_, err := NewHTTPBuildTrigger(server.URL, time.Millisecond, 4).Trigger(context.Background(), "shop", testBundle)
	assert.ErrorContains(t, err, "413")
	assert.ErrorContains(t, err, "bundle too large")
}

func TestTrigger_NoURL(t *testing.T) {
	_, err := NewHTTPBuildTrigger("", 0, 0).Trigger(context.Background(), "shop", testBundle)
	assert.Error(t, err)
}
