// Package testkit builds throwaway React projects for strategy tests.
package testkit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/stretchr/testify/require"
)

const AppSource = `import React from 'react';
import Header from './components/Header';

export default function App() {
  return (
    <div className="app">
      <Header />
      <h1>Welcome</h1>
      <p>Welcome to our store</p>
      <button className="btn">Sign in</button>
    </div>
  );
}
`

const HeaderSource = `import { Link } from 'react-router-dom';

const Header = () => {
  return (
    <header className="bg-white">
      <nav>
        <Link to="/">Home</Link>
      </nav>
    </header>
  );
};

export default Header;
`

const TailwindConfig = `/** @type {import('tailwindcss').Config} */
export default {
  content: ["./index.html", "./src/**/*.{js,ts,jsx,tsx}"],
  theme: {
    extend: {},
  },
  plugins: [],
}
`

// DefaultProject is a small Vite-style app.
func DefaultProject() map[string]string {
	return map[string]string{
		"src/App.tsx":               AppSource,
		"src/components/Header.tsx": HeaderSource,
		"tailwind.config.js":        TailwindConfig,
	}
}

// WriteProject writes files under a fresh temp dir and returns its path.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func Snapshot(t *testing.T, root string) *codeModels.ProjectSnapshot {
	t.Helper()
	snapshot, err := code_analyzer.NewCodeAnalyzer("").BuildSnapshot(context.Background(), root)
	require.NoError(t, err)
	return snapshot
}

// Request builds a strategy request over a freshly scanned root.
func Request(t *testing.T, root, prompt string, scope *models.ModificationScope) *models.StrategyRequest {
	t.Helper()
	if scope == nil {
		scope = models.SafeDefaultScope("")
	}
	return &models.StrategyRequest{Prompt: prompt, Scope: scope, Snapshot: Snapshot(t, root), BasePath: root}
}

func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// Fenced wraps code in a tsx fence the way models answer.
func Fenced(code string) string {
	return "```tsx\n" + code + "```"
}
