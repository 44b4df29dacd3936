package utils

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitRepo(t *testing.T) (*GitOperations, string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
	dir := t.TempDir()
	git := NewGitOperations(dir)
	ctx := context.Background()
	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.email", "dev@example.com"},
		{"config", "user.name", "Dev"},
		{"config", "commit.gpgsign", "false"},
	} {
		_, err := git.run(ctx, args...)
		require.NoError(t, err)
	}
	return git, dir
}

func TestGitOperations_CommitFlow(t *testing.T) {
	git, dir := newGitRepo(t)
	ctx := context.Background()
	require.NoError(t, git.CheckGitRepo(ctx))

	commits, err := git.GetRecentCommits(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, commits)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "App.tsx"), []byte("export default function App() {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0644))

	staged, err := git.HasStagedChanges(ctx)
	require.NoError(t, err)
	assert.False(t, staged)

	require.NoError(t, git.AddFiles(ctx, "src/App.tsx"))
	staged, err = git.HasStagedChanges(ctx)
	require.NoError(t, err)
	assert.True(t, staged)

	diff, err := git.GetStagedDiff(ctx)
	require.NoError(t, err)
	assert.Contains(t, diff, "src/App.tsx")
	assert.NotContains(t, diff, "notes.txt")

	require.NoError(t, git.Commit(ctx, "Add App component"))
	commits, err = git.GetRecentCommits(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Add App component"}, commits)

	branch, err := git.GetBranchName(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, branch)
}

func TestGitOperations_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	assert.ErrorIs(t, NewGitOperations(dir).CheckGitRepo(context.Background()), ErrNotGitRepository)
}
