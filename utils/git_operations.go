package utils

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotGitRepository is returned when the project is not under git.
var ErrNotGitRepository = errors.New("not a git repository")

// GitOperations runs git in a project directory.
type GitOperations struct {
	workingDir string
}

func NewGitOperations(workingDir string) *GitOperations {
	return &GitOperations{workingDir: workingDir}
}

func (g *GitOperations) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workingDir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(output), nil
}

// CheckGitRepo checks if the working directory is inside a git repository
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	if _, err := g.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return ErrNotGitRepository
	}
	return nil
}

// AddFiles stages the given project-relative paths.
func (g *GitOperations) AddFiles(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to add files to git: %w", err)
	}
	return nil
}

func (g *GitOperations) Commit(ctx context.Context, message string) error {
	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// GetStagedDiff returns the diff of staged changes
func (g *GitOperations) GetStagedDiff(ctx context.Context) (string, error) {
	output, err := g.run(ctx, "diff", "--cached", "--unified=3")
	if err != nil {
		return "", fmt.Errorf("failed to get git diff: %w", err)
	}
	return output, nil
}

// GetRecentCommits returns the subjects of the last limit commits. A fresh
// repository has none.
func (g *GitOperations) GetRecentCommits(ctx context.Context, limit int) ([]string, error) {
	if _, err := g.run(ctx, "rev-parse", "--verify", "HEAD"); err != nil {
		return nil, nil
	}
	output, err := g.run(ctx, "log", fmt.Sprintf("--max-count=%d", limit), "--pretty=format:%s")
	if err != nil {
		return nil, fmt.Errorf("failed to get recent commits: %w", err)
	}

	var commits []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			commits = append(commits, line)
		}
	}
	return commits, nil
}

func (g *GitOperations) GetBranchName(ctx context.Context) (string, error) {
	output, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get branch name: %w", err)
	}
	return strings.TrimSpace(output), nil
}

// HasStagedChanges reports whether anything is staged for commit.
func (g *GitOperations) HasStagedChanges(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = g.workingDir
	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("failed to check staged changes: %w", err)
}
