package utils

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meysamhadeli/reactforge/providers/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCommitMessage(t *testing.T) {
	provider := mock.New("```\nAdd About page\n\n- Register /about route\n```")
	generator := NewCommitMessageGenerator(provider)

	message, err := generator.GenerateCommitMessage(context.Background(), CommitMessageRequest{
		StagedDiff:    "+export default function About() {}",
		Branch:        "main",
		RecentCommits: []string{"Initial commit"},
		UserPrompt:    "add an about page",
	})
	require.NoError(t, err)
	assert.Equal(t, "Add About page\n\n- Register /about route", message)

	require.Len(t, provider.Requests, 1)
	assert.Contains(t, provider.Requests[0].Prompt, "add an about page")
	assert.Contains(t, provider.Requests[0].Prompt, "Initial commit")
	assert.Contains(t, provider.Requests[0].Prompt, "```diff")
}

func TestGenerateCommitMessage_Fallbacks(t *testing.T) {
	message, err := NewCommitMessageGenerator(nil).GenerateCommitMessage(context.Background(), CommitMessageRequest{UserPrompt: "make the header purple"})
	require.NoError(t, err)
	assert.Equal(t, "Make the header purple", message)

	message, err = NewCommitMessageGenerator(mock.Failing(errors.New("offline"))).GenerateCommitMessage(context.Background(), CommitMessageRequest{UserPrompt: "fix typo"})
	assert.Error(t, err)
	assert.Equal(t, "Fix typo", message)
}

func TestFallbackCommitMessage(t *testing.T) {
	assert.Equal(t, "Update project", FallbackCommitMessage("  "))

	long := FallbackCommitMessage(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(long), 72)
	assert.True(t, strings.HasSuffix(long, "..."))
}
