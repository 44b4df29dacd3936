package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
)

const maxCommitDiffLines = 200

// CommitMessageRequest is what the commit message is generated from.
type CommitMessageRequest struct {
	StagedDiff    string
	Branch        string
	RecentCommits []string
	UserPrompt    string
}

// CommitMessageGenerator writes commit messages for applied modifications.
type CommitMessageGenerator struct {
	provider providerContracts.ICompletionProvider
}

func NewCommitMessageGenerator(provider providerContracts.ICompletionProvider) *CommitMessageGenerator {
	return &CommitMessageGenerator{provider: provider}
}

// GenerateCommitMessage asks the provider for a message. Without a provider,
// or when it fails, the user's prompt becomes the subject line.
func (g *CommitMessageGenerator) GenerateCommitMessage(ctx context.Context, request CommitMessageRequest) (string, error) {
	if g.provider == nil {
		return FallbackCommitMessage(request.UserPrompt), nil
	}

	response, err := g.provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: commitSystemPrompt,
		Prompt:       createCommitUserPrompt(request),
		MaxTokens:    300,
	})
	if err != nil {
		return FallbackCommitMessage(request.UserPrompt), fmt.Errorf("failed to generate commit message: %w", err)
	}

	message := cleanCommitMessage(response.Text)
	if message == "" {
		return FallbackCommitMessage(request.UserPrompt), errors.New("provider returned an empty commit message")
	}
	return message, nil
}

// FallbackCommitMessage turns the modification prompt into a subject line.
func FallbackCommitMessage(prompt string) string {
	subject := strings.Join(strings.Fields(prompt), " ")
	if subject == "" {
		return "Update project"
	}
	if len(subject) > 72 {
		subject = strings.TrimSpace(subject[:69]) + "..."
	}
	return strings.ToUpper(subject[:1]) + subject[1:]
}

// cleanCommitMessage strips code fences and quotes models like to add.
func cleanCommitMessage(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'`")
	return strings.TrimSpace(text)
}

const commitSystemPrompt = `You write concise Git commit messages for changes made to a React + Tailwind project.

Rules:
1. First line under 72 characters, imperative mood, capitalized, no trailing period
2. Leave the second line blank when a body follows
3. Body lines are short bullets describing what changed
4. Reply with the commit message only`

func createCommitUserPrompt(request CommitMessageRequest) string {
	var prompt strings.Builder

	prompt.WriteString("Generate a commit message for the following changes.")
	if request.Branch != "" {
		fmt.Fprintf(&prompt, "\nBranch: %s", request.Branch)
	}
	if request.UserPrompt != "" {
		fmt.Fprintf(&prompt, "\n\n## Requested change:\n%s", request.UserPrompt)
	}

	if len(request.RecentCommits) > 0 {
		prompt.WriteString("\n\n## Recent commits:")
		for i, commit := range request.RecentCommits {
			if i == 3 {
				break
			}
			fmt.Fprintf(&prompt, "\n- %s", commit)
		}
	}

	if request.StagedDiff != "" {
		diffLines := strings.Split(request.StagedDiff, "\n")
		diff := request.StagedDiff
		if len(diffLines) > maxCommitDiffLines {
			diff = strings.Join(diffLines[:maxCommitDiffLines], "\n") +
				fmt.Sprintf("\n... (truncated %d more lines)", len(diffLines)-maxCommitDiffLines)
		}
		fmt.Fprintf(&prompt, "\n\n## Staged changes:\n```diff\n%s\n```", diff)
	}
	return prompt.String()
}
