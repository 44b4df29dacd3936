package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var modifyCmd = &cobra.Command{
	Use:   `modify "<prompt>"`,
	Short: "Apply one natural-language change to the project.",
	Long: `The 'modify' command analyzes how far the requested change reaches and applies it with the
matching strategy. Failed strategies escalate to the fallback and emergency tiers; the outcome,
the files touched and any errors are printed, with a diff of every modified file.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		defer rootDependencies.Close()

		asJSON, _ := cmd.Flags().GetBool("json")
		commit, _ := cmd.Flags().GetBool("commit")
		handleModifyCommand(rootDependencies, strings.Join(args, " "), asJSON, commit)
	},
}

func init() {
	modifyCmd.Flags().Bool("json", false, "Print the modification result as JSON.")
	modifyCmd.Flags().Bool("commit", false, "Commit the changed files with a generated message.")
	rootCmd.AddCommand(modifyCmd)
}

func handleModifyCommand(rootDependencies *RootDependencies, prompt string, asJSON, commit bool) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if rootDependencies.Provider == nil {
		fmt.Println(lipgloss.Yellow.Render("No AI provider configured; only deterministic edits are possible."))
	}

	before := readSources(rootDependencies)
	if len(before) == 0 {
		fmt.Println(lipgloss.Yellow.Render("No project yet: the directory has no React source files."))
	}

	result := runModification(ctx, rootDependencies, prompt, "")

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Failed to encode result: %v", err)))
		}
		return
	}

	printResult(ctx, result, before, rootDependencies.Cwd, rootDependencies.Config.Theme)
	if commit && result.Success {
		commitChanges(ctx, rootDependencies, prompt, result)
	}
	rootDependencies.displayTokens()
}

// runModification processes one request under a spinner.
func runModification(ctx context.Context, rootDependencies *RootDependencies, prompt, conversation string) *models.ModificationResult {
	stop := startSpinner("Applying change...")
	defer stop()

	return rootDependencies.Modifier.ProcessModification(ctx, prompt, models.ProcessOptions{
		ConversationContext: conversation,
		ProjectID:           rootDependencies.ProjectID,
		OnSummaryReady: func(summary models.ModificationSummary) {
			logrus.WithField("session", summary.SessionID).Debugf("summary: %s", summary.Summary)
		},
	})
}

// commitChanges stages exactly the files the request touched.
func commitChanges(ctx context.Context, rootDependencies *RootDependencies, prompt string, result *models.ModificationResult) {
	git := utils.NewGitOperations(rootDependencies.Cwd)
	if err := git.CheckGitRepo(ctx); err != nil {
		fmt.Println(lipgloss.Yellow.Render("Skipping commit: " + err.Error()))
		return
	}

	files := append(append([]string{}, result.SelectedFiles...), result.AddedFiles...)
	if err := git.AddFiles(ctx, files...); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return
	}
	if staged, err := git.HasStagedChanges(ctx); err != nil || !staged {
		fmt.Println(lipgloss.Yellow.Render("Nothing to commit."))
		return
	}

	diff, _ := git.GetStagedDiff(ctx)
	branch, _ := git.GetBranchName(ctx)
	recent, _ := git.GetRecentCommits(ctx, 3)

	stop := startSpinner("Writing commit message...")
	message, err := utils.NewCommitMessageGenerator(rootDependencies.Provider).GenerateCommitMessage(ctx, utils.CommitMessageRequest{
		StagedDiff:    diff,
		Branch:        branch,
		RecentCommits: recent,
		UserPrompt:    prompt,
	})
	stop()
	if err != nil {
		logrus.Warnf("Using prompt as commit message: %v", err)
	}

	if err := git.Commit(ctx, message); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return
	}
	fmt.Println(lipgloss.Green.Render("✔ Committed: " + strings.SplitN(message, "\n", 2)[0]))
}
