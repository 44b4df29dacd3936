package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/pterm/pterm"
)

// startSpinner shows a spinner until the returned stop func is called.
func startSpinner(text string) func() {
	spinner, err := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).
		WithRemoveWhenDone(true).
		Start(text)
	if err != nil {
		return func() {}
	}
	return func() {
		_ = spinner.Stop()
		fmt.Print("\r")
	}
}

// printResult summarizes a request, then shows the diff of every modified
// file and the highlighted source of every added file.
func printResult(ctx context.Context, result *models.ModificationResult, before map[string]string, cwd, theme string) {
	var summary strings.Builder
	if result.Success {
		fmt.Fprintf(&summary, "%s via %s", lipgloss.Green.Render("✔ Applied"), result.Approach)
	} else {
		fmt.Fprintf(&summary, "%s (%s)", lipgloss.Red.Render("✘ Not applied"), result.Approach)
	}
	if result.Scope != nil {
		fmt.Fprintf(&summary, "\nScope: %s", result.Scope.Kind)
	}
	if result.Reasoning != "" {
		fmt.Fprintf(&summary, "\n%s", result.Reasoning)
	}
	if len(result.SelectedFiles) > 0 {
		fmt.Fprintf(&summary, "\nModified: %s", strings.Join(result.SelectedFiles, ", "))
	}
	if len(result.AddedFiles) > 0 {
		fmt.Fprintf(&summary, "\nAdded: %s", strings.Join(result.AddedFiles, ", "))
	}
	if details := result.Component; details != nil && details.Integration != nil && len(details.Integration.SkipReasons) > 0 {
		fmt.Fprintf(&summary, "\nNot wired: %s", strings.Join(details.Integration.SkipReasons, "; "))
	}
	if result.Tailwind != nil && len(result.Tailwind.Violations) > 0 {
		fmt.Fprintf(&summary, "\nTailwind config: %s", strings.Join(result.Tailwind.Violations, "; "))
	}
	for _, e := range result.ErrorTrail {
		fmt.Fprintf(&summary, "\n%s", lipgloss.Yellow.Render("• "+e))
	}
	fmt.Println(lipgloss.BoxStyle.Render(summary.String()))

	for _, rel := range result.SelectedFiles {
		after, err := os.ReadFile(filepath.Join(cwd, filepath.FromSlash(rel)))
		if err != nil {
			continue
		}
		if diff := utils.LineDiff(rel, before[rel], string(after), 3); diff != "" {
			utils.RenderDiff(os.Stdout, diff)
		}
	}
	for _, rel := range result.AddedFiles {
		printFile(ctx, cwd, rel, theme)
	}
}

func printFile(ctx context.Context, cwd, rel, theme string) {
	content, err := os.ReadFile(filepath.Join(cwd, filepath.FromSlash(rel)))
	if err != nil {
		return
	}
	fmt.Println(lipgloss.Info.Render("+++ " + rel))
	if err := utils.RenderCode(ctx, os.Stdout, string(content), utils.LanguageFromPath(rel), theme); err != nil && ctx.Err() == nil {
		fmt.Print(string(content))
	}
	fmt.Println()
}

// readSources captures the project's source files so diffs can be shown
// after a request rewrites them.
func readSources(deps *RootDependencies) map[string]string {
	sources := map[string]string{}
	snapshot := deps.Session.Snapshot()
	if snapshot == nil {
		var err error
		if snapshot, err = deps.Analyzer.BuildSnapshot(context.Background(), deps.Cwd); err != nil {
			return sources
		}
	}
	for rel, file := range snapshot.Files {
		sources[rel] = file.Content
	}
	return sources
}
