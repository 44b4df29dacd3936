package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/deploy"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Bundle the project and start a remote build.",
	Long: `The 'deploy' command zips the project, leaving out node_modules, build output, VCS data and
anything .gitignore excludes, uploads it to the configured build service and polls until the
build finishes. The download and preview URLs are printed on success.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		defer rootDependencies.Close()

		url, _ := cmd.Flags().GetString("url")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		handleDeployCommand(rootDependencies, url, dryRun)
	},
}

func init() {
	deployCmd.Flags().String("url", "", "Build service URL (overrides deploy.build_url).")
	deployCmd.Flags().Bool("dry-run", false, "Only build the bundle and list its files.")
	rootCmd.AddCommand(deployCmd)
}

func handleDeployCommand(rootDependencies *RootDependencies, url string, dryRun bool) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := rootDependencies.Config.Deploy
	if url == "" {
		url = cfg.BuildURL
	}

	bundle, err := deploy.NewPackager().Bundle(rootDependencies.Cwd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Failed to bundle project: %v", err)))
		return
	}
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf("Bundled %d files (%.1f KB, %s)", len(bundle.Files), float64(len(bundle.Data))/1024, bundle.Hash)))

	if dryRun {
		for _, f := range bundle.Files {
			fmt.Println(lipgloss.Gray.Render("  " + f))
		}
		return
	}
	if url == "" {
		fmt.Println(lipgloss.Yellow.Render("No build service configured: set deploy.build_url, BUILD_URL or --url."))
		return
	}

	stop := startSpinner("Building...")
	result, err := deploy.NewHTTPBuildTrigger(url, cfg.PollInterval, cfg.MaxPolls).Trigger(ctx, rootDependencies.ProjectID, bundle)
	stop()
	switch {
	case errors.Is(err, deploy.ErrBuildTimeout):
		fmt.Println(lipgloss.Red.Render("Build did not finish in time: " + err.Error()))
		return
	case err != nil:
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return
	}

	summary := fmt.Sprintf("Build %s succeeded in %s (%d polls)", result.BuildID, result.Duration.Round(time.Second), result.Polls)
	if result.DownloadURL != "" {
		summary += "\nDownload: " + result.DownloadURL
	}
	if result.PreviewURL != "" {
		summary += "\nPreview:  " + result.PreviewURL
	}
	fmt.Println(lipgloss.BoxStyle.Render(summary))
}
