package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/meysamhadeli/reactforge/config"
	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Reset the project cache and session state",
	Long: `The 'reset-cache' command removes the cached parse results under the project '.cache' directory
and forgets the session: its ledger, cached snapshot and pending component.
Use this command to clear corrupted cache or to start over with a clean session.`,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")
		handleResetCacheCommand(force, stats, cmd)
	},
}

func init() {
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics instead of resetting")
	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(force bool, showStats bool, cmd *cobra.Command) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}
	defer rootDependencies.Close()

	if showStats {
		printCacheStats(rootDependencies)
		return
	}

	if !force {
		confirmed, err := utils.ConfirmPrompt("Reset the project cache and forget this session's ledger?", bufio.NewReader(os.Stdin))
		if err != nil || !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return
		}
	}

	stop := startSpinner("Resetting project cache...")
	parseErr := rootDependencies.Analyzer.ClearCache()
	sessionErr := rootDependencies.Modifier.Reset(context.Background())
	utils.ClearGitignoreCache()
	config.ClearConfigCache()
	stop()

	if parseErr != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error resetting parse cache: %v", parseErr)))
	}
	if sessionErr != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error resetting session: %v", sessionErr)))
	}
	if parseErr == nil && sessionErr == nil {
		fmt.Println(lipgloss.Green.Render("✓ Project cache has been successfully reset!"))
	}
}

func printCacheStats(rootDependencies *RootDependencies) {
	fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
	cacheStats, err := rootDependencies.Analyzer.GetCacheStats()
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: Could not show statistics: %v", err)))
		return
	}
	if enabled, ok := cacheStats["cache_enabled"].(bool); !ok || !enabled {
		fmt.Println("  Cache is disabled")
		return
	}

	if dir, ok := cacheStats["cache_dir"].(string); ok {
		fmt.Printf("  Cache Directory: %s\n", dir)
	}
	if files, ok := cacheStats["cache_files"].(int); ok {
		fmt.Printf("  Cached Files: %d\n", files)
	}
	if size, ok := cacheStats["total_size"].(int64); ok {
		fmt.Printf("  Total Size: %.2f MB\n", float64(size)/(1024*1024))
	}
	if largest, ok := cacheStats["largest_files"].([]string); ok && len(largest) > 0 {
		fmt.Printf("  Largest Entries: %v\n", largest)
	}

	stats := rootDependencies.Modifier.Ledger().Stats(0)
	fmt.Printf("  Session: %s (%d ledger entries)\n", rootDependencies.Session.ID, stats.Total)
}
