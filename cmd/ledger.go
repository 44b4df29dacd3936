package cmd

import (
	"fmt"
	"os"
	"strings"

	charmLipgloss "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/modification_ledger"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the changes recorded for this project's session.",
	Long: `The 'ledger' command lists every file change recorded in the project's session, including
failed attempts, with the strategy that made it. Use --format json or yaml to export the entries.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		defer rootDependencies.Close()

		format, _ := cmd.Flags().GetString("format")
		recent, _ := cmd.Flags().GetInt("recent")
		handleLedgerCommand(rootDependencies, format, recent)
	},
}

func init() {
	ledgerCmd.Flags().StringP("format", "f", "table", "Output format: table, json or yaml.")
	ledgerCmd.Flags().IntP("recent", "n", 20, "How many recent entries the table shows.")
	rootCmd.AddCommand(ledgerCmd)
}

func handleLedgerCommand(rootDependencies *RootDependencies, format string, recent int) {
	ledger := rootDependencies.Modifier.Ledger()
	if strings.EqualFold(format, "table") {
		printLedgerTable(ledger.Stats(recent))
		return
	}
	if err := modification_ledger.Export(os.Stdout, ledger.Changes(), format); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
	}
}

func printLedgerTable(stats models.LedgerStats) {
	if stats.Total == 0 {
		fmt.Println(lipgloss.Gray.Render("No changes recorded in this session."))
		return
	}

	t := table.New().
		Border(charmLipgloss.RoundedBorder()).
		BorderStyle(charmLipgloss.NewStyle().Foreground(charmLipgloss.Color("#5FAFFF"))).
		Headers("TIME", "TYPE", "FILE", "STRATEGY", "OK", "DESCRIPTION")
	for _, change := range stats.RecentChanges {
		ok := "✔"
		if !change.Success {
			ok = "✘"
		}
		t.Row(
			change.Timestamp.Local().Format("15:04:05"),
			string(change.Type),
			change.FilePath,
			change.Strategy,
			ok,
			truncate(change.Description, 60),
		)
	}
	fmt.Println(t.Render())

	fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf(
		"Changes: %d (%d ok, %d failed) - Success rate: %.0f%% - Files: %d",
		stats.Total, stats.Successful, stats.Failed, stats.SuccessRate*100, stats.UniqueFiles,
	)))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
