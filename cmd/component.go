package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/meysamhadeli/reactforge/component_generator"
	"github.com/meysamhadeli/reactforge/component_generator/contracts"
	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/session_cache"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/spf13/cobra"
)

var componentCmd = &cobra.Command{
	Use:   "component",
	Short: "Generate and wire new pages or components.",
	Long: `The 'component' command runs the two steps of adding a page or component separately:
'analyze' learns the project's conventions and writes the new file, 'integrate' registers its
route, adds a navigation link or renders it from the app entry, and 'add' runs both.`,
}

var componentAnalyzeCmd = &cobra.Command{
	Use:   `analyze "<prompt>"`,
	Short: "Generate the new file without touching the rest of the project.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withComponentGenerator(cmd, func(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator) {
			handleComponentAnalyze(ctx, deps, generator, strings.Join(args, " "), componentHint(cmd))
		})
	},
}

var componentIntegrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Wire in the file generated by 'component analyze', or the one given by --file.",
	Run: func(cmd *cobra.Command, args []string) {
		withComponentGenerator(cmd, func(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator) {
			file, _ := cmd.Flags().GetString("file")
			route, _ := cmd.Flags().GetString("route")
			handleComponentIntegrate(ctx, deps, generator, file, route, componentHint(cmd))
		})
	},
}

var componentAddCmd = &cobra.Command{
	Use:   `add "<prompt>"`,
	Short: "Generate a page or component and wire it in.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withComponentGenerator(cmd, func(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator) {
			handleComponentAdd(ctx, deps, generator, strings.Join(args, " "), componentHint(cmd))
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{componentAnalyzeCmd, componentIntegrateCmd, componentAddCmd} {
		c.Flags().String("name", "", "Component name (PascalCase).")
		c.Flags().String("type", "", "Component type: page or component.")
	}
	componentIntegrateCmd.Flags().String("file", "", "Project-relative path of an existing component file.")
	componentIntegrateCmd.Flags().String("route", "", "Route path for a page (defaults to one derived from the name).")

	componentCmd.AddCommand(componentAnalyzeCmd, componentIntegrateCmd, componentAddCmd)
	rootCmd.AddCommand(componentCmd)
}

func withComponentGenerator(cmd *cobra.Command, run func(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator)) {
	rootDependencies := handleRootCommand(cmd)
	if rootDependencies == nil {
		return
	}
	defer rootDependencies.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	run(ctx, rootDependencies, component_generator.NewGenerator(rootDependencies.Provider, rootDependencies.Analyzer))
	rootDependencies.displayTokens()
}

func componentHint(cmd *cobra.Command) *models.ComponentAdditionPayload {
	name, _ := cmd.Flags().GetString("name")
	kind, _ := cmd.Flags().GetString("type")
	if name == "" && kind == "" {
		return nil
	}
	return &models.ComponentAdditionPayload{Name: name, Type: models.ComponentType(strings.ToLower(kind))}
}

func handleComponentAnalyze(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator, prompt string, hint *models.ComponentAdditionPayload) {
	stop := startSpinner("Generating component...")
	generation, err := generator.AnalyzeOnly(ctx, deps.Cwd, prompt, hint)
	stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Generation failed: %v", err)))
		return
	}

	session := deps.Session
	session.RecordChange(ctx, strategies.NewChange(models.ChangeCreated, generation.FilePath, strategies.NameComponentAddition,
		fmt.Sprintf("created %s %s", generation.Type, generation.Name), true,
		&models.ChangeDetails{Components: []string{generation.Name}, Reasoning: fmt.Sprintf("confidence %.2f", generation.Confidence)}))
	if err := session_cache.SavePendingComponent(ctx, session.Cache(), session.ID, generation); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Could not remember the generated file: %v", err)))
	}

	fmt.Println(lipgloss.BoxStyle.Render(generationSummary(generation)))
	printFile(ctx, deps.Cwd, generation.FilePath, deps.Config.Theme)
	fmt.Println(lipgloss.Gray.Render("Run 'reactforge component integrate' to wire it in."))
}

func handleComponentIntegrate(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator, file, route string, hint *models.ComponentAdditionPayload) {
	session := deps.Session
	generation, ok := session_cache.LoadPendingComponent(ctx, session.Cache(), session.ID)
	if file != "" {
		generation, ok = componentFromFile(file, hint), true
	}
	if !ok {
		fmt.Println(lipgloss.Yellow.Render("Nothing to integrate: run 'component analyze' first or pass --file."))
		return
	}
	if route != "" {
		generation.RoutePath = component_generator.NormalizeRoute(route)
	}

	before := readSources(deps)
	integration, err := generator.IntegrateOnly(ctx, deps.Cwd, generation)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Integration failed: %v", err)))
		return
	}
	for _, rel := range integration.ModifiedFiles {
		session.RecordChange(ctx, strategies.NewChange(models.ChangeUpdated, rel, strategies.NameComponentAddition,
			fmt.Sprintf("wired in %s", generation.Name), true, &models.ChangeDetails{Components: []string{generation.Name}}))
	}
	if file == "" {
		_ = session.Cache().Set(ctx, session.ID, session_cache.PendingComponentKey, nil)
	}

	printResult(ctx, &models.ModificationResult{
		Success:       true,
		Approach:      strategies.NameComponentAddition,
		SelectedFiles: integration.ModifiedFiles,
		Reasoning:     integrationSummary(generation, integration),
		Component:     &models.ComponentDetails{Generation: generation, Integration: integration},
	}, before, deps.Cwd, deps.Config.Theme)
}

func handleComponentAdd(ctx context.Context, deps *RootDependencies, generator contracts.IComponentGenerator, prompt string, hint *models.ComponentAdditionPayload) {
	before := readSources(deps)

	stop := startSpinner("Generating and wiring component...")
	result, err := component_generator.NewExecutor(generator).Execute(ctx, &models.StrategyRequest{
		Prompt:   prompt,
		Scope:    &models.ModificationScope{Kind: models.ScopeComponentAddition, Component: hint},
		BasePath: deps.Cwd,
	})
	stop()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		return
	}
	for _, change := range result.Changes {
		deps.Session.RecordChange(ctx, change)
	}

	printResult(ctx, &models.ModificationResult{
		Success:       result.Success,
		Approach:      strategies.NameComponentAddition,
		SelectedFiles: result.ModifiedFiles,
		AddedFiles:    result.AddedFiles,
		Reasoning:     result.Reasoning,
		Component:     result.Component,
	}, before, deps.Cwd, deps.Config.Theme)
}

// componentFromFile describes an existing file so it can be integrated.
// Name and type default to the file name and its directory.
func componentFromFile(file string, hint *models.ComponentAdditionPayload) *models.GenerationResult {
	file = strings.TrimPrefix(filepath.ToSlash(file), "./")
	generation := &models.GenerationResult{FilePath: file, Type: models.ComponentTypeComponent}
	if strings.Contains("/"+file, "/pages/") || strings.Contains("/"+file, "/app/") {
		generation.Type = models.ComponentTypePage
	}

	base := path.Base(file)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base != "" {
		generation.Name = strings.ToUpper(base[:1]) + base[1:]
	}

	if hint != nil {
		if hint.Name != "" {
			generation.Name = hint.Name
		}
		if hint.Type == models.ComponentTypePage || hint.Type == models.ComponentTypeComponent {
			generation.Type = hint.Type
		}
	}
	return generation
}

func generationSummary(g *models.GenerationResult) string {
	summary := fmt.Sprintf("Created %s %s at %s (confidence %.2f)", g.Type, g.Name, g.FilePath, g.Confidence)
	if g.RoutePath != "" {
		summary += fmt.Sprintf("\nRoute: %s", g.RoutePath)
	}
	summary += fmt.Sprintf("\nConventions: %s exports, routing: %s", g.ExportStyle, orNone(g.RoutingLib))
	return summary
}

func integrationSummary(g *models.GenerationResult, i *models.IntegrationResult) string {
	var wired []string
	if i.RouteAdded {
		wired = append(wired, "route")
	}
	if i.NavLinkAdded {
		wired = append(wired, "nav link")
	}
	if i.UsageAdded {
		wired = append(wired, "usage")
	}
	if len(wired) == 0 {
		return fmt.Sprintf("%s was not wired in", g.Name)
	}
	return fmt.Sprintf("%s wired in: %s", g.Name, strings.Join(wired, ", "))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
