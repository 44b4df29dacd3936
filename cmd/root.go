package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeContracts "github.com/meysamhadeli/reactforge/code_analyzer/contracts"
	"github.com/meysamhadeli/reactforge/config"
	"github.com/meysamhadeli/reactforge/constants/lipgloss"
	"github.com/meysamhadeli/reactforge/file_modifier"
	fmContracts "github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/logging"
	"github.com/meysamhadeli/reactforge/providers"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/session_cache"
	"github.com/meysamhadeli/reactforge/storage"
	"github.com/meysamhadeli/reactforge/token_management"
	tokenContracts "github.com/meysamhadeli/reactforge/token_management/contracts"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// parseCacheMaxAge bounds how long unchanged parse results are kept.
const parseCacheMaxAge = 7 * 24 * time.Hour

// RootDependencies is everything a subcommand needs, built once per run.
type RootDependencies struct {
	Cwd             string
	ProjectID       string
	Config          *config.Config
	TokenManagement tokenContracts.ITokenManagement
	Provider        providerContracts.ICompletionProvider
	Analyzer        codeContracts.ICodeAnalyzer
	Store           *storage.Store
	Session         *file_modifier.Session
	Modifier        fmContracts.IFileModifier
}

var rootCmd = &cobra.Command{
	Use:   "reactforge",
	Short: "Reactforge applies natural-language changes to React + Tailwind projects.",
	Long: `Reactforge reads a React + Tailwind project, decides how far a requested change reaches
and applies it with the narrowest strategy that fits: text edits, targeted JSX node edits,
Tailwind theme patches, full-file rewrites or new pages and components. Every change is
recorded in a per-session ledger.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render("reactforge " + config.DefaultConfig.Version))
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
	rootCmd.PersistentFlags().String("project", "", "Project directory to work on (defaults to the current directory).")
}

// handleRootCommand loads configuration and wires the pipeline for the
// project directory. Failures are printed and yield nil.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := projectDir(cmd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Failed to resolve project directory: %v", err)))
		return nil
	}

	cfg, err := config.LoadConfigWithCache(rootCmd, cwd)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Failed to load configuration: %v", err)))
		return nil
	}
	logging.InitLogger(cfg.Logging)

	deps := &RootDependencies{
		Cwd:             cwd,
		ProjectID:       file_modifier.ProjectSessionID(cwd),
		Config:          cfg,
		TokenManagement: token_management.NewTokenManager(),
	}

	deps.Provider, err = providers.ProviderFactory(cfg.AIProviderConfig, deps.TokenManagement)
	if err != nil {
		logrus.Warnf("AI provider unavailable: %v", err)
		deps.Provider = nil
	}

	deps.Analyzer = code_analyzer.NewCodeAnalyzer(cacheDir(cfg, cwd, "files"))
	if removed, err := deps.Analyzer.CleanExpiredCache(parseCacheMaxAge); err != nil {
		logrus.Debugf("Skipping parse cache cleanup: %v", err)
	} else if removed > 0 {
		logrus.Debugf("Removed %d expired parse cache entries", removed)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	deps.Session = file_modifier.NewSession(ctx, deps.ProjectID, cwd, newSessionCache(cfg, cwd))

	modifierDeps := file_modifier.NewDependencies(deps.Provider, deps.Analyzer, cfg.Modifier)
	modifierDeps.Tokens = deps.TokenManagement
	modifierDeps.Budget = file_modifier.Budget{MaxTokens: cfg.TokenBudget.MaxTokens, MaxCost: cfg.TokenBudget.MaxCost}
	if store, err := storage.Open(resolvePath(cwd, cfg.Storage.DBPath)); err != nil {
		logrus.Warnf("Project store unavailable, summaries will not be kept: %v", err)
	} else {
		deps.Store = store
		modifierDeps.Store = store
	}
	deps.Modifier = file_modifier.NewFileModifier(deps.Session, modifierDeps)

	return deps
}

// Close releases the project store.
func (d *RootDependencies) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			logrus.Warnf("Failed to close project store: %v", err)
		}
	}
}

func (d *RootDependencies) displayTokens() {
	cfg := d.Config.AIProviderConfig
	d.TokenManagement.DisplayTokens(cfg.Provider, cfg.Model)
}

func projectDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("project")
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func cacheDir(cfg *config.Config, cwd, name string) string {
	if !cfg.Cache.Enabled || cfg.Cache.Dir == "" {
		return ""
	}
	return filepath.Join(resolvePath(cwd, cfg.Cache.Dir), name)
}

// newSessionCache persists sessions on disk when caching is enabled so
// separate runs against one project share a ledger.
func newSessionCache(cfg *config.Config, cwd string) fmContracts.ISessionCache {
	dir := cacheDir(cfg, cwd, "sessions")
	if dir == "" {
		return session_cache.NewMemoryCache()
	}
	cache, err := session_cache.NewFileCache(dir)
	if err != nil {
		logrus.Warnf("Falling back to in-memory session cache: %v", err)
		return session_cache.NewMemoryCache()
	}
	return cache
}

func resolvePath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}
