package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/meysamhadeli/reactforge/logging"
	"github.com/meysamhadeli/reactforge/providers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFileName = "reactforge-config"

// configCacheEntry holds a decoded config and the mtime it was read at.
type configCacheEntry struct {
	config  *Config
	modTime time.Time
}

var (
	configCache = make(map[string]*configCacheEntry)
	cacheMutex  sync.RWMutex
)

// ModifierConfig tunes the modification pipeline.
type ModifierConfig struct {
	MaxFullFileRewrites       int           `mapstructure:"max_full_file_rewrites"`
	MaxTargetedFiles          int           `mapstructure:"max_targeted_files"`
	FallbackCandidates        int           `mapstructure:"fallback_candidates"`
	FallbackMaxModifications  int           `mapstructure:"fallback_max_modifications"`
	WordBoundaryMatch         bool          `mapstructure:"word_boundary_match"`
	HybridConfidenceThreshold float64       `mapstructure:"hybrid_confidence_threshold"`
	SimilarityThreshold       float64       `mapstructure:"similarity_threshold"`
	CleanupTimeout            time.Duration `mapstructure:"cleanup_timeout"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// TokenBudgetConfig limits session spend. Zero means unlimited.
type TokenBudgetConfig struct {
	MaxTokens int     `mapstructure:"max_tokens"`
	MaxCost   float64 `mapstructure:"max_cost"`
}

type DeployConfig struct {
	BuildURL     string        `mapstructure:"build_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxPolls     int           `mapstructure:"max_polls"`
}

// Config represents the structure of the configuration file
type Config struct {
	Version          string                      `mapstructure:"version"`
	Theme            string                      `mapstructure:"theme"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
	Modifier         ModifierConfig              `mapstructure:"modifier"`
	Cache            CacheConfig                 `mapstructure:"cache"`
	Storage          StorageConfig               `mapstructure:"storage"`
	TokenBudget      TokenBudgetConfig           `mapstructure:"token_budget"`
	Deploy           DeployConfig                `mapstructure:"deploy"`
	Logging          logging.LoggingConfig       `mapstructure:"logging"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version: "0.4.0",
	Theme:   "dracula",
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:    "anthropic",
		BaseURL:     "https://api.anthropic.com/v1",
		Model:       "claude-3-5-sonnet-20241022",
		Temperature: 0.2,
		MaxTokens:   8192,
		ApiVersion:  "2023-06-01",
	},
	Modifier: ModifierConfig{
		MaxFullFileRewrites:       5,
		MaxTargetedFiles:          3,
		FallbackCandidates:        8,
		FallbackMaxModifications:  5,
		WordBoundaryMatch:         false,
		HybridConfidenceThreshold: 0.7,
		SimilarityThreshold:       0.8,
		CleanupTimeout:            5 * time.Minute,
	},
	Cache:   CacheConfig{Enabled: true, Dir: ".cache"},
	Storage: StorageConfig{DBPath: ".reactforge/reactforge.db"},
	Deploy: DeployConfig{
		PollInterval: 5 * time.Second,
		MaxPolls:     60,
	},
	Logging: logging.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs reads defaults, the config file, .env, environment variables
// and CLI flags, in increasing precedence.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	v.AutomaticEnv()
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if path := findConfigFile(cwd); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(GetConfigFileType(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		logrus.Debug("No configuration file found, using defaults")
	}

	bindFlags(v, rootCmd)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	v.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	v.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	v.SetDefault("ai_provider_config.temperature", DefaultConfig.AIProviderConfig.Temperature)
	v.SetDefault("ai_provider_config.max_tokens", DefaultConfig.AIProviderConfig.MaxTokens)
	v.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
	v.SetDefault("ai_provider_config.api_version", DefaultConfig.AIProviderConfig.ApiVersion)

	v.SetDefault("modifier.max_full_file_rewrites", DefaultConfig.Modifier.MaxFullFileRewrites)
	v.SetDefault("modifier.max_targeted_files", DefaultConfig.Modifier.MaxTargetedFiles)
	v.SetDefault("modifier.fallback_candidates", DefaultConfig.Modifier.FallbackCandidates)
	v.SetDefault("modifier.fallback_max_modifications", DefaultConfig.Modifier.FallbackMaxModifications)
	v.SetDefault("modifier.word_boundary_match", DefaultConfig.Modifier.WordBoundaryMatch)
	v.SetDefault("modifier.hybrid_confidence_threshold", DefaultConfig.Modifier.HybridConfidenceThreshold)
	v.SetDefault("modifier.similarity_threshold", DefaultConfig.Modifier.SimilarityThreshold)
	v.SetDefault("modifier.cleanup_timeout", DefaultConfig.Modifier.CleanupTimeout)

	v.SetDefault("cache.enabled", DefaultConfig.Cache.Enabled)
	v.SetDefault("cache.dir", DefaultConfig.Cache.Dir)
	v.SetDefault("storage.db_path", DefaultConfig.Storage.DBPath)
	v.SetDefault("token_budget.max_tokens", DefaultConfig.TokenBudget.MaxTokens)
	v.SetDefault("token_budget.max_cost", DefaultConfig.TokenBudget.MaxCost)
	v.SetDefault("deploy.build_url", DefaultConfig.Deploy.BuildURL)
	v.SetDefault("deploy.poll_interval", DefaultConfig.Deploy.PollInterval)
	v.SetDefault("deploy.max_polls", DefaultConfig.Deploy.MaxPolls)

	v.SetDefault("logging.level", DefaultConfig.Logging.Level)
	v.SetDefault("logging.format", DefaultConfig.Logging.Format)
	v.SetDefault("logging.output", DefaultConfig.Logging.Output)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("ai_provider_config.provider", "PROVIDER")
	_ = v.BindEnv("ai_provider_config.base_url", "BASE_URL")
	_ = v.BindEnv("ai_provider_config.model", "MODEL")
	_ = v.BindEnv("ai_provider_config.temperature", "TEMPERATURE")
	_ = v.BindEnv("ai_provider_config.api_key", "API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("ai_provider_config.api_version", "API_VERSION")
	_ = v.BindEnv("deploy.build_url", "BUILD_URL")
	_ = v.BindEnv("storage.db_path", "REACTFORGE_DB")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	if rootCmd == nil {
		return
	}
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("ai_provider_config.provider", flags.Lookup("provider"))
	_ = v.BindPFlag("ai_provider_config.base_url", flags.Lookup("base_url"))
	_ = v.BindPFlag("ai_provider_config.model", flags.Lookup("model"))
	_ = v.BindPFlag("ai_provider_config.temperature", flags.Lookup("temperature"))
	_ = v.BindPFlag("ai_provider_config.api_key", flags.Lookup("api_key"))
	_ = v.BindPFlag("cache.enabled", flags.Lookup("enable_cache"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log_level"))
	_ = v.BindPFlag("theme", flags.Lookup("theme"))
	_ = v.BindPFlag("modifier.word_boundary_match", flags.Lookup("word_boundary"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider ('anthropic' or 'ollama').")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of the AI provider.")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The name of the completion model.")
	rootCmd.PersistentFlags().Float32("temperature", DefaultConfig.AIProviderConfig.Temperature, "Adjusts the model's creativity (0-1).")
	rootCmd.PersistentFlags().String("api_key", "", "The API key used to authenticate with the AI provider.")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.Cache.Enabled, "Enable or disable the session snapshot cache.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Chroma style used to highlight generated code.")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.Logging.Level, "Log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().Bool("word_boundary", DefaultConfig.Modifier.WordBoundaryMatch, "Require word boundaries in direct text replacement.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

func findConfigFile(cwd string) string {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(cwd, configFileName+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigWithCache returns the cached config while the config file's mtime is unchanged.
func LoadConfigWithCache(rootCmd *cobra.Command, cwd string) (*Config, error) {
	configFilePath := cfgFile
	if configFilePath == "" {
		configFilePath = findConfigFile(cwd)
	}
	if configFilePath == "" {
		return LoadConfigs(rootCmd, cwd)
	}

	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		return LoadConfigs(rootCmd, cwd)
	}

	cacheMutex.RLock()
	if cached, exists := configCache[configFilePath]; exists && fileInfo.ModTime().Equal(cached.modTime) {
		cacheMutex.RUnlock()
		return cached.config, nil
	}
	cacheMutex.RUnlock()

	config, err := LoadConfigs(rootCmd, cwd)
	if err != nil {
		return nil, err
	}

	cacheMutex.Lock()
	configCache[configFilePath] = &configCacheEntry{config: config, modTime: fileInfo.ModTime()}
	cacheMutex.Unlock()

	return config, nil
}

// ClearConfigCache clears all cached configuration files
func ClearConfigCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	configCache = make(map[string]*configCacheEntry)
}
