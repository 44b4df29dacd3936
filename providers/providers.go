package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meysamhadeli/reactforge/providers/anthropic"
	"github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/providers/ollama"
	tokenContracts "github.com/meysamhadeli/reactforge/token_management/contracts"
	"github.com/sirupsen/logrus"
)

// ErrEmptyResponse is returned when the completion service answers with no text.
var ErrEmptyResponse = errors.New("empty completion response")

// AIProviderConfig holds the completion service settings.
type AIProviderConfig struct {
	Provider    string  `mapstructure:"provider"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	ApiVersion  string  `mapstructure:"api_version"`
	ApiKey      string  `mapstructure:"api_key"`
}

// ProviderFactory creates the configured completion provider wrapped with token tracking.
func ProviderFactory(config *AIProviderConfig, tokenManagement tokenContracts.ITokenManagement) (contracts.ICompletionProvider, error) {
	var provider contracts.ICompletionProvider

	switch strings.ToLower(config.Provider) {
	case "anthropic":
		provider = anthropic.NewAnthropicProvider(&anthropic.AnthropicConfig{
			BaseURL:     config.BaseURL,
			Model:       config.Model,
			APIKey:      config.ApiKey,
			APIVersion:  config.ApiVersion,
			Temperature: config.Temperature,
			MaxTokens:   config.MaxTokens,
		})
	case "ollama":
		p, err := ollama.NewOllamaProvider(&ollama.OllamaConfig{
			BaseURL: config.BaseURL,
			Model:   config.Model,
		})
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}

	return NewTrackedProvider(provider, tokenManagement), nil
}

type trackedProvider struct {
	inner           contracts.ICompletionProvider
	tokenManagement tokenContracts.ITokenManagement
}

// NewTrackedProvider records every call's usage into the token tracker and
// turns blank answers into ErrEmptyResponse.
func NewTrackedProvider(inner contracts.ICompletionProvider, tokenManagement tokenContracts.ITokenManagement) contracts.ICompletionProvider {
	return &trackedProvider{inner: inner, tokenManagement: tokenManagement}
}

func (t *trackedProvider) Name() string  { return t.inner.Name() }
func (t *trackedProvider) Model() string { return t.inner.Model() }

func (t *trackedProvider) Complete(ctx context.Context, request models.CompletionRequest) (*models.CompletionResponse, error) {
	response, err := t.inner.Complete(ctx, request)
	if err != nil {
		return nil, err
	}

	if t.tokenManagement != nil {
		t.tokenManagement.UsedTokens(response.Usage.InputTokens, response.Usage.OutputTokens)
	}
	logrus.WithFields(logrus.Fields{
		"provider": t.inner.Name(),
		"input":    response.Usage.InputTokens,
		"output":   response.Usage.OutputTokens,
	}).Debug("completion finished")

	if strings.TrimSpace(response.Text) == "" {
		return nil, ErrEmptyResponse
	}
	return response, nil
}
