package ollama

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JexSrs/go-ollama"
	"github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/providers/models"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "http://localhost:11434"

// OllamaConfig configures a local Ollama completion provider.
type OllamaConfig struct {
	BaseURL string
	Model   string
}

type ollamaProvider struct {
	client *ollama.Ollama
	model  string
}

// NewOllamaProvider builds a completion provider backed by the Ollama generate endpoint.
func NewOllamaProvider(config *OllamaConfig) (contracts.ICompletionProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// go-ollama appends its own /api prefix
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/api")

	ollamaURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}

	logrus.Debugf("Using Ollama host %s with model %s", baseURL, config.Model)

	return &ollamaProvider{
		client: ollama.New(*ollamaURL),
		model:  config.Model,
	}, nil
}

func (p *ollamaProvider) Name() string  { return "ollama" }
func (p *ollamaProvider) Model() string { return p.model }

func (p *ollamaProvider) Complete(ctx context.Context, request models.CompletionRequest) (*models.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		res, err := p.client.Generate(
			p.client.Generate.WithModel(p.model),
			p.client.Generate.WithSystem(request.SystemPrompt),
			p.client.Generate.WithPrompt(request.Prompt),
		)
		if err != nil {
			done <- result{err: fmt.Errorf("ollama generate failed: %w", err)}
			return
		}
		if !res.Done {
			done <- result{err: fmt.Errorf("ollama generate returned an unfinished response")}
			return
		}
		done <- result{text: res.Response}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &models.CompletionResponse{
			Text: r.text,
			Usage: models.TokenUsage{
				InputTokens:  estimateTokens(request.SystemPrompt) + estimateTokens(request.Prompt),
				OutputTokens: estimateTokens(r.text),
			},
		}, nil
	}
}

// estimateTokens approximates a token count at four characters per token.
func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}
