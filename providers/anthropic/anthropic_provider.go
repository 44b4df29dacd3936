package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/providers/models"
)

const (
	defaultBaseURL    = "https://api.anthropic.com/v1"
	defaultAPIVersion = "2023-06-01"
	defaultMaxTokens  = 8192
)

// AnthropicConfig configures the Anthropic messages provider.
type AnthropicConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	APIVersion  string
	Temperature float32
	MaxTokens   int
	HTTPClient  *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string            `json:"stop_reason"`
	Usage      models.TokenUsage `json:"usage"`
}

type anthropicProvider struct {
	config AnthropicConfig
	client *http.Client
}

// NewAnthropicProvider initializes a provider for the Anthropic messages API.
func NewAnthropicProvider(config *AnthropicConfig) contracts.ICompletionProvider {
	c := *config
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = defaultAPIVersion
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &anthropicProvider{config: c, client: client}
}

func (p *anthropicProvider) Name() string  { return "anthropic" }
func (p *anthropicProvider) Model() string { return p.config.Model }

func (p *anthropicProvider) Complete(ctx context.Context, request models.CompletionRequest) (*models.CompletionResponse, error) {
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxTokens
	}
	temperature := request.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}

	reqBody := anthropicRequest{
		Model:       p.config.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      request.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: request.Prompt}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	url := strings.TrimSuffix(p.config.BaseURL, "/") + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", p.config.APIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("request canceled: %w", err)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError models.AIError
		if err := json.Unmarshal(body, &apiError); err != nil || apiError.Error.Message == "" {
			return nil, fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)
		}
		return nil, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &models.CompletionResponse{Text: text.String(), Usage: response.Usage}, nil
}
