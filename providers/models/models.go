package models

// CompletionRequest is a single text-completion call.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
	MaxTokens    int
	Temperature  float32
}

// TokenUsage is the usage reported by the provider for one call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CompletionResponse holds the raw completion text and its usage.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
}

// AIError is the error envelope returned by the HTTP providers.
type AIError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
