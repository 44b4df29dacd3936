// Package mock provides a scripted completion provider for tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/meysamhadeli/reactforge/providers/models"
)

// Provider replays queued responses in order. When the queue is empty it
// uses Handler if set, otherwise it fails.
type Provider struct {
	mu        sync.Mutex
	responses []Response
	Handler   func(request models.CompletionRequest) (string, error)
	Requests  []models.CompletionRequest
}

// Response is one scripted answer.
type Response struct {
	Text string
	Err  error
}

func New(responses ...string) *Provider {
	p := &Provider{}
	for _, r := range responses {
		p.responses = append(p.responses, Response{Text: r})
	}
	return p
}

// Failing returns a provider whose every call fails with err.
func Failing(err error) *Provider {
	return &Provider{Handler: func(models.CompletionRequest) (string, error) { return "", err }}
}

func (p *Provider) Enqueue(responses ...Response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, responses...)
}

func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

func (p *Provider) Name() string  { return "mock" }
func (p *Provider) Model() string { return "mock-model" }

func (p *Provider) Complete(ctx context.Context, request models.CompletionRequest) (*models.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.Requests = append(p.Requests, request)
	var next *Response
	if len(p.responses) > 0 {
		next = &p.responses[0]
		p.responses = p.responses[1:]
	}
	handler := p.Handler
	p.mu.Unlock()

	var text string
	var err error
	switch {
	case next != nil:
		text, err = next.Text, next.Err
	case handler != nil:
		text, err = handler(request)
	default:
		err = fmt.Errorf("mock provider: no scripted response")
	}
	if err != nil {
		return nil, err
	}

	return &models.CompletionResponse{
		Text: text,
		Usage: models.TokenUsage{
			InputTokens:  len(request.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}
