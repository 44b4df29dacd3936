package contracts

import (
	"context"

	"github.com/meysamhadeli/reactforge/providers/models"
)

// ICompletionProvider is the black-box LLM text-completion service.
type ICompletionProvider interface {
	Complete(ctx context.Context, request models.CompletionRequest) (*models.CompletionResponse, error)
	Name() string
	Model() string
}
