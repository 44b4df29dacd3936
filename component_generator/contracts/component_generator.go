package contracts

import (
	"context"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
)

// IComponentGenerator adds a new page or component in two steps that can
// also be run on their own.
type IComponentGenerator interface {
	AnalyzeOnly(ctx context.Context, basePath, prompt string, hint *models.ComponentAdditionPayload) (*models.GenerationResult, error)
	IntegrateOnly(ctx context.Context, basePath string, generation *models.GenerationResult) (*models.IntegrationResult, error)
	Run(ctx context.Context, basePath, prompt string, hint *models.ComponentAdditionPayload) (*models.ComponentDetails, error)
}
