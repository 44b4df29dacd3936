package contracts

import (
	"context"

	"github.com/meysamhadeli/reactforge/deploy/models"
)

type IPackager interface {
	Bundle(root string) (*models.Bundle, error)
}

// IBuildTrigger hands a bundle to the remote build pipeline and waits for
// the result.
type IBuildTrigger interface {
	Trigger(ctx context.Context, projectID string, bundle *models.Bundle) (*models.BuildResult, error)
}
