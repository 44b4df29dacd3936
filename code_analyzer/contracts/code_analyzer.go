package contracts

import (
	"context"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
)

type ICodeAnalyzer interface {
	BuildSnapshot(ctx context.Context, rootDir string) (*models.ProjectSnapshot, error)
	RefreshFiles(ctx context.Context, snapshot *models.ProjectSnapshot, relativePaths []string) error
	AnalyzeFile(ctx context.Context, rootDir string, relativePath string) (*models.ProjectFile, error)
	ParseJSXNodes(ctx context.Context, relativePath string, content []byte) ([]models.JSXNode, error)
	RankFiles(snapshot *models.ProjectSnapshot, prompt string, limit int) []*models.ProjectFile
	ClearCache() error
	CleanExpiredCache(maxAge time.Duration) (int, error)
	GetCacheStats() (map[string]interface{}, error)
}
