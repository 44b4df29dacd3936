package contracts

import (
	"context"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
)

// IStrategyExecutor is implemented once per mutation strategy. A returned
// error escalates to the next tier; Success=false is a reported failure.
type IStrategyExecutor interface {
	Name() string
	Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error)
}

// IScopeAnalyzer classifies a prompt. It never fails.
type IScopeAnalyzer interface {
	AnalyzeScope(ctx context.Context, prompt, projectSummary, conversationContext, dbSummary string) *models.ModificationScope
}

// ISessionCache is the session key-value store.
type ISessionCache interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, bool, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	AppendToList(ctx context.Context, sessionID, listKey string, item []byte) error
	GetList(ctx context.Context, sessionID, listKey string) ([][]byte, error)
	Clear(ctx context.Context, sessionID string) error
}

// IProjectStore persists request summaries and the accumulated project summary.
type IProjectStore interface {
	SaveModificationSummary(ctx context.Context, summary *models.ModificationSummary) error
	GetProjectSummary(ctx context.Context, projectID string) (string, error)
	SaveProjectSummary(ctx context.Context, projectID, summary string) error
}

// ILedger is the append-only per-session change log.
type ILedger interface {
	Append(change models.ModificationChange) models.ModificationChange
	Changes() []models.ModificationChange
	ContextSummary(limit int) string
	Stats(recent int) models.LedgerStats
	Clear()
}

// IFileModifier is the single entry point of the modification pipeline. It
// never returns an error: every failure is reported inside the result.
type IFileModifier interface {
	ProcessModification(ctx context.Context, prompt string, options models.ProcessOptions) *models.ModificationResult
	SessionID() string
	Ledger() ILedger
	Reset(ctx context.Context) error
}
