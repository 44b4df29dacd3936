package models

import (
	"time"

	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	tokenContracts "github.com/meysamhadeli/reactforge/token_management/contracts"
)

// StrategyRequest is the input shared by every strategy executor.
type StrategyRequest struct {
	Prompt              string
	Scope               *ModificationScope
	Snapshot            *codeModels.ProjectSnapshot
	BasePath            string
	ConversationContext string
}

// TailwindDetails describes a Tailwind config patch.
type TailwindDetails struct {
	ConfigPath string   `json:"configPath" yaml:"configPath"`
	Created    bool     `json:"created" yaml:"created"`
	Diff       string   `json:"diff,omitempty" yaml:"diff,omitempty"`
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// GenerationResult is the output of the component analysis and generation step.
type GenerationResult struct {
	Name           string        `json:"name" yaml:"name"`
	Type           ComponentType `json:"type" yaml:"type"`
	Confidence     float64       `json:"confidence" yaml:"confidence"`
	FilePath       string        `json:"filePath" yaml:"filePath"`
	Content        string        `json:"-" yaml:"-"`
	RoutePath      string        `json:"routePath,omitempty" yaml:"routePath,omitempty"`
	ExportStyle    string        `json:"exportStyle" yaml:"exportStyle"`
	RoutingLib     string        `json:"routingLib" yaml:"routingLib"`
	ExistingRoutes []string      `json:"existingRoutes,omitempty" yaml:"existingRoutes,omitempty"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
}

// IntegrationResult is the output of the wiring step.
type IntegrationResult struct {
	ModifiedFiles []string      `json:"modifiedFiles" yaml:"modifiedFiles"`
	SkipReasons   []string      `json:"skipReasons,omitempty" yaml:"skipReasons,omitempty"`
	RouteAdded    bool          `json:"routeAdded" yaml:"routeAdded"`
	NavLinkAdded  bool          `json:"navLinkAdded" yaml:"navLinkAdded"`
	UsageAdded    bool          `json:"usageAdded" yaml:"usageAdded"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

type ComponentDetails struct {
	Generation  *GenerationResult  `json:"generation,omitempty" yaml:"generation,omitempty"`
	Integration *IntegrationResult `json:"integration,omitempty" yaml:"integration,omitempty"`
	Duration    time.Duration      `json:"duration" yaml:"duration"`
}

// StrategyResult is what one executor reports. Changes lists every file
// write attempt, successful or not, for the ledger.
type StrategyResult struct {
	Success       bool
	ModifiedFiles []string
	AddedFiles    []string
	Reasoning     string
	Changes       []ModificationChange
	Tailwind      *TailwindDetails
	Component     *ComponentDetails
}

// DispatchState names a step of the dispatcher state machine.
type DispatchState string

const (
	StateInitializing  DispatchState = "Initializing"
	StateSnapshotReady DispatchState = "SnapshotReady"
	StateScopeAnalyzed DispatchState = "ScopeAnalyzed"
	StateExecuting     DispatchState = "Executing"
	StateFallback      DispatchState = "Fallback"
	StateEmergency     DispatchState = "Emergency"
	StateCompleted     DispatchState = "Completed"
	StateFailed        DispatchState = "Failed"
)

// ModificationResult is the single value returned to callers of ProcessModification.
type ModificationResult struct {
	Success       bool                          `json:"success" yaml:"success"`
	SelectedFiles []string                      `json:"selectedFiles" yaml:"selectedFiles"`
	AddedFiles    []string                      `json:"addedFiles" yaml:"addedFiles"`
	Approach      string                        `json:"approach" yaml:"approach"`
	Reasoning     string                        `json:"reasoning" yaml:"reasoning"`
	Error         string                        `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorTrail    []string                      `json:"errorTrail,omitempty" yaml:"errorTrail,omitempty"`
	Scope         *ModificationScope            `json:"scope,omitempty" yaml:"scope,omitempty"`
	TokenUsage    *tokenContracts.TokenSnapshot `json:"tokenUsage,omitempty" yaml:"tokenUsage,omitempty"`
	Tailwind      *TailwindDetails              `json:"tailwind,omitempty" yaml:"tailwind,omitempty"`
	Component     *ComponentDetails             `json:"component,omitempty" yaml:"component,omitempty"`
	StateTrail    []DispatchState               `json:"stateTrail" yaml:"stateTrail"`
	Duration      time.Duration                 `json:"duration" yaml:"duration"`
}
