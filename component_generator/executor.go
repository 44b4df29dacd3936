package component_generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/reactforge/component_generator/contracts"
	fmContracts "github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/strategies"
)

// Executor runs the two-step workflow as the component addition strategy.
type Executor struct {
	generator contracts.IComponentGenerator
}

func NewExecutor(generator contracts.IComponentGenerator) fmContracts.IStrategyExecutor {
	return &Executor{generator: generator}
}

func (e *Executor) Name() string { return strategies.NameComponentAddition }

// Execute returns an error when nothing could be generated, so the
// dispatcher can try the emergency template.
func (e *Executor) Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	var hint *models.ComponentAdditionPayload
	if request.Scope != nil {
		hint = request.Scope.Component
	}
	details, err := e.generator.Run(ctx, request.BasePath, request.Prompt, hint)
	if err != nil {
		return nil, fmt.Errorf("component generation failed: %w", err)
	}
	gen, integ := details.Generation, details.Integration

	result := &models.StrategyResult{
		Success:       true,
		AddedFiles:    []string{gen.FilePath},
		ModifiedFiles: integ.ModifiedFiles,
		Component:     details,
	}
	result.Changes = append(result.Changes, strategies.NewChange(models.ChangeCreated, gen.FilePath, e.Name(),
		fmt.Sprintf("created %s %s", gen.Type, gen.Name), true,
		&models.ChangeDetails{LinesChanged: strings.Count(gen.Content, "\n"), Components: []string{gen.Name}, Reasoning: fmt.Sprintf("confidence %.2f", gen.Confidence)}))

	for _, rel := range integ.ModifiedFiles {
		result.Changes = append(result.Changes, strategies.NewChange(models.ChangeUpdated, rel, e.Name(),
			fmt.Sprintf("wired in %s", gen.Name), true,
			&models.ChangeDetails{Components: []string{gen.Name}, Reasoning: wiringSummary(integ)}))
	}

	result.Reasoning = fmt.Sprintf("created %s", gen.FilePath)
	if len(integ.ModifiedFiles) > 0 {
		result.Reasoning += fmt.Sprintf("; updated %s", strings.Join(integ.ModifiedFiles, ", "))
	}
	if len(integ.SkipReasons) > 0 {
		result.Reasoning += fmt.Sprintf("; skipped: %s", strings.Join(integ.SkipReasons, "; "))
	}
	return result, nil
}

func wiringSummary(integ *models.IntegrationResult) string {
	var parts []string
	if integ.RouteAdded {
		parts = append(parts, "route")
	}
	if integ.NavLinkAdded {
		parts = append(parts, "nav link")
	}
	if integ.UsageAdded {
		parts = append(parts, "usage")
	}
	if len(parts) == 0 {
		return "wiring"
	}
	return strings.Join(parts, " and ") + " added"
}
