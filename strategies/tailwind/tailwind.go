package tailwind

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	"github.com/meysamhadeli/reactforge/embed_data"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
)

// ConfigCandidates are checked in order at the project root.
var ConfigCandidates = []string{"tailwind.config.ts", "tailwind.config.js", "tailwind.config.mjs", "tailwind.config.cjs"}

const defaultConfigPath = "tailwind.config.js"

const systemPrompt = `You update Tailwind CSS configuration files.
Return the COMPLETE updated config in one fenced code block.
Rules:
- keep the export (export default or module.exports) and every content entry
- keep a theme block; put colors under theme.extend.colors
- use literal hex colors only; never use CSS variables such as var(--x) or hsl(var(--x))`

// Processor patches the Tailwind config with color directives.
type Processor struct {
	provider providerContracts.ICompletionProvider
}

// NewProcessor accepts a nil provider; directives are then injected
// deterministically.
func NewProcessor(provider providerContracts.ICompletionProvider) contracts.IStrategyExecutor {
	return &Processor{provider: provider}
}

func (p *Processor) Name() string { return strategies.NameTailwind }

func (p *Processor) Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	if request.Scope == nil || request.Scope.Tailwind == nil {
		return strategies.Failed("no color directives in scope", nil), nil
	}
	changes := ResolveChanges(request.Scope.Tailwind.Changes)
	if len(changes) == 0 {
		return strategies.Failed("no color directive could be resolved to a literal color", nil), nil
	}

	configPath := LocateConfig(request.BasePath)
	if configPath == "" {
		return p.createConfig(request.BasePath, changes)
	}

	before, err := strategies.ReadProjectFile(request.BasePath, configPath)
	if err != nil {
		return nil, err
	}

	after, source, violations := p.patch(ctx, request.Prompt, configPath, before, changes)
	details := &models.TailwindDetails{ConfigPath: configPath, Violations: violations}
	if len(violations) > 0 {
		change := strategies.NewChange(models.ChangeModified, configPath, p.Name(), "config update rejected", false,
			&models.ChangeDetails{Reasoning: strings.Join(violations, "; ")})
		return &models.StrategyResult{
			Reasoning: fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(violations, ", ")),
			Changes:   []models.ModificationChange{change},
			Tailwind:  details,
		}, nil
	}
	if after == before {
		return &models.StrategyResult{Reasoning: "config already has the requested colors", Tailwind: details}, nil
	}

	if err := strategies.WriteProjectFile(request.BasePath, configPath, after); err != nil {
		return nil, err
	}
	details.Diff = utils.LineDiff(configPath, before, after, 2)

	change := strategies.NewChange(models.ChangeModified, configPath, p.Name(), describe(changes), true,
		&models.ChangeDetails{LinesChanged: strategies.ChangedLines(before, after), Reasoning: "theme colors updated via " + source})
	return &models.StrategyResult{
		Success:       true,
		ModifiedFiles: []string{configPath},
		Reasoning:     fmt.Sprintf("updated %d theme color(s) in %s", len(changes), configPath),
		Changes:       []models.ModificationChange{change},
		Tailwind:      details,
	}, nil
}

// patch asks the model for the new config and falls back to deterministic
// injection when no model answer is available. Malformed answers are not
// retried: they are reported as violations.
func (p *Processor) patch(ctx context.Context, prompt, configPath, before string, changes []models.ColorChange) (string, string, []string) {
	if p.provider != nil {
		response, err := p.provider.Complete(ctx, providerModels.CompletionRequest{
			SystemPrompt: systemPrompt,
			Prompt:       buildPrompt(prompt, configPath, before, changes),
		})
		if err == nil {
			return checkCandidate(before, response.Text, changes, "model")
		}
		logrus.WithFields(logrus.Fields{"strategy": strategies.NameTailwind, "file": configPath}).Warnf("model config update failed, injecting colors directly: %v", err)
	}

	after, err := InjectColors(before, changes)
	if err != nil {
		return "", "injection", []string{err.Error()}
	}
	ok, violations := ValidateTailwindConfig(after)
	if !ok {
		return "", "injection", violations
	}
	return after, "injection", nil
}

func checkCandidate(before, response string, changes []models.ColorChange, source string) (string, string, []string) {
	after, err := code_analyzer.ExtractCodeBlock(response)
	if err != nil {
		return "", source, []string{"no config in model response"}
	}
	_, violations := ValidateTailwindConfig(after)
	violations = append(violations, missingContent(before, after)...)

	lower := strings.ToLower(after)
	for _, c := range changes {
		if !strings.Contains(lower, strings.ToLower(c.Hex)) {
			violations = append(violations, fmt.Sprintf("%s color %s not applied", c.Type, c.Hex))
		}
	}
	return after, source, violations
}

func (p *Processor) createConfig(basePath string, changes []models.ColorChange) (*models.StrategyResult, error) {
	config := RenderTemplate(changes)
	if ok, violations := ValidateTailwindConfig(config); !ok {
		return nil, fmt.Errorf("%w: template %s", ErrInvalidConfig, strings.Join(violations, ", "))
	}
	if err := strategies.WriteProjectFile(basePath, defaultConfigPath, config); err != nil {
		return nil, err
	}

	change := strategies.NewChange(models.ChangeCreated, defaultConfigPath, p.Name(), "created Tailwind config: "+describe(changes), true,
		&models.ChangeDetails{LinesChanged: strings.Count(config, "\n"), Reasoning: "no Tailwind config found"})
	return &models.StrategyResult{
		Success:    true,
		AddedFiles: []string{defaultConfigPath},
		Reasoning:  "created Tailwind config with requested theme colors",
		Changes:    []models.ModificationChange{change},
		Tailwind: &models.TailwindDetails{
			ConfigPath: defaultConfigPath,
			Created:    true,
			Diff:       utils.LineDiff(defaultConfigPath, "", config, 2),
		},
	}, nil
}

// RenderTemplate fills the built-in config template with color entries.
func RenderTemplate(changes []models.ColorChange) string {
	return strings.Replace(string(embed_data.TailwindConfigTemplate), "{{COLORS}}", renderColorEntries(changes, "        "), 1)
}

// LocateConfig returns the relative path of the project's Tailwind config, or "".
func LocateConfig(basePath string) string {
	for _, name := range ConfigCandidates {
		if strategies.FileExists(basePath, name) {
			return name
		}
	}
	return ""
}

func buildPrompt(prompt, configPath, config string, changes []models.ColorChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\nColor directives (use these exact values):\n", prompt)
	for _, c := range changes {
		fmt.Fprintf(&b, "%s\n", RenderColorEntry(c, ""))
	}
	fmt.Fprintf(&b, "\nFile: %s\n```js\n%s\n```\n", configPath, config)
	return b.String()
}

func describe(changes []models.ColorChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s -> %s (%s)", c.Type, c.Color, c.Hex))
	}
	return strings.Join(parts, ", ")
}
