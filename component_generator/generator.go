// Package component_generator adds new pages and components: it learns the
// project's conventions, generates the file, then wires it into routing,
// navigation or the app entry.
package component_generator

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeContracts "github.com/meysamhadeli/reactforge/code_analyzer/contracts"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/component_generator/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/scope_analyzer"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/strategies/emergency"
	"github.com/sirupsen/logrus"
)

const (
	maxTreeNodes    = 30
	maxNameAttempts = 50
)

var (
	identifierPattern  = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	explicitKindWord   = regexp.MustCompile(`(?i)\b(page|component)\b`)
	defaultExportLine  = regexp.MustCompile(`(?m)^export\s+default\s+([A-Z][\w$]*)\s*;?\s*$`)
	generationTemplate = `You write a single new React component file styled with Tailwind CSS.
Follow the project's conventions exactly. Return only the file in one fenced code block.
The component must be named %s and must not import files that do not exist.`
)

type Generator struct {
	provider providerContracts.ICompletionProvider
	analyzer codeContracts.ICodeAnalyzer
}

// NewGenerator builds a generator. A nil provider always uses the built-in templates.
func NewGenerator(provider providerContracts.ICompletionProvider, analyzer codeContracts.ICodeAnalyzer) contracts.IComponentGenerator {
	return &Generator{provider: provider, analyzer: analyzer}
}

// AnalyzeOnly learns the conventions, decides name, kind and location,
// generates the file and writes it. Nothing else in the project changes.
func (g *Generator) AnalyzeOnly(ctx context.Context, basePath, prompt string, hint *models.ComponentAdditionPayload) (*models.GenerationResult, error) {
	start := time.Now()

	snapshot, err := g.analyzer.BuildSnapshot(ctx, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	conv := DetectConventions(snapshot)

	name, kind, confidence := Classify(prompt, hint)
	rel, name, err := placeFile(basePath, snapshot, conv, kind, name)
	if err != nil {
		return nil, err
	}

	result := &models.GenerationResult{
		Name:           name,
		Type:           kind,
		Confidence:     confidence,
		FilePath:       rel,
		ExportStyle:    conv.ExportStyle,
		RoutingLib:     conv.RoutingLib,
		ExistingRoutes: conv.Routes,
	}
	if kind == models.ComponentTypePage {
		result.RoutePath = RouteFor(name)
	}

	content, err := g.generate(ctx, prompt, result, conv, ElementTreeSummary(ctx, snapshot, conv))
	if err != nil {
		logrus.WithFields(logrus.Fields{"strategy": strategies.NameComponentAddition, "file": rel}).Warnf("generation fell back to template: %v", err)
		if content, err = TemplateContent(kind, name, conv.ExportStyle); err != nil {
			return nil, err
		}
	}
	result.Content = content

	if err := strategies.WriteProjectFile(basePath, rel, content); err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

// Run generates then integrates. An integration failure is reported as a
// skip reason, since the new file already exists.
func (g *Generator) Run(ctx context.Context, basePath, prompt string, hint *models.ComponentAdditionPayload) (*models.ComponentDetails, error) {
	start := time.Now()

	generation, err := g.AnalyzeOnly(ctx, basePath, prompt, hint)
	if err != nil {
		return nil, err
	}

	integration, err := g.IntegrateOnly(ctx, basePath, generation)
	if err != nil {
		integration = &models.IntegrationResult{SkipReasons: []string{fmt.Sprintf("integration failed: %v", err)}}
	}

	return &models.ComponentDetails{
		Generation:  generation,
		Integration: integration,
		Duration:    time.Since(start),
	}, nil
}

// Classify decides name, kind and confidence. A scope payload wins over
// prompt heuristics; app requests are generated as pages.
func Classify(prompt string, hint *models.ComponentAdditionPayload) (string, models.ComponentType, float64) {
	var name string
	var kind models.ComponentType
	confidence := 0.6
	if hint != nil {
		name, kind = hint.Name, hint.Type
		confidence = 0.9
	}
	if !identifierPattern.MatchString(name) {
		name = scope_analyzer.ExtractComponentName(prompt)
	}
	if kind == "" {
		kind = scope_analyzer.DetectComponentType(prompt)
		if explicitKindWord.MatchString(prompt) {
			confidence = 0.85
		}
	}
	if kind == models.ComponentTypeApp {
		kind = models.ComponentTypePage
	}
	return name, kind, confidence
}

func placeFile(basePath string, snapshot *codeModels.ProjectSnapshot, conv Conventions, kind models.ComponentType, name string) (string, string, error) {
	if kind == models.ComponentTypePage && conv.RoutingLib == RoutingNext {
		if appDir := nextAppDir(snapshot); appDir != "" {
			route := strings.TrimPrefix(RouteFor(name), "/")
			for i := 1; i <= maxNameAttempts; i++ {
				segment := route
				if i > 1 {
					segment = fmt.Sprintf("%s-%d", route, i)
				}
				rel := path.Join(appDir, segment, "page"+conv.Extension)
				if !strategies.FileExists(basePath, rel) {
					return rel, name, nil
				}
			}
			return "", "", fmt.Errorf("no free route directory for %s", name)
		}
	}

	dir := conv.ComponentsDir
	if kind == models.ComponentTypePage {
		dir = conv.PagesDir
	}
	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		if i > 1 {
			candidate = fmt.Sprintf("%s%d", name, i)
		}
		rel := path.Join(dir, candidate+conv.Extension)
		if !strategies.FileExists(basePath, rel) {
			return rel, candidate, nil
		}
	}
	return "", "", fmt.Errorf("no free file name for %s", name)
}

func nextAppDir(snapshot *codeModels.ProjectSnapshot) string {
	for _, dir := range []string{"src/app", "app"} {
		for _, rel := range snapshot.Paths() {
			if strings.HasPrefix(rel, dir+"/") {
				return dir
			}
		}
	}
	return ""
}

func (g *Generator) generate(ctx context.Context, prompt string, result *models.GenerationResult, conv Conventions, tree string) (string, error) {
	if g.provider == nil {
		return "", fmt.Errorf("no completion provider")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\n", prompt)
	fmt.Fprintf(&b, "Create %s as a %s at %s.\n", result.Name, result.Type, result.FilePath)
	fmt.Fprintf(&b, "Export style: %s export.\n", conv.ExportStyle)
	fmt.Fprintf(&b, "Routing: %s.\n", conv.RoutingLib)
	if len(conv.Routes) > 0 {
		fmt.Fprintf(&b, "Existing routes: %s\n", strings.Join(conv.Routes, ", "))
	}
	if tree != "" {
		fmt.Fprintf(&b, "\nExisting layout:\n%s\n", tree)
	}

	response, err := g.provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: fmt.Sprintf(generationTemplate, result.Name),
		Prompt:       b.String(),
	})
	if err != nil {
		return "", err
	}
	code, err := code_analyzer.ExtractCodeBlock(response.Text)
	if err != nil {
		return "", err
	}
	if !regexp.MustCompile(`\b` + regexp.QuoteMeta(result.Name) + `\b`).MatchString(code) {
		return "", fmt.Errorf("generated code does not define %s", result.Name)
	}
	if code_analyzer.HasSyntaxErrors(ctx, result.FilePath, []byte(code)) {
		return "", fmt.Errorf("generated code for %s does not parse", result.Name)
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return code, nil
}

// TemplateContent renders the built-in template in the project's export style.
func TemplateContent(kind models.ComponentType, name, exportStyle string) (string, error) {
	content, err := emergency.Render(kind, name)
	if err != nil {
		return "", err
	}
	if exportStyle == ExportNamed {
		content = defaultExportLine.ReplaceAllString(content, "")
		content = strings.Replace(content, "const "+name+" = ", "export const "+name+" = ", 1)
		content = strings.TrimRight(content, "\n") + "\n"
	}
	return content, nil
}

// ElementTreeSummary outlines the JSX of the entry, routing and navigation
// files as indented tags with their visible text.
func ElementTreeSummary(ctx context.Context, snapshot *codeModels.ProjectSnapshot, conv Conventions) string {
	seen := make(map[string]bool)
	var b strings.Builder
	for _, rel := range []string{conv.EntryFile, conv.RoutingFile, conv.NavFile} {
		if rel == "" || seen[rel] {
			continue
		}
		seen[rel] = true
		f, ok := snapshot.Get(rel)
		if !ok {
			continue
		}
		nodes, err := code_analyzer.ParseJSXNodes(ctx, rel, []byte(f.Content))
		if err != nil || len(nodes) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s:\n", rel)
		shown := 0
		for _, n := range nodes {
			if n.Kind != codeModels.NodeElement {
				continue
			}
			if shown == maxTreeNodes {
				b.WriteString("  ...\n")
				break
			}
			shown++
			line := strings.Repeat("  ", n.Depth+1) + "<" + n.TagName + ">"
			if n.Text != "" && len(n.Text) <= 40 {
				line += " " + fmt.Sprintf("%q", n.Text)
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
