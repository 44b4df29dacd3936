// Package emergency writes a fixed, buildable page or component when every
// other tier has failed. It never calls a model.
package emergency

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"text/template"

	"github.com/meysamhadeli/reactforge/embed_data"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/scope_analyzer"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/sirupsen/logrus"
)

const maxNameAttempts = 50

var (
	pageTemplate      = template.Must(template.New("page").Parse(string(embed_data.PageTemplate)))
	componentTemplate = template.Must(template.New("component").Parse(string(embed_data.ComponentTemplate)))

	identifierPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	wordSplitPattern  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

type templateData struct {
	Name  string
	Title string
}

// Creator is the emergency executor.
type Creator struct{}

func NewCreator() contracts.IStrategyExecutor {
	return &Creator{}
}

func (c *Creator) Name() string { return strategies.NameEmergency }

func (c *Creator) Execute(_ context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	name, kind := Target(request.Prompt, request.Scope)

	rel, name, err := FreePath(request.BasePath, kind, name)
	if err != nil {
		return strategies.Failed(err.Error(), nil), nil
	}

	content, err := Render(kind, name)
	if err != nil {
		return nil, err
	}
	if err := strategies.WriteProjectFile(request.BasePath, rel, content); err != nil {
		change := strategies.NewChange(models.ChangeCreated, rel, c.Name(), "emergency template write failed", false,
			&models.ChangeDetails{Reasoning: err.Error()})
		return strategies.Failed(err.Error(), []models.ModificationChange{change}), nil
	}

	logrus.WithFields(logrus.Fields{"strategy": c.Name(), "file": rel}).Info("created emergency template")

	change := strategies.NewChange(models.ChangeCreated, rel, c.Name(), fmt.Sprintf("created %s %s from template", kind, name), true,
		&models.ChangeDetails{Components: []string{name}, Reasoning: "emergency template"})
	return &models.StrategyResult{
		Success:    true,
		AddedFiles: []string{rel},
		Reasoning:  fmt.Sprintf("created %s from the built-in %s template", rel, kind),
		Changes:    []models.ModificationChange{change},
	}, nil
}

// Target picks the component name and kind, preferring the scope payload.
// App requests become pages.
func Target(prompt string, scope *models.ModificationScope) (string, models.ComponentType) {
	var name string
	var kind models.ComponentType
	if scope != nil && scope.Component != nil {
		name, kind = scope.Component.Name, scope.Component.Type
	}
	if !identifierPattern.MatchString(name) {
		name = scope_analyzer.ExtractComponentName(prompt)
	}
	if kind == "" {
		kind = scope_analyzer.DetectComponentType(prompt)
	}
	if kind == models.ComponentTypeApp {
		kind = models.ComponentTypePage
	}
	if !identifierPattern.MatchString(name) {
		name = "NewComponent"
		if kind == models.ComponentTypePage {
			name = "NewPage"
		}
	}
	return name, kind
}

// Dir is where a kind of file lives.
func Dir(kind models.ComponentType) string {
	if kind == models.ComponentTypePage {
		return "src/pages"
	}
	return "src/components"
}

// FreePath returns a path that does not exist yet, suffixing the name with
// 2, 3, ... when needed.
func FreePath(basePath string, kind models.ComponentType, name string) (string, string, error) {
	candidate := name
	for i := 1; i <= maxNameAttempts; i++ {
		if i > 1 {
			candidate = fmt.Sprintf("%s%d", name, i)
		}
		rel := path.Join(Dir(kind), candidate+".tsx")
		if !strategies.FileExists(basePath, rel) {
			return rel, candidate, nil
		}
	}
	return "", "", fmt.Errorf("no free file name for %s", name)
}

// Render fills the built-in page or component template.
func Render(kind models.ComponentType, name string) (string, error) {
	tmpl := componentTemplate
	if kind == models.ComponentTypePage || kind == models.ComponentTypeApp {
		tmpl = pageTemplate
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Name: name, Title: Title(name)}); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", kind, err)
	}
	return buf.String(), nil
}

// Title splits a PascalCase name into words: ContactUs -> "Contact Us".
func Title(name string) string {
	return strings.TrimSpace(wordSplitPattern.ReplaceAllString(name, "$1 $2"))
}
