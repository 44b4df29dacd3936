package component_generator

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/strategies/emergency"
	"github.com/sirupsen/logrus"
)

var (
	navLinkLinePattern = regexp.MustCompile(`(?m)^([ \t]*)(<(Link|NavLink|a)\b[^>]*\b(to|href)=(\{?["'\x60])([^"'\x60]*)(["'\x60]\}?)[^>]*>)([^<]*)(</(?:Link|NavLink|a)>)[ \t]*$`)
	linkTargetPattern  = regexp.MustCompile(`\b(?:to|href)=\{?["'\x60]([^"'\x60]+)["'\x60]`)
)

// wiringStep names one integration step so its flag can follow the file it edited.
type wiringStep int

const (
	stepRoute wiringStep = iota
	stepNavLink
	stepUsage
)

// fileEdits accumulates edits per file so several steps touching the same
// file are written once.
type fileEdits struct {
	basePath string
	original map[string]string
	current  map[string]string
	steps    map[string][]wiringStep
	order    []string
}

func (e *fileEdits) get(rel string) (string, error) {
	if c, ok := e.current[rel]; ok {
		return c, nil
	}
	content, err := strategies.ReadProjectFile(e.basePath, rel)
	if err != nil {
		return "", err
	}
	e.original[rel] = content
	e.current[rel] = content
	e.order = append(e.order, rel)
	return content, nil
}

func (e *fileEdits) set(rel, content string, step wiringStep) {
	e.current[rel] = content
	e.steps[rel] = append(e.steps[rel], step)
}

// markWired sets the result flag of a step whose file was written.
func markWired(result *models.IntegrationResult, step wiringStep) {
	switch step {
	case stepRoute:
		result.RouteAdded = true
	case stepNavLink:
		result.NavLinkAdded = true
	case stepUsage:
		result.UsageAdded = true
	}
}

// IntegrateOnly wires an already generated file into the project: a route
// and a navigation link for pages, an import and usage for components.
// Steps that would duplicate existing wiring are skipped with a reason.
func (g *Generator) IntegrateOnly(ctx context.Context, basePath string, generation *models.GenerationResult) (*models.IntegrationResult, error) {
	start := time.Now()
	if generation == nil || generation.Name == "" || generation.FilePath == "" {
		return nil, fmt.Errorf("generation result is incomplete")
	}

	generated, err := strategies.ReadProjectFile(basePath, generation.FilePath)
	if err != nil {
		return nil, fmt.Errorf("generated file is missing: %w", err)
	}
	snapshot, err := g.analyzer.BuildSnapshot(ctx, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	conv := DetectConventions(snapshot)

	result := &models.IntegrationResult{}
	edits := &fileEdits{basePath: basePath, original: map[string]string{}, current: map[string]string{}, steps: map[string][]wiringStep{}}
	skip := func(format string, args ...any) {
		result.SkipReasons = append(result.SkipReasons, fmt.Sprintf(format, args...))
	}
	defaultExport := defaultExportLine.MatchString(generated) || strings.Contains(generated, "export default function "+generation.Name)

	if generation.Type == models.ComponentTypePage {
		route := generation.RoutePath
		if route == "" {
			route = RouteFor(generation.Name)
		}
		g.registerRoute(edits, conv, generation, route, defaultExport, skip)
		g.addNavLink(edits, conv, generation, route, skip)
	} else {
		g.addUsage(ctx, edits, conv, generation, defaultExport, skip)
	}

	for _, rel := range edits.order {
		before, after := edits.original[rel], edits.current[rel]
		if before == after {
			continue
		}
		if code_analyzer.HasSyntaxErrors(ctx, rel, []byte(after)) && !code_analyzer.HasSyntaxErrors(ctx, rel, []byte(before)) {
			skip("edits to %s would break its syntax", rel)
			continue
		}
		if err := strategies.WriteProjectFile(basePath, rel, after); err != nil {
			skip("%v", err)
			continue
		}
		result.ModifiedFiles = append(result.ModifiedFiles, rel)
		for _, step := range edits.steps[rel] {
			markWired(result, step)
		}
	}

	logrus.WithFields(logrus.Fields{"strategy": strategies.NameComponentAddition, "file": generation.FilePath}).
		Debugf("integrated into %v, skipped %v", result.ModifiedFiles, result.SkipReasons)
	result.Duration = time.Since(start)
	return result, nil
}

func (g *Generator) registerRoute(edits *fileEdits, conv Conventions, gen *models.GenerationResult, route string, defaultExport bool, skip func(string, ...any)) {
	switch conv.RoutingLib {
	case RoutingNext:
		skip("file-based routing serves %s", route)
		return
	case RoutingNone:
		skip("no router in project; %s not registered", route)
		return
	}
	for _, existing := range conv.Routes {
		if NormalizeRoute(existing) == NormalizeRoute(route) {
			skip("route %s already registered", route)
			return
		}
	}
	if conv.RoutingFile == "" {
		skip("no routing file found")
		return
	}

	content, err := edits.get(conv.RoutingFile)
	if err != nil {
		skip("%v", err)
		return
	}
	updated, ok := insertRoute(content, gen.Name, route)
	if !ok {
		skip("no route table in %s", conv.RoutingFile)
		return
	}
	updated = InsertImport(updated, ImportStatement(conv.RoutingFile, gen.FilePath, gen.Name, defaultExport, conv.ImportStyle), gen.Name)
	edits.set(conv.RoutingFile, updated, stepRoute)
}

func insertRoute(content, name, route string) (string, bool) {
	if i := strings.LastIndex(content, "</Routes>"); i >= 0 {
		lineStart := strings.LastIndex(content[:i], "\n") + 1
		indent := leadingSpace(content[lineStart:i])
		entry := fmt.Sprintf("%s  <Route path=\"%s\" element={<%s />} />\n", indent, route, name)
		if strings.TrimSpace(content[lineStart:i]) != "" {
			// "</Routes>" shares its line with other markup
			return content[:i] + fmt.Sprintf("<Route path=\"%s\" element={<%s />} />", route, name) + content[i:], true
		}
		return content[:lineStart] + entry + content[lineStart:], true
	}

	if i := strings.Index(content, "createBrowserRouter("); i >= 0 {
		open := strings.Index(content[i:], "[")
		if open < 0 {
			return content, false
		}
		open += i
		closing := matchBracket(content, open)
		if closing < 0 {
			return content, false
		}
		lineStart := strings.LastIndex(content[:closing], "\n") + 1
		indent := leadingSpace(content[lineStart:closing])
		entry := fmt.Sprintf("%s  { path: \"%s\", element: <%s /> },\n", indent, route, name)
		if strings.TrimSpace(content[lineStart:closing]) != "" {
			return content[:closing] + fmt.Sprintf(", { path: \"%s\", element: <%s /> }", route, name) + content[closing:], true
		}
		return content[:lineStart] + entry + content[lineStart:], true
	}
	return content, false
}

func (g *Generator) addNavLink(edits *fileEdits, conv Conventions, gen *models.GenerationResult, route string, skip func(string, ...any)) {
	if conv.NavFile == "" {
		skip("no navigation file")
		return
	}
	content, err := edits.get(conv.NavFile)
	if err != nil {
		skip("%v", err)
		return
	}
	if NavLinksTo(content, route) {
		skip("navigation in %s already links to %s", conv.NavFile, NormalizeRoute(route))
		return
	}

	matches := navLinkLinePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		skip("no link pattern to copy in %s", conv.NavFile)
		return
	}
	last := matches[len(matches)-1]
	sub := func(group int) string { return content[last[2*group]:last[2*group+1]] }

	// copy the last link with the new target and label
	target := sub(4) + "=" + sub(5) + sub(6) + sub(7)
	opening := strings.Replace(sub(2), target, sub(4)+"="+sub(5)+route+sub(7), 1)
	newLine := sub(1) + opening + emergency.Title(gen.Name) + sub(9)

	insertAt := last[1]
	updated := content[:insertAt] + "\n" + newLine + content[insertAt:]
	edits.set(conv.NavFile, updated, stepNavLink)
}

// NavLinksTo reports whether any to/href in content points at route.
func NavLinksTo(content, route string) bool {
	want := NormalizeRoute(route)
	for _, m := range linkTargetPattern.FindAllStringSubmatch(content, -1) {
		if NormalizeRoute(m[1]) == want {
			return true
		}
	}
	return false
}

func (g *Generator) addUsage(ctx context.Context, edits *fileEdits, conv Conventions, gen *models.GenerationResult, defaultExport bool, skip func(string, ...any)) {
	target := conv.EntryFile
	if target == "" {
		skip("no app entry file to render %s in", gen.Name)
		return
	}
	content, err := edits.get(target)
	if err != nil {
		skip("%v", err)
		return
	}
	if regexp.MustCompile(`<` + regexp.QuoteMeta(gen.Name) + `\b`).MatchString(content) {
		skip("%s already renders %s", target, gen.Name)
		return
	}

	updated, ok := insertUsage(ctx, target, content, gen.Name)
	if !ok {
		skip("no root element in %s", target)
		return
	}
	updated = InsertImport(updated, ImportStatement(target, gen.FilePath, gen.Name, defaultExport, conv.ImportStyle), gen.Name)
	edits.set(target, updated, stepUsage)
}

// insertUsage renders <Name /> as the last child of the first root element.
func insertUsage(ctx context.Context, rel, content, name string) (string, bool) {
	nodes, err := code_analyzer.ParseJSXNodes(ctx, rel, []byte(content))
	if err != nil {
		return content, false
	}
	for _, n := range nodes {
		if n.Kind != codeModels.NodeElement || n.ParentIndex != -1 {
			continue
		}
		closing := strings.LastIndex(n.Code, "</")
		if closing < 0 {
			continue
		}
		at := n.StartByte + closing
		lineStart := strings.LastIndex(content[:at], "\n") + 1
		if strings.TrimSpace(content[lineStart:at]) != "" {
			return content[:at] + "<" + name + " />" + content[at:], true
		}
		indent := leadingSpace(content[lineStart:at])
		return content[:lineStart] + indent + "  <" + name + " />\n" + content[lineStart:], true
	}
	return content, false
}

// ImportStatement builds the import of target as seen from the file at from.
func ImportStatement(from, target, name string, defaultExport bool, importStyle string) string {
	spec := importPath(from, target, importStyle)
	if defaultExport {
		return fmt.Sprintf("import %s from '%s';", name, spec)
	}
	return fmt.Sprintf("import { %s } from '%s';", name, spec)
}

func importPath(from, target, importStyle string) string {
	target = strings.TrimSuffix(target, path.Ext(target))
	if importStyle == ImportAlias && strings.HasPrefix(target, "src/") {
		return "@/" + strings.TrimPrefix(target, "src/")
	}

	fromDir := strings.Split(path.Dir(from), "/")
	if path.Dir(from) == "." {
		fromDir = nil
	}
	parts := strings.Split(target, "/")
	common := 0
	for common < len(fromDir) && common < len(parts)-1 && fromDir[common] == parts[common] {
		common++
	}
	up := len(fromDir) - common
	rel := strings.Join(parts[common:], "/")
	if up == 0 {
		return "./" + rel
	}
	return strings.Repeat("../", up) + rel
}

// InsertImport adds stmt after the last import unless name is already imported.
func InsertImport(content, stmt, name string) string {
	already := regexp.MustCompile(`(?m)^import\s+(?:[\w$]+\s*,\s*)?(?:\{[^}]*\b` + regexp.QuoteMeta(name) + `\b[^}]*\}|` + regexp.QuoteMeta(name) + `\b)`)
	if already.MatchString(content) {
		return content
	}

	end := -1
	if root, err := code_analyzer.ParseTree(context.Background(), "file.tsx", []byte(content)); err == nil {
		for i := 0; i < int(root.NamedChildCount()); i++ {
			if child := root.NamedChild(i); child.Type() == "import_statement" {
				end = int(child.EndByte())
			}
		}
	}
	if end >= 0 {
		return content[:end] + "\n" + stmt + content[end:]
	}

	lines := strings.SplitAfter(content, "\n")
	i := 0
	for i < len(lines) && (strings.HasPrefix(strings.TrimSpace(lines[i]), "'use ") || strings.HasPrefix(strings.TrimSpace(lines[i]), `"use `)) {
		i++
	}
	return strings.Join(lines[:i], "") + stmt + "\n\n" + strings.Join(lines[i:], "")
}

func matchBracket(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
