package code_analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
)

var (
	importStatementPattern = regexp.MustCompile(`(?ms)^import\s[^;]*?(?:from\s+)?['"][^'"]+['"];?|^import\s+['"][^'"]+['"];?`)
	importSourcePattern    = regexp.MustCompile(`['"]([^'"]+)['"];?\s*$`)
	exportLinePattern      = regexp.MustCompile(`(?m)^export\s.*$`)
	exportDeclPattern      = regexp.MustCompile(`^export\s+(?:default\s+)?(?:async\s+)?(?:function\*?|class|const|let|var|interface|type|enum)\s+[A-Za-z_$][\w$]*`)
	exportDefaultIdent     = regexp.MustCompile(`^export\s+default\s+[A-Za-z_$][\w$]*\s*;?\s*$`)

	componentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^export\s+default\s+(?:async\s+)?function\s+([A-Z][\w$]*)`),
		regexp.MustCompile(`(?m)^export\s+default\s+(?:class\s+)?([A-Z][\w$]*)`),
		regexp.MustCompile(`(?m)^(?:export\s+)?(?:async\s+)?function\s+([A-Z][\w$]*)\s*\(`),
		regexp.MustCompile(`(?m)^(?:export\s+)?const\s+([A-Z][\w$]*)\s*(?::\s*[\w.<>\s,]+)?=\s*(?:\([^)]*\)|[\w$]+|async\s*\([^)]*\))\s*(?::\s*[^=]+)?=>`),
		regexp.MustCompile(`(?m)^(?:export\s+)?const\s+([A-Z][\w$]*)\s*=\s*(?:React\.)?(?:memo|forwardRef)\(`),
		regexp.MustCompile(`(?m)^(?:export\s+)?class\s+([A-Z][\w$]*)\s+extends\s+(?:React\.)?(?:Component|PureComponent)`),
	}
)

// ExtractOutline returns import statements, export heads, dependencies and the
// primary component name of a file. Parsing failures fall back to line scanning.
func ExtractOutline(ctx context.Context, relativePath string, content []byte) models.ModuleOutline {
	outline := models.ModuleOutline{}

	if root, err := ParseTree(ctx, relativePath, content); err == nil && !root.HasError() {
		for i := 0; i < int(root.NamedChildCount()); i++ {
			child := root.NamedChild(i)
			switch child.Type() {
			case "import_statement":
				outline.Imports = append(outline.Imports, normalizeStatement(child.Content(content)))
			case "export_statement":
				outline.Exports = append(outline.Exports, ExportHead(child.Content(content)))
			}
		}
	} else {
		for _, m := range importStatementPattern.FindAllString(string(content), -1) {
			outline.Imports = append(outline.Imports, normalizeStatement(m))
		}
		for _, m := range exportLinePattern.FindAllString(string(content), -1) {
			outline.Exports = append(outline.Exports, ExportHead(m))
		}
	}

	for _, imp := range outline.Imports {
		if m := importSourcePattern.FindStringSubmatch(imp); m != nil {
			outline.Dependencies = append(outline.Dependencies, m[1])
		}
	}
	for _, exp := range outline.Exports {
		if strings.HasPrefix(exp, "export default") {
			outline.HasDefaultExport = true
		}
	}
	outline.ComponentName = DetectComponentName(string(content))

	return outline
}

// ExportHead reduces an export statement to its identifying head, e.g.
// "export default function App" or "export { A, B }".
func ExportHead(statement string) string {
	first := strings.TrimSpace(statement)
	if i := strings.IndexByte(first, '\n'); i >= 0 && !strings.HasPrefix(first, "export {") {
		first = strings.TrimSpace(first[:i])
	}
	first = collapseSpace(first)

	if m := exportDeclPattern.FindString(first); m != "" {
		return m
	}
	if exportDefaultIdent.MatchString(first) {
		return strings.TrimSuffix(strings.TrimSpace(first), ";")
	}
	return strings.TrimSuffix(first, ";")
}

// DetectComponentName finds the primary component by declaration heuristics.
func DetectComponentName(content string) string {
	for _, p := range componentPatterns {
		if m := p.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return ""
}

// ImportStatements returns the whitespace-collapsed import statements of a
// script by line scanning. It tolerates content tree-sitter cannot parse.
func ImportStatements(content string) []string {
	var imports []string
	for _, m := range importStatementPattern.FindAllString(content, -1) {
		imports = append(imports, normalizeStatement(m))
	}
	return imports
}

func normalizeStatement(s string) string {
	return collapseSpace(strings.TrimSpace(s))
}

// HasSyntaxErrors reports whether tree-sitter finds error nodes in a script.
func HasSyntaxErrors(ctx context.Context, relativePath string, content []byte) bool {
	root, err := ParseTree(ctx, relativePath, content)
	if err != nil {
		return false
	}
	return root.HasError()
}
