// Package structure_validator checks that a rewrite keeps a file's imports,
// exports and primary component, and repairs rewrites that dropped them.
package structure_validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
)

// ErrUnrepairable means a rewrite lost something repair cannot restore.
var ErrUnrepairable = errors.New("structure cannot be repaired")

var hookPattern = regexp.MustCompile(`\buse[A-Z]\w*\s*\(`)

// FileStructure is the skeleton a rewrite must preserve.
type FileStructure struct {
	Imports          []string
	Exports          []string
	ComponentName    string
	HasDefaultExport bool
	Hooks            []string
}

// ValidationResult lists what a candidate is missing relative to the original.
type ValidationResult struct {
	Valid            bool
	MissingImports   []string
	MissingExports   []string
	MissingComponent string
	MissingHooks     []string
}

// Problems renders the violations for ledger reasoning.
func (r ValidationResult) Problems() string {
	var parts []string
	if len(r.MissingImports) > 0 {
		parts = append(parts, fmt.Sprintf("missing imports: %s", strings.Join(r.MissingImports, "; ")))
	}
	if len(r.MissingExports) > 0 {
		parts = append(parts, fmt.Sprintf("missing exports: %s", strings.Join(r.MissingExports, "; ")))
	}
	if r.MissingComponent != "" {
		parts = append(parts, fmt.Sprintf("missing component %s", r.MissingComponent))
	}
	return strings.Join(parts, ", ")
}

// ExtractStructure reads the skeleton of a file.
func ExtractStructure(ctx context.Context, relativePath string, content string) FileStructure {
	outline := code_analyzer.ExtractOutline(ctx, relativePath, []byte(content))

	structure := FileStructure{
		Imports:          outline.Imports,
		Exports:          outline.Exports,
		ComponentName:    outline.ComponentName,
		HasDefaultExport: outline.HasDefaultExport,
	}

	seen := make(map[string]bool)
	for _, m := range hookPattern.FindAllString(content, -1) {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m), "("))
		if !seen[name] {
			seen[name] = true
			structure.Hooks = append(structure.Hooks, name)
		}
	}
	return structure
}

// Validate checks that every import, export head and the component name of
// the original structure is still present in candidate. An import counts as
// kept when candidate imports at least the same names from the same module.
// Hook changes are reported but do not fail validation.
func Validate(original FileStructure, candidate string) ValidationResult {
	normalized := collapse(candidate)
	candidateImports := parseImports(code_analyzer.ImportStatements(candidate))
	result := ValidationResult{}

	for _, imp := range original.Imports {
		if !importKept(imp, normalized, candidateImports) {
			result.MissingImports = append(result.MissingImports, imp)
		}
	}
	for _, exp := range original.Exports {
		if !strings.Contains(normalized, collapse(exp)) {
			result.MissingExports = append(result.MissingExports, exp)
		}
	}
	if original.ComponentName != "" && !regexp.MustCompile(`\b`+regexp.QuoteMeta(original.ComponentName)+`\b`).MatchString(candidate) {
		result.MissingComponent = original.ComponentName
	}
	for _, hook := range original.Hooks {
		if !strings.Contains(candidate, hook) {
			result.MissingHooks = append(result.MissingHooks, hook)
		}
	}

	result.Valid = len(result.MissingImports) == 0 && len(result.MissingExports) == 0 && result.MissingComponent == ""
	return result
}

// Repair re-inserts missing imports after the last import and restores
// missing exports. It fails with ErrUnrepairable when the component itself is gone.
func Repair(original FileStructure, candidate string, result ValidationResult) (string, error) {
	if result.Valid {
		return candidate, nil
	}
	if result.MissingComponent != "" {
		return "", fmt.Errorf("%w: component %s was removed", ErrUnrepairable, result.MissingComponent)
	}

	repaired := candidate
	if len(result.MissingImports) > 0 {
		if clashes := redeclared(result.MissingImports, parseImports(code_analyzer.ImportStatements(candidate))); len(clashes) > 0 {
			return "", fmt.Errorf("%w: restoring imports would redeclare %s", ErrUnrepairable, strings.Join(clashes, ", "))
		}
		repaired = insertImports(repaired, result.MissingImports)
	}
	for _, exp := range result.MissingExports {
		var ok bool
		repaired, ok = restoreExport(repaired, exp)
		if !ok {
			return "", fmt.Errorf("%w: export %q", ErrUnrepairable, exp)
		}
	}

	if check := Validate(original, repaired); !check.Valid {
		return "", fmt.Errorf("%w: %s", ErrUnrepairable, check.Problems())
	}
	return repaired, nil
}

// ValidateAndRepair returns the content to write, whether repair was needed,
// and an error when the rewrite must be rejected.
func ValidateAndRepair(ctx context.Context, relativePath, originalContent, candidate string) (string, bool, error) {
	original := ExtractStructure(ctx, relativePath, originalContent)
	result := Validate(original, candidate)
	if result.Valid {
		return candidate, false, nil
	}
	repaired, err := Repair(original, candidate, result)
	if err != nil {
		return "", false, err
	}
	return repaired, true, nil
}

func insertImports(content string, imports []string) string {
	lines := strings.Split(content, "\n")
	lastImport := -1
	inImport := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || trimmed == "import" {
			inImport = !strings.Contains(trimmed, " from ") && !strings.HasPrefix(trimmed, "import '") && !strings.HasPrefix(trimmed, `import "`)
			lastImport = i
			continue
		}
		if inImport {
			lastImport = i
			if strings.Contains(trimmed, " from ") || strings.HasPrefix(trimmed, "} from") {
				inImport = false
			}
		}
	}

	insertAt := lastImport + 1
	if lastImport < 0 {
		insertAt = 0
		for insertAt < len(lines) && isDirective(lines[insertAt]) {
			insertAt++
		}
	}

	out := make([]string, 0, len(lines)+len(imports))
	out = append(out, lines[:insertAt]...)
	out = append(out, imports...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

func isDirective(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "'use ") || strings.HasPrefix(t, `"use `)
}

var exportHeadPattern = regexp.MustCompile(`^export\s+(default\s+)?((?:async\s+)?(?:function\*?|class|const|let|var|interface|type|enum)\s+[A-Za-z_$][\w$]*)$`)

// restoreExport adds the export keyword back to a declaration, or appends an
// export statement for a default identifier or export list.
func restoreExport(content, exportHead string) (string, bool) {
	if m := exportHeadPattern.FindStringSubmatch(exportHead); m != nil {
		isDefault := m[1] != ""
		declaration := m[2]
		if isDefault && strings.Contains(content, "export default ") {
			return content, false
		}
		declPattern := regexp.MustCompile(`(?m)^(\s*)` + strings.ReplaceAll(regexp.QuoteMeta(declaration), " ", `\s+`) + `\b`)
		loc := declPattern.FindStringSubmatchIndex(content)
		if loc == nil {
			return content, false
		}
		prefix := "export "
		if isDefault {
			prefix = "export default "
		}
		return content[:loc[3]] + prefix + content[loc[3]:], true
	}

	if strings.HasPrefix(exportHead, "export default ") || strings.HasPrefix(exportHead, "export {") || strings.HasPrefix(exportHead, "export *") {
		if strings.HasPrefix(exportHead, "export default ") && strings.Contains(content, "export default ") {
			return content, false
		}
		return strings.TrimRight(content, "\n") + "\n\n" + exportHead + ";\n", true
	}
	return content, false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
