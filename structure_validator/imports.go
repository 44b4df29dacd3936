package structure_validator

import (
	"regexp"
	"strings"
)

var importFromPattern = regexp.MustCompile(`^import\s+(?:type\s+)?(.*?)\s*from\s*['"]([^'"]+)['"];?$`)
var sideEffectImportPattern = regexp.MustCompile(`^import\s*['"]([^'"]+)['"];?$`)

// importDecl is the binding view of one import statement.
type importDecl struct {
	Source     string
	Default    string
	Namespace  string
	Named      []string
	SideEffect bool
}

// parseImport reads a collapsed import statement. Named bindings are kept by
// their local name, so "a as b" binds b.
func parseImport(statement string) (importDecl, bool) {
	statement = collapse(statement)
	if m := sideEffectImportPattern.FindStringSubmatch(statement); m != nil {
		return importDecl{Source: m[1], SideEffect: true}, true
	}
	m := importFromPattern.FindStringSubmatch(statement)
	if m == nil {
		return importDecl{}, false
	}
	decl := importDecl{Source: m[2]}
	clause := m[1]

	if open := strings.IndexByte(clause, '{'); open >= 0 {
		end := strings.IndexByte(clause[open:], '}')
		if end < 0 {
			return importDecl{}, false
		}
		for _, spec := range strings.Split(clause[open+1:open+end], ",") {
			spec = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(spec), "type "))
			if spec == "" {
				continue
			}
			if i := strings.LastIndex(spec, " as "); i >= 0 {
				spec = strings.TrimSpace(spec[i+4:])
			}
			decl.Named = append(decl.Named, spec)
		}
		clause = clause[:open] + clause[open+end+1:]
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			decl.Namespace = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(part, "*")), "as "))
		default:
			decl.Default = part
		}
	}
	return decl, true
}

// Bindings lists every local name the import declares.
func (d importDecl) Bindings() []string {
	var names []string
	if d.Default != "" {
		names = append(names, d.Default)
	}
	if d.Namespace != "" {
		names = append(names, d.Namespace)
	}
	return append(names, d.Named...)
}

// covers reports whether d keeps everything original imported: same module
// and at least the same bindings.
func (d importDecl) covers(original importDecl) bool {
	if d.Source != original.Source {
		return false
	}
	if original.SideEffect {
		return true
	}
	if original.Default != "" && d.Default != original.Default {
		return false
	}
	if original.Namespace != "" && d.Namespace != original.Namespace {
		return false
	}
	have := toSet(d.Named)
	for _, name := range original.Named {
		if !have[name] {
			return false
		}
	}
	return true
}

func parseImports(statements []string) []importDecl {
	var decls []importDecl
	for _, s := range statements {
		if d, ok := parseImport(s); ok {
			decls = append(decls, d)
		}
	}
	return decls
}

// importKept reports whether candidate still carries imp, either verbatim or
// as an import of the same module covering the same names.
func importKept(imp string, collapsedCandidate string, candidateImports []importDecl) bool {
	if strings.Contains(collapsedCandidate, collapse(imp)) {
		return true
	}
	decl, ok := parseImport(imp)
	if !ok {
		return false
	}
	for _, c := range candidateImports {
		if c.covers(decl) {
			return true
		}
	}
	return false
}

// redeclared returns the bindings of imports that the candidate already declares.
func redeclared(imports []string, candidateImports []importDecl) []string {
	declared := make(map[string]bool)
	for _, c := range candidateImports {
		for _, name := range c.Bindings() {
			declared[name] = true
		}
	}
	var clashes []string
	for _, imp := range imports {
		decl, ok := parseImport(imp)
		if !ok {
			continue
		}
		for _, name := range decl.Bindings() {
			if declared[name] {
				clashes = append(clashes, name)
			}
		}
	}
	return clashes
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
