package component_generator

import (
	"path"
	"regexp"
	"sort"
	"strings"

	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
)

const (
	ExportDefault = "default"
	ExportNamed   = "named"

	ImportRelative = "relative"
	ImportAlias    = "alias"

	RoutingReactRouter = "react-router"
	RoutingNext        = "next"
	RoutingNone        = "none"
)

var (
	routeJSXPattern    = regexp.MustCompile(`<Route\b[^>]*?\bpath=\{?["'\x60]([^"'\x60]+)["'\x60]`)
	routeObjectPattern = regexp.MustCompile(`\bpath\s*:\s*["'\x60]([^"'\x60]+)["'\x60]`)
	navNamePattern     = regexp.MustCompile(`(?i)(navbar|navigation|header|nav|sidebar|menu)`)
	aliasImportPattern = regexp.MustCompile(`from\s+["']@/`)
	relImportPattern   = regexp.MustCompile(`from\s+["']\.\.?/`)
)

// Conventions is what a project's existing code says about how a new file
// should look and where it gets wired in.
type Conventions struct {
	ExportStyle   string
	ImportStyle   string
	RoutingLib    string
	Routes        []string
	Extension     string
	PagesDir      string
	ComponentsDir string
	EntryFile     string
	RoutingFile   string
	NavFile       string
}

// DetectConventions reads conventions from a snapshot. Every field has a
// usable default for an empty project.
func DetectConventions(snapshot *codeModels.ProjectSnapshot) Conventions {
	c := Conventions{
		ExportStyle:   ExportDefault,
		ImportStyle:   ImportRelative,
		RoutingLib:    RoutingNone,
		Extension:     ".tsx",
		PagesDir:      "src/pages",
		ComponentsDir: "src/components",
	}
	if snapshot.IsEmpty() {
		return c
	}

	var defaults, named, alias, relative, tsx, jsx int
	routes := make(map[string]bool)
	var navCandidates []string

	for _, rel := range snapshot.Paths() {
		f := snapshot.Files[rel]
		if !f.IsScript() || f.FileType == codeModels.FileTypeTest || f.FileType == codeModels.FileTypeConfig {
			continue
		}

		switch path.Ext(rel) {
		case ".tsx":
			tsx++
		case ".jsx":
			jsx++
		}

		if f.FileType == codeModels.FileTypeComponent || f.FileType == codeModels.FileTypePage {
			if hasDefaultExport(f) {
				defaults++
			} else if len(f.Exports) > 0 {
				named++
			}
		}
		alias += len(aliasImportPattern.FindAllString(f.Content, -1))
		relative += len(relImportPattern.FindAllString(f.Content, -1))

		for _, dep := range f.Dependencies {
			switch {
			case dep == "react-router-dom" || dep == "react-router":
				c.RoutingLib = RoutingReactRouter
			case strings.HasPrefix(dep, "next/") && c.RoutingLib != RoutingReactRouter:
				c.RoutingLib = RoutingNext
			}
		}

		for _, m := range routeJSXPattern.FindAllStringSubmatch(f.Content, -1) {
			routes[m[1]] = true
		}
		if strings.Contains(f.Content, "createBrowserRouter") || strings.Contains(f.Content, "useRoutes") {
			for _, m := range routeObjectPattern.FindAllStringSubmatch(f.Content, -1) {
				routes[m[1]] = true
			}
		}
		if c.RoutingFile == "" && (strings.Contains(f.Content, "<Routes") || strings.Contains(f.Content, "createBrowserRouter")) {
			c.RoutingFile = rel
		}

		base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
		if navNamePattern.MatchString(base) && (strings.Contains(f.Content, "<nav") || strings.Contains(f.Content, "<Link") || strings.Contains(f.Content, "<a ")) {
			navCandidates = append(navCandidates, rel)
		}

		dir := path.Dir(rel)
		switch path.Base(dir) {
		case "pages", "views":
			c.PagesDir = dir
		case "components":
			c.ComponentsDir = dir
		}
	}

	if named > defaults {
		c.ExportStyle = ExportNamed
	}
	if alias > relative {
		c.ImportStyle = ImportAlias
	}
	if jsx > tsx {
		c.Extension = ".jsx"
	}
	for r := range routes {
		c.Routes = append(c.Routes, r)
	}
	sort.Strings(c.Routes)

	if main := snapshot.MainFile(); main != nil {
		c.EntryFile = main.RelativePath
	}
	if c.RoutingFile == "" {
		c.RoutingFile = c.EntryFile
	}
	c.NavFile = pickNavFile(navCandidates)
	return c
}

// pickNavFile prefers a dedicated navbar over a header over anything else.
func pickNavFile(candidates []string) string {
	rank := func(rel string) int {
		base := strings.ToLower(path.Base(rel))
		switch {
		case strings.HasPrefix(base, "nav"):
			return 0
		case strings.HasPrefix(base, "header"):
			return 1
		}
		return 2
	}
	sort.SliceStable(candidates, func(i, j int) bool { return rank(candidates[i]) < rank(candidates[j]) })
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

func hasDefaultExport(f *codeModels.ProjectFile) bool {
	for _, e := range f.Exports {
		if strings.HasPrefix(e, "export default") {
			return true
		}
	}
	return false
}

// NormalizeRoute lowercases a route and drops query, fragment and trailing
// slash, so "/About/" and "/about?x=1" compare equal.
func NormalizeRoute(route string) string {
	r := strings.TrimSpace(strings.ToLower(route))
	if i := strings.IndexAny(r, "?#"); i >= 0 {
		r = r[:i]
	}
	if !strings.HasPrefix(r, "/") {
		r = "/" + r
	}
	if len(r) > 1 {
		r = strings.TrimRight(r, "/")
	}
	return r
}

// RouteFor turns a component name into its URL: ContactUs -> /contact-us.
func RouteFor(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return "/" + b.String()
}
