package tailwind

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidConfig marks a config that fails ValidateTailwindConfig.
var ErrInvalidConfig = errors.New("invalid tailwind config")

var (
	// CommonJS configs (tailwind.config.cjs) export through module.exports
	exportPattern  = regexp.MustCompile(`\bexport\s+default\b|\bmodule\.exports\s*=`)
	contentPattern = regexp.MustCompile(`\bcontent\s*:\s*\[`)
	themePattern   = regexp.MustCompile(`\btheme\s*:\s*\{`)
	cssVarPattern  = regexp.MustCompile(`var\(\s*--`)
	hslVarPattern  = regexp.MustCompile(`hsla?\(\s*var\(`)
	contentEntries = regexp.MustCompile(`(?s)\bcontent\s*:\s*\[(.*?)\]`)
	quotedEntry    = regexp.MustCompile(`["'` + "`" + `]([^"'` + "`" + `]+)["'` + "`" + `]`)
)

// ValidateTailwindConfig checks the structural contract: an export default
// (or module.exports for CommonJS configs), a content array, a theme block and
// literal colors only. It returns false with the
// missing or forbidden tokens.
func ValidateTailwindConfig(config string) (bool, []string) {
	var violations []string
	if !exportPattern.MatchString(config) {
		violations = append(violations, "missing export default or module.exports")
	}
	if !contentPattern.MatchString(config) {
		violations = append(violations, "missing content array")
	}
	if !themePattern.MatchString(config) {
		violations = append(violations, "missing theme block")
	}
	if hslVarPattern.MatchString(config) {
		violations = append(violations, "forbidden hsl(var(--...)) color")
	} else if cssVarPattern.MatchString(config) {
		violations = append(violations, "forbidden var(--...) reference")
	}
	return len(violations) == 0, violations
}

// contentGlobs lists the string entries of the content array.
func contentGlobs(config string) []string {
	m := contentEntries.FindStringSubmatch(config)
	if m == nil {
		return nil
	}
	var globs []string
	for _, e := range quotedEntry.FindAllStringSubmatch(m[1], -1) {
		globs = append(globs, strings.TrimSpace(e[1]))
	}
	return globs
}

// missingContent reports content entries of before that after dropped.
func missingContent(before, after string) []string {
	kept := make(map[string]bool)
	for _, g := range contentGlobs(after) {
		kept[g] = true
	}
	var missing []string
	for _, g := range contentGlobs(before) {
		if !kept[g] {
			missing = append(missing, "content entry "+g+" removed")
		}
	}
	return missing
}
