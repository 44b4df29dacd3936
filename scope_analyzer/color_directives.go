package scope_analyzer

import (
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/utils"
)

var (
	themeWordPattern   = regexp.MustCompile(`(?i)\b(?:colou?rs?|theme|palette|scheme|primary|secondary|accent|brand|background|bg)\b`)
	segmentSplit       = regexp.MustCompile(`(?i)\s*(?:,|;|\band\b)\s*`)
	colorTypePattern   = regexp.MustCompile(`(?i)\b(primary|secondary|accent|background|bg|text|foreground|brand)\b`)
	shadeTargetPattern = regexp.MustCompile(`\b(50|[1-9]00)\b`)
	hslLiteralPattern  = regexp.MustCompile(`(?i)hsl\([^)]*\)`)
)

// extractColorDirectives turns "make primary purple and accent #ff00ff" into
// one ColorChange per segment. A segment without a type word inherits the
// previous one; the first defaults to primary.
func extractColorDirectives(prompt string) []models.ColorChange {
	var changes []models.ColorChange
	currentType := "primary"

	// hsl() literals contain commas; swap them for hex before splitting
	rawByHex := make(map[string]string)
	prompt = hslLiteralPattern.ReplaceAllStringFunc(prompt, func(lit string) string {
		hex, ok := utils.ParseColor(lit)
		if !ok {
			return lit
		}
		rawByHex[hex] = strings.ToLower(lit)
		return hex
	})

	for _, segment := range segmentSplit.Split(prompt, -1) {
		if m := colorTypePattern.FindStringSubmatch(segment); m != nil {
			currentType = normalizeColorType(m[1])
		}
		colors := utils.FindColors(segment)
		if len(colors) == 0 {
			continue
		}

		target := ""
		withoutColors := segment
		for _, c := range colors {
			withoutColors = strings.Replace(withoutColors, c.Raw, " ", 1)
		}
		if m := shadeTargetPattern.FindStringSubmatch(withoutColors); m != nil {
			target = m[1]
		}

		color := strings.ToLower(colors[0].Raw)
		if raw, ok := rawByHex[color]; ok {
			color = raw
		}
		changes = append(changes, models.ColorChange{
			Type:   currentType,
			Color:  color,
			Hex:    colors[0].Hex,
			Target: target,
		})
	}
	return changes
}

func normalizeColorType(t string) string {
	switch t = strings.ToLower(t); t {
	case "bg":
		return "background"
	case "foreground":
		return "text"
	}
	return t
}

// isThemeRequest reports a palette-level color request with no concrete
// element or known component named.
func isThemeRequest(prompt string, knownComponents []string) bool {
	if len(utils.FindColors(prompt)) == 0 || !themeWordPattern.MatchString(prompt) {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(wordsOnly(prompt))) {
		if elementWords[w] {
			return false
		}
	}
	lower := strings.ToLower(prompt)
	for _, name := range knownComponents {
		if name != "" && wordBoundaryContains(lower, strings.ToLower(name)) {
			return false
		}
	}
	return true
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

func wordsOnly(s string) string {
	return nonWord.ReplaceAllString(s, " ")
}

func wordBoundaryContains(haystack, word string) bool {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`).MatchString(haystack)
}
