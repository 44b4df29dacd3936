package tailwind

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/utils"
)

var (
	extendPattern = regexp.MustCompile(`\bextend\s*:\s*\{`)
	colorsPattern = regexp.MustCompile(`\bcolors\s*:\s*\{`)
)

// ResolveChanges fills missing hex values and drops directives whose color
// cannot be parsed.
func ResolveChanges(changes []models.ColorChange) []models.ColorChange {
	var resolved []models.ColorChange
	for _, c := range changes {
		if c.Hex == "" {
			hex, ok := utils.ParseColor(c.Color)
			if !ok {
				continue
			}
			c.Hex = hex
		}
		if c.Type == "" {
			c.Type = "primary"
		}
		resolved = append(resolved, c)
	}
	return resolved
}

// Palette is the 50-900 ramp for a directive plus DEFAULT. A shade target
// pins the requested color to that step.
func Palette(change models.ColorChange) map[string]string {
	ramp, ok := utils.ShadeRamp(change.Hex)
	if !ok {
		ramp = map[string]string{}
	}
	if change.Target != "" {
		ramp[change.Target] = change.Hex
	}
	ramp["DEFAULT"] = change.Hex
	return ramp
}

// RenderColorEntry renders one colors entry, e.g. "primary: { DEFAULT: ..., 50: ... },".
func RenderColorEntry(change models.ColorChange, indent string) string {
	palette := Palette(change)
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s: {\n", indent, colorKey(change.Type))
	fmt.Fprintf(&b, "%s  DEFAULT: '%s',\n", indent, palette["DEFAULT"])
	for _, step := range utils.ShadeSteps {
		if hex, ok := palette[step]; ok {
			fmt.Fprintf(&b, "%s  %s: '%s',\n", indent, step, hex)
		}
	}
	fmt.Fprintf(&b, "%s},", indent)
	return b.String()
}

func renderColorEntries(changes []models.ColorChange, indent string) string {
	entries := make([]string, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, RenderColorEntry(c, indent))
	}
	return strings.Join(entries, "\n")
}

func colorKey(t string) string {
	if regexp.MustCompile(`^[A-Za-z_$][\w$]*$`).MatchString(t) {
		return t
	}
	return "'" + t + "'"
}

// InjectColors writes the directives into theme.extend.colors (or an existing
// theme.colors), replacing entries with the same key and creating the
// blocks when absent. It needs no model call.
func InjectColors(config string, changes []models.ColorChange) (string, error) {
	themeLoc := themePattern.FindStringIndex(config)
	if themeLoc == nil {
		return "", fmt.Errorf("%w: missing theme block", ErrInvalidConfig)
	}
	themeOpen := themeLoc[1] - 1
	themeClose := matchBrace(config, themeOpen)
	if themeClose < 0 {
		return "", fmt.Errorf("%w: unbalanced theme block", ErrInvalidConfig)
	}

	for _, change := range changes {
		colorsOpen, colorsClose, updated := ensureColorsBlock(config, themeOpen, themeClose)
		config = updated
		config = upsertEntry(config, colorsOpen, colorsClose, change)

		themeClose = matchBrace(config, themeOpen)
		if themeClose < 0 {
			return "", fmt.Errorf("%w: unbalanced theme block", ErrInvalidConfig)
		}
	}
	return config, nil
}

// ensureColorsBlock returns the brace positions of the colors object the
// directives belong in, inserting extend/colors blocks as needed.
func ensureColorsBlock(config string, themeOpen, themeClose int) (int, int, string) {
	theme := config[themeOpen:themeClose]
	baseIndent := lineIndent(config, themeOpen)

	if loc := extendPattern.FindStringIndex(theme); loc != nil {
		extendOpen := themeOpen + loc[1] - 1
		extendClose := matchBrace(config, extendOpen)
		if c := colorsPattern.FindStringIndex(config[extendOpen:extendClose]); c != nil {
			open := extendOpen + c[1] - 1
			return open, matchBrace(config, open), config
		}
		indent := lineIndent(config, extendOpen) + "  "
		config = insertAfter(config, extendOpen, "\n"+indent+"colors: {\n"+indent+"},")
		open := extendOpen + len("\n"+indent+"colors: {")
		return open, matchBrace(config, open), collapseEmptyBlock(config, extendOpen)
	}

	// a top-level theme.colors replaces the palette; extend it in place
	if c := colorsPattern.FindStringIndex(theme); c != nil && depthAt(config, themeOpen, themeOpen+c[0]) == 1 {
		open := themeOpen + c[1] - 1
		return open, matchBrace(config, open), config
	}

	indent := baseIndent + "  "
	block := "\n" + indent + "extend: {\n" + indent + "  colors: {\n" + indent + "  },\n" + indent + "},"
	config = insertAfter(config, themeOpen, block)
	open := themeOpen + len("\n"+indent+"extend: {\n"+indent+"  colors: {")
	return open, matchBrace(config, open), config
}

// upsertEntry replaces or inserts the key of change inside colors[open:close].
func upsertEntry(config string, open, close int, change models.ColorChange) string {
	indent := lineIndent(config, open) + "  "
	entry := RenderColorEntry(change, indent)

	keyPattern := regexp.MustCompile(`(?m)(?:^|[\s{,])(['"]?` + regexp.QuoteMeta(change.Type) + `['"]?\s*:\s*)`)
	body := config[open+1 : close]
	for _, loc := range keyPattern.FindAllStringSubmatchIndex(body, -1) {
		if depthAt(config, open, open+1+loc[2]) != 1 {
			continue
		}
		start := open + 1 + loc[2]
		end := valueEnd(config, open+1+loc[3])
		if end < len(config) && config[end] == ',' {
			end++
		}
		return config[:start] + strings.TrimLeft(entry, " \t") + config[end:]
	}

	return insertAfter(config, open, "\n"+entry)
}

// valueEnd returns the index just past a JS value starting at i.
func valueEnd(s string, i int) int {
	if i < len(s) && (s[i] == '{' || s[i] == '[') {
		if end := matchBrace(s, i); end >= 0 {
			return end + 1
		}
	}
	end := len(s)
	scanCode(s, i, len(s), func(j int, c byte) bool {
		if c == ',' || c == '\n' || c == '}' {
			end = j
			return false
		}
		return true
	})
	return end
}

// matchBrace returns the index of the bracket closing s[open], skipping
// string literals and comments, or -1.
func matchBrace(s string, open int) int {
	if open < 0 || open >= len(s) {
		return -1
	}
	opener := s[open]
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}
	depth, closing := 0, -1
	scanCode(s, open, len(s), func(i int, c byte) bool {
		switch c {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				closing = i
				return false
			}
		}
		return true
	})
	return closing
}

// depthAt counts unclosed braces between open and pos, starting at open.
func depthAt(s string, open, pos int) int {
	depth := 0
	scanCode(s, open, pos, func(_ int, c byte) bool {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		}
		return true
	})
	return depth
}

// scanCode calls visit for each byte of s[from:to] that is outside string
// literals and comments, until visit returns false. The newline ending a
// line comment is visited.
func scanCode(s string, from, to int, visit func(i int, c byte) bool) {
	if to > len(s) {
		to = len(s)
	}
	inString := byte(0)
	for i := from; i < to; i++ {
		c := s[i]
		switch {
		case inString != 0:
			if c == '\\' {
				i++
			} else if c == inString {
				inString = 0
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				return
			}
			i += nl - 1
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			closeAt := strings.Index(s[i+2:], "*/")
			if closeAt < 0 {
				return
			}
			i += closeAt + 3
		case c == '\'' || c == '"' || c == '`':
			inString = c
		default:
			if !visit(i, c) {
				return
			}
		}
	}
}

func insertAfter(s string, i int, text string) string {
	return s[:i+1] + text + s[i+1:]
}

// collapseEmptyBlock turns "{\n...},}" left by insertion into an empty "{}"
// into properly closed lines.
func collapseEmptyBlock(config string, open int) string {
	end := matchBrace(config, open)
	if end < 0 || end == 0 || config[end-1] != ',' {
		return config
	}
	return config[:end] + "\n" + lineIndent(config, open) + config[end:]
}

func lineIndent(s string, i int) string {
	start := strings.LastIndexByte(s[:i], '\n') + 1
	j := start
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	return s[start:j]
}
