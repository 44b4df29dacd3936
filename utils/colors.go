package utils

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"red":       "#ef4444",
	"orange":    "#f97316",
	"amber":     "#f59e0b",
	"yellow":    "#eab308",
	"lime":      "#84cc16",
	"green":     "#22c55e",
	"emerald":   "#10b981",
	"teal":      "#14b8a6",
	"cyan":      "#06b6d4",
	"sky":       "#0ea5e9",
	"blue":      "#3b82f6",
	"navy":      "#1e3a8a",
	"indigo":    "#6366f1",
	"violet":    "#8b5cf6",
	"purple":    "#800080",
	"fuchsia":   "#d946ef",
	"magenta":   "#d946ef",
	"pink":      "#ec4899",
	"rose":      "#f43f5e",
	"brown":     "#92400e",
	"gray":      "#6b7280",
	"grey":      "#6b7280",
	"slate":     "#64748b",
	"black":     "#000000",
	"white":     "#ffffff",
	"gold":      "#d4af37",
	"silver":    "#c0c0c0",
	"maroon":    "#800000",
	"olive":     "#808000",
	"coral":     "#ff7f50",
	"salmon":    "#fa8072",
	"turquoise": "#40e0d0",
	"lavender":  "#e6e6fa",
	"beige":     "#f5f5dc",
	"mint":      "#98ff98",
}

var (
	hexColorPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	hslColorPattern = regexp.MustCompile(`(?i)hsl\(\s*(\d{1,3}(?:\.\d+)?)\s*,?\s*(\d{1,3}(?:\.\d+)?)%\s*,?\s*(\d{1,3}(?:\.\d+)?)%\s*\)`)
	colorWordPattern = regexp.MustCompile(`(?i)\b(?:(light|dark)[\s-]?)?([a-z]+)\b`)

	// ShadeSteps are the Tailwind palette keys.
	ShadeSteps = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}

	shadeBlend = map[string]float64{
		"50": 0.95, "100": 0.88, "200": 0.74, "300": 0.56, "400": 0.30,
		"500": 0, "600": -0.15, "700": -0.32, "800": -0.48, "900": -0.62,
	}
)

// ColorMatch is a color value found in free text.
type ColorMatch struct {
	Raw   string
	Hex   string
	Index int
}

// NamedColorHex maps a CSS-ish color name (optionally "light "/"dark "
// prefixed) to hex.
func NamedColorHex(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	shade := 0.0
	switch {
	case strings.HasPrefix(name, "light"):
		shade = 0.4
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(name, "light"), "-"))
	case strings.HasPrefix(name, "dark"):
		shade = -0.4
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(name, "dark"), "-"))
	}
	hex, ok := namedColors[name]
	if !ok {
		return "", false
	}
	if shade == 0 {
		return hex, true
	}
	return blendHex(hex, shade), true
}

// ParseColor converts a named color, #hex or hsl() literal to lowercase #rrggbb.
func ParseColor(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if hexColorPattern.MatchString(value) && strings.HasPrefix(value, "#") {
		c, err := colorful.Hex(expandHex(value))
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	}
	if m := hslColorPattern.FindStringSubmatch(value); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		s, _ := strconv.ParseFloat(m[2], 64)
		l, _ := strconv.ParseFloat(m[3], 64)
		return colorful.Hsl(h, s/100, l/100).Clamped().Hex(), true
	}
	return NamedColorHex(value)
}

// FindColors returns every color value in text in order of appearance.
func FindColors(text string) []ColorMatch {
	var matches []ColorMatch
	taken := make([]bool, len(text)+1)

	add := func(start, end int, raw string) {
		for i := start; i < end; i++ {
			if taken[i] {
				return
			}
		}
		hex, ok := ParseColor(raw)
		if !ok {
			return
		}
		for i := start; i < end; i++ {
			taken[i] = true
		}
		matches = append(matches, ColorMatch{Raw: raw, Hex: hex, Index: start})
	}

	for _, loc := range hslColorPattern.FindAllStringIndex(text, -1) {
		add(loc[0], loc[1], text[loc[0]:loc[1]])
	}
	for _, loc := range hexColorPattern.FindAllStringIndex(text, -1) {
		add(loc[0], loc[1], text[loc[0]:loc[1]])
	}
	for _, loc := range colorWordPattern.FindAllStringSubmatchIndex(text, -1) {
		word := strings.ToLower(text[loc[4]:loc[5]])
		if _, ok := namedColors[word]; !ok {
			continue
		}
		add(loc[0], loc[1], text[loc[0]:loc[1]])
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })
	return matches
}

// ShadeRamp derives a 50-900 palette with the given color at 500.
func ShadeRamp(hex string) (map[string]string, bool) {
	if _, err := colorful.Hex(expandHex(hex)); err != nil {
		return nil, false
	}
	ramp := make(map[string]string, len(ShadeSteps))
	for _, step := range ShadeSteps {
		ramp[step] = blendHex(hex, shadeBlend[step])
	}
	return ramp, true
}

// blendHex moves a color toward white (t > 0) or black (t < 0) in Lab space.
func blendHex(hex string, t float64) string {
	c, err := colorful.Hex(expandHex(hex))
	if err != nil {
		return hex
	}
	switch {
	case t > 0:
		return c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, t).Clamped().Hex()
	case t < 0:
		return c.BlendLab(colorful.Color{R: 0, G: 0, B: 0}, -t).Clamped().Hex()
	}
	return c.Hex()
}

func expandHex(hex string) string {
	hex = strings.ToLower(strings.TrimSpace(hex))
	if len(hex) == 4 && hex[0] == '#' {
		return "#" + string([]byte{hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	return hex
}

// IsColorWord reports whether word is a known color name.
func IsColorWord(word string) bool {
	_, ok := namedColors[strings.ToLower(word)]
	return ok
}
