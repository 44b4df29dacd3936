package scope_analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
)

var (
	additionVerbPattern = regexp.MustCompile(`(?i)\b(add|create|build|make|generate|insert|scaffold)\b`)
	kindNounPattern     = regexp.MustCompile(`(?i)\b(component|page|screen|view|widget|section|modal|dialog|form|dashboard|app|application)s?\b`)
	placementPattern    = regexp.MustCompile(`(?i)\s(?:to|in|on|into|inside|within)\s+(?:the|my|our)\s`)
	namedPattern        = regexp.MustCompile(`\b(?:[Cc]alled|[Nn]amed|[Tt]itled)\s+["'“]?([A-Za-z][\w-]*(?:\s+[A-Z][\w-]*){0,2})`)
	quotedNamePattern   = regexp.MustCompile(`["'“]([A-Za-z][A-Za-z0-9 -]{0,40})["'”]`)
	nameTokenPattern    = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]*`)

	pageKeywordPattern = regexp.MustCompile(`(?i)\b(page|dashboard|about|contact|home|screen)\b`)

	nameStopwords = map[string]bool{
		"a": true, "an": true, "the": true, "new": true, "simple": true, "basic": true,
		"nice": true, "beautiful": true, "modern": true, "my": true, "our": true,
		"another": true, "reusable": true, "responsive": true, "small": true, "custom": true,
		"please": true, "some": true, "for": true, "with": true, "and": true, "of": true,
		"clean": true, "fancy": true, "cool": true, "good": true, "great": true, "me": true,
		"us": true, "add": true, "create": true, "build": true, "make": true, "generate": true,
		"insert": true, "scaffold": true, "can": true, "you": true, "i": true, "want": true,
		"need": true, "would": true, "like": true, "to": true, "that": true, "this": true,
		"component": true, "page": true, "it": true,
	}

	// nouns that stay in the name, e.g. "pricing section" -> PricingSection
	suffixNouns = map[string]bool{"section": true, "modal": true, "dialog": true, "form": true, "widget": true}

	componentOnlyNouns = map[string]bool{"component": true, "section": true, "modal": true, "dialog": true, "form": true, "widget": true}
)

// componentRequest is the outcome of addition detection.
type componentRequest struct {
	name     string
	kind     models.ComponentType
	nounWord string
}

// detectComponentAddition recognizes "add a X page" / "create a Y component"
// requests. Edits placed into existing UI ("add a button to the header") are
// left for the node strategies.
func detectComponentAddition(prompt string) (*componentRequest, bool) {
	verb := additionVerbPattern.FindStringSubmatchIndex(prompt)
	if verb == nil {
		return nil, false
	}
	rest := prompt[verb[1]:]

	noun := kindNounPattern.FindStringSubmatchIndex(rest)
	if noun == nil {
		return nil, false
	}
	between := rest[:noun[0]]
	if placementPattern.MatchString(" " + between + " ") {
		return nil, false
	}

	verbWord := strings.ToLower(prompt[verb[2]:verb[3]])
	firstWord := strings.ToLower(firstToken(between))
	if verbWord == "make" && firstWord != "a" && firstWord != "an" && firstWord != "new" {
		return nil, false
	}

	nounWord := strings.ToLower(rest[noun[2]:noun[3]])
	req := &componentRequest{nounWord: nounWord}
	req.kind = DetectComponentType(prompt)
	if nounWord == "app" || nounWord == "application" {
		req.kind = models.ComponentTypeApp
	}

	req.name = nameFromPrompt(prompt, between, nounWord)
	if req.name == "" {
		req.name = fallbackName(req.kind)
	}
	return req, true
}

// ExtractComponentName derives a PascalCase component name from a prompt:
// an explicit "called X", a quoted name, the words before the kind noun,
// then the first capitalized non-stopword token.
func ExtractComponentName(prompt string) string {
	var between, nounWord string
	if verb := additionVerbPattern.FindStringIndex(prompt); verb != nil {
		rest := prompt[verb[1]:]
		if noun := kindNounPattern.FindStringSubmatchIndex(rest); noun != nil {
			between = rest[:noun[0]]
			nounWord = strings.ToLower(rest[noun[2]:noun[3]])
		}
	}
	if name := nameFromPrompt(prompt, between, nounWord); name != "" {
		return name
	}
	return fallbackName(DetectComponentType(prompt))
}

// DetectComponentType classifies a request as page or component by keyword.
func DetectComponentType(prompt string) models.ComponentType {
	if m := kindNounPattern.FindStringSubmatch(prompt); m != nil && componentOnlyNouns[strings.ToLower(m[1])] {
		if !strings.Contains(strings.ToLower(prompt), " page") {
			return models.ComponentTypeComponent
		}
	}
	if pageKeywordPattern.MatchString(prompt) {
		return models.ComponentTypePage
	}
	return models.ComponentTypeComponent
}

func nameFromPrompt(prompt, between, nounWord string) string {
	if m := namedPattern.FindStringSubmatch(prompt); m != nil {
		if name := PascalCase(m[1]); name != "" {
			return name
		}
	}
	if m := quotedNamePattern.FindStringSubmatch(prompt); m != nil {
		if name := PascalCase(m[1]); name != "" {
			return name
		}
	}

	if nounWord != "" {
		var words []string
		for _, tok := range nameTokenPattern.FindAllString(between, -1) {
			if nameStopwords[strings.ToLower(tok)] {
				continue
			}
			words = append(words, tok)
		}
		if len(words) > 3 {
			words = words[len(words)-3:]
		}
		if len(words) > 0 && suffixNouns[nounWord] {
			words = append(words, nounWord)
		}
		if len(words) == 0 && (nounWord == "dashboard" || suffixNouns[nounWord]) {
			words = []string{nounWord}
		}
		if name := PascalCase(strings.Join(words, " ")); name != "" {
			return name
		}
	}

	// the sentence-initial word is capitalized by grammar, not because it is a name
	tokens := nameTokenPattern.FindAllString(prompt, -1)
	for i, tok := range tokens {
		if i == 0 && len(tokens) > 1 {
			continue
		}
		if unicode.IsUpper(rune(tok[0])) && !nameStopwords[strings.ToLower(tok)] {
			return PascalCase(tok)
		}
	}
	return ""
}

func fallbackName(kind models.ComponentType) string {
	if kind == models.ComponentTypePage {
		return "NewPage"
	}
	return "NewComponent"
}

// PascalCase joins words into an identifier: "contact us" -> ContactUs.
func PascalCase(s string) string {
	var b strings.Builder
	for _, tok := range nameTokenPattern.FindAllString(s, -1) {
		b.WriteString(strings.ToUpper(tok[:1]))
		b.WriteString(tok[1:])
	}
	return b.String()
}

func firstToken(s string) string {
	if tok := nameTokenPattern.FindString(s); tok != "" {
		return tok
	}
	return ""
}
