package scope_analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
)

const quotedTerm = "(\"[^\"]+\"|'[^']+'|“[^”]+”|‘[^’]+’|`[^`]+`)"

var (
	quotedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:change|replace|rename|update|swap|switch|modify|edit|turn)\s+(?:all\s+)?(?:the\s+)?(?:[\w-]+\s+){0,3}?` + quotedTerm + `\s+(?:to|with|into|by|for|->|→)\s+(?:say\s+|read\s+)?` + quotedTerm),
		regexp.MustCompile(`(?i)` + quotedTerm + `\s+(?:should\s+(?:say|read|be)|->|→|=>)\s+` + quotedTerm),
		regexp.MustCompile(`(?i)\binstead\s+of\s+` + quotedTerm + `\s*,?\s*(?:say|use|show|display)\s+` + quotedTerm),
	}

	loosePattern      = regexp.MustCompile(`(?i)\b(?:change|replace|rename|update|swap)\s+(?:the\s+)?(?:text\s+|word\s+|phrase\s+)?(.+?)\s+(?:to|with|into)\s+(.+?)\s*[.!]?\s*$`)
	textVerbPattern   = regexp.MustCompile(`(?i)\b(?:change|replace|rename|update|swap|switch)\b.+\b(?:to|with|into)\b`)
	anyQuotePattern   = regexp.MustCompile("[\"'“”‘’`]")
	quotedTermPattern = regexp.MustCompile(quotedTerm)
	colorVocabulary   = regexp.MustCompile(`(?i)\b(?:colou?rs?|theme|palette|scheme|shade|hue|tint)\b`)
	nonCopyLeadWords  = map[string]bool{
		"be": true, "look": true, "looks": true, "have": true, "use": true, "show": true,
		"display": true, "appear": true, "become": true, "match": true, "support": true,
		"include": true, "a": true, "an": true,
	}
)

const termExtractionPrompt = `You extract literal text replacements from website edit requests.
Decide whether the request asks to replace visible copy text with other copy text.
Respond with JSON only:
{"isTextChange": true|false, "searchTerm": "exact text to find", "replacementTerm": "new text", "confidence": 0.0-1.0}`

// extractTextReplacement tries the quoted patterns, then the model, then a
// loose unquoted pattern. A pair with equal or empty terms is discarded.
func (a *ScopeAnalyzer) extractTextReplacement(ctx context.Context, prompt string) *models.TextReplacementPayload {
	if search, replacement, ok := matchQuoted(prompt); ok {
		return &models.TextReplacementPayload{SearchTerm: search, ReplacementTerm: replacement, Confidence: 0.95, Method: models.ExtractionQuoted}
	}

	if !textVerbPattern.MatchString(prompt) {
		return nil
	}
	// "change the header to blue" is a style request, not a copy change
	if mentionsColor(prompt) && !anyQuotePattern.MatchString(prompt) {
		return nil
	}

	if payload := a.extractWithModel(ctx, prompt); payload != nil {
		return payload
	}

	// quoted prompts that failed the quoted tier are not retried loosely
	if quotedTermPattern.MatchString(prompt) {
		return nil
	}
	if search, replacement, ok := matchLoose(prompt); ok {
		return &models.TextReplacementPayload{SearchTerm: search, ReplacementTerm: replacement, Confidence: 0.6, Method: models.ExtractionLoose}
	}
	return nil
}

func matchQuoted(prompt string) (string, string, bool) {
	for _, p := range quotedPatterns {
		m := p.FindStringSubmatch(prompt)
		if m == nil {
			continue
		}
		search, replacement := trimQuotes(m[1]), trimQuotes(m[2])
		if validPair(search, replacement) {
			return search, replacement, true
		}
	}
	return "", "", false
}

func matchLoose(prompt string) (string, string, bool) {
	m := loosePattern.FindStringSubmatch(prompt)
	if m == nil {
		return "", "", false
	}
	search := trimUIWords(trimQuotes(m[1]))
	replacement := strings.TrimSpace(trimQuotes(m[2]))

	if len(strings.Fields(search)) > 6 || len(strings.Fields(replacement)) > 8 {
		return "", "", false
	}
	if onlyUIVocabulary(search) {
		return "", "", false
	}
	if lead := strings.ToLower(firstToken(replacement)); nonCopyLeadWords[lead] {
		return "", "", false
	}
	if !validPair(search, replacement) {
		return "", "", false
	}
	return search, replacement, true
}

func (a *ScopeAnalyzer) extractWithModel(ctx context.Context, prompt string) *models.TextReplacementPayload {
	if a.provider == nil {
		return nil
	}

	response, err := a.provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: termExtractionPrompt,
		Prompt:       fmt.Sprintf("Request: %s", prompt),
		MaxTokens:    200,
	})
	if err != nil {
		logrus.WithError(err).Warn("text term extraction failed")
		return nil
	}

	var extracted struct {
		IsTextChange    bool    `json:"isTextChange"`
		SearchTerm      string  `json:"searchTerm"`
		ReplacementTerm string  `json:"replacementTerm"`
		Confidence      float64 `json:"confidence"`
	}
	if err := utils.ExtractJSON(response.Text, &extracted); err != nil {
		logrus.WithError(err).Debug("text term extraction returned no JSON")
		return nil
	}
	search, replacement := strings.TrimSpace(extracted.SearchTerm), strings.TrimSpace(extracted.ReplacementTerm)
	if !extracted.IsTextChange || extracted.Confidence < 0.6 || !validPair(search, replacement) {
		return nil
	}
	// the model must quote something the user actually wrote
	if !strings.Contains(strings.ToLower(prompt), strings.ToLower(search)) {
		return nil
	}
	return &models.TextReplacementPayload{SearchTerm: search, ReplacementTerm: replacement, Confidence: extracted.Confidence, Method: models.ExtractionLLM}
}

func validPair(search, replacement string) bool {
	return search != "" && replacement != "" && search != replacement
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}, {"‘", "’"}, {"`", "`"}} {
		if strings.HasPrefix(s, pair[0]) && strings.HasSuffix(s, pair[1]) && len(s) >= len(pair[0])+len(pair[1]) {
			return s[len(pair[0]) : len(s)-len(pair[1])]
		}
	}
	return s
}

func mentionsColor(prompt string) bool {
	return colorVocabulary.MatchString(prompt) || len(utils.FindColors(prompt)) > 0
}

func onlyUIVocabulary(term string) bool {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if isUIWord(w) || broadWords[w] {
			continue
		}
		return false
	}
	return true
}

func isUIWord(w string) bool {
	return w == "the" || w == "a" || w == "an" || w == "text" || w == "copy" || elementWords[w] || styleWords[w]
}

// trimUIWords strips element nouns around a loose term:
// "Sign In button" -> "Sign In".
func trimUIWords(term string) string {
	words := strings.Fields(term)
	for len(words) > 1 && isUIWord(strings.ToLower(words[0])) {
		words = words[1:]
	}
	for len(words) > 1 && isUIWord(strings.ToLower(words[len(words)-1])) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}
