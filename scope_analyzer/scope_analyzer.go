package scope_analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
)

var (
	elementWords = toSet("button", "buttons", "label", "link", "links", "heading", "headline", "title", "icon", "image",
		"logo", "input", "placeholder", "header", "footer", "navbar", "nav", "navigation", "menu", "card", "cards",
		"badge", "tooltip", "hero", "banner", "sidebar", "form", "field", "checkbox", "dropdown", "avatar",
		"paragraph", "subtitle", "caption", "tab", "tabs", "list", "item", "table", "cta")

	styleWords = toSet("font", "padding", "margin", "border", "rounded", "shadow", "size", "width", "height",
		"hover", "spacing", "bold", "italic", "underline", "opacity", "align", "center", "bigger", "smaller", "larger")

	broadWords = toSet("redesign", "restructure", "rewrite", "overhaul", "refactor", "entire", "whole", "layout",
		"completely", "revamp", "modernize", "convert", "migrate", "everything", "reorganize")

	summaryLinePattern = regexp.MustCompile(`(?m)^- (\S+) \[([^\]]*)\]`)
	summaryComponent   = regexp.MustCompile(`component (\w+)`)
)

const scopeConfirmationPrompt = `You classify edit requests for a React + Tailwind project.
Pick exactly one scope:
- TARGETED_NODES: change specific, identifiable UI elements (a button, a heading, one style property).
- FULL_FILE: broad restructuring or rewriting of whole files.
Respond with JSON only: {"scope": "TARGETED_NODES"|"FULL_FILE", "reasoning": "one sentence", "targetFiles": ["relative/path.tsx"]}`

// ScopeAnalyzer classifies prompts into one of five modification scopes.
// Heuristics decide first; the provider is consulted only when they are
// ambiguous.
type ScopeAnalyzer struct {
	provider providerContracts.ICompletionProvider
}

// NewScopeAnalyzer accepts a nil provider; ambiguous prompts then take the
// safe default.
func NewScopeAnalyzer(provider providerContracts.ICompletionProvider) contracts.IScopeAnalyzer {
	return &ScopeAnalyzer{provider: provider}
}

// AnalyzeScope never fails: any internal problem yields the safe default.
func (a *ScopeAnalyzer) AnalyzeScope(ctx context.Context, prompt, projectSummary, conversationContext, dbSummary string) (scope *models.ModificationScope) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("scope analysis panicked")
			scope = models.SafeDefaultScope(fmt.Sprintf("scope analysis failed (%v); defaulting to targeted node changes", r))
		}
	}()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.SafeDefaultScope("empty prompt; defaulting to targeted node changes")
	}

	known := parseProjectSummary(projectSummary)

	if text := a.extractTextReplacement(ctx, prompt); text != nil {
		return &models.ModificationScope{
			Kind:            models.ScopeTextBased,
			Reasoning:       fmt.Sprintf("text replacement %q -> %q (%s)", text.SearchTerm, text.ReplacementTerm, text.Method),
			TextReplacement: text,
		}
	}

	if isThemeRequest(prompt, known.componentNames()) {
		if changes := extractColorDirectives(prompt); len(changes) > 0 {
			return &models.ModificationScope{
				Kind:      models.ScopeTailwind,
				Reasoning: fmt.Sprintf("theme color request with %d color directive(s)", len(changes)),
				Tailwind:  &models.TailwindPayload{Changes: changes},
				TargetFiles: known.matching(func(p string) bool {
					return strings.Contains(strings.ToLower(p), "tailwind.config")
				}),
			}
		}
	}

	if req, ok := detectComponentAddition(prompt); ok {
		return &models.ModificationScope{
			Kind:      models.ScopeComponentAddition,
			Reasoning: fmt.Sprintf("request adds a new %s named %s", req.kind, req.name),
			Component: &models.ComponentAdditionPayload{
				Name:         req.name,
				Type:         req.kind,
				NeedsRouting: req.kind == models.ComponentTypePage,
			},
		}
	}

	return a.classifyEdit(ctx, prompt, projectSummary, conversationContext, dbSummary, known)
}

// classifyEdit chooses between targeted and full-file edits.
func (a *ScopeAnalyzer) classifyEdit(ctx context.Context, prompt, projectSummary, conversationContext, dbSummary string, known projectIndex) *models.ModificationScope {
	targeted, broad := false, false
	for _, w := range strings.Fields(strings.ToLower(wordsOnly(prompt))) {
		targeted = targeted || elementWords[w] || styleWords[w]
		broad = broad || broadWords[w]
	}
	if strings.Contains(strings.ToLower(prompt), "from scratch") {
		broad = true
	}
	targetFiles := known.mentionedIn(prompt)

	switch {
	case targeted && !broad:
		return &models.ModificationScope{Kind: models.ScopeTargetedNodes, TargetFiles: targetFiles, Reasoning: "prompt names specific UI elements without broad rewrite language"}
	case broad && !targeted:
		return &models.ModificationScope{Kind: models.ScopeFullFile, TargetFiles: targetFiles, Reasoning: "prompt asks for broad restructuring"}
	}

	if a.provider == nil {
		return &models.ModificationScope{Kind: models.ScopeTargetedNodes, TargetFiles: targetFiles, Reasoning: "ambiguous request; defaulting to targeted node changes"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\nProject files:\n%s\n", prompt, projectSummary)
	if conversationContext != "" {
		fmt.Fprintf(&b, "\nRecent changes:\n%s\n", conversationContext)
	}
	if dbSummary != "" {
		fmt.Fprintf(&b, "\nProject history:\n%s\n", dbSummary)
	}

	response, err := a.provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: scopeConfirmationPrompt,
		Prompt:       b.String(),
		MaxTokens:    300,
	})
	if err != nil {
		logrus.WithError(err).Warn("scope confirmation failed, using safe default")
		scope := models.SafeDefaultScope(fmt.Sprintf("scope confirmation failed (%v); defaulting to targeted node changes", err))
		scope.TargetFiles = targetFiles
		return scope
	}

	var verdict struct {
		Scope       string   `json:"scope"`
		Reasoning   string   `json:"reasoning"`
		TargetFiles []string `json:"targetFiles"`
	}
	if err := utils.ExtractJSON(response.Text, &verdict); err != nil {
		logrus.WithError(err).Warn("scope confirmation unreadable, using safe default")
		scope := models.SafeDefaultScope("scope confirmation unreadable; defaulting to targeted node changes")
		scope.TargetFiles = targetFiles
		return scope
	}

	kind := models.ScopeKind(strings.ToUpper(strings.TrimSpace(verdict.Scope)))
	if kind != models.ScopeFullFile && kind != models.ScopeTargetedNodes {
		kind = models.ScopeTargetedNodes
	}
	for _, f := range verdict.TargetFiles {
		if known.has(f) && !contains(targetFiles, f) {
			targetFiles = append(targetFiles, f)
		}
	}
	reasoning := strings.TrimSpace(verdict.Reasoning)
	if reasoning == "" {
		reasoning = fmt.Sprintf("model classified request as %s", kind)
	}
	return &models.ModificationScope{Kind: kind, TargetFiles: targetFiles, Reasoning: reasoning}
}

type projectEntry struct {
	path      string
	component string
}

type projectIndex []projectEntry

// parseProjectSummary reads the "- path [type, component Name, ...]" lines
// produced by ProjectSnapshot.Summary.
func parseProjectSummary(summary string) projectIndex {
	var index projectIndex
	for _, m := range summaryLinePattern.FindAllStringSubmatch(summary, -1) {
		entry := projectEntry{path: m[1]}
		if c := summaryComponent.FindStringSubmatch(m[2]); c != nil {
			entry.component = c[1]
		}
		index = append(index, entry)
	}
	return index
}

func (idx projectIndex) componentNames() []string {
	var names []string
	for _, e := range idx {
		if e.component != "" {
			names = append(names, e.component)
		}
	}
	return names
}

func (idx projectIndex) has(path string) bool {
	for _, e := range idx {
		if e.path == path {
			return true
		}
	}
	return false
}

func (idx projectIndex) matching(pred func(string) bool) []string {
	var paths []string
	for _, e := range idx {
		if pred(e.path) {
			paths = append(paths, e.path)
		}
	}
	return paths
}

// mentionedIn returns files whose component name appears in the prompt.
func (idx projectIndex) mentionedIn(prompt string) []string {
	lower := strings.ToLower(prompt)
	var paths []string
	for _, e := range idx {
		if len(e.component) > 2 && wordBoundaryContains(lower, strings.ToLower(e.component)) {
			paths = append(paths, e.path)
		}
	}
	return paths
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
