package scope_analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/providers/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectSummary = `- src/App.tsx [component, component App, main, buttons]
- src/components/Header.tsx [component, component Header]
- src/components/PricingTable.tsx [component, component PricingTable]
- tailwind.config.js [config]
`

func analyze(t *testing.T, analyzer contracts.IScopeAnalyzer, prompt string) *models.ModificationScope {
	t.Helper()
	scope := analyzer.AnalyzeScope(context.Background(), prompt, projectSummary, "", "")
	require.NotNil(t, scope)
	require.NoError(t, scope.Validate(), "payload must match kind for %q", prompt)
	assert.NotEmpty(t, scope.Reasoning)
	return scope
}

func TestAnalyzeScope_QuotedTextChange(t *testing.T) {
	provider := mock.New()
	scope := analyze(t, NewScopeAnalyzer(provider), "change 'Welcome' to 'Hello'")

	assert.Equal(t, models.ScopeTextBased, scope.Kind)
	assert.Equal(t, "Welcome", scope.TextReplacement.SearchTerm)
	assert.Equal(t, "Hello", scope.TextReplacement.ReplacementTerm)
	assert.Equal(t, models.ExtractionQuoted, scope.TextReplacement.Method)
	assert.Zero(t, provider.Calls())
}

func TestAnalyzeScope_QuotedVariants(t *testing.T) {
	a := NewScopeAnalyzer(nil)

	scope := analyze(t, a, `replace the heading "Our Plans" with "Pricing"`)
	require.Equal(t, models.ScopeTextBased, scope.Kind)
	assert.Equal(t, "Our Plans", scope.TextReplacement.SearchTerm)

	scope = analyze(t, a, `"Get started" should say "Start now"`)
	require.Equal(t, models.ScopeTextBased, scope.Kind)
	assert.Equal(t, "Start now", scope.TextReplacement.ReplacementTerm)
}

func TestAnalyzeScope_IdenticalTermsFallThrough(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "change 'Welcome' to 'Welcome' in the header")
	assert.NotEqual(t, models.ScopeTextBased, scope.Kind)
	assert.Nil(t, scope.TextReplacement)
}

func TestAnalyzeScope_ModelExtraction(t *testing.T) {
	provider := mock.New(`{"isTextChange": true, "searchTerm": "Hi there", "replacementTerm": "Good morning", "confidence": 0.9}`)
	scope := analyze(t, NewScopeAnalyzer(provider), "update the greeting Hi there to Good morning")

	require.Equal(t, models.ScopeTextBased, scope.Kind)
	assert.Equal(t, models.ExtractionLLM, scope.TextReplacement.Method)
	assert.Equal(t, "Hi there", scope.TextReplacement.SearchTerm)
	assert.Equal(t, 1, provider.Calls())
}

func TestAnalyzeScope_LoosePatternWhenModelFails(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(mock.Failing(errors.New("offline"))), "rename the Sign In button to Log In")

	require.Equal(t, models.ScopeTextBased, scope.Kind)
	assert.Equal(t, "Sign In", scope.TextReplacement.SearchTerm)
	assert.Equal(t, "Log In", scope.TextReplacement.ReplacementTerm)
	assert.Equal(t, models.ExtractionLoose, scope.TextReplacement.Method)
}

func TestAnalyzeScope_LooseRejectsStyleRequests(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "change the header to be sticky")
	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)
	assert.Equal(t, []string{"src/components/Header.tsx"}, scope.TargetFiles)
}

func TestAnalyzeScope_TailwindPrimaryColor(t *testing.T) {
	provider := mock.New()
	scope := analyze(t, NewScopeAnalyzer(provider), "make the primary color purple")

	require.Equal(t, models.ScopeTailwind, scope.Kind)
	require.Len(t, scope.Tailwind.Changes, 1)
	change := scope.Tailwind.Changes[0]
	assert.Equal(t, "primary", change.Type)
	assert.Equal(t, "purple", change.Color)
	assert.Equal(t, "#800080", change.Hex)
	assert.Equal(t, []string{"tailwind.config.js"}, scope.TargetFiles)
	assert.Zero(t, provider.Calls())
}

func TestAnalyzeScope_TailwindMultipleDirectives(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "set the theme: primary dark blue, accent #ff00ff and background hsl(0, 0%, 100%)")

	require.Equal(t, models.ScopeTailwind, scope.Kind)
	require.Len(t, scope.Tailwind.Changes, 3)
	assert.Equal(t, "primary", scope.Tailwind.Changes[0].Type)
	assert.Equal(t, "dark blue", scope.Tailwind.Changes[0].Color)
	assert.Equal(t, "accent", scope.Tailwind.Changes[1].Type)
	assert.Equal(t, "#ff00ff", scope.Tailwind.Changes[1].Hex)
	assert.Equal(t, "background", scope.Tailwind.Changes[2].Type)
	assert.Equal(t, "#ffffff", scope.Tailwind.Changes[2].Hex)
	assert.Equal(t, "hsl(0, 0%, 100%)", scope.Tailwind.Changes[2].Color)
}

func TestAnalyzeScope_ElementColorIsTargeted(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "make the signup button red")
	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)

	scope = analyze(t, NewScopeAnalyzer(nil), "change the Header background color to dark blue")
	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)
}

func TestAnalyzeScope_ComponentAddition(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "add an About page")

	require.Equal(t, models.ScopeComponentAddition, scope.Kind)
	assert.Equal(t, "About", scope.Component.Name)
	assert.Equal(t, models.ComponentTypePage, scope.Component.Type)
	assert.True(t, scope.Component.NeedsRouting)
}

func TestAnalyzeScope_ComponentAdditionVariants(t *testing.T) {
	a := NewScopeAnalyzer(nil)

	scope := analyze(t, a, "create a contact form component")
	require.Equal(t, models.ScopeComponentAddition, scope.Kind)
	assert.Equal(t, "ContactForm", scope.Component.Name)
	assert.Equal(t, models.ComponentTypeComponent, scope.Component.Type)
	assert.False(t, scope.Component.NeedsRouting)

	scope = analyze(t, a, "generate a new page called Team Members")
	require.Equal(t, models.ScopeComponentAddition, scope.Kind)
	assert.Equal(t, "TeamMembers", scope.Component.Name)

	scope = analyze(t, a, "add a pricing section")
	require.Equal(t, models.ScopeComponentAddition, scope.Kind)
	assert.Equal(t, "PricingSection", scope.Component.Name)
}

func TestAnalyzeScope_PlacementIsNotAddition(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "add a logout link to the navbar")
	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)

	scope = analyze(t, NewScopeAnalyzer(nil), "make the dashboard page darker")
	assert.NotEqual(t, models.ScopeComponentAddition, scope.Kind)
}

func TestAnalyzeScope_BroadRewriteIsFullFile(t *testing.T) {
	provider := mock.New()
	scope := analyze(t, NewScopeAnalyzer(provider), "completely redesign the landing experience")

	assert.Equal(t, models.ScopeFullFile, scope.Kind)
	assert.Zero(t, provider.Calls())
}

func TestAnalyzeScope_AmbiguousUsesModel(t *testing.T) {
	provider := mock.New("```json\n{\"scope\": \"FULL_FILE\", \"reasoning\": \"touches the whole pricing flow\", \"targetFiles\": [\"src/components/PricingTable.tsx\", \"src/missing.tsx\"]}\n```")
	scope := analyze(t, NewScopeAnalyzer(provider), "improve the PricingTable experience")

	assert.Equal(t, models.ScopeFullFile, scope.Kind)
	assert.Equal(t, "touches the whole pricing flow", scope.Reasoning)
	assert.Equal(t, []string{"src/components/PricingTable.tsx"}, scope.TargetFiles)
	require.Equal(t, 1, provider.Calls())
	assert.Contains(t, provider.Requests[0].Prompt, "src/App.tsx")
}

func TestAnalyzeScope_ModelFailureIsSafeDefault(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(mock.Failing(errors.New("rate limited"))), "improve the pricing experience")

	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)
	assert.Contains(t, scope.Reasoning, "rate limited")
}

func TestAnalyzeScope_UnreadableModelAnswer(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(mock.New("I think it is a big change")), "improve the pricing experience")
	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)
}

func TestAnalyzeScope_EmptyPrompt(t *testing.T) {
	scope := analyze(t, NewScopeAnalyzer(nil), "   ")
	assert.Equal(t, models.ScopeTargetedNodes, scope.Kind)
}

func TestAnalyzeScope_ExactlyOnePayload(t *testing.T) {
	prompts := []string{
		"change 'A' to 'B'",
		"make the primary color teal",
		"add a Settings page",
		"make the button bigger",
		"rewrite everything from scratch",
		"do something nice",
	}
	a := NewScopeAnalyzer(mock.Failing(errors.New("down")))
	for _, p := range prompts {
		analyze(t, a, p)
	}
}

func TestExtractComponentName(t *testing.T) {
	assert.Equal(t, "About", ExtractComponentName("add an About page"))
	assert.Equal(t, "UserProfile", ExtractComponentName("create a user profile component"))
	assert.Equal(t, "Gallery", ExtractComponentName("Please show a Gallery"))
	assert.Equal(t, "NewComponent", ExtractComponentName("something went wrong"))
	assert.Equal(t, "NewPage", ExtractComponentName("fix the home"))
}

func TestDetectComponentType(t *testing.T) {
	assert.Equal(t, models.ComponentTypePage, DetectComponentType("add a contact page"))
	assert.Equal(t, models.ComponentTypePage, DetectComponentType("build a dashboard"))
	assert.Equal(t, models.ComponentTypeComponent, DetectComponentType("create a contact form"))
	assert.Equal(t, models.ComponentTypeComponent, DetectComponentType("add a testimonial carousel"))
}
