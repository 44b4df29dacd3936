package tailwind

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/providers/mock"
	"github.com/meysamhadeli/reactforge/strategies/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var purple = models.ColorChange{Type: "primary", Color: "purple", Hex: "#800080"}

func tailwindScope(changes ...models.ColorChange) *models.ModificationScope {
	return &models.ModificationScope{Kind: models.ScopeTailwind, Reasoning: "theme", Tailwind: &models.TailwindPayload{Changes: changes}}
}

func TestValidateTailwindConfig(t *testing.T) {
	ok, violations := ValidateTailwindConfig(testkit.TailwindConfig)
	assert.True(t, ok)
	assert.Empty(t, violations)

	withVar := strings.Replace(testkit.TailwindConfig, "extend: {},", "extend: { colors: { primary: 'var(--primary)' } },", 1)
	ok, violations = ValidateTailwindConfig(withVar)
	assert.False(t, ok)
	assert.Contains(t, violations, "forbidden var(--...) reference")

	withHSLVar := strings.Replace(testkit.TailwindConfig, "extend: {},", "extend: { colors: { primary: 'hsl(var(--primary))' } },", 1)
	ok, _ = ValidateTailwindConfig(withHSLVar)
	assert.False(t, ok)

	ok, violations = ValidateTailwindConfig("module.exports = { plugins: [] }")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"missing content array", "missing theme block"}, violations)

	ok, violations = ValidateTailwindConfig("const config = { content: ['./src/**/*.tsx'], theme: { extend: {} } }\n")
	assert.False(t, ok)
	assert.Equal(t, []string{"missing export default or module.exports"}, violations)

	commonJS := strings.Replace(testkit.TailwindConfig, "export default {", "module.exports = {", 1)
	ok, violations = ValidateTailwindConfig(commonJS)
	assert.True(t, ok, violations)
}

func TestInjectColors_CreatesExtendColors(t *testing.T) {
	out, err := InjectColors(testkit.TailwindConfig, []models.ColorChange{purple})
	require.NoError(t, err)

	ok, violations := ValidateTailwindConfig(out)
	require.True(t, ok, violations)
	assert.Contains(t, out, "primary: {")
	assert.Contains(t, out, "DEFAULT: '#800080'")
	assert.Contains(t, out, "500: '#800080'")
	assert.Contains(t, out, `content: ["./index.html", "./src/**/*.{js,ts,jsx,tsx}"]`)
	assert.Equal(t, 1, strings.Count(out, "colors: {"))

	again, err := InjectColors(out, []models.ColorChange{{Type: "primary", Color: "red", Hex: "#ef4444"}})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(again, "primary: {"))
	assert.NotContains(t, again, "#800080")
	assert.Contains(t, again, "DEFAULT: '#ef4444'")
}

func TestInjectColors_ReplacesInlineEntry(t *testing.T) {
	config := `export default {
  content: ["./src/**/*.tsx"],
  theme: {
    extend: {
      colors: { primary: '#123456', accent: '#000000' },
    },
  },
}
`
	out, err := InjectColors(config, []models.ColorChange{purple})
	require.NoError(t, err)

	assert.NotContains(t, out, "#123456")
	assert.Contains(t, out, "accent: '#000000'")
	assert.Equal(t, 1, strings.Count(out, "primary:"))
	ok, _ := ValidateTailwindConfig(out)
	assert.True(t, ok)
}

func TestInjectColors_IgnoresQuotesInComments(t *testing.T) {
	config := `/** @type {import('tailwindcss').Config} */
export default {
  // don't touch the content globs
  content: ["./src/**/*.tsx"],
  theme: {
    extend: {
      colors: {
        primary: '#123456', // brand color, don't change
        /* old accent: '#000' } */
        accent: '#000000',
      },
    },
  },
  plugins: [],
}
`
	out, err := InjectColors(config, []models.ColorChange{purple})
	require.NoError(t, err)

	ok, violations := ValidateTailwindConfig(out)
	require.True(t, ok, violations)
	assert.NotContains(t, out, "#123456")
	assert.Contains(t, out, "DEFAULT: '#800080'")
	assert.Contains(t, out, "accent: '#000000'")
	assert.Contains(t, out, "// don't touch the content globs")
	assert.Equal(t, 1, strings.Count(out, "primary:"))
	assert.True(t, strings.HasSuffix(out, "  plugins: [],\n}\n"))

	assert.Equal(t, strings.LastIndex(config, "}"), matchBrace(config, strings.Index(config, "export default {")+len("export default {")-1))
}

func TestInjectColors_ThemeColorsWithoutExtend(t *testing.T) {
	config := `module.exports = {
  content: ['./src/**/*.jsx'],
  theme: {
    colors: {
      white: '#ffffff',
    },
  },
}
`
	out, err := InjectColors(config, []models.ColorChange{{Type: "accent", Color: "#ff00ff", Hex: "#ff00ff", Target: "600"}})
	require.NoError(t, err)

	assert.Contains(t, out, "white: '#ffffff'")
	assert.Contains(t, out, "600: '#ff00ff'")
	assert.NotContains(t, out, "extend")
}

func TestInjectColors_NoTheme(t *testing.T) {
	_, err := InjectColors("export default { content: [] }", []models.ColorChange{purple})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExecute_PrimaryPurpleWithoutModel(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	request := testkit.Request(t, root, "make the primary color purple", tailwindScope(models.ColorChange{Type: "primary", Color: "purple"}))

	result, err := NewProcessor(nil).Execute(context.Background(), request)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, []string{"tailwind.config.js"}, result.ModifiedFiles)
	written := testkit.ReadFile(t, root, "tailwind.config.js")
	assert.Contains(t, written, "DEFAULT: '#800080'")
	assert.Contains(t, written, `"./src/**/*.{js,ts,jsx,tsx}"`)
	assert.NotContains(t, written, "var(--")
	require.NotNil(t, result.Tailwind)
	assert.Contains(t, result.Tailwind.Diff, "+")
	assert.Equal(t, "theme colors updated via injection", result.Changes[0].Details.Reasoning)
}

func TestExecute_ModelAnswerAccepted(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	answer := strings.Replace(testkit.TailwindConfig, "extend: {},", "extend: {\n      colors: { primary: { DEFAULT: '#800080' } },\n    },", 1)
	provider := mock.New("```js\n" + answer + "```")

	result, err := NewProcessor(provider).Execute(context.Background(), testkit.Request(t, root, "make the primary color purple", tailwindScope(purple)))
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, answer, testkit.ReadFile(t, root, "tailwind.config.js"))
	assert.Contains(t, provider.Requests[0].Prompt, "DEFAULT: '#800080'")
}

func TestExecute_RejectsCSSVariables(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	answer := strings.Replace(testkit.TailwindConfig, "extend: {},", "extend: { colors: { primary: 'hsl(var(--primary))' } },", 1)

	result, err := NewProcessor(mock.New("```js\n"+answer+"```")).Execute(context.Background(), testkit.Request(t, root, "purple", tailwindScope(purple)))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Reasoning, "hsl(var(--...))")
	assert.Contains(t, result.Reasoning, "#800080 not applied")
	assert.Equal(t, testkit.TailwindConfig, testkit.ReadFile(t, root, "tailwind.config.js"))
}

func TestExecute_RejectsDroppedContent(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	answer := "export default {\n  content: [\"./src/**/*.tsx\"],\n  theme: { extend: { colors: { primary: '#800080' } } },\n}\n"

	result, err := NewProcessor(mock.New("```js\n"+answer+"```")).Execute(context.Background(), testkit.Request(t, root, "purple", tailwindScope(purple)))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Tailwind.Violations, "content entry ./index.html removed")
}

func TestExecute_ModelErrorFallsBackToInjection(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())

	result, err := NewProcessor(mock.Failing(errors.New("down"))).Execute(context.Background(), testkit.Request(t, root, "purple", tailwindScope(purple)))
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecute_CreatesMissingConfig(t *testing.T) {
	root := testkit.WriteProject(t, map[string]string{"src/App.tsx": testkit.AppSource})

	result, err := NewProcessor(nil).Execute(context.Background(), testkit.Request(t, root, "purple", tailwindScope(purple)))
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, []string{"tailwind.config.js"}, result.AddedFiles)
	assert.True(t, result.Tailwind.Created)
	assert.Equal(t, models.ChangeCreated, result.Changes[0].Type)

	written := testkit.ReadFile(t, root, "tailwind.config.js")
	ok, violations := ValidateTailwindConfig(written)
	assert.True(t, ok, violations)
	assert.Contains(t, written, "primary: {")
}

func TestExecute_UnresolvableColor(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())

	result, err := NewProcessor(nil).Execute(context.Background(), testkit.Request(t, root, "x", tailwindScope(models.ColorChange{Type: "primary", Color: "blurple"})))
	require.NoError(t, err)
	assert.False(t, result.Success)
}
