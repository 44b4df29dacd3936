package emergency

import (
	"context"
	"strings"
	"testing"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/strategies/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_CreatesPage(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())

	result, err := NewCreator().Execute(context.Background(), testkit.Request(t, root, "create an About page", nil))
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, []string{"src/pages/About.tsx"}, result.AddedFiles)
	content := testkit.ReadFile(t, root, "src/pages/About.tsx")
	assert.Contains(t, content, "const About = () => {")
	assert.Contains(t, content, "export default About;")
	assert.Equal(t, 2, strings.Count(content, "<section"))
	assert.False(t, code_analyzer.HasSyntaxErrors(context.Background(), "src/pages/About.tsx", []byte(content)))

	require.Len(t, result.Changes, 1)
	assert.Equal(t, models.ChangeCreated, result.Changes[0].Type)
	assert.Equal(t, []string{"About"}, result.Changes[0].Details.Components)
}

func TestExecute_CreatesComponentWithProps(t *testing.T) {
	root := testkit.WriteProject(t, testkit.DefaultProject())
	scope := &models.ModificationScope{
		Kind:      models.ScopeComponentAddition,
		Reasoning: "addition",
		Component: &models.ComponentAdditionPayload{Name: "PricingCard", Type: models.ComponentTypeComponent},
	}

	result, err := NewCreator().Execute(context.Background(), testkit.Request(t, root, "add a pricing card", scope))
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, []string{"src/components/PricingCard.tsx"}, result.AddedFiles)
	content := testkit.ReadFile(t, root, "src/components/PricingCard.tsx")
	assert.Contains(t, content, "interface PricingCardProps {")
	assert.Contains(t, content, "title = 'Pricing Card'")
	assert.Contains(t, content, "${className}")
	assert.False(t, code_analyzer.HasSyntaxErrors(context.Background(), "src/components/PricingCard.tsx", []byte(content)))
}

func TestExecute_PicksFreeName(t *testing.T) {
	files := testkit.DefaultProject()
	files["src/pages/About.tsx"] = "export default function About() { return null }\n"
	root := testkit.WriteProject(t, files)

	result, err := NewCreator().Execute(context.Background(), testkit.Request(t, root, "create an About page", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/pages/About2.tsx"}, result.AddedFiles)
	assert.Contains(t, testkit.ReadFile(t, root, "src/pages/About2.tsx"), "const About2 = () => {")
	assert.Equal(t, "export default function About() { return null }\n", testkit.ReadFile(t, root, "src/pages/About.tsx"))
}

func TestTarget(t *testing.T) {
	name, kind := Target("build me a dashboard", nil)
	assert.Equal(t, "Dashboard", name)
	assert.Equal(t, models.ComponentTypePage, kind)

	name, kind = Target("make it nicer", nil)
	assert.Equal(t, "NewComponent", name)
	assert.Equal(t, models.ComponentTypeComponent, kind)

	scope := &models.ModificationScope{Component: &models.ComponentAdditionPayload{Name: "Shop", Type: models.ComponentTypeApp}}
	name, kind = Target("create a shop app", scope)
	assert.Equal(t, "Shop", name)
	assert.Equal(t, models.ComponentTypePage, kind)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Contact Us", Title("ContactUs"))
	assert.Equal(t, "About", Title("About"))
	assert.Equal(t, "Order History", Title("OrderHistory"))
}
