package component_generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/providers/mock"
	"github.com/meysamhadeli/reactforge/strategies/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerApp = `import { BrowserRouter, Routes, Route } from 'react-router-dom';
import Header from './components/Header';
import Home from './pages/Home';

export default function App() {
  return (
    <BrowserRouter>
      <Header />
      <Routes>
        <Route path="/" element={<Home />} />
      </Routes>
    </BrowserRouter>
  );
}
`

const homePage = "const Home = () => <h1>Home</h1>;\n\nexport default Home;\n"

func routerProject() map[string]string {
	return map[string]string{
		"src/App.tsx":               routerApp,
		"src/pages/Home.tsx":        homePage,
		"src/components/Header.tsx": testkit.HeaderSource,
		"tailwind.config.js":        testkit.TailwindConfig,
	}
}

func newGenerator(provider *mock.Provider) *Generator {
	g := &Generator{analyzer: code_analyzer.NewCodeAnalyzer("")}
	if provider != nil {
		g.provider = provider
	}
	return g
}

func TestDetectConventions(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())
	conv := DetectConventions(testkit.Snapshot(t, root))

	assert.Equal(t, ExportDefault, conv.ExportStyle)
	assert.Equal(t, ImportRelative, conv.ImportStyle)
	assert.Equal(t, RoutingReactRouter, conv.RoutingLib)
	assert.Equal(t, []string{"/"}, conv.Routes)
	assert.Equal(t, ".tsx", conv.Extension)
	assert.Equal(t, "src/pages", conv.PagesDir)
	assert.Equal(t, "src/components", conv.ComponentsDir)
	assert.Equal(t, "src/App.tsx", conv.EntryFile)
	assert.Equal(t, "src/App.tsx", conv.RoutingFile)
	assert.Equal(t, "src/components/Header.tsx", conv.NavFile)
}

func TestDetectConventions_EmptyProject(t *testing.T) {
	conv := DetectConventions(testkit.Snapshot(t, t.TempDir()))
	assert.Equal(t, RoutingNone, conv.RoutingLib)
	assert.Equal(t, "src/pages", conv.PagesDir)
	assert.Empty(t, conv.NavFile)
}

func TestRun_AddsAboutPage(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())

	details, err := newGenerator(nil).Run(context.Background(), root, "Add an About page", nil)
	require.NoError(t, err)

	gen, integ := details.Generation, details.Integration
	assert.Equal(t, "About", gen.Name)
	assert.Equal(t, models.ComponentTypePage, gen.Type)
	assert.Equal(t, "src/pages/About.tsx", gen.FilePath)
	assert.Equal(t, "/about", gen.RoutePath)
	assert.Contains(t, testkit.ReadFile(t, root, "src/pages/About.tsx"), "export default About;")

	assert.True(t, integ.RouteAdded)
	assert.True(t, integ.NavLinkAdded)
	assert.ElementsMatch(t, []string{"src/App.tsx", "src/components/Header.tsx"}, integ.ModifiedFiles)

	app := testkit.ReadFile(t, root, "src/App.tsx")
	assert.Contains(t, app, "import Home from './pages/Home';\nimport About from './pages/About';")
	assert.Contains(t, app, "        <Route path=\"/about\" element={<About />} />\n      </Routes>")

	header := testkit.ReadFile(t, root, "src/components/Header.tsx")
	assert.Contains(t, header, "        <Link to=\"/\">Home</Link>\n        <Link to=\"/about\">About</Link>")
	assert.Equal(t, 1, strings.Count(header, `to="/about"`))
}

func TestIntegrateOnly_IsIdempotent(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())
	g := newGenerator(nil)

	gen, err := g.AnalyzeOnly(context.Background(), root, "Add an About page", nil)
	require.NoError(t, err)
	_, err = g.IntegrateOnly(context.Background(), root, gen)
	require.NoError(t, err)

	again, err := g.IntegrateOnly(context.Background(), root, gen)
	require.NoError(t, err)
	assert.False(t, again.RouteAdded)
	assert.False(t, again.NavLinkAdded)
	assert.Empty(t, again.ModifiedFiles)
	assert.Contains(t, again.SkipReasons, "route /about already registered")
	assert.Contains(t, again.SkipReasons, "navigation in src/components/Header.tsx already links to /about")

	assert.Equal(t, 1, strings.Count(testkit.ReadFile(t, root, "src/components/Header.tsx"), `to="/about"`))
	assert.Equal(t, 1, strings.Count(testkit.ReadFile(t, root, "src/App.tsx"), `path="/about"`))
}

func TestIntegrateOnly_SkipsExistingNavLink(t *testing.T) {
	files := routerProject()
	files["src/components/Header.tsx"] = strings.Replace(testkit.HeaderSource,
		`<Link to="/">Home</Link>`, "<Link to=\"/\">Home</Link>\n        <Link to=\"/About/\">About us</Link>", 1)
	root := testkit.WriteProject(t, files)

	details, err := newGenerator(nil).Run(context.Background(), root, "Add an About page", nil)
	require.NoError(t, err)

	assert.True(t, details.Integration.RouteAdded)
	assert.False(t, details.Integration.NavLinkAdded)
	assert.Equal(t, []string{"src/App.tsx"}, details.Integration.ModifiedFiles)
}

func TestIntegrateOnly_KeepsRouteWhenNavEditBreaksSyntax(t *testing.T) {
	// a second top-level Link would need a wrapper element
	bareHeader := "import { Link } from 'react-router-dom';\n\nconst Header = () => {\n  return (\n    <Link to=\"/\">Home</Link>\n  );\n};\n\nexport default Header;\n"
	files := routerProject()
	files["src/components/Header.tsx"] = bareHeader
	root := testkit.WriteProject(t, files)

	details, err := newGenerator(nil).Run(context.Background(), root, "Add an About page", nil)
	require.NoError(t, err)

	integ := details.Integration
	assert.True(t, integ.RouteAdded)
	assert.False(t, integ.NavLinkAdded)
	assert.Equal(t, []string{"src/App.tsx"}, integ.ModifiedFiles)
	assert.Contains(t, integ.SkipReasons, "edits to src/components/Header.tsx would break its syntax")
	assert.Contains(t, testkit.ReadFile(t, root, "src/App.tsx"), `path="/about"`)
	assert.Equal(t, bareHeader, testkit.ReadFile(t, root, "src/components/Header.tsx"))
}

func TestRun_AddsComponentUsage(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())

	details, err := newGenerator(nil).Run(context.Background(), root, "create a Newsletter section", nil)
	require.NoError(t, err)

	assert.Equal(t, "NewsletterSection", details.Generation.Name)
	assert.Equal(t, "src/components/NewsletterSection.tsx", details.Generation.FilePath)
	assert.True(t, details.Integration.UsageAdded)

	app := testkit.ReadFile(t, root, "src/App.tsx")
	assert.Contains(t, app, "import NewsletterSection from './components/NewsletterSection';")
	assert.Contains(t, app, "      <NewsletterSection />\n    </BrowserRouter>")
}

func TestAnalyzeOnly_UsesModelOutput(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())
	generated := "const Contact = () => {\n  return <section className=\"p-8\"><h1>Contact</h1></section>;\n};\n\nexport default Contact;\n"
	provider := mock.New(testkit.Fenced(generated))

	gen, err := newGenerator(provider).AnalyzeOnly(context.Background(), root, "create a Contact page", nil)
	require.NoError(t, err)

	assert.Equal(t, generated, gen.Content)
	assert.Equal(t, generated, testkit.ReadFile(t, root, "src/pages/Contact.tsx"))
	prompt := provider.Requests[0].Prompt
	assert.Contains(t, prompt, "Existing routes: /")
	assert.Contains(t, prompt, "src/App.tsx:")
	assert.Contains(t, prompt, "<BrowserRouter>")
}

func TestAnalyzeOnly_FallsBackToTemplate(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())

	gen, err := newGenerator(mock.Failing(errors.New("down"))).AnalyzeOnly(context.Background(), root, "create a Contact page", nil)
	require.NoError(t, err)
	assert.Contains(t, gen.Content, "const Contact = () => {")

	wrongName := mock.New(testkit.Fenced("export default function Other() { return null }\n"))
	gen, err = newGenerator(wrongName).AnalyzeOnly(context.Background(), root, "create a Pricing page", nil)
	require.NoError(t, err)
	assert.Contains(t, gen.Content, "const Pricing = () => {")
}

func TestAnalyzeOnly_HintWins(t *testing.T) {
	root := testkit.WriteProject(t, routerProject())
	hint := &models.ComponentAdditionPayload{Name: "Storefront", Type: models.ComponentTypeApp}

	gen, err := newGenerator(nil).AnalyzeOnly(context.Background(), root, "build a shop app", hint)
	require.NoError(t, err)
	assert.Equal(t, "Storefront", gen.Name)
	assert.Equal(t, models.ComponentTypePage, gen.Type)
	assert.Equal(t, 0.9, gen.Confidence)
}

func TestRun_NoRouter(t *testing.T) {
	root := testkit.WriteProject(t, map[string]string{"src/App.tsx": testkit.AppSource})

	details, err := newGenerator(nil).Run(context.Background(), root, "Add an About page", nil)
	require.NoError(t, err)
	assert.False(t, details.Integration.RouteAdded)
	assert.Contains(t, details.Integration.SkipReasons, "no router in project; /about not registered")
	assert.Contains(t, details.Integration.SkipReasons, "no navigation file")
	assert.Empty(t, details.Integration.ModifiedFiles)
}

func TestTemplateContent_NamedExport(t *testing.T) {
	content, err := TemplateContent(models.ComponentTypeComponent, "Badge", ExportNamed)
	require.NoError(t, err)
	assert.Contains(t, content, "export const Badge = (")
	assert.NotContains(t, content, "export default")
}

func TestInsertRoute_ObjectRouter(t *testing.T) {
	content := "const router = createBrowserRouter([\n  { path: \"/\", element: <Home /> },\n]);\n"
	updated, ok := insertRoute(content, "About", "/about")
	require.True(t, ok)
	assert.Equal(t, "const router = createBrowserRouter([\n  { path: \"/\", element: <Home /> },\n  { path: \"/about\", element: <About /> },\n]);\n", updated)
}

func TestImportStatement(t *testing.T) {
	assert.Equal(t, "import About from './pages/About';", ImportStatement("src/App.tsx", "src/pages/About.tsx", "About", true, ImportRelative))
	assert.Equal(t, "import { Card } from '../components/Card';", ImportStatement("src/pages/Shop.tsx", "src/components/Card.tsx", "Card", false, ImportRelative))
	assert.Equal(t, "import Card from '@/components/Card';", ImportStatement("src/pages/Shop.tsx", "src/components/Card.tsx", "Card", true, ImportAlias))
	assert.Equal(t, "import Card from './src/components/Card';", ImportStatement("main.tsx", "src/components/Card.tsx", "Card", true, ImportRelative))
}

func TestInsertImport(t *testing.T) {
	content := "import React from 'react';\n\nexport const A = () => null;\n"
	updated := InsertImport(content, "import B from './B';", "B")
	assert.Equal(t, "import React from 'react';\nimport B from './B';\n\nexport const A = () => null;\n", updated)
	assert.Equal(t, updated, InsertImport(updated, "import B from './B';", "B"))

	bare := "'use client';\nexport const A = () => null;\n"
	assert.Equal(t, "'use client';\nimport B from './B';\n\nexport const A = () => null;\n", InsertImport(bare, "import B from './B';", "B"))
}

func TestRoutes(t *testing.T) {
	assert.Equal(t, "/contact-us", RouteFor("ContactUs"))
	assert.Equal(t, "/about", NormalizeRoute("/About/"))
	assert.Equal(t, "/about", NormalizeRoute("about?ref=nav"))
	assert.Equal(t, "/", NormalizeRoute("/"))

	assert.True(t, NavLinksTo(`<a href="/about#team">Team</a>`, "/about"))
	assert.True(t, NavLinksTo(`<NavLink to={'/About'}>About</NavLink>`, "/about"))
	assert.False(t, NavLinksTo(`<Link to="/aboutus">About</Link>`, "/about"))
}
