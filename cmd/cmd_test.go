package cmd

import (
	"testing"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/stretchr/testify/assert"
)

func TestComponentFromFile(t *testing.T) {
	page := componentFromFile("./src/pages/pricing.tsx", nil)
	assert.Equal(t, "Pricing", page.Name)
	assert.Equal(t, models.ComponentTypePage, page.Type)
	assert.Equal(t, "src/pages/pricing.tsx", page.FilePath)

	widget := componentFromFile("src/components/Banner.jsx", nil)
	assert.Equal(t, "Banner", widget.Name)
	assert.Equal(t, models.ComponentTypeComponent, widget.Type)

	hinted := componentFromFile("src/components/Hero.tsx", &models.ComponentAdditionPayload{Name: "HeroSection", Type: models.ComponentTypePage})
	assert.Equal(t, "HeroSection", hinted.Name)
	assert.Equal(t, models.ComponentTypePage, hinted.Type)
}

func TestIntegrationSummary(t *testing.T) {
	g := &models.GenerationResult{Name: "About"}
	assert.Equal(t, "About was not wired in", integrationSummary(g, &models.IntegrationResult{}))
	assert.Equal(t, "About wired in: route, nav link", integrationSummary(g, &models.IntegrationResult{RouteAdded: true, NavLinkAdded: true}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/work/.cache", resolvePath("/work", ".cache"))
	assert.Equal(t, "/tmp/db", resolvePath("/work", "/tmp/db"))
}
