package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	hex, ok := ParseColor("purple")
	require.True(t, ok)
	assert.Equal(t, "#800080", hex)

	hex, ok = ParseColor("#ABC")
	require.True(t, ok)
	assert.Equal(t, "#aabbcc", hex)

	hex, ok = ParseColor("hsl(0, 100%, 50%)")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", hex)

	_, ok = ParseColor("blurple")
	assert.False(t, ok)
}

func TestNamedColorHex_LightDark(t *testing.T) {
	base, _ := NamedColorHex("blue")
	light, ok := NamedColorHex("light blue")
	require.True(t, ok)
	dark, ok := NamedColorHex("dark-blue")
	require.True(t, ok)

	assert.NotEqual(t, base, light)
	assert.NotEqual(t, base, dark)
}

func TestFindColors(t *testing.T) {
	matches := FindColors("make primary dark blue, accent #ff00ff and text hsl(120, 100%, 25%)")
	require.Len(t, matches, 3)
	assert.Equal(t, "dark blue", matches[0].Raw)
	assert.Equal(t, "#ff00ff", matches[1].Hex)
	assert.Equal(t, "#008000", matches[2].Hex)

	assert.Empty(t, FindColors("make the header sticky"))
}

func TestShadeRamp(t *testing.T) {
	ramp, ok := ShadeRamp("#800080")
	require.True(t, ok)
	assert.Len(t, ramp, 10)
	assert.Equal(t, "#800080", ramp["500"])
	for _, step := range ShadeSteps {
		assert.Regexp(t, `^#[0-9a-f]{6}$`, ramp[step])
	}
	assert.NotEqual(t, ramp["50"], ramp["900"])

	_, ok = ShadeRamp("nope")
	assert.False(t, ok)
}
