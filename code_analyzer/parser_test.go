package code_analyzer

import (
	"context"
	"testing"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSXNodes_ElementsAndText(t *testing.T) {
	nodes, err := ParseJSXNodes(context.Background(), "src/App.tsx", []byte(appSource))
	require.NoError(t, err)

	var tags []string
	var texts []string
	for _, n := range nodes {
		if n.Kind == models.NodeElement {
			tags = append(tags, n.TagName)
		} else {
			texts = append(texts, n.Text)
		}
	}
	assert.Equal(t, []string{"div", "Header", "h1", "button"}, tags)
	assert.Equal(t, []string{"Welcome", "Sign in"}, texts)

	for _, n := range nodes {
		assert.Equal(t, appSource[n.StartByte:n.EndByte], n.Code)
		if n.TagName == "button" {
			assert.True(t, n.IsButton)
			assert.True(t, n.HasSignInText)
			assert.Equal(t, 9, n.StartLine)
		}
		if n.Kind == models.NodeText {
			assert.Equal(t, models.NodeElement, nodes[n.ParentIndex].Kind)
		}
	}
}

func TestParseJSXNodes_UnsupportedExtension(t *testing.T) {
	_, err := ParseJSXNodes(context.Background(), "src/index.css", []byte("body{}"))
	assert.Error(t, err)
}

func TestExtractOutline(t *testing.T) {
	outline := ExtractOutline(context.Background(), "src/App.tsx", []byte(appSource))

	assert.Equal(t, []string{"import React from 'react';", "import Header from './components/Header';"}, outline.Imports)
	assert.Equal(t, []string{"export default function App"}, outline.Exports)
	assert.Equal(t, []string{"react", "./components/Header"}, outline.Dependencies)
	assert.Equal(t, "App", outline.ComponentName)
	assert.True(t, outline.HasDefaultExport)
}

func TestExtractOutline_DefaultIdentifierExport(t *testing.T) {
	outline := ExtractOutline(context.Background(), "src/components/Header.jsx", []byte(headerSource))

	assert.Equal(t, []string{"export default Header"}, outline.Exports)
	assert.Equal(t, "Header", outline.ComponentName)
}

func TestExportHead(t *testing.T) {
	assert.Equal(t, "export const Card", ExportHead("export const Card = ({ title }: Props) => {\n  return null;\n};"))
	assert.Equal(t, "export { A, B }", ExportHead("export {\n  A,\n  B\n};"))
	assert.Equal(t, "export default App", ExportHead("export default App;"))
	assert.Equal(t, "export interface Props", ExportHead("export interface Props {\n  title: string;\n}"))
}

func TestDetectComponentName(t *testing.T) {
	assert.Equal(t, "Profile", DetectComponentName("function helper() {}\nconst Profile: React.FC<Props> = ({ name }) => <div/>;\nexport default Profile;"))
	assert.Equal(t, "Legacy", DetectComponentName("class Legacy extends React.Component {}"))
	assert.Equal(t, "", DetectComponentName("export const value = 3;"))
}
