package code_analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer/models"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/zeebo/xxh3"
)

var signInPattern = regexp.MustCompile(`(?i)\b(sign[\s-]?in|log[\s-]?in|signin|login)\b`)

// languageFor picks the grammar by extension. JSX lives in .tsx, .jsx and .js files.
func languageFor(relativePath string) (*sitter.Language, bool) {
	switch strings.ToLower(filepath.Ext(relativePath)) {
	case ".tsx":
		return tsx.GetLanguage(), true
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage(), true
	case ".jsx", ".js", ".mjs", ".cjs":
		return javascript.GetLanguage(), true
	}
	return nil, false
}

// ParseTree parses a script file and returns its root node. The parser is
// created per call since tree-sitter parsers are not safe for concurrent use.
func ParseTree(ctx context.Context, relativePath string, content []byte) (*sitter.Node, error) {
	lang, ok := languageFor(relativePath)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", relativePath)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", relativePath, err)
	}
	return tree.RootNode(), nil
}

// ParseJSXNodes lists JSX elements and non-blank text runs in document order.
func ParseJSXNodes(ctx context.Context, relativePath string, content []byte) ([]models.JSXNode, error) {
	root, err := ParseTree(ctx, relativePath, content)
	if err != nil {
		return nil, err
	}

	var nodes []models.JSXNode
	var walk func(n *sitter.Node, depth int, parent int)
	walk = func(n *sitter.Node, depth int, parent int) {
		switch n.Type() {
		case "jsx_element", "jsx_self_closing_element":
			node := newJSXNode(n, content, models.NodeElement, depth, parent)
			node.TagName = tagName(n, content)
			node.Index = len(nodes)
			node.IsButton = isButton(node.TagName, node.Code)
			node.HasSignInText = signInPattern.MatchString(node.Text)
			nodes = append(nodes, node)
			parent = node.Index
			depth++
		case "jsx_text":
			if strings.TrimSpace(n.Content(content)) != "" {
				nodes = append(nodes, textNode(n, content, depth, parent, len(nodes)))
			}
			return
		case "string", "template_string":
			if p := n.Parent(); p != nil && p.Type() == "jsx_expression" && parent >= 0 {
				nodes = append(nodes, textNode(n, content, depth, parent, len(nodes)))
			}
			return
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i), depth, parent)
		}
	}
	walk(root, 0, -1)

	return nodes, nil
}

func newJSXNode(n *sitter.Node, content []byte, kind models.NodeKind, depth, parent int) models.JSXNode {
	code := n.Content(content)
	start, end := n.StartPoint(), n.EndPoint()
	return models.JSXNode{
		Kind:        kind,
		Code:        code,
		Text:        collapseSpace(visibleText(n, content)),
		StartByte:   int(n.StartByte()),
		EndByte:     int(n.EndByte()),
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
		Depth:       depth,
		ParentIndex: parent,
		Hash:        xxh3.HashString(code),
	}
}

func textNode(n *sitter.Node, content []byte, depth, parent, index int) models.JSXNode {
	node := newJSXNode(n, content, models.NodeText, depth, parent)
	node.Index = index
	node.Text = collapseSpace(strings.Trim(n.Content(content), "\"'`"))
	node.HasSignInText = signInPattern.MatchString(node.Text)
	return node
}

func tagName(n *sitter.Node, content []byte) string {
	target := n
	if n.Type() == "jsx_element" {
		target = nil
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c.Type() == "jsx_opening_element" {
				target = c
				break
			}
		}
	}
	if target == nil {
		return ""
	}
	if name := target.ChildByFieldName("name"); name != nil {
		return name.Content(content)
	}
	return ""
}

// visibleText concatenates the jsx_text descendants of n.
func visibleText(n *sitter.Node, content []byte) string {
	var parts []string
	var walk func(c *sitter.Node)
	walk = func(c *sitter.Node) {
		if c.Type() == "jsx_text" {
			if t := strings.TrimSpace(c.Content(content)); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			walk(c.NamedChild(i))
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func isButton(tag, code string) bool {
	lower := strings.ToLower(tag)
	if lower == "button" || strings.HasSuffix(lower, "button") {
		return true
	}
	head := code
	if i := strings.Index(code, ">"); i >= 0 {
		head = code[:i]
	}
	return strings.Contains(head, `role="button"`)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
