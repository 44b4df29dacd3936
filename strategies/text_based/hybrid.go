package text_based

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/utils"
)

const maxSnippets = 40

const hybridSystemPrompt = `You replace visible copy text inside JSX snippets.
For each snippet decide whether it shows the text to replace. If so, return the snippet rewritten with the new text, keeping all markup, attributes and expressions unchanged.
Respond with JSON only:
{"replacements": [{"id": 0, "replacement": "rewritten snippet", "confidence": 0.0-1.0}]}
Leave out snippets that should not change.`

// Snippet is a JSX text run, or the smallest element whose text is split
// across children, that mentions the search term.
type Snippet struct {
	ID        int
	File      *codeModels.ProjectFile
	Node      codeModels.JSXNode
	Fragments bool
}

type hybridAnswer struct {
	Replacements []struct {
		ID          int     `json:"id"`
		Replacement string  `json:"replacement"`
		Confidence  float64 `json:"confidence"`
	} `json:"replacements"`
}

// CollectSnippets finds text nodes containing search and, for text split
// over sibling nodes, the smallest element that contains all of it.
func CollectSnippets(nodes []codeModels.JSXNode, search string) []codeModels.JSXNode {
	needle := strings.ToLower(strings.Join(strings.Fields(search), " "))
	mentions := func(n codeModels.JSXNode) bool {
		return strings.Contains(strings.ToLower(n.Text), needle)
	}

	childMentions := make(map[int]bool)
	for _, n := range nodes {
		if n.ParentIndex >= 0 && mentions(n) {
			childMentions[n.ParentIndex] = true
		}
	}

	var found []codeModels.JSXNode
	for _, n := range nodes {
		if !mentions(n) {
			continue
		}
		switch n.Kind {
		case codeModels.NodeText:
			found = append(found, n)
		case codeModels.NodeElement:
			if !childMentions[n.Index] {
				found = append(found, n)
			}
		}
	}
	return found
}

// hybrid batches every snippet into one model call and applies the edits the
// model is confident about. An error means the model was unusable.
func (p *Processor) hybrid(ctx context.Context, request *models.StrategyRequest, files []*codeModels.ProjectFile, payload *models.TextReplacementPayload) (*models.StrategyResult, error) {
	contents := make(map[string]string)
	var snippets []Snippet

	for _, file := range files {
		if !file.IsScript() {
			continue
		}
		content, err := strategies.ReadProjectFile(request.BasePath, file.RelativePath)
		if err != nil {
			continue
		}
		contents[file.RelativePath] = content
		for _, n := range CollectSnippets(parseNodes(ctx, file.RelativePath, content), payload.SearchTerm) {
			if len(snippets) == maxSnippets {
				break
			}
			snippets = append(snippets, Snippet{ID: len(snippets), File: file, Node: n, Fragments: n.Kind == codeModels.NodeElement})
		}
	}
	if len(snippets) == 0 {
		return &models.StrategyResult{}, nil
	}

	response, err := p.provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: hybridSystemPrompt,
		Prompt:       buildHybridPrompt(payload, snippets),
	})
	if err != nil {
		return nil, err
	}
	var answer hybridAnswer
	if err := utils.ExtractJSON(response.Text, &answer); err != nil {
		return nil, err
	}

	editsByFile := make(map[string][]strategies.Edit)
	var order []string
	for _, r := range answer.Replacements {
		if r.ID < 0 || r.ID >= len(snippets) || r.Confidence < p.options.ConfidenceThreshold {
			continue
		}
		s := snippets[r.ID]
		content := contents[s.File.RelativePath]
		if s.Node.EndByte > len(content) || content[s.Node.StartByte:s.Node.EndByte] != s.Node.Code || r.Replacement == s.Node.Code {
			continue
		}
		if _, ok := editsByFile[s.File.RelativePath]; !ok {
			order = append(order, s.File.RelativePath)
		}
		editsByFile[s.File.RelativePath] = append(editsByFile[s.File.RelativePath], strategies.Edit{Start: s.Node.StartByte, End: s.Node.EndByte, Replacement: r.Replacement})
	}

	result := &models.StrategyResult{}
	for _, rel := range order {
		file, _ := request.Snapshot.Get(rel)
		before := contents[rel]
		edits, _ := strategies.DropOverlaps(editsByFile[rel])

		after, err := strategies.ApplyEdits(before, edits)
		if err != nil || (code_analyzer.HasSyntaxErrors(ctx, rel, []byte(after)) && !code_analyzer.HasSyntaxErrors(ctx, rel, []byte(before))) {
			result.Changes = append(result.Changes, strategies.NewChange(models.ChangeModified, rel, p.Name(), "text edits rejected", false,
				&models.ChangeDetails{Reasoning: "edited snippets do not parse"}))
			continue
		}
		if err := strategies.WriteProjectFile(request.BasePath, rel, after); err != nil {
			result.Changes = append(result.Changes, strategies.NewChange(models.ChangeModified, rel, p.Name(), "write failed", false,
				&models.ChangeDetails{Reasoning: err.Error()}))
			continue
		}

		result.ModifiedFiles = append(result.ModifiedFiles, rel)
		var components []string
		if file != nil {
			components = componentOf(file)
		}
		result.Changes = append(result.Changes, strategies.NewChange(models.ChangeModified, rel, p.Name(),
			fmt.Sprintf("replaced %q with %q in %d snippet(s)", payload.SearchTerm, payload.ReplacementTerm, len(edits)), true,
			&models.ChangeDetails{LinesChanged: strategies.ChangedLines(before, after), Components: components, Reasoning: "hybrid node match"}))
	}
	return result, nil
}

func buildHybridPrompt(payload *models.TextReplacementPayload, snippets []Snippet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Replace the text %q with %q.\n\nSnippets:\n", payload.SearchTerm, payload.ReplacementTerm)
	for _, s := range snippets {
		note := ""
		if s.Fragments {
			note = " (text split across child nodes)"
		}
		fmt.Fprintf(&b, "[%d] %s line %d%s:\n%s\n\n", s.ID, s.File.RelativePath, s.Node.StartLine, note, s.Node.Code)
	}
	return b.String()
}
