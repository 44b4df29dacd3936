package targeted_nodes

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/strategies/full_file"
	"github.com/meysamhadeli/reactforge/structure_validator"
	"github.com/meysamhadeli/reactforge/utils"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

const (
	maxListedNodes   = 150
	maxSnippetLength = 240
)

const systemPrompt = `You edit specific JSX elements of a React + Tailwind file.
You get a numbered list of elements with their line ranges and source.
Pick only the elements that must change for the request and give replacement source for each.
Respond with JSON only:
{"edits": [{"nodeIndex": 3, "originalCode": "exact current source of that element", "replacementCode": "new source", "reason": "short"}]}
Elements shown truncated carry a hash; for those send "nodeHash": "<hash>" instead of originalCode.
If nothing in this file should change, respond with {"edits": []}.`

// NodeEdit is one model-proposed replacement. NodeIndex and the line range
// are hints; OriginalCode or NodeHash is what gets matched.
type NodeEdit struct {
	NodeIndex       int    `json:"nodeIndex"`
	NodeHash        string `json:"nodeHash,omitempty"`
	OriginalCode    string `json:"originalCode"`
	ReplacementCode string `json:"replacementCode"`
	Reason          string `json:"reason"`
}

type nodeEditResponse struct {
	Edits []NodeEdit `json:"edits"`
}

// Processor patches individual JSX nodes instead of rewriting files.
type Processor struct {
	provider            providerContracts.ICompletionProvider
	maxFiles            int
	similarityThreshold float64
}

func NewProcessor(provider providerContracts.ICompletionProvider, maxFiles int, similarityThreshold float64) contracts.IStrategyExecutor {
	if maxFiles <= 0 {
		maxFiles = 3
	}
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = 0.8
	}
	return &Processor{provider: provider, maxFiles: maxFiles, similarityThreshold: similarityThreshold}
}

func (p *Processor) Name() string { return strategies.NameTargetedNodes }

func (p *Processor) Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	if p.provider == nil {
		return nil, strategies.ErrNoProvider
	}
	if request.Snapshot.IsEmpty() {
		return strategies.Failed("no project files to patch", nil), nil
	}

	var candidates []*codeModels.ProjectFile
	for _, f := range full_file.SelectCandidates(request.Snapshot, request.Scope, request.Prompt, 0) {
		if f.IsScript() && len(f.Elements) > 0 {
			candidates = append(candidates, f)
		}
		if len(candidates) == p.maxFiles {
			break
		}
	}
	if len(candidates) == 0 {
		return strategies.Failed("no files with JSX elements match the request", nil), nil
	}

	result := &models.StrategyResult{}
	var lastErr error
	providerFailures := 0

	for _, file := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		log := logrus.WithFields(logrus.Fields{"strategy": p.Name(), "file": file.RelativePath})

		change, err := p.patchFile(ctx, request, file)
		if err != nil {
			lastErr = err
			providerFailures++
			log.Warnf("node patch failed: %v", err)
			continue
		}
		if change == nil {
			continue
		}
		result.Changes = append(result.Changes, *change)
		if change.Success {
			result.ModifiedFiles = append(result.ModifiedFiles, file.RelativePath)
		}
	}

	result.Success = len(result.ModifiedFiles) > 0
	if result.Success {
		result.Reasoning = fmt.Sprintf("patched nodes in %d file(s)", len(result.ModifiedFiles))
		return result, nil
	}
	if providerFailures == len(candidates) {
		return result, fmt.Errorf("targeted node patch failed: %w", lastErr)
	}
	result.Reasoning = "no node edits could be applied"
	return result, nil
}

// patchFile re-reads and re-parses the file so ranges reflect current disk
// content, asks for node edits and splices them in.
func (p *Processor) patchFile(ctx context.Context, request *models.StrategyRequest, file *codeModels.ProjectFile) (*models.ModificationChange, error) {
	content, err := strategies.ReadProjectFile(request.BasePath, file.RelativePath)
	if err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "read failed", false, &models.ChangeDetails{Reasoning: err.Error()})
		return &change, nil
	}
	nodes, err := code_analyzer.ParseJSXNodes(ctx, file.RelativePath, []byte(content))
	if err != nil || len(nodes) == 0 {
		return nil, nil
	}

	response, err := p.provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: systemPrompt,
		Prompt:       buildPrompt(request, file.RelativePath, nodes),
	})
	if err != nil {
		return nil, err
	}
	if code_analyzer.IsNoChangeResponse(response.Text) {
		return nil, nil
	}

	var proposed nodeEditResponse
	if err := utils.ExtractJSON(response.Text, &proposed); err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "node edits unreadable", false, &models.ChangeDetails{Reasoning: err.Error()})
		return &change, nil
	}
	if len(proposed.Edits) == 0 {
		return nil, nil
	}

	var edits []strategies.Edit
	unresolved := 0
	for _, e := range proposed.Edits {
		edit, ok := ResolveEdit(content, nodes, e, p.similarityThreshold)
		if !ok {
			unresolved++
			continue
		}
		edits = append(edits, edit)
	}
	edits, dropped := strategies.DropOverlaps(edits)
	if len(edits) == 0 {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "proposed nodes not found in current content", false,
			&models.ChangeDetails{Reasoning: fmt.Sprintf("%d edit(s) could not be matched", unresolved)})
		return &change, nil
	}

	updated, err := strategies.ApplyEdits(content, edits)
	if err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "node edits rejected", false, &models.ChangeDetails{Reasoning: err.Error()})
		return &change, nil
	}
	if updated == content {
		return nil, nil
	}

	if !code_analyzer.HasSyntaxErrors(ctx, file.RelativePath, []byte(content)) && code_analyzer.HasSyntaxErrors(ctx, file.RelativePath, []byte(updated)) {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "node edits rejected: result does not parse", false, nil)
		return &change, nil
	}
	final, repaired, err := structure_validator.ValidateAndRepair(ctx, file.RelativePath, content, updated)
	if err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "node edits rejected: structure not preserved", false, &models.ChangeDetails{Reasoning: err.Error()})
		return &change, nil
	}

	if err := strategies.WriteProjectFile(request.BasePath, file.RelativePath, final); err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "write failed", false, &models.ChangeDetails{Reasoning: err.Error()})
		return &change, nil
	}

	reasoning := fmt.Sprintf("applied %d node edit(s)", len(edits))
	if unresolved+dropped > 0 {
		reasoning += fmt.Sprintf(", skipped %d", unresolved+dropped)
	}
	if repaired {
		reasoning += ", structure repaired"
	}
	details := &models.ChangeDetails{LinesChanged: strategies.ChangedLines(content, final), Reasoning: reasoning}
	if file.ComponentName != "" {
		details.Components = []string{file.ComponentName}
	}
	change := strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), describeEdits(proposed.Edits), true, details)
	return &change, nil
}

// nodeByHash finds the node a hash reference points at, provided its bytes in
// content still hash the same.
func nodeByHash(content string, nodes []codeModels.JSXNode, ref string) (codeModels.JSXNode, bool) {
	want, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(ref), "0x"), 16, 64)
	if err != nil {
		return codeModels.JSXNode{}, false
	}
	for _, n := range nodes {
		if n.Hash == want && n.EndByte <= len(content) && xxh3.HashString(content[n.StartByte:n.EndByte]) == want {
			return n, true
		}
	}
	return codeModels.JSXNode{}, false
}

// ResolveEdit maps a proposed edit onto a byte range of content. A NodeHash
// reference wins when it still matches. The node at
// NodeIndex is trusted only when its source hashes the same as OriginalCode;
// otherwise the snippet is located by exact search, then by the most similar
// node at or above threshold.
func ResolveEdit(content string, nodes []codeModels.JSXNode, edit NodeEdit, threshold float64) (strategies.Edit, bool) {
	if edit.NodeHash != "" {
		if n, ok := nodeByHash(content, nodes, edit.NodeHash); ok {
			return strategies.Edit{Start: n.StartByte, End: n.EndByte, Replacement: edit.ReplacementCode}, true
		}
	}

	original := edit.OriginalCode
	if original == "" && edit.NodeIndex >= 0 && edit.NodeIndex < len(nodes) {
		original = nodes[edit.NodeIndex].Code
	}
	if original == "" {
		return strategies.Edit{}, false
	}
	hash := xxh3.HashString(original)

	if edit.NodeIndex >= 0 && edit.NodeIndex < len(nodes) {
		n := nodes[edit.NodeIndex]
		if n.Hash == hash && n.EndByte <= len(content) && content[n.StartByte:n.EndByte] == original {
			return strategies.Edit{Start: n.StartByte, End: n.EndByte, Replacement: edit.ReplacementCode}, true
		}
	}
	for _, n := range nodes {
		if n.Hash == hash && n.EndByte <= len(content) {
			return strategies.Edit{Start: n.StartByte, End: n.EndByte, Replacement: edit.ReplacementCode}, true
		}
	}

	if i := strings.Index(content, original); i >= 0 && strings.Count(content, original) == 1 {
		return strategies.Edit{Start: i, End: i + len(original), Replacement: edit.ReplacementCode}, true
	}

	wantElement := strings.HasPrefix(strings.TrimSpace(original), "<")
	best, bestScore := -1, 0.0
	for i, n := range nodes {
		if wantElement != (n.Kind == codeModels.NodeElement) {
			continue
		}
		if score := utils.Similarity(n.Code, original); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore >= threshold {
		n := nodes[best]
		return strategies.Edit{Start: n.StartByte, End: n.EndByte, Replacement: edit.ReplacementCode}, true
	}
	return strategies.Edit{}, false
}

func buildPrompt(request *models.StrategyRequest, relativePath string, nodes []codeModels.JSXNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\n", request.Prompt)
	if request.ConversationContext != "" {
		fmt.Fprintf(&b, "Recent changes:\n%s\n\n", request.ConversationContext)
	}
	fmt.Fprintf(&b, "File: %s\nElements:\n", relativePath)

	listed := 0
	for _, n := range nodes {
		if n.Kind != codeModels.NodeElement {
			continue
		}
		if listed == maxListedNodes {
			b.WriteString("... (more elements omitted)\n")
			break
		}
		listed++

		flags := ""
		if n.IsButton {
			flags += " button"
		}
		if n.HasSignInText {
			flags += " sign-in"
		}
		code, truncated := shorten(n.Code, maxSnippetLength)
		if truncated {
			flags += fmt.Sprintf(" truncated hash=%016x", n.Hash)
		}
		fmt.Fprintf(&b, "[%d] <%s> lines %d-%d%s\n%s\n\n", n.Index, n.TagName, n.StartLine, n.EndLine, flags, indent(code))
	}
	return b.String()
}

// shorten cuts code to at most limit runes.
func shorten(code string, limit int) (string, bool) {
	count := 0
	for i := range code {
		if count == limit {
			return code[:i] + "...", true
		}
		count++
	}
	return code, false
}

func describeEdits(edits []NodeEdit) string {
	var reasons []string
	for _, e := range edits {
		if r := strings.TrimSpace(e.Reason); r != "" {
			reasons = append(reasons, r)
		}
	}
	if len(reasons) == 0 {
		return "patched JSX nodes"
	}
	return strings.Join(reasons, "; ")
}

func indent(code string) string {
	return "    " + strings.ReplaceAll(code, "\n", "\n    ")
}
