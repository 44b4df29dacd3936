package full_file

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	providerModels "github.com/meysamhadeli/reactforge/providers/models"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/structure_validator"
	"github.com/sirupsen/logrus"
)

const systemPrompt = `You are an expert React and Tailwind CSS engineer editing an existing project.
Return the COMPLETE updated file in a single fenced code block and nothing else.
Keep every import, every export and the component name listed under "Must keep".
If the file needs no change for this request, answer exactly NO_CHANGES.`

// Processor rewrites whole files, highest relevance first, up to maxFiles.
type Processor struct {
	provider providerContracts.ICompletionProvider
	maxFiles int
}

func NewProcessor(provider providerContracts.ICompletionProvider, maxFiles int) contracts.IStrategyExecutor {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Processor{provider: provider, maxFiles: maxFiles}
}

func (p *Processor) Name() string { return strategies.NameFullFile }

func (p *Processor) Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	if p.provider == nil {
		return nil, strategies.ErrNoProvider
	}
	if request.Snapshot.IsEmpty() {
		return strategies.Failed("no project files to rewrite", nil), nil
	}

	candidates := SelectCandidates(request.Snapshot, request.Scope, request.Prompt, 0)
	if len(candidates) == 0 {
		return strategies.Failed("no files relevant to the request", nil), nil
	}

	result := &models.StrategyResult{}
	var lastErr error
	attempted := 0

	for _, file := range candidates {
		if len(result.ModifiedFiles) >= p.maxFiles {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		attempted++

		change, err := RewriteFile(ctx, p.provider, request.BasePath, file, BuildPrompt(file, request), strategies.NameFullFile)
		if err != nil {
			lastErr = err
			logrus.WithFields(logrus.Fields{"strategy": p.Name(), "file": file.RelativePath}).Warnf("rewrite failed: %v", err)
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
		result.Reasoning = fmt.Sprintf("rewrote %d of %d candidate file(s)", len(result.ModifiedFiles), attempted)
		return result, nil
	}
	// every candidate failed at the provider: escalate
	if lastErr != nil && len(result.Changes) == 0 {
		return result, fmt.Errorf("full file rewrite failed: %w", lastErr)
	}
	result.Reasoning = fmt.Sprintf("no acceptable rewrite among %d candidate file(s)", attempted)
	return result, nil
}

// SelectCandidates puts the scope's target files first, then the ranked rest.
// A limit of 0 means no limit.
func SelectCandidates(snapshot *codeModels.ProjectSnapshot, scope *models.ModificationScope, prompt string, limit int) []*codeModels.ProjectFile {
	seen := make(map[string]bool)
	var files []*codeModels.ProjectFile
	add := func(f *codeModels.ProjectFile) {
		if f == nil || seen[f.RelativePath] || !rewritable(f) {
			return
		}
		seen[f.RelativePath] = true
		files = append(files, f)
	}

	if scope != nil {
		for _, rel := range scope.TargetFiles {
			f, _ := snapshot.Get(rel)
			add(f)
		}
	}
	for _, f := range code_analyzer.RankFiles(snapshot, prompt, 0) {
		add(f)
	}

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files
}

func rewritable(f *codeModels.ProjectFile) bool {
	return f.FileType != codeModels.FileTypeTest && (f.IsScript() || f.FileType == codeModels.FileTypeStyle)
}

// BuildPrompt renders the rewrite request with the file's skeleton spelled out.
func BuildPrompt(file *codeModels.ProjectFile, request *models.StrategyRequest) string {
	return buildPrompt(file, request.Prompt, request.ConversationContext)
}

// BuildRawPrompt is the plain "file plus request" round trip.
func BuildRawPrompt(file *codeModels.ProjectFile, userPrompt string) string {
	return buildPrompt(file, userPrompt, "")
}

func buildPrompt(file *codeModels.ProjectFile, userPrompt, conversation string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\n", userPrompt)
	if conversation != "" {
		fmt.Fprintf(&b, "Recent changes:\n%s\n\n", conversation)
	}

	if file.IsScript() {
		b.WriteString("Must keep:\n")
		for _, imp := range file.Imports {
			fmt.Fprintf(&b, "- %s\n", imp)
		}
		for _, exp := range file.Exports {
			fmt.Fprintf(&b, "- %s\n", code_analyzer.ExportHead(exp))
		}
		if file.ComponentName != "" {
			fmt.Fprintf(&b, "- component %s\n", file.ComponentName)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "File: %s\n```%s\n%s\n```\n", file.RelativePath, fenceLanguage(file.RelativePath), file.Content)
	return b.String()
}

// RewriteFile runs one whole-file round trip. It returns the ledger entry for
// the attempt, or nil when the model declined to change the file. The error
// is set only when the provider call itself failed.
func RewriteFile(ctx context.Context, provider providerContracts.ICompletionProvider, basePath string, file *codeModels.ProjectFile, prompt, strategy string) (*models.ModificationChange, error) {
	if provider == nil {
		return nil, strategies.ErrNoProvider
	}
	response, err := provider.Complete(ctx, providerModels.CompletionRequest{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
	})
	if err != nil {
		return nil, err
	}
	if code_analyzer.IsNoChangeResponse(response.Text) {
		return nil, nil
	}

	candidate, err := code_analyzer.ExtractCodeFor(response.Text, file.RelativePath)
	if err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, strategy, "rewrite rejected: "+err.Error(), false, nil)
		return &change, nil
	}
	if strings.TrimSpace(candidate) == strings.TrimSpace(file.Content) {
		return nil, nil
	}

	final, repaired := candidate, false
	if file.IsScript() {
		final, repaired, err = structure_validator.ValidateAndRepair(ctx, file.RelativePath, file.Content, candidate)
		if err != nil {
			change := strategies.NewChange(models.ChangeModified, file.RelativePath, strategy, "rewrite rejected: structure not preserved", false,
				&models.ChangeDetails{Reasoning: err.Error()})
			return &change, nil
		}
	}

	if err := strategies.WriteProjectFile(basePath, file.RelativePath, final); err != nil {
		change := strategies.NewChange(models.ChangeModified, file.RelativePath, strategy, "write failed", false,
			&models.ChangeDetails{Reasoning: err.Error()})
		return &change, nil
	}

	reasoning := "structure preserved"
	if repaired {
		reasoning = "structure repaired after rewrite"
	}
	details := &models.ChangeDetails{LinesChanged: strategies.ChangedLines(file.Content, final), Reasoning: reasoning}
	if file.ComponentName != "" {
		details.Components = []string{file.ComponentName}
	}
	change := strategies.NewChange(models.ChangeModified, file.RelativePath, strategy, "rewrote file", true, details)
	return &change, nil
}

func fenceLanguage(relativePath string) string {
	switch {
	case strings.HasSuffix(relativePath, ".tsx"):
		return "tsx"
	case strings.HasSuffix(relativePath, ".ts"):
		return "ts"
	case strings.HasSuffix(relativePath, ".css"):
		return "css"
	}
	return "jsx"
}
