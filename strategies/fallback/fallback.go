// Package fallback is the last LLM-backed tier: a plain whole-file round trip
// over the files that mention the prompt's keywords.
package fallback

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/meysamhadeli/reactforge/strategies/full_file"
	"github.com/sirupsen/logrus"
)

const (
	ReasonNoCandidates     = "no candidates"
	ReasonNoModifications  = "no applicable modifications"
	defaultCandidates      = 8
	defaultMaxModification = 5
)

var (
	authHints   = []string{"login", "log in", "sign in", "signin", "sign up", "auth", "password", "logout"}
	styleHints  = []string{"style", "color", "colour", "background", "font", "spacing", "theme", "dark mode"}
	buttonHints = []string{"button", "cta", "click"}
)

// Processor scores files with keyword presence and rewrites the best ones
// using the raw user prompt.
type Processor struct {
	provider         providerContracts.ICompletionProvider
	candidates       int
	maxModifications int
}

func NewProcessor(provider providerContracts.ICompletionProvider, candidates, maxModifications int) contracts.IStrategyExecutor {
	if candidates <= 0 {
		candidates = defaultCandidates
	}
	if maxModifications <= 0 {
		maxModifications = defaultMaxModification
	}
	return &Processor{provider: provider, candidates: candidates, maxModifications: maxModifications}
}

func (p *Processor) Name() string { return strategies.NameFallback }

func (p *Processor) Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	if p.provider == nil {
		return nil, strategies.ErrNoProvider
	}
	candidates := Candidates(request.Snapshot, request.Prompt, p.candidates)
	if len(candidates) == 0 {
		return strategies.Failed(ReasonNoCandidates, nil), nil
	}

	result := &models.StrategyResult{}
	var lastErr error
	for _, file := range candidates {
		if len(result.ModifiedFiles) >= p.maxModifications {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// earlier tiers may have touched the file
		current, err := strategies.ReadProjectFile(request.BasePath, file.RelativePath)
		if err != nil {
			continue
		}
		fresh := *file
		fresh.Content = current

		change, err := full_file.RewriteFile(ctx, p.provider, request.BasePath, &fresh, full_file.BuildRawPrompt(&fresh, request.Prompt), p.Name())
		if err != nil {
			lastErr = err
			logrus.WithFields(logrus.Fields{"strategy": p.Name(), "file": file.RelativePath}).Warnf("fallback rewrite failed: %v", err)
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
		result.Reasoning = fmt.Sprintf("fallback rewrote %d of %d candidate file(s)", len(result.ModifiedFiles), len(candidates))
		return result, nil
	}
	result.Reasoning = ReasonNoModifications
	if lastErr != nil {
		result.Reasoning = fmt.Sprintf("%s: %v", ReasonNoModifications, lastErr)
	}
	return result, nil
}

type scored struct {
	file  *codeModels.ProjectFile
	score int
}

// Score counts keyword hits: one per keyword found in the content, two per
// keyword in the file name, plus bonuses for the main file and for auth,
// style and button requests landing on matching files. Files without a
// keyword hit score zero.
func Score(file *codeModels.ProjectFile, keywords []string, prompt string) int {
	if file.FileType == codeModels.FileTypeTest || file.FileType == codeModels.FileTypeConfig || !(file.IsScript() || file.FileType == codeModels.FileTypeStyle) {
		return 0
	}
	lowerPrompt := strings.ToLower(prompt)
	content := strings.ToLower(file.Content)
	name := strings.ToLower(path.Base(file.RelativePath))

	score := 0
	for _, k := range keywords {
		if strings.Contains(content, k) {
			score++
		}
		if strings.Contains(name, k) {
			score += 2
		}
	}
	if score == 0 {
		return 0
	}

	if file.IsMainFile {
		score += 2
	}
	if hasAny(lowerPrompt, authHints) && (file.HasSignIn || hasAny(content, authHints)) {
		score += 2
	}
	if hasAny(lowerPrompt, styleHints) && (file.FileType == codeModels.FileTypeStyle || strings.Contains(content, "classname")) {
		score++
	}
	if hasAny(lowerPrompt, buttonHints) && file.HasButtons {
		score += 2
	}
	return score
}

// Candidates returns the top-scoring files, ties broken by path.
func Candidates(snapshot *codeModels.ProjectSnapshot, prompt string, limit int) []*codeModels.ProjectFile {
	if snapshot.IsEmpty() {
		return nil
	}
	keywords := code_analyzer.ExtractKeywords(prompt)

	var ranked []scored
	for _, rel := range snapshot.Paths() {
		f := snapshot.Files[rel]
		if s := Score(f, keywords, prompt); s > 0 {
			ranked = append(ranked, scored{file: f, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	files := make([]*codeModels.ProjectFile, len(ranked))
	for i, r := range ranked {
		files[i] = r.file
	}
	return files
}

func hasAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
