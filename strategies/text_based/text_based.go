package text_based

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/meysamhadeli/reactforge/code_analyzer"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/strategies"
	"github.com/sirupsen/logrus"
)

// CandidateGlobs select the files searched for copy text.
var CandidateGlobs = []string{"*.tsx", "*.jsx", "*.js", "*.ts", "*.html"}

// Options tune the text replacement tiers.
type Options struct {
	// ConfidenceThreshold is the minimum model confidence for a hybrid edit.
	ConfidenceThreshold float64
	// WordBoundary restricts direct matches to whole words.
	WordBoundary bool
}

// Processor replaces copy text: model-scored node edits first, then direct
// string replacement when that changes nothing.
type Processor struct {
	provider providerContracts.ICompletionProvider
	options  Options
}

func NewProcessor(provider providerContracts.ICompletionProvider, options Options) contracts.IStrategyExecutor {
	if options.ConfidenceThreshold <= 0 {
		options.ConfidenceThreshold = 0.7
	}
	return &Processor{provider: provider, options: options}
}

func (p *Processor) Name() string { return strategies.NameTextBased }

func (p *Processor) Execute(ctx context.Context, request *models.StrategyRequest) (*models.StrategyResult, error) {
	payload := request.Scope.TextReplacement
	if payload == nil || payload.SearchTerm == "" || payload.ReplacementTerm == "" || payload.SearchTerm == payload.ReplacementTerm {
		return strategies.Failed("no usable search and replacement terms", nil), nil
	}

	files := candidateFiles(request.Snapshot)
	if len(files) == 0 {
		return strategies.Failed("no files to search", nil), nil
	}

	log := logrus.WithFields(logrus.Fields{"strategy": p.Name(), "search": payload.SearchTerm})

	result := &models.StrategyResult{}
	if p.provider != nil {
		hybrid, err := p.hybrid(ctx, request, files, payload)
		if err != nil {
			log.Warnf("hybrid replacement failed, using direct search: %v", err)
		} else {
			result.Changes = append(result.Changes, hybrid.Changes...)
			result.ModifiedFiles = append(result.ModifiedFiles, hybrid.ModifiedFiles...)
		}
	}

	tier := "hybrid"
	if len(result.ModifiedFiles) == 0 {
		tier = "direct"
		direct := p.direct(request.BasePath, files, payload)
		result.Changes = append(result.Changes, direct.Changes...)
		result.ModifiedFiles = append(result.ModifiedFiles, direct.ModifiedFiles...)
	}

	result.Success = len(result.ModifiedFiles) > 0
	if result.Success {
		result.Reasoning = fmt.Sprintf("replaced %q with %q in %d file(s) via %s search", payload.SearchTerm, payload.ReplacementTerm, len(result.ModifiedFiles), tier)
	} else {
		result.Reasoning = fmt.Sprintf("text %q not found in any of %d file(s)", payload.SearchTerm, len(files))
	}
	return result, nil
}

// direct scans raw file text for an exact match, then a case-insensitive
// one, and rewrites each file with the first tier that matches. Import
// lines are left alone.
func (p *Processor) direct(basePath string, files []*codeModels.ProjectFile, payload *models.TextReplacementPayload) *models.StrategyResult {
	result := &models.StrategyResult{}
	tiers := DirectTiers(payload.SearchTerm, p.options.WordBoundary)

	for _, file := range files {
		content, err := strategies.ReadProjectFile(basePath, file.RelativePath)
		if err != nil {
			continue
		}

		for _, tier := range tiers {
			updated, count := replaceOutsideImports(content, tier.pattern, payload.ReplacementTerm)
			if count == 0 {
				continue
			}
			if err := strategies.WriteProjectFile(basePath, file.RelativePath, updated); err != nil {
				result.Changes = append(result.Changes, strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(), "write failed", false,
					&models.ChangeDetails{Reasoning: err.Error()}))
				break
			}
			result.ModifiedFiles = append(result.ModifiedFiles, file.RelativePath)
			result.Changes = append(result.Changes, strategies.NewChange(models.ChangeModified, file.RelativePath, p.Name(),
				fmt.Sprintf("replaced %q with %q (%d occurrence(s))", payload.SearchTerm, payload.ReplacementTerm, count), true,
				&models.ChangeDetails{LinesChanged: strategies.ChangedLines(content, updated), Components: componentOf(file), Reasoning: "direct " + tier.name + " match"}))
			break
		}
	}
	return result
}

type directTier struct {
	name    string
	pattern *regexp.Regexp
}

// DirectTiers builds the exact and case-insensitive matchers.
func DirectTiers(search string, wordBoundary bool) []directTier {
	quoted := regexp.QuoteMeta(search)
	if wordBoundary {
		if isWordChar(search[0]) {
			quoted = `\b` + quoted
		}
		if isWordChar(search[len(search)-1]) {
			quoted += `\b`
		}
	}
	return []directTier{
		{name: "exact", pattern: regexp.MustCompile(quoted)},
		{name: "case-insensitive", pattern: regexp.MustCompile(`(?i)` + quoted)},
	}
}

var importLine = regexp.MustCompile(`^\s*(?:import\s|export\s.*\sfrom\s|export\s+\*)`)

func replaceOutsideImports(content string, pattern *regexp.Regexp, replacement string) (string, int) {
	lines := strings.Split(content, "\n")
	count := 0
	for i, line := range lines {
		if importLine.MatchString(line) {
			continue
		}
		n := len(pattern.FindAllStringIndex(line, -1))
		if n == 0 {
			continue
		}
		count += n
		lines[i] = pattern.ReplaceAllLiteralString(line, replacement)
	}
	return strings.Join(lines, "\n"), count
}

func candidateFiles(snapshot *codeModels.ProjectSnapshot) []*codeModels.ProjectFile {
	var files []*codeModels.ProjectFile
	for _, rel := range snapshot.Paths() {
		f := snapshot.Files[rel]
		if f.FileType == codeModels.FileTypeTest || f.FileType == codeModels.FileTypeConfig {
			continue
		}
		for _, glob := range CandidateGlobs {
			if ok, _ := path.Match(glob, path.Base(rel)); ok {
				files = append(files, f)
				break
			}
		}
	}
	return files
}

func componentOf(file *codeModels.ProjectFile) []string {
	if file.ComponentName == "" {
		return nil
	}
	return []string{file.ComponentName}
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseNodes parses current disk content; files that are not scripts yield none.
func parseNodes(ctx context.Context, rel, content string) []codeModels.JSXNode {
	nodes, err := code_analyzer.ParseJSXNodes(ctx, rel, []byte(content))
	if err != nil {
		return nil
	}
	return nodes
}
