// Package strategies holds what every modification strategy shares: file
// access under the project root, ledger entry construction and byte-range
// edits.
package strategies

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	NameFullFile          = "full_file"
	NameTargetedNodes     = "targeted_nodes"
	NameTailwind          = "tailwind"
	NameTextBased         = "text_based"
	NameComponentAddition = "component_addition"
	NameFallback          = "fallback"
	NameEmergency         = "emergency"
)

// ErrNoProvider is returned by strategies that cannot work without a model.
var ErrNoProvider = errors.New("no completion provider configured")

// ResolvePath joins a project-relative path onto basePath and refuses paths
// that escape it.
func ResolvePath(basePath, relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the project", relativePath)
	}
	return filepath.Join(basePath, clean), nil
}

func ReadProjectFile(basePath, relativePath string) (string, error) {
	full, err := ResolvePath(basePath, relativePath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", relativePath, err)
	}
	return string(data), nil
}

// WriteProjectFile writes content, creating parent directories as needed.
func WriteProjectFile(basePath, relativePath, content string) error {
	full, err := ResolvePath(basePath, relativePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relativePath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", relativePath, err)
	}
	return nil
}

func FileExists(basePath, relativePath string) bool {
	full, err := ResolvePath(basePath, relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// NewChange builds a ledger entry; ID and timestamp are filled by the ledger.
func NewChange(changeType models.ChangeType, relativePath, strategy, description string, success bool, details *models.ChangeDetails) models.ModificationChange {
	return models.ModificationChange{
		Type:        changeType,
		FilePath:    relativePath,
		Description: description,
		Timestamp:   time.Now().UTC(),
		Strategy:    strategy,
		Success:     success,
		Details:     details,
	}
}

// Failed reports a strategy that produced no usable change.
func Failed(reason string, changes []models.ModificationChange) *models.StrategyResult {
	return &models.StrategyResult{Success: false, Reasoning: reason, Changes: changes}
}

// ChangedLines counts inserted plus deleted lines between two versions.
func ChangedLines(before, after string) int {
	if before == after {
		return 0
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	count := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		count += strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") {
			count++
		}
	}
	return count
}

// Edit replaces content[Start:End] with Replacement.
type Edit struct {
	Start       int
	End         int
	Replacement string
}

// ApplyEdits applies every edit in one pass, last range first, so earlier
// offsets stay valid. Overlapping or out-of-range edits are rejected.
func ApplyEdits(content string, edits []Edit) (string, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	limit := len(content)
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			return "", fmt.Errorf("edit range [%d,%d) is outside the file", e.Start, e.End)
		}
		if e.End > limit {
			return "", fmt.Errorf("edit range [%d,%d) overlaps a later edit", e.Start, e.End)
		}
		limit = e.Start
	}

	out := content
	for _, e := range sorted {
		out = out[:e.Start] + e.Replacement + out[e.End:]
	}
	return out, nil
}

// DropOverlaps keeps the earliest-listed edit of any overlapping group.
func DropOverlaps(edits []Edit) (kept []Edit, dropped int) {
	for _, e := range edits {
		clash := false
		for _, k := range kept {
			if e.Start < k.End && k.Start < e.End {
				clash = true
				break
			}
		}
		if clash {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}
