package file_modifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/sirupsen/logrus"
)

// maxProjectSummaryLines bounds the accumulated project summary.
const maxProjectSummaryLines = 30

// BuildSummary describes a finished request in one line.
func BuildSummary(prompt string, result *models.ModificationResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "%s via %s", strings.TrimSpace(prompt), result.Approach)
	} else {
		fmt.Fprintf(&b, "failed: %s", strings.TrimSpace(prompt))
	}
	if len(result.SelectedFiles) > 0 {
		fmt.Fprintf(&b, "; modified %s", strings.Join(result.SelectedFiles, ", "))
	}
	if len(result.AddedFiles) > 0 {
		fmt.Fprintf(&b, "; added %s", strings.Join(result.AddedFiles, ", "))
	}
	return b.String()
}

// AccumulateSummary appends line to a project summary, keeping the newest
// maxProjectSummaryLines lines.
func AccumulateSummary(previous, line string) string {
	var lines []string
	for _, l := range strings.Split(previous, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	lines = append(lines, "- "+line)
	if len(lines) > maxProjectSummaryLines {
		lines = lines[len(lines)-maxProjectSummaryLines:]
	}
	return strings.Join(lines, "\n")
}

// summarize persists the request outcome and hands it to OnSummaryReady.
func (m *FileModifier) summarize(ctx context.Context, d *dispatch, options models.ProcessOptions) {
	result := d.result
	summary := models.ModificationSummary{
		SessionID:     m.session.ID,
		ProjectID:     options.ProjectID,
		Prompt:        d.prompt,
		Approach:      result.Approach,
		Success:       result.Success,
		ModifiedFiles: result.SelectedFiles,
		AddedFiles:    result.AddedFiles,
		Summary:       BuildSummary(d.prompt, result),
		CreatedAt:     time.Now().UTC(),
	}
	if result.Scope != nil {
		summary.Scope = result.Scope.Kind
	}

	if m.deps.Store != nil && options.ProjectID != "" {
		log := logrus.WithFields(logrus.Fields{"session": m.session.ID, "project": options.ProjectID})
		if err := m.deps.Store.SaveModificationSummary(ctx, &summary); err != nil {
			log.Warnf("failed to save modification summary: %v", err)
		}
		if previous, err := m.deps.Store.GetProjectSummary(ctx, options.ProjectID); err != nil {
			log.Warnf("failed to load project summary: %v", err)
		} else if err := m.deps.Store.SaveProjectSummary(ctx, options.ProjectID, AccumulateSummary(previous, summary.Summary)); err != nil {
			log.Warnf("failed to save project summary: %v", err)
		}
	}

	if options.OnSummaryReady != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("session", m.session.ID).Errorf("summary callback panicked: %v", r)
				}
			}()
			options.OnSummaryReady(summary)
		}()
	}
}
