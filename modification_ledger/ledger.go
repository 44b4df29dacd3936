package modification_ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"gopkg.in/yaml.v3"
)

type ledger struct {
	mu      sync.RWMutex
	entries []models.ModificationChange
}

// NewLedger creates an empty ledger, optionally seeded with restored entries.
func NewLedger(restored ...models.ModificationChange) contracts.ILedger {
	l := &ledger{}
	l.entries = append(l.entries, restored...)
	return l
}

// Append records a change, filling in ID and timestamp when absent.
func (l *ledger) Append(change models.ModificationChange) models.ModificationChange {
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}
	change = cloneChange(change)

	l.mu.Lock()
	l.entries = append(l.entries, change)
	l.mu.Unlock()
	return change
}

func (l *ledger) Changes() []models.ModificationChange {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ModificationChange, len(l.entries))
	for i, e := range l.entries {
		out[i] = cloneChange(e)
	}
	return out
}

func cloneChange(change models.ModificationChange) models.ModificationChange {
	if change.Details != nil {
		details := *change.Details
		details.Components = append([]string(nil), details.Components...)
		change.Details = &details
	}
	return change
}

// ContextSummary renders the last limit entries as prompt context.
func (l *ledger) ContextSummary(limit int) string {
	entries := l.Changes()
	if len(entries) == 0 {
		return ""
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	var b strings.Builder
	b.WriteString("Previous modifications in this session:\n")
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Fprintf(&b, "- %s %s %s via %s (%s): %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.FilePath, e.Strategy, status, e.Description)
	}
	return b.String()
}

func (l *ledger) Stats(recent int) models.LedgerStats {
	entries := l.Changes()
	stats := models.LedgerStats{
		ByType:     make(map[models.ChangeType]int),
		ByStrategy: make(map[string]int),
	}
	files := make(map[string]bool)

	for _, e := range entries {
		stats.Total++
		if e.Success {
			stats.Successful++
		} else {
			stats.Failed++
		}
		stats.ByType[e.Type]++
		stats.ByStrategy[e.Strategy]++
		files[e.FilePath] = true
	}
	stats.UniqueFiles = len(files)
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total)
	}
	if recent > 0 && len(entries) > recent {
		entries = entries[len(entries)-recent:]
	}
	stats.RecentChanges = entries
	return stats
}

func (l *ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Export writes the entries as "json" or "yaml".
func Export(w io.Writer, entries []models.ModificationChange, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(entries)
	}
	return fmt.Errorf("unsupported export format: %s", format)
}
