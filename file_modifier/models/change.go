package models

import "time"

type ChangeType string

const (
	ChangeCreated  ChangeType = "created"
	ChangeModified ChangeType = "modified"
	ChangeUpdated  ChangeType = "updated"
)

type ChangeDetails struct {
	LinesChanged int      `json:"linesChanged,omitempty" yaml:"linesChanged,omitempty"`
	Components   []string `json:"components,omitempty" yaml:"components,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// ModificationChange is one ledger entry. Entries are never mutated once appended.
type ModificationChange struct {
	ID          string         `json:"id" yaml:"id"`
	Type        ChangeType     `json:"type" yaml:"type"`
	FilePath    string         `json:"filePath" yaml:"filePath"`
	Description string         `json:"description" yaml:"description"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
	Strategy    string         `json:"strategy" yaml:"strategy"`
	Success     bool           `json:"success" yaml:"success"`
	Details     *ChangeDetails `json:"details,omitempty" yaml:"details,omitempty"`
}
