package models

import "time"

// ModificationSummary is persisted after every request.
type ModificationSummary struct {
	ID            string    `json:"id" yaml:"id"`
	SessionID     string    `json:"sessionId" yaml:"sessionId"`
	ProjectID     string    `json:"projectId" yaml:"projectId"`
	Prompt        string    `json:"prompt" yaml:"prompt"`
	Scope         ScopeKind `json:"scope" yaml:"scope"`
	Approach      string    `json:"approach" yaml:"approach"`
	Success       bool      `json:"success" yaml:"success"`
	ModifiedFiles []string  `json:"modifiedFiles" yaml:"modifiedFiles"`
	AddedFiles    []string  `json:"addedFiles" yaml:"addedFiles"`
	Summary       string    `json:"summary" yaml:"summary"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
}

// LedgerStats aggregates the ledger of one session.
type LedgerStats struct {
	Total         int                  `json:"total" yaml:"total"`
	Successful    int                  `json:"successful" yaml:"successful"`
	Failed        int                  `json:"failed" yaml:"failed"`
	SuccessRate   float64              `json:"successRate" yaml:"successRate"`
	ByType        map[ChangeType]int   `json:"byType" yaml:"byType"`
	ByStrategy    map[string]int       `json:"byStrategy" yaml:"byStrategy"`
	UniqueFiles   int                  `json:"uniqueFiles" yaml:"uniqueFiles"`
	RecentChanges []ModificationChange `json:"recentChanges" yaml:"recentChanges"`
}

// ProcessOptions are the optional inputs of one modification request.
type ProcessOptions struct {
	ConversationContext string
	// DBSummary is the accumulated project summary; loaded from the project
	// store when empty.
	DBSummary      string
	ProjectID      string
	OnSummaryReady func(summary ModificationSummary)
}
