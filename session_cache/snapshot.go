package session_cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"

	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
)

const (
	SnapshotKey         = "project_snapshot"
	LedgerKey           = "modification_ledger"
	PendingComponentKey = "pending_component"
)

// SaveSnapshot stores a gob-encoded snapshot for the session.
func SaveSnapshot(ctx context.Context, cache contracts.ISessionCache, sessionID string, snapshot *codeModels.ProjectSnapshot) error {
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return cache.Set(ctx, sessionID, SnapshotKey, buffer.Bytes())
}

// LoadSnapshot returns the cached snapshot, or false on a miss or an
// undecodable entry.
func LoadSnapshot(ctx context.Context, cache contracts.ISessionCache, sessionID string) (*codeModels.ProjectSnapshot, bool) {
	data, ok, err := cache.Get(ctx, sessionID, SnapshotKey)
	if err != nil || !ok {
		return nil, false
	}
	var snapshot codeModels.ProjectSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snapshot); err != nil {
		return nil, false
	}
	if snapshot.Files == nil {
		snapshot.Files = make(map[string]*codeModels.ProjectFile)
	}
	return &snapshot, true
}

// AppendChange mirrors one ledger entry into the session list as JSON.
func AppendChange(ctx context.Context, cache contracts.ISessionCache, sessionID string, change models.ModificationChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}
	return cache.AppendToList(ctx, sessionID, LedgerKey, data)
}

// LoadChanges reads the mirrored ledger, skipping undecodable items.
func LoadChanges(ctx context.Context, cache contracts.ISessionCache, sessionID string) []models.ModificationChange {
	items, err := cache.GetList(ctx, sessionID, LedgerKey)
	if err != nil {
		return nil
	}
	changes := make([]models.ModificationChange, 0, len(items))
	for _, item := range items {
		var change models.ModificationChange
		if err := json.Unmarshal(item, &change); err == nil {
			changes = append(changes, change)
		}
	}
	return changes
}

// SavePendingComponent keeps a generated-but-not-integrated component so a
// later integrate step can pick it up.
func SavePendingComponent(ctx context.Context, cache contracts.ISessionCache, sessionID string, generation *models.GenerationResult) error {
	data, err := json.Marshal(generation)
	if err != nil {
		return fmt.Errorf("failed to encode pending component: %w", err)
	}
	return cache.Set(ctx, sessionID, PendingComponentKey, data)
}

func LoadPendingComponent(ctx context.Context, cache contracts.ISessionCache, sessionID string) (*models.GenerationResult, bool) {
	data, ok, err := cache.Get(ctx, sessionID, PendingComponentKey)
	if err != nil || !ok || len(data) == 0 {
		return nil, false
	}
	var generation models.GenerationResult
	if err := json.Unmarshal(data, &generation); err != nil {
		return nil, false
	}
	return &generation, true
}
