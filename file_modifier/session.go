package file_modifier

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	"github.com/meysamhadeli/reactforge/modification_ledger"
	"github.com/meysamhadeli/reactforge/session_cache"
	"github.com/sirupsen/logrus"
)

// Session is the state consecutive requests against one project share.
// Requests are serialized: one session processes one request at a time.
type Session struct {
	ID       string
	BasePath string

	requestMu sync.Mutex

	stateMu  sync.RWMutex
	snapshot *codeModels.ProjectSnapshot
	ledger   contracts.ILedger
	cache    contracts.ISessionCache
}

// NewSession restores the ledger mirrored in cache. An empty id gets a
// random one; a nil cache behaves as an always-empty cache.
func NewSession(ctx context.Context, id, basePath string, cache contracts.ISessionCache) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	if abs, err := filepath.Abs(basePath); err == nil {
		basePath = abs
	}
	cache = session_cache.NewSafeCache(cache)

	return &Session{
		ID:       id,
		BasePath: basePath,
		cache:    cache,
		ledger:   modification_ledger.NewLedger(session_cache.LoadChanges(ctx, cache, id)...),
	}
}

// ProjectSessionID derives a stable session ID from a project directory so
// separate CLI runs share cached state.
func ProjectSessionID(basePath string) string {
	if abs, err := filepath.Abs(basePath); err == nil {
		basePath = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(basePath))).String()
}

func (s *Session) Ledger() contracts.ILedger { return s.ledger }

func (s *Session) Cache() contracts.ISessionCache { return s.cache }

func (s *Session) Snapshot() *codeModels.ProjectSnapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.snapshot
}

func (s *Session) setSnapshot(ctx context.Context, snapshot *codeModels.ProjectSnapshot) {
	s.stateMu.Lock()
	s.snapshot = snapshot
	s.stateMu.Unlock()

	if err := session_cache.SaveSnapshot(ctx, s.cache, s.ID, snapshot); err != nil {
		logrus.WithField("session", s.ID).Warnf("failed to cache snapshot: %v", err)
	}
}

// cachedSnapshot returns the session cache copy. Files changed on disk
// since it was stored are reported in stale; deleted files included.
func (s *Session) cachedSnapshot(ctx context.Context) (snapshot *codeModels.ProjectSnapshot, stale []string, ok bool) {
	snapshot, ok = session_cache.LoadSnapshot(ctx, s.cache, s.ID)
	if !ok || snapshot.RootDir != s.BasePath {
		return nil, nil, false
	}
	for _, rel := range snapshot.Paths() {
		file := snapshot.Files[rel]
		info, err := os.Stat(filepath.Join(s.BasePath, filepath.FromSlash(rel)))
		if err != nil || !info.ModTime().Equal(file.ModTime) || info.Size() != file.Size {
			stale = append(stale, rel)
		}
	}
	return snapshot, stale, true
}

// cleanup drops everything the session holds outside the ledger. It runs
// from the request cleanup timer.
func (s *Session) cleanup() {
	logrus.WithField("session", s.ID).Warn("request did not finish in time; clearing session state")

	s.stateMu.Lock()
	s.snapshot = nil
	s.stateMu.Unlock()

	_ = s.cache.Clear(context.Background(), s.ID)
}

// resync rewrites the cached ledger from memory after a cleanup cleared it
// mid-request.
func (s *Session) resync(ctx context.Context) {
	_ = s.cache.Clear(ctx, s.ID)
	if snapshot := s.Snapshot(); snapshot != nil {
		_ = session_cache.SaveSnapshot(ctx, s.cache, s.ID, snapshot)
	}
	for _, change := range s.ledger.Changes() {
		_ = session_cache.AppendChange(ctx, s.cache, s.ID, change)
	}
}

// Reset forgets the ledger, the snapshot and the cached session state.
func (s *Session) Reset(ctx context.Context) error {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()

	s.stateMu.Lock()
	s.snapshot = nil
	s.stateMu.Unlock()

	s.ledger.Clear()
	return s.cache.Clear(ctx, s.ID)
}

// RecordChange records a change in the ledger and mirrors it to the cache.
func (s *Session) RecordChange(ctx context.Context, change models.ModificationChange) models.ModificationChange {
	entry := s.ledger.Append(change)
	if err := session_cache.AppendChange(ctx, s.cache, s.ID, entry); err != nil {
		logrus.WithFields(logrus.Fields{"session": s.ID, "file": entry.FilePath}).Warnf("failed to mirror ledger entry: %v", err)
	}
	return entry
}
