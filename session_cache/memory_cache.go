// Package session_cache stores per-session state: the project snapshot and
// the mirrored ledger. Backends are in-memory or on disk; SafeCache wraps
// either so that cache trouble never fails a request.
package session_cache

import (
	"context"
	"sync"

	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
)

type session struct {
	values map[string][]byte
	lists  map[string][][]byte
}

// MemoryCache keeps everything in process memory.
type MemoryCache struct {
	mutex    sync.RWMutex
	sessions map[string]*session
}

func NewMemoryCache() contracts.ISessionCache {
	return &MemoryCache{sessions: make(map[string]*session)}
}

func (c *MemoryCache) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.session(sessionID).values[key] = append([]byte(nil), value...)
	return nil
}

func (c *MemoryCache) AppendToList(ctx context.Context, sessionID, listKey string, item []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	s := c.session(sessionID)
	s.lists[listKey] = append(s.lists[listKey], append([]byte(nil), item...))
	return nil
}

func (c *MemoryCache) GetList(ctx context.Context, sessionID, listKey string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	items := make([][]byte, len(s.lists[listKey]))
	for i, item := range s.lists[listKey] {
		items[i] = append([]byte(nil), item...)
	}
	return items, nil
}

func (c *MemoryCache) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.sessions, sessionID)
	return nil
}

func (c *MemoryCache) session(sessionID string) *session {
	s, ok := c.sessions[sessionID]
	if !ok {
		s = &session{values: make(map[string][]byte), lists: make(map[string][][]byte)}
		c.sessions[sessionID] = s
	}
	return s
}
