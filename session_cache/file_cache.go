package session_cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/zeebo/xxh3"
)

const entrySuffix = ".entry"

// fileEntry is one gob-encoded key. Lists keep their items in order.
type fileEntry struct {
	Key       string
	Value     []byte
	Items     [][]byte
	UpdatedAt time.Time
}

// FileCache keeps one directory per session and one zstd-compressed gob
// file per key, so a session survives process restarts.
type FileCache struct {
	dir     string
	mutex   sync.Mutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewFileCache(dir string) (contracts.ISessionCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session cache directory: %w", err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &FileCache{dir: dir, encoder: encoder, decoder: decoder}, nil
}

func (c *FileCache) sessionDir(sessionID string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x", xxh3.HashString(sessionID)))
}

func (c *FileCache) entryPath(sessionID, key string) string {
	return filepath.Join(c.sessionDir(sessionID), fmt.Sprintf("%016x%s", xxh3.HashString(key), entrySuffix))
}

func (c *FileCache) read(sessionID, key string) (*fileEntry, error) {
	data, err := os.ReadFile(c.entryPath(sessionID, key))
	if err != nil {
		return nil, err
	}
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cache entry: %w", err)
	}
	var entry fileEntry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &entry, nil
}

func (c *FileCache) write(sessionID string, entry *fileEntry) error {
	if err := os.MkdirAll(c.sessionDir(sessionID), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	entry.UpdatedAt = time.Now()

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	compressed := c.encoder.EncodeAll(buffer.Bytes(), nil)

	// readers never see a partial entry
	target := c.entryPath(sessionID, entry.Key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to commit cache entry: %w", err)
	}
	return nil
}

func (c *FileCache) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, err := c.read(sessionID, key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, entry.Value != nil, nil
}

func (c *FileCache) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.write(sessionID, &fileEntry{Key: key, Value: value})
}

func (c *FileCache) AppendToList(ctx context.Context, sessionID, listKey string, item []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, err := c.read(sessionID, listKey)
	if errors.Is(err, os.ErrNotExist) {
		entry, err = &fileEntry{Key: listKey}, nil
	}
	if err != nil {
		return err
	}
	entry.Items = append(entry.Items, item)
	return c.write(sessionID, entry)
}

func (c *FileCache) GetList(ctx context.Context, sessionID, listKey string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, err := c.read(sessionID, listKey)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry.Items, nil
}

func (c *FileCache) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := os.RemoveAll(c.sessionDir(sessionID)); err != nil {
		return fmt.Errorf("failed to clear session cache: %w", err)
	}
	return nil
}
