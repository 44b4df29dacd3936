package session_cache

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/sirupsen/logrus"
)

// SafeCache turns every backend failure, panics included, into a logged
// miss. Its methods always return a nil error.
type SafeCache struct {
	inner contracts.ISessionCache
}

// NewSafeCache wraps inner. A nil inner behaves as an always-empty cache.
func NewSafeCache(inner contracts.ISessionCache) contracts.ISessionCache {
	return &SafeCache{inner: inner}
}

func (c *SafeCache) guard(op, sessionID string, fn func() error) {
	if c.inner == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{"session": sessionID, "op": op}).Warnf("session cache panic: %v", r)
		}
	}()
	if err := fn(); err != nil {
		logrus.WithFields(logrus.Fields{"session": sessionID, "op": op}).Warnf("session cache unavailable: %v", err)
	}
}

func (c *SafeCache) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	c.guard("get", sessionID, func() error {
		v, ok, err := c.inner.Get(ctx, sessionID, key)
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		value, found = v, ok
		return nil
	})
	return value, found, nil
}

func (c *SafeCache) Set(ctx context.Context, sessionID, key string, value []byte) error {
	c.guard("set", sessionID, func() error {
		return c.inner.Set(ctx, sessionID, key, value)
	})
	return nil
}

func (c *SafeCache) AppendToList(ctx context.Context, sessionID, listKey string, item []byte) error {
	c.guard("append", sessionID, func() error {
		return c.inner.AppendToList(ctx, sessionID, listKey, item)
	})
	return nil
}

func (c *SafeCache) GetList(ctx context.Context, sessionID, listKey string) ([][]byte, error) {
	var items [][]byte
	c.guard("get_list", sessionID, func() error {
		list, err := c.inner.GetList(ctx, sessionID, listKey)
		if err != nil {
			return err
		}
		items = list
		return nil
	})
	return items, nil
}

func (c *SafeCache) Clear(ctx context.Context, sessionID string) error {
	c.guard("clear", sessionID, func() error {
		return c.inner.Clear(ctx, sessionID)
	})
	return nil
}
