// Package cache — кэш JSON-значений для публичных выборок.
package cache

import (
	"context"
	"time"
)

// Cache хранит произвольные значения в JSON.
type Cache interface {
	// Get возвращает found=false, если ключа нет.
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Noop используется, когда Redis не настроен.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error               { return nil }
