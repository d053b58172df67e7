// Package cache holds read-through JSON caching for data that changes rarely,
// such as the shared interview template list.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON values under string keys. A miss is reported through hit,
// not as an error.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// GlobalTemplatesKey is invalidated on every admin template write.
func GlobalTemplatesKey() string { return "templates:global" }
