// Package cache stores decoded content API responses for a bounded time.
//
// Three backends are available: an in-process expiring LRU, Redis, and a
// no-op store that always misses. All of them are safe for concurrent use.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is a byte-oriented key/value cache with per-entry expiry.
type Store interface {
	// Get returns the cached value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A zero ttl uses the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// Options selects and tunes a Store backend.
type Options struct {
	Driver     string
	TTL        time.Duration
	MaxEntries int
	RedisAddr  string
	KeyPrefix  string
}

// New builds the Store selected by opts.Driver. An empty driver means memory.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(opts.MaxEntries, opts.TTL), nil
	case DriverRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.KeyPrefix, opts.TTL)
	case DriverNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("cache: unsupported driver %q", opts.Driver)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Close() error { return nil }
