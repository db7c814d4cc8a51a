// Package cache stores rendered artifacts and snapshots by content hash.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// # Keys
//
// A [Keyer] derives keys from the hash of an encoded edit script plus the
// options that change the result. [ScopedKeyer] adds a namespace prefix, so
// several servers can share one Redis.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key types reported to cache hooks.
const (
	KeyTypeSnapshot = "snapshot"
	KeyTypeRender   = "render"
)

// SnapshotKeyOpts are the options that change a replayed snapshot.
type SnapshotKeyOpts struct {
	HorizontalGap float64 `json:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap"`
}

// RenderKeyOpts are the options that change a rendered artifact.
type RenderKeyOpts struct {
	Format      string `json:"format"`
	Detailed    bool   `json:"detailed,omitempty"`
	ShowDummies bool   `json:"show_dummies,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	SnapshotKey(scriptHash string, opts SnapshotKeyOpts) string
	RenderKey(scriptHash string, opts RenderKeyOpts) string
}

// DefaultKeyer builds unscoped keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey keys a replayed snapshot.
func (DefaultKeyer) SnapshotKey(scriptHash string, opts SnapshotKeyOpts) string {
	return hashKey(KeyTypeSnapshot, scriptHash, opts)
}

// RenderKey keys a rendered artifact.
func (DefaultKeyer) RenderKey(scriptHash string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, scriptHash, opts)
}

// Default entry lifetimes.
const (
	TTLSnapshot = 7 * 24 * time.Hour
	TTLRender   = 7 * 24 * time.Hour
)
