// Package cache persists derived artifacts between runs: built graphs and
// computed layouts. Reloading a table someone is inspecting should not
// re-run Graphviz when nothing on disk changed.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when an item is not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Default TTLs per artifact type. Graphs expire quickly because the table
// directory can change under us; layouts are pure functions of the graph
// and keep much longer.
const (
	TTLGraph  = 15 * time.Minute
	TTLLayout = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// GraphKeyOpts are the build options that affect graph content. Two builds
// with different options must never share a cache entry.
type GraphKeyOpts struct {
	IncludeRows bool `json:"include_rows"`
	MaxFiles    int  `json:"max_files"`
	MaxRows     int  `json:"max_rows"`
}

// LayoutKeyOpts are the layout options that affect positions.
type LayoutKeyOpts struct {
	RankDir string  `json:"rank_dir"`
	RankSep float64 `json:"rank_sep"`
	NodeSep float64 `json:"node_sep"`
}

// Keyer generates cache keys for the derived artifacts.
type Keyer interface {
	// GraphKey keys a built graph by the table's content fingerprint and
	// the build options.
	GraphKey(fingerprint string, opts GraphKeyOpts) string

	// LayoutKey keys a layout by the hash of the serialized graph and the
	// layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a built graph.
func (k *DefaultKeyer) GraphKey(fingerprint string, opts GraphKeyOpts) string {
	return hashKey("graph", fingerprint, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
