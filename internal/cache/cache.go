// Package cache holds the normalized benchmark dataset between recomputes.
// The cache is an injected dependency, never a package-level singleton, so
// tests and the dev server can run isolated instances side by side.
package cache

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"surveybench/pkg/contracts/domain"
)

// DefaultTTL is how long a dataset snapshot stays fresh without a refresh.
const DefaultTTL = 24 * time.Hour

// rowShape fingerprints the CanonicalRow schema. Snapshots taken under an
// older schema (a metric sub-structure added or removed) read as a miss, so
// callers silently refetch instead of serving misshapen rows.
var rowShape = shapeOf(domain.CanonicalRow{})

func shapeOf(v interface{}) string {
	t := reflect.TypeOf(v)
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, t.Field(i).Name)
	}
	return strings.Join(names, ",")
}

// Snapshot is one cached dataset: the normalized rows, the derived option
// sets, and the bookkeeping needed to decide freshness.
type Snapshot struct {
	Rows     []domain.CanonicalRow
	Options  domain.FilterOptions
	Version  int64
	StoredAt time.Time
	shape    string
}

// Cache is a TTL-bounded, versioned holder for the benchmark dataset.
// All methods are safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entry   *Snapshot
	version int64
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// New returns a cache with the given TTL. A non-positive ttl falls back to
// DefaultTTL. A nil logger falls back to slog.Default().
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{ttl: ttl, now: time.Now, logger: logger}
}

// Put stores a new snapshot and returns its version. Versions increase
// monotonically for the life of the cache, across Clear calls included, so
// consumers can detect that a refresh happened while they were reading.
func (c *Cache) Put(rows []domain.CanonicalRow, options domain.FilterOptions) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.entry = &Snapshot{
		Rows:     rows,
		Options:  options,
		Version:  c.version,
		StoredAt: c.now(),
		shape:    rowShape,
	}
	c.logger.Debug("benchmark dataset cached",
		slog.Int64("version", c.version),
		slog.Int("rows", len(rows)))
	return c.version
}

// Get returns the current snapshot if it exists, is within TTL, and was
// stored under the current row schema. Any other state is a miss.
func (c *Cache) Get() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.fresh() {
		return Snapshot{}, false
	}
	return *c.entry, true
}

// HasFreshData reports whether Get would hit.
func (c *Cache) HasFreshData() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fresh()
}

func (c *Cache) fresh() bool {
	if c.entry == nil {
		return false
	}
	if c.entry.shape != rowShape {
		return false
	}
	return c.now().Sub(c.entry.StoredAt) < c.ttl
}

// Clear drops the snapshot. The version counter is preserved.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry != nil {
		c.logger.Debug("benchmark cache cleared", slog.Int64("version", c.entry.Version))
	}
	c.entry = nil
}

// Version returns the version of the most recent Put, 0 before the first.
func (c *Cache) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
