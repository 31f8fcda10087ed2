// Package cache provides the session-scoped result cache: cluster lists
// keyed by filter signature plus the viewport bounds they were computed
// for, and drill-down detail rows keyed by signature plus selection
// bounds.
//
// The coherence rule is eviction, not staleness marking: the moment the
// active signature changes, every entry derived under the old signature is
// removed, so the cache can never serve data attributed to a signature
// other than the current one. The cache lives for one browsing session and
// is never persisted.
package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bdeakin/disastermap/internal/models"
)

// detailCacheSize bounds the number of drill-down result sets retained for
// the current signature. Browsing rarely revisits more than a handful of
// clusters, so a small LRU is enough.
const detailCacheSize = 32

// ResultCache memoizes fetch results within one session.
type ResultCache struct {
	mu sync.RWMutex

	activeSignature string
	clusters        map[string][]models.SpatialCluster
	details         *lru.Cache[string, []models.DisasterRecord]

	hits   int64
	misses int64
}

// New creates an empty result cache.
func New() (*ResultCache, error) {
	details, err := lru.New[string, []models.DisasterRecord](detailCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create detail cache: %w", err)
	}
	return &ResultCache{
		clusters: make(map[string][]models.SpatialCluster),
		details:  details,
	}, nil
}

// SetSignature switches the active signature. When the signature actually
// changes, all cached clusters and detail rows are evicted and the method
// reports true so the caller can clear derived state (selection, rendered
// details) as well.
func (c *ResultCache) SetSignature(signature string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if signature == c.activeSignature {
		return false
	}
	c.activeSignature = signature
	c.clusters = make(map[string][]models.SpatialCluster)
	c.details.Purge()
	return true
}

// ActiveSignature returns the signature entries are currently keyed under.
func (c *ResultCache) ActiveSignature() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeSignature
}

// GetClusters returns the cached cluster list computed for the signature
// and viewport bounds, if the signature is still active and an entry
// exists. A pan to new bounds is a miss even under an unchanged signature:
// cluster lists are viewport-scoped, never reused across disjoint views.
func (c *ResultCache) GetClusters(signature string, bounds models.ViewportBounds) ([]models.SpatialCluster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if signature != c.activeSignature {
		c.misses++
		return nil, false
	}
	clusters, ok := c.clusters[Key(signature, bounds)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return clusters, ok
}

// PutClusters stores a cluster list under the signature and the viewport
// bounds it was computed for. Results for a signature other than the
// active one are dropped silently; they belong to a superseded fetch.
func (c *ResultCache) PutClusters(signature string, bounds models.ViewportBounds, clusters []models.SpatialCluster) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if signature != c.activeSignature {
		return
	}
	c.clusters[Key(signature, bounds)] = clusters
}

// Key builds the bounds-qualified cache key from the signature and a
// bounding box: the rendered viewport for cluster lists, the selection's
// drill-down box for detail rows.
func Key(signature string, b models.ViewportBounds) string {
	return fmt.Sprintf("%s|%.6f,%.6f,%.6f,%.6f", signature, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}

// GetDetails returns cached drill-down rows for the key, if the signature
// is still active.
func (c *ResultCache) GetDetails(signature string, bounds models.ViewportBounds) ([]models.DisasterRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if signature != c.activeSignature {
		c.misses++
		return nil, false
	}
	rows, ok := c.details.Get(Key(signature, bounds))
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return rows, ok
}

// PutDetails stores drill-down rows for the key. Rows for a superseded
// signature are dropped.
func (c *ResultCache) PutDetails(signature string, bounds models.ViewportBounds, rows []models.DisasterRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if signature != c.activeSignature {
		return
	}
	c.details.Add(Key(signature, bounds), rows)
}

// Stats returns cumulative hit and miss counts for observability.
func (c *ResultCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
