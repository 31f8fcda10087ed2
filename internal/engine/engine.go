// Package engine is the drill-down controller: it consumes normalized UI
// events, keeps the application state coherent, and orchestrates the
// clustering tiers, the debounce filter, the result cache, and the data
// source.
//
// State transitions follow an explicit reducer shape: Apply takes one event,
// runs it to completion (including any blocking fetch), and returns the new
// application state. Events are serialized; there is no background
// scheduler. Staleness is handled with a generation counter: every fetch is
// tagged with the generation current at its start, and a result whose tag
// no longer matches when it completes is discarded, never rendered.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/bdeakin/disastermap/internal/cache"
	"github.com/bdeakin/disastermap/internal/cluster"
	"github.com/bdeakin/disastermap/internal/config"
	"github.com/bdeakin/disastermap/internal/logger"
	"github.com/bdeakin/disastermap/internal/models"
	"github.com/bdeakin/disastermap/internal/selection"
	"github.com/bdeakin/disastermap/internal/source"
	"github.com/bdeakin/disastermap/internal/viewport"
	"github.com/bdeakin/disastermap/internal/zoom"
)

// AppState is the engine's complete renderable state. It is returned by
// value; callers never share mutable state with the engine.
type AppState struct {
	Filters   models.FilterSet         `json:"filters"`
	Bounds    models.ViewportBounds    `json:"bounds"`
	Zoom      float64                  `json:"zoom"`
	Tier      models.ZoomTier          `json:"tier"`
	Signature string                   `json:"signature"`
	Clusters  []models.SpatialCluster  `json:"clusters"`
	Selection *models.ClusterSelection `json:"selection,omitempty"`
	Details   []models.DisasterRecord  `json:"details,omitempty"`
	Settling  bool                     `json:"settling"`
}

// Engine owns the session state and the collaborators that populate it.
type Engine struct {
	mu sync.Mutex

	cfg    config.MapConfig
	src    source.DataSource
	cache  *cache.ResultCache
	vp     *viewport.Filter
	zoomer zoom.Selector
	binner *cluster.GridBinner
	metro  *cluster.NearestCenterAssigner
	msa    *cluster.NearestCenterAssigner

	generation uint64
	state      AppState
}

// New creates an engine with the given collaborators. A nil clock uses the
// system clock.
func New(cfg config.MapConfig, src source.DataSource, clock viewport.Clock) (*Engine, error) {
	rc, err := cache.New()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		src:   src,
		cache: rc,
		vp:    viewport.NewFilter(cfg.SettleWindow, clock),
		zoomer: zoom.Selector{
			RegionMax: cfg.ZoomRegionMax,
			MetroMax:  cfg.ZoomMetroMax,
			MSAMax:    cfg.ZoomMSAMax,
		},
		binner: cluster.NewGridBinner(cfg.GridLargeDegrees, cfg.GridSmallDegrees, cfg.MetroThreshold),
		metro:  cluster.NewNearestCenterAssigner(cluster.PrimaryCenters, cfg.MetroRadiusMiles),
		msa:    cluster.NewNearestCenterAssigner(cluster.MSACenters(), cfg.MSARadiusMiles),
	}
	e.state = AppState{
		Bounds: models.DefaultViewport(),
		Zoom:   3.0,
		Tier:   models.TierRegion,
	}
	e.state.Signature = e.signatureFor(e.state.Filters, e.state.Tier)
	e.cache.SetSignature(e.state.Signature)
	return e, nil
}

// State returns a copy of the current application state.
func (e *Engine) State() AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Apply runs one event to completion and returns the resulting state.
// Fetch failures are recoverable: the previous state is returned alongside
// the error and the session continues.
func (e *Engine) Apply(ctx context.Context, ev models.Event) (AppState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	switch ev := ev.(type) {
	case models.FilterEvent:
		err = e.applyFilter(ctx, ev)
	case models.ViewportEvent:
		err = e.applyViewport(ctx, ev)
	case models.ClickEvent:
		err = e.applyClick(ctx, ev)
	case models.TickEvent:
		err = e.applyTick(ctx)
	default:
		err = fmt.Errorf("unhandled event type %T", ev)
	}
	e.state.Settling = e.vp.Settling()
	return e.state, err
}

// tierParam is the resolution parameter folded into the cache signature:
// the grid size for Region, the assignment radius for the center tiers,
// and zero for raw detail.
func (e *Engine) tierParam(tier models.ZoomTier) float64 {
	switch tier {
	case models.TierRegion:
		return e.cfg.GridLargeDegrees
	case models.TierMetro:
		return e.cfg.MetroRadiusMiles
	case models.TierMSA:
		return e.cfg.MSARadiusMiles
	default:
		return 0
	}
}

func (e *Engine) signatureFor(filters models.FilterSet, tier models.ZoomTier) string {
	return filters.Signature(tier, e.tierParam(tier))
}

// switchSignature recomputes the signature and, when it changed, evicts the
// cache and clears all state derived under the old signature.
func (e *Engine) switchSignature(filters models.FilterSet, tier models.ZoomTier) bool {
	sig := e.signatureFor(filters, tier)
	if !e.cache.SetSignature(sig) {
		return false
	}
	e.generation++
	e.state.Signature = sig
	e.state.Selection = nil
	e.state.Details = nil
	e.state.Clusters = nil
	return true
}

func (e *Engine) applyFilter(ctx context.Context, ev models.FilterEvent) error {
	if err := ev.Filters.Validate(); err != nil {
		return fmt.Errorf("invalid filter set: %w", err)
	}
	if ev.Filters.Equal(e.state.Filters) {
		return nil
	}
	e.state.Filters = ev.Filters
	if e.switchSignature(ev.Filters, e.state.Tier) {
		// A signature change mid-debounce resets the window so a stale
		// cached result is never shown for the new signature.
		e.vp.Reset()
	}
	return e.refresh(ctx)
}

func (e *Engine) applyViewport(ctx context.Context, ev models.ViewportEvent) error {
	e.vp.Observe(ev.Bounds, ev.Zoom)
	e.state.Bounds = ev.Bounds
	e.state.Zoom = ev.Zoom

	tier := e.zoomer.TierFor(ev.Zoom)
	if tier != e.state.Tier {
		e.state.Tier = tier
		e.switchSignature(e.state.Filters, tier)
	}
	// The fetch itself waits for the settle window; the cached result for
	// the current signature keeps rendering in the meantime.
	return e.applyTick(ctx)
}

func (e *Engine) applyTick(ctx context.Context) error {
	if !e.vp.ShouldFetch() {
		return nil
	}
	return e.refresh(ctx)
}

func (e *Engine) applyClick(ctx context.Context, ev models.ClickEvent) error {
	if e.state.Tier == models.TierDetail {
		// Raw record view has no clusters to resolve against.
		return nil
	}
	sel, ok := selection.Resolve(ev.Lat, ev.Lon, e.state.Clusters)
	if !ok {
		return nil
	}
	if e.state.Selection != nil && e.state.Selection.Equal(sel) {
		// Re-selecting the same cluster is a no-op; no refetch.
		return nil
	}
	// A new, distinct selection drops previously loaded detail rows before
	// fetching its own.
	e.state.Selection = &sel
	e.state.Details = nil

	bounds := sel.Bounds()
	sig := e.state.Signature
	if rows, ok := e.cache.GetDetails(sig, bounds); ok {
		e.state.Details = rows
		return nil
	}

	gen := e.generation
	rows, err := e.src.FetchRecords(ctx, e.state.Filters, bounds, e.cfg.DetailLimit)
	if err != nil {
		return err
	}
	if gen != e.generation {
		logger.Debug("discarding stale detail fetch (generation %d != %d)", gen, e.generation)
		return nil
	}
	e.cache.PutDetails(sig, bounds, rows)
	e.state.Details = rows
	return nil
}

// refresh populates the cluster list (or raw records for the Detail tier)
// for the current signature, via the cache when possible.
func (e *Engine) refresh(ctx context.Context) error {
	sig := e.state.Signature
	gen := e.generation

	if e.state.Tier == models.TierDetail {
		rows, err := e.src.FetchRecords(ctx, e.state.Filters, e.state.Bounds, e.cfg.FilteredLimit)
		if err != nil {
			return err
		}
		if gen != e.generation {
			logger.Debug("discarding stale record fetch (generation %d != %d)", gen, e.generation)
			return nil
		}
		e.state.Clusters = nil
		e.state.Details = rows
		return nil
	}

	if clusters, ok := e.cache.GetClusters(sig, e.state.Bounds); ok {
		e.state.Clusters = clusters
		return nil
	}

	points, err := e.src.FetchPoints(ctx, e.state.Filters, e.state.Bounds, e.cfg.AggregateLimit)
	if err != nil {
		return err
	}
	if gen != e.generation {
		logger.Debug("discarding stale point fetch (generation %d != %d)", gen, e.generation)
		return nil
	}

	var clusters []models.SpatialCluster
	switch e.state.Tier {
	case models.TierRegion:
		clusters = e.binner.Bin(points)
	case models.TierMetro:
		var dropped int64
		clusters, dropped = e.metro.Assign(points)
		if dropped > 0 {
			logger.Debug("metro tier dropped %d out-of-radius points", dropped)
		}
	case models.TierMSA:
		var dropped int64
		clusters, dropped = e.msa.Assign(points)
		if dropped > 0 {
			logger.Debug("msa tier dropped %d out-of-radius points", dropped)
		}
	}

	e.cache.PutClusters(sig, e.state.Bounds, clusters)
	e.state.Clusters = clusters
	return nil
}

// CacheStats exposes cumulative cache hit/miss counts.
func (e *Engine) CacheStats() (hits, misses int64) {
	return e.cache.Stats()
}
