// Package viewport decides when a viewport change warrants a fresh fetch.
// Continuous drag and zoom gestures deliver a storm of events; the filter
// suppresses fetches until the viewport has been stable for a settle
// window, reusing the cached result in the meantime.
package viewport

import (
	"time"

	"github.com/bdeakin/disastermap/internal/models"
)

// Clock abstracts time.Now so the settle window is testable without real
// sleeps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Filter tracks the most recent viewport event and its timestamp. A fetch
// is allowed only once `now - lastEvent >= settleWindow`, and at most once
// per settled viewport.
type Filter struct {
	settleWindow time.Duration
	clock        Clock

	bounds    models.ViewportBounds
	zoom      float64
	lastEvent time.Time
	pending   bool
}

// NewFilter returns a filter with the given settle window. A zero clock
// defaults to the system clock.
func NewFilter(settleWindow time.Duration, clock Clock) *Filter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Filter{
		settleWindow: settleWindow,
		clock:        clock,
		bounds:       models.DefaultViewport(),
		zoom:         3.0,
	}
}

// Observe records a new viewport event, restarting the settle window.
func (f *Filter) Observe(bounds models.ViewportBounds, zoom float64) {
	f.bounds = bounds
	f.zoom = zoom
	f.lastEvent = f.clock.Now()
	f.pending = true
}

// Reset cancels any pending fetch and clears the event timestamp. Called
// when the filter signature changes mid-debounce so a stale cached result
// is never shown for the new signature.
func (f *Filter) Reset() {
	f.pending = false
	f.lastEvent = time.Time{}
}

// ShouldFetch reports whether the viewport has settled and a fetch is due.
// It returns true exactly once per settled viewport: the pending flag is
// consumed, so repeated polling after settling does not re-fetch.
func (f *Filter) ShouldFetch() bool {
	if !f.pending {
		return false
	}
	if f.clock.Now().Sub(f.lastEvent) < f.settleWindow {
		return false
	}
	f.pending = false
	return true
}

// Settling reports whether an event is pending inside the settle window.
func (f *Filter) Settling() bool {
	return f.pending && f.clock.Now().Sub(f.lastEvent) < f.settleWindow
}

// Bounds returns the most recently observed viewport bounds.
func (f *Filter) Bounds() models.ViewportBounds { return f.bounds }

// Zoom returns the most recently observed zoom value.
func (f *Filter) Zoom() float64 { return f.zoom }
