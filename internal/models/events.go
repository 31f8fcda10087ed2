package models

import (
	"encoding/json"
	"fmt"
)

// Event is the tagged union of UI events the engine consumes. The rendering
// layer emits events in a normalized JSON shape:
//
//	{"type": "click"|"viewport"|"filter"|"tick", "lat", "lon", "zoom"?, "bounds"?, "filters"?}
//
// ParseEvent converts that shape into a concrete variant exactly once at the
// boundary; everything past the boundary works with typed events.
type Event interface {
	eventKind() string
}

// ClickEvent is a click or tap on the map at a coordinate.
type ClickEvent struct {
	Lat float64
	Lon float64
}

// ViewportEvent is a pan or zoom gesture carrying the new visible bounds
// and zoom scalar.
type ViewportEvent struct {
	Bounds ViewportBounds
	Zoom   float64
}

// FilterEvent replaces the active filter set.
type FilterEvent struct {
	Filters FilterSet
}

// TickEvent advances the debounce clock without any user input. The shell
// emits it when the settle window may have elapsed.
type TickEvent struct{}

func (ClickEvent) eventKind() string    { return "click" }
func (ViewportEvent) eventKind() string { return "viewport" }
func (FilterEvent) eventKind() string   { return "filter" }
func (TickEvent) eventKind() string     { return "tick" }

// wireEvent is the permissive boundary shape; unknown keys are ignored.
type wireEvent struct {
	Type    string          `json:"type"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Zoom    *float64        `json:"zoom,omitempty"`
	Bounds  *ViewportBounds `json:"bounds,omitempty"`
	Filters *FilterSet      `json:"filters,omitempty"`
}

// ParseEvent decodes a normalized UI event into its typed variant.
// Malformed or unknown events are rejected here so downstream code never
// sees a duck-typed map.
func ParseEvent(raw []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}
	switch w.Type {
	case "click":
		return ClickEvent{Lat: w.Lat, Lon: w.Lon}, nil
	case "viewport":
		if w.Bounds == nil {
			return nil, fmt.Errorf("viewport event missing bounds")
		}
		if err := w.Bounds.Validate(); err != nil {
			return nil, fmt.Errorf("viewport event: %w", err)
		}
		zoom := 3.0
		if w.Zoom != nil {
			zoom = *w.Zoom
		}
		return ViewportEvent{Bounds: *w.Bounds, Zoom: zoom}, nil
	case "filter":
		if w.Filters == nil {
			return nil, fmt.Errorf("filter event missing filters")
		}
		if err := w.Filters.Validate(); err != nil {
			return nil, fmt.Errorf("filter event: %w", err)
		}
		return FilterEvent{Filters: *w.Filters}, nil
	case "tick":
		return TickEvent{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", w.Type)
	}
}
