// Package source provides the read-only tabular data source behind the
// map: filter option discovery, weighted point fetches for the clustering
// tiers, and per-record detail fetches for drill-down.
//
// The engine only ever talks to the DataSource interface. The shipped
// implementation is sqlite-backed; all queries use whole-value named
// parameter binding and a mandatory row limit, and every assembled query
// passes through ValidateReadOnlySQL before execution, so the layer can
// never emit write or DDL statements on behalf of the engine.
package source

import (
	"context"
	"fmt"

	"github.com/bdeakin/disastermap/internal/models"
)

// StateOption pairs a display name with its geo identifier for the filter
// sidebar.
type StateOption struct {
	Name  string `json:"name"`
	GeoID string `json:"geo_id"`
}

// DataSource is the external collaborator contract. Implementations must be
// read-only and must honor the row limit on every query.
type DataSource interface {
	// FetchPoints returns weighted points for clustering, restricted to the
	// filter set and viewport bounds.
	FetchPoints(ctx context.Context, filters models.FilterSet, bounds models.ViewportBounds, limit int) ([]models.Point, error)

	// FetchRecords returns full detail rows, restricted to the filter set
	// and bounds. Used for the Detail tier and for drill-down.
	FetchRecords(ctx context.Context, filters models.FilterSet, bounds models.ViewportBounds, limit int) ([]models.DisasterRecord, error)

	// StateOptions lists the distinct states present in the data.
	StateOptions(ctx context.Context) ([]StateOption, error)

	// IncidentOptions lists the distinct incident types present in the data.
	IncidentOptions(ctx context.Context) ([]string, error)

	// YearBounds returns the min and max declaration years. (0, 0) means no
	// parseable dates exist and the year filter should be disabled.
	YearBounds(ctx context.Context) (int, int, error)
}

// FetchError is a recoverable upstream failure. Hint carries a
// human-readable suggestion for the user; the session survives and the
// fetch may be retried after adjusting filters.
type FetchError struct {
	Op   string
	Hint string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed: %v (%s)", e.Op, e.Err, e.Hint)
}

func (e *FetchError) Unwrap() error { return e.Err }
