// Package models defines the core domain entities for the disastermap engine.
// These models represent disaster declaration records, map filters, viewport
// state, and the spatial clusters derived from them. All models include
// built-in validation to ensure data integrity throughout the application.
//
// Terminology (matching FEMA's own naming):
//   - Declaration: a federal disaster declaration covering one or more counties.
//   - Record: one county-level row of a declaration. This is the unit we cluster.
package models

import (
	"errors"
	"time"
)

// DisasterRecord is one county-level row of a disaster declaration as
// returned by the data source. Records are immutable facts: the engine never
// mutates them, and their lifetime is one fetch response.
type DisasterRecord struct {
	DisasterID      string    `json:"disaster_id"`
	DeclarationID   string    `json:"fema_disaster_declaration_id,omitempty"`
	IncidentType    string    `json:"incident_type"`
	DeclarationName string    `json:"disaster_declaration_name,omitempty"`
	DeclarationType string    `json:"disaster_declaration_type,omitempty"`
	DeclarationDate time.Time `json:"declaration_date"`
	BeginDate       time.Time `json:"disaster_begin_date,omitempty"`
	EndDate         time.Time `json:"disaster_end_date,omitempty"`
	State           string    `json:"state"`
	StateGeoID      string    `json:"state_geo_id,omitempty"`
	CountyGeoID     string    `json:"county_geo_id,omitempty"`
	FEMARegion      string    `json:"fema_region_name,omitempty"`
	DesignatedAreas string    `json:"designated_areas,omitempty"`
	Programs        string    `json:"declared_programs,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
}

// Validate checks that all record fields are valid.
func (r *DisasterRecord) Validate() error {
	if r.DisasterID == "" {
		return errors.New("disaster ID must not be empty")
	}
	if r.IncidentType == "" {
		return errors.New("incident type must not be empty")
	}
	if r.Latitude < -90.0 || r.Latitude > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	if r.Longitude < -180.0 || r.Longitude > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	if !r.BeginDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.BeginDate) {
		return errors.New("disaster end date must not precede begin date")
	}
	return nil
}

// Point is the minimal weighted coordinate the clustering components consume.
// Weight carries pre-aggregated counts when the source serves rollup rows;
// for raw records it is 1.
type Point struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight int64   `json:"weight"`

	// Optional attributes used for rollup summaries.
	IncidentType    string `json:"incident_type,omitempty"`
	DeclarationName string `json:"declaration_name,omitempty"`
}
