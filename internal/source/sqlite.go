package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bdeakin/disastermap/internal/models"
)

// Schema creates the declarations table the sqlite source reads from.
// Loaders populate it out of band; the source itself never writes.
const Schema = `
CREATE TABLE IF NOT EXISTS declarations (
	disaster_id TEXT NOT NULL,
	fema_declaration_id TEXT,
	incident_type TEXT NOT NULL,
	declaration_name TEXT,
	declaration_type TEXT,
	declaration_date TEXT,
	begin_date TEXT,
	end_date TEXT,
	state_name TEXT,
	state_geo_id TEXT,
	county_geo_id TEXT,
	fema_region_name TEXT,
	designated_areas TEXT,
	declared_programs TEXT,
	county_latitude REAL,
	county_longitude REAL,
	region_latitude REAL,
	region_longitude REAL
);
CREATE INDEX IF NOT EXISTS idx_declarations_state ON declarations (state_geo_id);
CREATE INDEX IF NOT EXISTS idx_declarations_incident ON declarations (incident_type);
`

// SQLiteSource implements DataSource over a local sqlite database whose
// declarations table mirrors the upstream analytics view: one row per
// county-level declaration, with county coordinates falling back to the
// FEMA region centroid when the county is not geocoded.
type SQLiteSource struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists.
func Open(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests and embedders that
// manage the connection themselves.
func NewWithDB(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for loaders.
func (s *SQLiteSource) DB() *sql.DB { return s.db }

// buildInClause renders a named-parameter IN clause for the given values,
// e.g. "(:state0, :state1)". Whole-value binding only; values never appear
// in the SQL text.
func buildInClause(values []string, prefix string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		name := fmt.Sprintf("%s%d", prefix, i)
		placeholders[i] = ":" + name
		args[i] = sql.Named(name, v)
	}
	return "(" + strings.Join(placeholders, ", ") + ")", args
}

// whereFor assembles the shared WHERE clause for the filter set and bounds.
func whereFor(filters models.FilterSet, bounds models.ViewportBounds) (string, []any) {
	var clauses []string
	var args []any

	if len(filters.States) > 0 {
		in, inArgs := buildInClause(filters.States, "state")
		clauses = append(clauses, "state_geo_id IN "+in)
		args = append(args, inArgs...)
	}
	if len(filters.IncidentTypes) > 0 {
		in, inArgs := buildInClause(filters.IncidentTypes, "incident")
		clauses = append(clauses, "incident_type IN "+in)
		args = append(args, inArgs...)
	}
	if filters.YearMin != 0 || filters.YearMax != 0 {
		clauses = append(clauses, "CAST(strftime('%Y', declaration_date) AS INTEGER) BETWEEN :min_year AND :max_year")
		args = append(args,
			sql.Named("min_year", filters.YearMin),
			sql.Named("max_year", filters.YearMax),
		)
	}
	clauses = append(clauses,
		"COALESCE(county_latitude, region_latitude) BETWEEN :min_lat AND :max_lat",
		"COALESCE(county_longitude, region_longitude) BETWEEN :min_lon AND :max_lon",
	)
	args = append(args,
		sql.Named("min_lat", bounds.MinLat),
		sql.Named("max_lat", bounds.MaxLat),
		sql.Named("min_lon", bounds.MinLon),
		sql.Named("max_lon", bounds.MaxLon),
	)
	return strings.Join(clauses, " AND "), args
}

// FetchPoints returns one weighted point per row inside the filters and
// bounds. Rows without any coordinate are skipped by the WHERE clause.
func (s *SQLiteSource) FetchPoints(ctx context.Context, filters models.FilterSet, bounds models.ViewportBounds, limit int) ([]models.Point, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("row limit is mandatory")
	}
	where, args := whereFor(filters, bounds)
	query, err := ValidateReadOnlySQL(fmt.Sprintf(`
SELECT
	COALESCE(county_latitude, region_latitude) AS lat,
	COALESCE(county_longitude, region_longitude) AS lon,
	incident_type,
	COALESCE(declaration_name, '') AS declaration_name
FROM declarations
WHERE %s
LIMIT :limit_rows`, where), limit)
	if err != nil {
		return nil, &FetchError{Op: "point fetch", Hint: "query rejected by the read-only guard", Err: err}
	}
	args = append(args, sql.Named("limit_rows", limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &FetchError{Op: "point fetch", Hint: "check filters and retry", Err: err}
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var p models.Point
		if err := rows.Scan(&p.Lat, &p.Lon, &p.IncidentType, &p.DeclarationName); err != nil {
			return nil, &FetchError{Op: "point fetch", Hint: "data source returned an unexpected row shape", Err: err}
		}
		p.Weight = 1
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Op: "point fetch", Hint: "check filters and retry", Err: err}
	}
	return points, nil
}

// FetchRecords returns full detail rows inside the filters and bounds.
func (s *SQLiteSource) FetchRecords(ctx context.Context, filters models.FilterSet, bounds models.ViewportBounds, limit int) ([]models.DisasterRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("row limit is mandatory")
	}
	where, args := whereFor(filters, bounds)
	query, err := ValidateReadOnlySQL(fmt.Sprintf(`
SELECT
	disaster_id,
	COALESCE(fema_declaration_id, ''),
	incident_type,
	COALESCE(declaration_name, ''),
	COALESCE(declaration_type, ''),
	COALESCE(declaration_date, ''),
	COALESCE(begin_date, ''),
	COALESCE(end_date, ''),
	COALESCE(state_name, ''),
	COALESCE(state_geo_id, ''),
	COALESCE(county_geo_id, ''),
	COALESCE(fema_region_name, ''),
	COALESCE(designated_areas, ''),
	COALESCE(declared_programs, ''),
	COALESCE(county_latitude, region_latitude),
	COALESCE(county_longitude, region_longitude)
FROM declarations
WHERE %s
LIMIT :limit_rows`, where), limit)
	if err != nil {
		return nil, &FetchError{Op: "detail fetch", Hint: "query rejected by the read-only guard", Err: err}
	}
	args = append(args, sql.Named("limit_rows", limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &FetchError{Op: "detail fetch", Hint: "check filters and retry", Err: err}
	}
	defer rows.Close()

	var records []models.DisasterRecord
	for rows.Next() {
		var r models.DisasterRecord
		var declDate, beginDate, endDate string
		if err := rows.Scan(
			&r.DisasterID, &r.DeclarationID, &r.IncidentType, &r.DeclarationName,
			&r.DeclarationType, &declDate, &beginDate, &endDate,
			&r.State, &r.StateGeoID, &r.CountyGeoID, &r.FEMARegion,
			&r.DesignatedAreas, &r.Programs, &r.Latitude, &r.Longitude,
		); err != nil {
			return nil, &FetchError{Op: "detail fetch", Hint: "data source returned an unexpected row shape", Err: err}
		}
		r.DeclarationDate = parseDate(declDate)
		r.BeginDate = parseDate(beginDate)
		r.EndDate = parseDate(endDate)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Op: "detail fetch", Hint: "check filters and retry", Err: err}
	}
	return records, nil
}

// parseDate tolerates the date shapes found upstream; unparseable values
// become the zero time rather than failing the whole fetch.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// StateOptions lists distinct states (name plus geo id), sorted by name.
func (s *SQLiteSource) StateOptions(ctx context.Context) ([]StateOption, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT state_name, state_geo_id
FROM declarations
WHERE state_name IS NOT NULL AND state_geo_id IS NOT NULL
ORDER BY state_name
LIMIT 100`)
	if err != nil {
		return nil, &FetchError{Op: "state options", Hint: "check the data source connection", Err: err}
	}
	defer rows.Close()

	var options []StateOption
	for rows.Next() {
		var opt StateOption
		if err := rows.Scan(&opt.Name, &opt.GeoID); err != nil {
			return nil, &FetchError{Op: "state options", Hint: "data source returned an unexpected row shape", Err: err}
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// IncidentOptions lists distinct incident types, sorted.
func (s *SQLiteSource) IncidentOptions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT incident_type
FROM declarations
WHERE incident_type IS NOT NULL
ORDER BY incident_type
LIMIT 500`)
	if err != nil {
		return nil, &FetchError{Op: "incident options", Hint: "check the data source connection", Err: err}
	}
	defer rows.Close()

	var options []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, &FetchError{Op: "incident options", Hint: "data source returned an unexpected row shape", Err: err}
		}
		options = append(options, v)
	}
	return options, rows.Err()
}

// YearBounds returns the min and max declaration year across rows with a
// parseable date. (0, 0) with nil error means no usable dates exist.
func (s *SQLiteSource) YearBounds(ctx context.Context) (int, int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT
	COALESCE(MIN(CAST(strftime('%Y', declaration_date) AS INTEGER)), 0),
	COALESCE(MAX(CAST(strftime('%Y', declaration_date) AS INTEGER)), 0)
FROM declarations
WHERE declaration_date IS NOT NULL`)

	var minYear, maxYear int
	if err := row.Scan(&minYear, &maxYear); err != nil {
		return 0, 0, &FetchError{Op: "year bounds", Hint: "check the data source connection", Err: err}
	}
	return minYear, maxYear, nil
}
