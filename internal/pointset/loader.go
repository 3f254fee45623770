// Package pointset loads labeled geographic points from tabular (CSV) or
// vector (GeoJSON) sources into a domain.PointSet.
package pointset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verdemapa/climate-etl-service/internal/domain"
)

// InputFormatError reports a point-set source that cannot be loaded: the file
// is unparseable, or it lacks the identity or coordinate conventions.
type InputFormatError struct {
	Path   string
	Reason string
}

func (e *InputFormatError) Error() string {
	return fmt.Sprintf("point set %s: %s", e.Path, e.Reason)
}

// Load reads a point set from path. Files ending in ".csv" are parsed as
// row-per-point tables with explicit lon/lat columns; anything else is parsed
// as a GeoJSON FeatureCollection of Points, deriving coordinates from the
// geometry when explicit columns are absent. The identity column is "FID" if
// present, else "grid_id".
func Load(path string) (*domain.PointSet, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path)
	}
	return loadGeoJSON(path)
}

func loadCSV(path string) (*domain.PointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputFormatError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, &InputFormatError{Path: path, Reason: fmt.Sprintf("parse CSV: %v", err)}
	}
	if len(records) < 1 {
		return nil, &InputFormatError{Path: path, Reason: "empty CSV"}
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	idCol, err := identityColumn(path, col)
	if err != nil {
		return nil, err
	}
	lonIdx, lonOK := col["lon"]
	latIdx, latOK := col["lat"]
	if !lonOK || !latOK {
		return nil, &InputFormatError{Path: path, Reason: "missing lon/lat columns"}
	}

	points := make([]domain.Point, 0, len(records)-1)
	for line, rec := range records[1:] {
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[lonIdx]), 64)
		if err != nil {
			return nil, &InputFormatError{Path: path, Reason: fmt.Sprintf("row %d: bad lon %q", line+2, rec[lonIdx])}
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[latIdx]), 64)
		if err != nil {
			return nil, &InputFormatError{Path: path, Reason: fmt.Sprintf("row %d: bad lat %q", line+2, rec[latIdx])}
		}
		points = append(points, domain.Point{
			FID: strings.TrimSpace(rec[col[idCol]]),
			Lon: lon,
			Lat: lat,
		})
	}

	return buildSet(path, idCol, points)
}

// GeoJSON structures, kept minimal: only Point geometries are meaningful for
// a centroid file.

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   geometry                   `json:"geometry"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

func loadGeoJSON(path string) (*domain.PointSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputFormatError{Path: path, Reason: err.Error()}
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &InputFormatError{Path: path, Reason: fmt.Sprintf("parse GeoJSON: %v", err)}
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) == 0 {
		return nil, &InputFormatError{Path: path, Reason: "not a GeoJSON FeatureCollection with features"}
	}

	idCol := ""
	for _, candidate := range []string{"FID", "grid_id"} {
		if _, ok := fc.Features[0].Properties[candidate]; ok {
			idCol = candidate
			break
		}
	}
	if idCol == "" {
		return nil, &InputFormatError{Path: path, Reason: `no "FID" or "grid_id" property`}
	}

	points := make([]domain.Point, 0, len(fc.Features))
	for i, ft := range fc.Features {
		fid, err := propertyString(ft.Properties[idCol])
		if err != nil {
			return nil, &InputFormatError{Path: path, Reason: fmt.Sprintf("feature %d: %s: %v", i, idCol, err)}
		}

		lon, lonOK := propertyFloat(ft.Properties["lon"])
		lat, latOK := propertyFloat(ft.Properties["lat"])
		if !lonOK || !latOK {
			if ft.Geometry.Type != "Point" || len(ft.Geometry.Coordinates) < 2 {
				return nil, &InputFormatError{Path: path, Reason: fmt.Sprintf("feature %d: no lon/lat properties and no Point geometry", i)}
			}
			lon, lat = ft.Geometry.Coordinates[0], ft.Geometry.Coordinates[1]
		}

		points = append(points, domain.Point{FID: fid, Lon: lon, Lat: lat})
	}

	return buildSet(path, idCol, points)
}

func buildSet(path, idCol string, points []domain.Point) (*domain.PointSet, error) {
	ps, err := domain.NewPointSet(idCol, points)
	if err != nil {
		return nil, &InputFormatError{Path: path, Reason: err.Error()}
	}
	return ps, nil
}

// identityColumn selects the point identity column by convention priority.
func identityColumn(path string, col map[string]int) (string, error) {
	if _, ok := col["FID"]; ok {
		return "FID", nil
	}
	if _, ok := col["grid_id"]; ok {
		return "grid_id", nil
	}
	return "", &InputFormatError{Path: path, Reason: `no "FID" or "grid_id" column`}
}

// propertyString renders a JSON property as a point identity. Numeric FIDs
// are rendered without a decimal point so CSV and GeoJSON sources agree.
func propertyString(raw json.RawMessage) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("not a string or number")
}

func propertyFloat(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}
