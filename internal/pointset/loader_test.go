package pointset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdemapa/climate-etl-service/internal/domain"
	"github.com/verdemapa/climate-etl-service/internal/pointset"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	t.Run("FID column", func(t *testing.T) {
		path := writeFixture(t, "centroids.csv", "FID,lon,lat\n1,-47.93,-15.78\n2,-48.10,-15.90\n")

		ps, err := pointset.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "FID", ps.IDColumn)
		assert.Equal(t, 2, ps.Len())

		p, ok := ps.Lookup("1")
		require.True(t, ok)
		assert.Equal(t, -47.93, p.Lon)
		assert.Equal(t, -15.78, p.Lat)
	})

	t.Run("grid_id fallback", func(t *testing.T) {
		path := writeFixture(t, "centroids.csv", "grid_id,lat,lon\ng-7,-15.78,-47.93\n")

		ps, err := pointset.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "grid_id", ps.IDColumn)
		p, ok := ps.Lookup("g-7")
		require.True(t, ok)
		assert.Equal(t, -47.93, p.Lon)
	})

	t.Run("FID preferred over grid_id", func(t *testing.T) {
		path := writeFixture(t, "centroids.csv", "grid_id,FID,lon,lat\ng-1,7,-47.0,-15.0\n")

		ps, err := pointset.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "FID", ps.IDColumn)
		_, ok := ps.Lookup("7")
		assert.True(t, ok)
	})

	t.Run("missing identity column", func(t *testing.T) {
		path := writeFixture(t, "centroids.csv", "id,lon,lat\n1,-47.0,-15.0\n")

		_, err := pointset.Load(path)
		var formatErr *pointset.InputFormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Contains(t, formatErr.Reason, "FID")
	})

	t.Run("missing coordinates", func(t *testing.T) {
		path := writeFixture(t, "centroids.csv", "FID,x,y\n1,-47.0,-15.0\n")

		_, err := pointset.Load(path)
		var formatErr *pointset.InputFormatError
		assert.ErrorAs(t, err, &formatErr)
	})

	t.Run("duplicate FIDs", func(t *testing.T) {
		path := writeFixture(t, "centroids.csv", "FID,lon,lat\n1,-47.0,-15.0\n1,-48.0,-16.0\n")

		_, err := pointset.Load(path)
		var formatErr *pointset.InputFormatError
		assert.ErrorAs(t, err, &formatErr)
	})
}

func TestLoad_GeoJSON(t *testing.T) {
	t.Run("coordinates from geometry", func(t *testing.T) {
		path := writeFixture(t, "centroids.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"geometry": {"type": "Point", "coordinates": [-47.93, -15.78]}, "properties": {"FID": 1}},
				{"geometry": {"type": "Point", "coordinates": [-48.10, -15.90]}, "properties": {"FID": 2}}
			]
		}`)

		ps, err := pointset.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "FID", ps.IDColumn)

		p, ok := ps.Lookup("2")
		require.True(t, ok)
		assert.Equal(t, -48.10, p.Lon)
		assert.Equal(t, -15.90, p.Lat)
	})

	t.Run("explicit lon/lat properties win", func(t *testing.T) {
		path := writeFixture(t, "centroids.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"grid_id": "g-1", "lon": -47.5, "lat": -15.5}}
			]
		}`)

		ps, err := pointset.Load(path)
		require.NoError(t, err)
		p, ok := ps.Lookup("g-1")
		require.True(t, ok)
		assert.Equal(t, -47.5, p.Lon)
		assert.Equal(t, -15.5, p.Lat)
	})

	t.Run("unparseable source", func(t *testing.T) {
		path := writeFixture(t, "centroids.geojson", "not geojson at all")

		_, err := pointset.Load(path)
		var formatErr *pointset.InputFormatError
		assert.ErrorAs(t, err, &formatErr)
	})

	t.Run("no identity property", func(t *testing.T) {
		path := writeFixture(t, "centroids.geojson", `{
			"type": "FeatureCollection",
			"features": [
				{"geometry": {"type": "Point", "coordinates": [-47.0, -15.0]}, "properties": {"name": "x"}}
			]
		}`)

		_, err := pointset.Load(path)
		var formatErr *pointset.InputFormatError
		assert.ErrorAs(t, err, &formatErr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := pointset.Load(filepath.Join(t.TempDir(), "nope.geojson"))
		var formatErr *pointset.InputFormatError
		assert.ErrorAs(t, err, &formatErr)
	})
}

func TestLoad_ReturnsOrderedPoints(t *testing.T) {
	path := writeFixture(t, "centroids.csv", "FID,lon,lat\n3,-1,-1\n1,-2,-2\n2,-3,-3\n")

	ps, err := pointset.Load(path)
	require.NoError(t, err)

	got := make([]domain.Point, 0, ps.Len())
	got = append(got, ps.Points()...)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].FID)
	assert.Equal(t, "1", got[1].FID)
	assert.Equal(t, "2", got[2].FID)
}
