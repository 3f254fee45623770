package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdemapa/climate-etl-service/internal/domain"
)

func TestSeriesRow_SetGet(t *testing.T) {
	var row domain.SeriesRow

	// Every catalogued daily variable must have a column.
	for i, variable := range domain.DailyVariables {
		require.True(t, row.Set(variable, float64(i)), "no column for %s", variable)
	}
	for i, variable := range domain.DailyVariables {
		got, ok := row.Get(variable)
		require.True(t, ok)
		assert.Equal(t, float64(i), got, variable)
	}

	assert.False(t, row.Set("not_a_variable", 1))
	_, ok := row.Get("not_a_variable")
	assert.False(t, ok)
}

func TestNewPointSet_DuplicateFID(t *testing.T) {
	_, err := domain.NewPointSet("FID", []domain.Point{
		{FID: "1", Lon: -47.9, Lat: -15.8},
		{FID: "1", Lon: -48.0, Lat: -15.9},
	})
	assert.Error(t, err)
}

func TestPointSet_Lookup(t *testing.T) {
	ps, err := domain.NewPointSet("grid_id", []domain.Point{
		{FID: "a", Lon: 1, Lat: 2},
		{FID: "b", Lon: 3, Lat: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, ps.Len())
	p, ok := ps.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 3.0, p.Lon)
	_, ok = ps.Lookup("missing")
	assert.False(t, ok)
}
