package merge_test

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdemapa/climate-etl-service/internal/domain"
	"github.com/verdemapa/climate-etl-service/internal/merge"
	"github.com/verdemapa/climate-etl-service/internal/observability"
)

// memoryStore serves raw files and point series from maps and captures the
// canonical write.
type memoryStore struct {
	raw       map[string][]domain.RawObservation
	series    map[string][]domain.SeriesRow
	canonical []domain.CanonicalObservation
	wrotePath string
}

func (m *memoryStore) ReadObservations(path string) ([]domain.RawObservation, error) {
	rows, ok := m.raw[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return rows, nil
}

func (m *memoryStore) ReadSeries(path string) ([]domain.SeriesRow, error) {
	rows, ok := m.series[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return rows, nil
}

func (m *memoryStore) WriteCanonical(path string, rows []domain.CanonicalObservation) error {
	m.wrotePath = path
	m.canonical = rows
	return nil
}

func newProcessor(store *memoryStore) *merge.Processor {
	return merge.New(store, slog.Default(), observability.NewMetricsForTesting())
}

func obs(fid, date, variable string, value float64) domain.RawObservation {
	return domain.RawObservation{FID: fid, Date: date, Variable: variable, Value: value}
}

func TestProcessor_Run_MergesAndConverts(t *testing.T) {
	store := &memoryStore{raw: map[string][]domain.RawObservation{
		"/raw/a.parquet": {
			obs("1", "2024-06-01", "temperature_2m_max", 300.15),
			obs("1", "2024-06-01", "total_precipitation_sum", 0.005),
			obs("1", "2024-06-01", "surface_pressure", 98000),
		},
	}}

	summary, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:  []string{"/raw/a.parquet"},
		OutputDir: "/out",
	})
	require.NoError(t, err)

	assert.Equal(t, "/out/processed_era5_data.parquet", summary.OutputFile)
	assert.Equal(t, summary.OutputFile, store.wrotePath)
	assert.Contains(t, summary.Message, summary.OutputFile)
	require.Len(t, store.canonical, 3)

	byVar := make(map[string]domain.CanonicalObservation, len(store.canonical))
	for _, row := range store.canonical {
		byVar[row.Variable] = row
	}

	temp := byVar["temperature_2m_max"]
	assert.InDelta(t, 27.0, temp.Value, 1e-9)
	assert.Equal(t, "°C", temp.Unit)
	assert.Equal(t, "temperature_2m_max__°C", temp.VariableUnit)

	precip := byVar["total_precipitation_sum"]
	assert.InDelta(t, 5.0, precip.Value, 1e-9)
	assert.Equal(t, "mm", precip.Unit)

	pressure := byVar["surface_pressure"]
	assert.Equal(t, 98000.0, pressure.Value)
	assert.Equal(t, "", pressure.Unit)
	assert.Equal(t, "surface_pressure", pressure.VariableUnit)
}

func TestProcessor_Run_DedupeKeepsFirstLoaded(t *testing.T) {
	// Two batches overlap on the same (FID, variable, date); the value from
	// the file listed first survives.
	store := &memoryStore{raw: map[string][]domain.RawObservation{
		"/raw/a.parquet": {
			obs("1", "2024-06-01", "surface_pressure", 100),
			obs("1", "2024-06-02", "surface_pressure", 200),
		},
		"/raw/b.parquet": {
			obs("1", "2024-06-02", "surface_pressure", 999),
			obs("1", "2024-06-03", "surface_pressure", 300),
		},
	}}

	summary, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:  []string{"/raw/a.parquet", "/raw/b.parquet"},
		OutputDir: "/out",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Rows)
	require.Len(t, store.canonical, 3)
	assert.Equal(t, 200.0, store.canonical[1].Value)
}

func TestProcessor_Run_SameFileTwiceIsIdempotent(t *testing.T) {
	store := &memoryStore{raw: map[string][]domain.RawObservation{
		"/raw/a.parquet": {
			obs("1", "2024-06-01", "surface_pressure", 100),
			obs("2", "2024-06-01", "surface_pressure", 100),
		},
	}}

	summary, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:  []string{"/raw/a.parquet", "/raw/a.parquet"},
		OutputDir: "/out",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Rows)
}

func TestProcessor_Run_SortsByFIDVariableDate(t *testing.T) {
	store := &memoryStore{raw: map[string][]domain.RawObservation{
		"/raw/a.parquet": {
			obs("2", "2024-06-01", "surface_pressure", 1),
			obs("1", "2024-06-02", "surface_pressure", 2),
			obs("1", "2024-06-01", "u_component_of_wind_10m", 3),
			obs("1", "2024-06-01", "surface_pressure", 4),
		},
	}}

	_, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:  []string{"/raw/a.parquet"},
		OutputDir: "/out",
	})
	require.NoError(t, err)

	got := make([]domain.ObservationKey, len(store.canonical))
	for i, row := range store.canonical {
		got[i] = domain.ObservationKey{FID: row.FID, Variable: row.Variable, Date: row.Date}
	}
	want := []domain.ObservationKey{
		{FID: "1", Variable: "surface_pressure", Date: "2024-06-01"},
		{FID: "1", Variable: "surface_pressure", Date: "2024-06-02"},
		{FID: "1", Variable: "u_component_of_wind_10m", Date: "2024-06-01"},
		{FID: "2", Variable: "surface_pressure", Date: "2024-06-01"},
	}
	assert.Equal(t, want, got)
}

func TestProcessor_Run_NoInput(t *testing.T) {
	_, err := newProcessor(&memoryStore{}).Run(context.Background(), merge.Params{OutputDir: "/out"})
	assert.ErrorIs(t, err, merge.ErrNoInput)
}

func TestProcessor_Run_MissingRawFileIsFatal(t *testing.T) {
	store := &memoryStore{raw: map[string][]domain.RawObservation{}}
	_, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:  []string{"/raw/missing.parquet"},
		OutputDir: "/out",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorContains(t, err, "/raw/missing.parquet")
}

func TestProcessor_Run_PointSeriesCountedNotJoined(t *testing.T) {
	store := &memoryStore{
		raw: map[string][]domain.RawObservation{
			"/raw/a.parquet": {obs("1", "2024-06-01", "surface_pressure", 1)},
		},
		series: map[string][]domain.SeriesRow{
			"/data/openmeteo.parquet": {
				{FID: "1", Date: "2024-06-01"},
				{FID: "1", Date: "2024-06-02"},
			},
		},
	}

	summary, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:        []string{"/raw/a.parquet"},
		PointSeriesFile: "/data/openmeteo.parquet",
		OutputDir:       "/out",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PointSeriesRows)
	assert.Equal(t, 1, summary.Rows)
}

func TestProcessor_Run_MissingPointSeriesIsSkipped(t *testing.T) {
	store := &memoryStore{raw: map[string][]domain.RawObservation{
		"/raw/a.parquet": {obs("1", "2024-06-01", "surface_pressure", 1)},
	}}

	summary, err := newProcessor(store).Run(context.Background(), merge.Params{
		RawFiles:        []string{"/raw/a.parquet"},
		PointSeriesFile: "/data/nope.parquet",
		OutputDir:       "/out",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PointSeriesRows)
}

func TestProcessor_Run_PointSeriesReadErrorIsFatal(t *testing.T) {
	store := &failingSeriesStore{
		memoryStore: memoryStore{raw: map[string][]domain.RawObservation{
			"/raw/a.parquet": {obs("1", "2024-06-01", "surface_pressure", 1)},
		}},
		seriesErr: errors.New("corrupt footer"),
	}

	_, err := merge.New(store, slog.Default(), observability.NewMetricsForTesting()).Run(context.Background(), merge.Params{
		RawFiles:        []string{"/raw/a.parquet"},
		PointSeriesFile: "/data/openmeteo.parquet",
		OutputDir:       "/out",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "corrupt footer")
}

type failingSeriesStore struct {
	memoryStore
	seriesErr error
}

func (f *failingSeriesStore) ReadSeries(string) ([]domain.SeriesRow, error) {
	return nil, f.seriesErr
}
