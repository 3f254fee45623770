// Package merge reconciles raw extraction batches into the canonical,
// deduplicated, unit-normalized observation table.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/verdemapa/climate-etl-service/internal/domain"
	"github.com/verdemapa/climate-etl-service/internal/observability"
)

// CanonicalFilename is the fixed name of the processed output table.
const CanonicalFilename = "processed_era5_data.parquet"

// ErrNoInput reports a merge invoked with no raw files to merge.
var ErrNoInput = errors.New("no raw extraction files to merge")

// Store is the subset of the persistence layer the processor needs.
type Store interface {
	ReadObservations(path string) ([]domain.RawObservation, error)
	ReadSeries(path string) ([]domain.SeriesRow, error)
	WriteCanonical(path string, rows []domain.CanonicalObservation) error
}

// Processor merges raw batches and applies the unit catalogue.
type Processor struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Processor.
func New(store Store, logger *slog.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{store: store, logger: logger, metrics: metrics}
}

// Params describes one merge run.
type Params struct {
	RawFiles        []string
	PointSeriesFile string // optional; loaded and counted but not yet joined
	OutputDir       string
}

// Summary reports the outcome of a merge run.
type Summary struct {
	Message         string `json:"message"`
	OutputFile      string `json:"output_file"`
	Rows            int    `json:"rows"`
	PointSeriesRows int    `json:"point_series_rows,omitempty"`
}

// Run concatenates the raw files in the order given, deduplicates on
// (FID, variable, date) keeping the first occurrence, sorts by that key,
// applies unit conversions, and writes the canonical table.
//
// When a point-series file is supplied and exists it is loaded and its row
// count reported, but its columns are not joined into the canonical output.
// The join is reserved for a future revision; reporting the count keeps the
// pass-through visible instead of silently dropped.
func (p *Processor) Run(ctx context.Context, params Params) (Summary, error) {
	if len(params.RawFiles) == 0 {
		return Summary{}, ErrNoInput
	}

	var raw []domain.RawObservation
	for _, path := range params.RawFiles {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		rows, err := p.store.ReadObservations(path)
		if err != nil {
			return Summary{}, fmt.Errorf("load raw file %s: %w", path, err)
		}
		raw = append(raw, rows...)
	}

	merged := dedupe(raw)
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.FID != b.FID {
			return a.FID < b.FID
		}
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		return a.Date < b.Date
	})

	canonical := make([]domain.CanonicalObservation, len(merged))
	for i, obs := range merged {
		value, unit := domain.Convert(obs.Variable, obs.Value)
		canonical[i] = domain.CanonicalObservation{
			FID:          obs.FID,
			Longitude:    obs.Longitude,
			Latitude:     obs.Latitude,
			Date:         obs.Date,
			Variable:     obs.Variable,
			Value:        value,
			Unit:         string(unit),
			VariableUnit: domain.CompositeKey(obs.Variable, unit),
		}
	}

	seriesRows := 0
	if params.PointSeriesFile != "" {
		rows, err := p.store.ReadSeries(params.PointSeriesFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.logger.Info("point-series file not found, skipping", "file", params.PointSeriesFile)
		case err != nil:
			return Summary{}, fmt.Errorf("load point series %s: %w", params.PointSeriesFile, err)
		default:
			seriesRows = len(rows)
			p.logger.Info("point series loaded but not joined", "file", params.PointSeriesFile, "rows", seriesRows)
		}
	}

	outputFile := filepath.Join(params.OutputDir, CanonicalFilename)
	if err := p.store.WriteCanonical(outputFile, canonical); err != nil {
		return Summary{}, fmt.Errorf("write canonical table: %w", err)
	}

	p.metrics.CanonicalRows.Add(float64(len(canonical)))
	p.logger.Info("merge finished", "output_file", outputFile, "rows", len(canonical), "raw_files", len(params.RawFiles))
	return Summary{
		Message:         fmt.Sprintf("Climate data processed and saved to %s", outputFile),
		OutputFile:      outputFile,
		Rows:            len(canonical),
		PointSeriesRows: seriesRows,
	}, nil
}

// dedupe drops duplicate (FID, variable, date) observations, keeping the
// first occurrence in load order.
func dedupe(rows []domain.RawObservation) []domain.RawObservation {
	seen := make(map[domain.ObservationKey]struct{}, len(rows))
	out := make([]domain.RawObservation, 0, len(rows))
	for _, row := range rows {
		k := row.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}
