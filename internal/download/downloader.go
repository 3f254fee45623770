// Package download implements the incremental point-series downloader: per
// point, it fetches a fixed catalogue of daily forecast variables and appends
// only the dates not yet persisted.
package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/verdemapa/climate-etl-service/internal/domain"
	"github.com/verdemapa/climate-etl-service/internal/observability"
)

// SeriesAPI fetches one point's daily series from the forecast API.
type SeriesAPI interface {
	FetchDaily(ctx context.Context, lat, lon float64, req domain.SeriesRequest) (domain.PointSeries, error)
}

// SeriesStore reads and overwrites the persisted point series. ReadSeries
// must satisfy errors.Is(err, fs.ErrNotExist) when no series exists yet.
type SeriesStore interface {
	ReadSeries(path string) ([]domain.SeriesRow, error)
	WriteSeries(path string, rows []domain.SeriesRow) error
}

// Downloader drives the incremental download. It is sequential per point;
// the forecast API is cheap per call and rate-limits bursts.
type Downloader struct {
	api      SeriesAPI
	store    SeriesStore
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	timezone string
}

// New creates a Downloader. The clock anchors the past/forecast window and is
// injectable for tests.
func New(api SeriesAPI, store SeriesStore, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, timezone string) *Downloader {
	return &Downloader{
		api:      api,
		store:    store,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		timezone: timezone,
	}
}

// Params describes one download run.
type Params struct {
	Points       *domain.PointSet
	OutputFile   string
	PastDays     int
	ForecastDays int
}

// Summary reports the outcome of a download run.
type Summary struct {
	Message      string `json:"message"`
	NewRows      int    `json:"new_rows"`
	FailedPoints int    `json:"failed_points"`
}

// Run fetches every point's window, keeps only dates missing from the
// persisted series, and overwrites the series file with existing rows first
// so that duplicate (FID, date) conflicts resolve to the previously persisted
// row. Per-point query failures are counted and skipped, never fatal.
func (d *Downloader) Run(ctx context.Context, p Params) (Summary, error) {
	existing, err := d.store.ReadSeries(p.OutputFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Summary{}, fmt.Errorf("read persisted series: %w", err)
	}

	existingDates := make(map[string]map[string]struct{}, p.Points.Len())
	for _, row := range existing {
		dates, ok := existingDates[row.FID]
		if !ok {
			dates = make(map[string]struct{})
			existingDates[row.FID] = dates
		}
		dates[row.Date] = struct{}{}
	}

	req := domain.SeriesRequest{
		Variables:    domain.DailyVariables,
		PastDays:     p.PastDays,
		ForecastDays: p.ForecastDays,
		Timezone:     d.timezone,
	}

	var (
		appended     []domain.SeriesRow
		failedPoints int
	)
	for _, point := range p.Points.Points() {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}

		start := d.clock.Now()
		series, err := d.api.FetchDaily(ctx, point.Lat, point.Lon, req)
		d.metrics.ForecastDuration.Observe(d.clock.Since(start).Seconds())
		if err != nil {
			failedPoints++
			d.metrics.SeriesPointsFailed.Inc()
			d.logger.Warn("point query failed, skipping", "fid", point.FID, "error", err)
			continue
		}

		appended = append(appended, d.missingRows(point, series, existingDates[point.FID])...)
	}

	if len(appended) == 0 {
		d.logger.Info("series already up to date", "failed_points", failedPoints)
		return Summary{Message: "No new Open-Meteo data downloaded", FailedPoints: failedPoints}, nil
	}

	// Existing rows stay ahead of new ones so first-seen wins on conflict.
	combined := dedupeSeries(append(existing, appended...))
	sort.Slice(combined, func(i, j int) bool {
		if combined[i].FID != combined[j].FID {
			return combined[i].FID < combined[j].FID
		}
		return combined[i].Date < combined[j].Date
	})

	if err := d.store.WriteSeries(p.OutputFile, combined); err != nil {
		return Summary{}, fmt.Errorf("write series: %w", err)
	}

	d.metrics.SeriesRowsAppended.Add(float64(len(appended)))
	d.logger.Info("series updated", "output_file", p.OutputFile, "new_rows", len(appended), "failed_points", failedPoints)
	return Summary{
		Message:      fmt.Sprintf("Open-Meteo data updated: %s", p.OutputFile),
		NewRows:      len(appended),
		FailedPoints: failedPoints,
	}, nil
}

// missingRows builds one SeriesRow per response day not yet persisted for the
// point. The response's own day sequence is authoritative.
func (d *Downloader) missingRows(point domain.Point, series domain.PointSeries, persisted map[string]struct{}) []domain.SeriesRow {
	var rows []domain.SeriesRow
	for i, date := range series.Dates {
		if _, ok := persisted[date]; ok {
			continue
		}
		row := domain.SeriesRow{
			FID:       point.FID,
			Longitude: point.Lon,
			Latitude:  point.Lat,
			Date:      date,
		}
		for _, variable := range domain.DailyVariables {
			values, ok := series.Values[variable]
			if !ok || i >= len(values) {
				continue
			}
			row.Set(variable, values[i])
		}
		rows = append(rows, row)
	}
	return rows
}

// dedupeSeries drops duplicate (FID, date) rows, keeping the first occurrence.
func dedupeSeries(rows []domain.SeriesRow) []domain.SeriesRow {
	type key struct{ fid, date string }
	seen := make(map[key]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		k := key{row.FID, row.Date}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}
