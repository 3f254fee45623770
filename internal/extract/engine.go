// Package extract implements the chunked, retried, parallel extraction of
// daily gridded-raster samples for a point set over a date range.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/verdemapa/climate-etl-service/internal/domain"
	"github.com/verdemapa/climate-etl-service/internal/observability"
)

// Sampler samples a daily raster image at a set of points. The returned map
// is keyed by FID; points outside raster coverage are simply absent. Each
// point's map holds the sampled value per variable present in the image.
type Sampler interface {
	SamplePoints(ctx context.Context, date string, variables []string, points []domain.Point) (map[string]map[string]float64, error)
}

// ObservationWriter persists a raw extraction batch.
type ObservationWriter interface {
	WriteObservations(path string, rows []domain.RawObservation) error
}

// Options bound the engine's concurrency and retry behavior.
type Options struct {
	ChunkSize      int           // max points per work unit (remote feature limit)
	Workers        int           // worker pool width
	AttemptTimeout time.Duration // deadline per sampling attempt
	MaxRetries     uint64        // additional attempts after the first
	RetryInterval  time.Duration // initial backoff between attempts
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 1000
	}
	if o.Workers <= 0 {
		o.Workers = 6
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = 60 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 2
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 500 * time.Millisecond
	}
	return o
}

// Engine partitions (date × point set) into bounded work units, executes them
// concurrently against the sampler, and aggregates successes and failures.
type Engine struct {
	sampler Sampler
	writer  ObservationWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
}

// New creates an Engine. Zero-valued Options fields take their defaults.
func New(sampler Sampler, writer ObservationWriter, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Engine {
	return &Engine{
		sampler: sampler,
		writer:  writer,
		logger:  logger,
		metrics: metrics,
		opts:    opts.withDefaults(),
	}
}

// Params describes one extraction run.
type Params struct {
	Points    *domain.PointSet
	Range     domain.DateRange
	Variables []string // nil → domain.ERA5Variables
	OutputDir string
}

// Summary reports the outcome of an extraction run. Individual chunk
// failures are counted here, not raised.
type Summary struct {
	Message      string `json:"message"`
	OutputFile   string `json:"output_file,omitempty"`
	Rows         int    `json:"rows"`
	FailedChunks int    `json:"failed_chunks"`
}

// workUnit is one (date, point chunk) task for the worker pool.
type workUnit struct {
	date   string
	index  int
	points []domain.Point
}

// Run executes the extraction. Chunk failures are absorbed into the summary;
// only context cancellation and output-write failures abort the run.
func (e *Engine) Run(ctx context.Context, p Params) (Summary, error) {
	variables := p.Variables
	if len(variables) == 0 {
		variables = domain.ERA5Variables
	}

	units := e.buildUnits(p.Range.Days(), p.Points.Points())
	e.logger.Info("extraction started",
		"points", p.Points.Len(),
		"days", len(p.Range.Days()),
		"work_units", len(units),
		"variables", len(variables),
		"workers", e.opts.Workers,
	)

	e.metrics.ExtractionsInFlight.Inc()
	defer e.metrics.ExtractionsInFlight.Dec()

	var (
		mu     sync.Mutex
		all    []domain.RawObservation
		failed []domain.FailedChunk
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, u := range units {
		unit := u
		g.Go(func() error {
			rows, fc := e.runUnit(gctx, unit, variables)
			mu.Lock()
			defer mu.Unlock()
			if fc != nil {
				failed = append(failed, *fc)
				return nil
			}
			all = append(all, rows...)
			return nil
		})
	}
	// Workers never return errors; Wait only orders the join.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	if len(all) == 0 {
		e.logger.Info("extraction produced no rows", "failed_chunks", len(failed))
		return Summary{Message: "No ERA5 data extracted", FailedChunks: len(failed)}, nil
	}

	start, end := p.Range.Compact()
	outputFile := filepath.Join(p.OutputDir, fmt.Sprintf("raw_era5_data_%s_%s.parquet", start, end))
	if err := e.writer.WriteObservations(outputFile, all); err != nil {
		return Summary{}, fmt.Errorf("write extraction output: %w", err)
	}

	e.metrics.ObservationsWritten.Add(float64(len(all)))
	e.logger.Info("extraction finished", "output_file", outputFile, "rows", len(all), "failed_chunks", len(failed))
	return Summary{
		Message:      fmt.Sprintf("ERA5 data extracted and saved to %s", outputFile),
		OutputFile:   outputFile,
		Rows:         len(all),
		FailedChunks: len(failed),
	}, nil
}

// buildUnits expands the daily sequence and partitions each day's full point
// set into chunks. Every point is sampled on every day; there is no
// skip-if-already-sampled logic at this stage.
func (e *Engine) buildUnits(days []string, points []domain.Point) []workUnit {
	var units []workUnit
	for _, day := range days {
		for i, chunk := range Partition(points, e.opts.ChunkSize) {
			units = append(units, workUnit{date: day, index: i, points: chunk})
		}
	}
	return units
}

// Partition splits points into consecutive chunks of at most size points.
// The union of all chunks covers the input exactly once, in order.
func Partition(points []domain.Point, size int) [][]domain.Point {
	if size <= 0 || len(points) == 0 {
		return nil
	}
	chunks := make([][]domain.Point, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := start + size
		if end > len(points) {
			end = len(points)
		}
		chunks = append(chunks, points[start:end])
	}
	return chunks
}

// runUnit samples one work unit with a bounded, jittered retry. It returns
// either the flattened observations or a FailedChunk for the whole unit,
// never both.
func (e *Engine) runUnit(ctx context.Context, u workUnit, variables []string) ([]domain.RawObservation, *domain.FailedChunk) {
	var props map[string]map[string]float64

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.AttemptTimeout)
		defer cancel()

		start := time.Now()
		result, err := e.sampler.SamplePoints(attemptCtx, u.date, variables, u.points)
		e.metrics.SampleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				// Whole run is being torn down; do not burn the retry budget.
				return backoff.Permanent(err)
			}
			return err
		}
		props = result
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = e.opts.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, e.opts.MaxRetries), ctx)
	notify := func(err error, next time.Duration) {
		e.metrics.ChunkRetries.Inc()
		e.logger.Warn("sampling attempt failed, retrying",
			"date", u.date, "chunk", u.index, "points", len(u.points), "backoff", next, "error", err)
	}

	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		reason := domain.FailureRetriesExhausted
		if errors.Is(err, context.DeadlineExceeded) {
			reason = domain.FailureTimeout
		}
		e.metrics.ChunksFailed.WithLabelValues(string(reason)).Inc()
		e.logger.Error("work unit abandoned",
			"date", u.date, "chunk", u.index, "points", len(u.points), "reason", reason, "error", err)
		return nil, &domain.FailedChunk{Date: u.date, FIDs: fids(u.points), Reason: reason}
	}

	e.metrics.ChunksProcessed.Inc()

	rows := make([]domain.RawObservation, 0, len(u.points)*len(variables))
	for _, pt := range u.points {
		values, ok := props[pt.FID]
		if !ok {
			// Outside raster coverage: contributes no rows, not a failure.
			continue
		}
		for _, variable := range variables {
			value, ok := values[variable]
			if !ok {
				continue
			}
			rows = append(rows, domain.RawObservation{
				FID:       pt.FID,
				Longitude: pt.Lon,
				Latitude:  pt.Lat,
				Date:      u.date,
				Variable:  variable,
				Value:     value,
			})
		}
	}
	return rows, nil
}

func fids(points []domain.Point) []string {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.FID
	}
	return ids
}
