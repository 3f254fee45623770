// Package httpapi exposes the pipeline operations, health probes, and
// metrics over HTTP. It is a thin shim: every endpoint decodes a JSON body,
// invokes the corresponding core operation, and writes back its summary.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdemapa/climate-etl-service/internal/domain"
	"github.com/verdemapa/climate-etl-service/internal/download"
	"github.com/verdemapa/climate-etl-service/internal/extract"
	"github.com/verdemapa/climate-etl-service/internal/merge"
	"github.com/verdemapa/climate-etl-service/internal/pointset"
)

// Extractor runs the chunked extraction engine.
type Extractor interface {
	Run(ctx context.Context, p extract.Params) (extract.Summary, error)
}

// Downloader runs the incremental point-series download.
type Downloader interface {
	Run(ctx context.Context, p download.Params) (download.Summary, error)
}

// Processor runs the merge/transform stage.
type Processor interface {
	Run(ctx context.Context, p merge.Params) (merge.Summary, error)
}

// PointLoader loads a point set from a source path.
type PointLoader func(path string) (*domain.PointSet, error)

// Deps collects the core operations the server fronts. A nil Extractor means
// the sampling service is not configured and the extract endpoint answers 503.
type Deps struct {
	Extractor  Extractor
	Downloader Downloader
	Processor  Processor
	LoadPoints PointLoader

	// Defaults for the download window when the request omits them.
	PastDays     int
	ForecastDays int
}

// Server hosts the ETL operation endpoints plus health and metrics routes.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.LoadPoints == nil {
		deps.LoadPoints = pointset.Load
	}

	s := &Server{
		deps:   deps,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/etl/climate", func(r chi.Router) {
		r.Post("/era5/extract", s.handleExtract)
		r.Post("/openmeteo/download", s.handleDownload)
		r.Post("/process", s.handleProcess)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute, // extraction runs are long
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type extractRequest struct {
	CentroidsFile string   `json:"centroids_file"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Variables     []string `json:"variables,omitempty"`
	OutputFolder  string   `json:"output_folder"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.deps.Extractor == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("sampling service is not configured"))
		return
	}

	var req extractRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dateRange, err := domain.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	points, err := s.deps.LoadPoints(req.CentroidsFile)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	summary, err := s.deps.Extractor.Run(r.Context(), extract.Params{
		Points:    points,
		Range:     dateRange,
		Variables: req.Variables,
		OutputDir: req.OutputFolder,
	})
	if err != nil {
		s.logger.Error("extract operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type downloadRequest struct {
	CentroidsFile string `json:"centroids_file"`
	OutputFile    string `json:"output_file"`
	PastDays      *int   `json:"past_days,omitempty"`
	ForecastDays  *int   `json:"forecast_days,omitempty"`
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.OutputFile == "" {
		writeError(w, http.StatusBadRequest, errors.New("output_file is required"))
		return
	}

	points, err := s.deps.LoadPoints(req.CentroidsFile)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	params := download.Params{
		Points:       points,
		OutputFile:   req.OutputFile,
		PastDays:     s.deps.PastDays,
		ForecastDays: s.deps.ForecastDays,
	}
	if req.PastDays != nil {
		params.PastDays = *req.PastDays
	}
	if req.ForecastDays != nil {
		params.ForecastDays = *req.ForecastDays
	}

	summary, err := s.deps.Downloader.Run(r.Context(), params)
	if err != nil {
		s.logger.Error("download operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type processRequest struct {
	RawFiles        []string `json:"era5_raw_files"`
	PointSeriesFile string   `json:"openmeteo_file,omitempty"`
	OutputFolder    string   `json:"output_folder"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	summary, err := s.deps.Processor.Run(r.Context(), merge.Params{
		RawFiles:        req.RawFiles,
		PointSeriesFile: req.PointSeriesFile,
		OutputDir:       req.OutputFolder,
	})
	if err != nil {
		s.logger.Error("process operation failed", "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// statusFor maps input-shaped failures to 400 and everything else to 500.
func statusFor(err error) int {
	var formatErr *pointset.InputFormatError
	switch {
	case errors.As(err, &formatErr),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, merge.ErrNoInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
