// Package earthengine adapts the remote gridded-raster sampling service.
// The service exposes a point-sampling REST surface over image collections;
// requests must carry a session token obtained via Authenticate.
package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/verdemapa/climate-etl-service/internal/domain"
)

// Collection is the daily ERA5-Land aggregates image collection.
const Collection = "ECMWF/ERA5_LAND/DAILY_AGGR"

// Sampling constants carried on every request: raster resampling scale in
// map units and the internal tiling hint that keeps large point collections
// within the service's per-request compute quota.
const (
	sampleScale = 10000
	tileScale   = 16
)

// InitError reports that the sampling service could not be reached or the
// credentials were rejected. It aborts extraction before any work unit runs.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize sampling service: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Session is an authenticated capability handle for the sampling service.
// Lifecycle: Authenticate → use → expires (the service returns 401, and the
// operator must re-run Authenticate; no transparent refresh is attempted).
type Session struct {
	token string
}

// Credentials locate the service-account key: an inline JSON string or a key
// file path. The inline form wins when both are set.
type Credentials struct {
	KeyJSON string
	KeyPath string
}

// Authenticate exchanges service-account credentials for a session token.
// Any failure is returned as an *InitError.
func Authenticate(ctx context.Context, baseURL string, creds Credentials, httpClient *http.Client, logger *slog.Logger) (*Session, error) {
	key := creds.KeyJSON
	if key == "" && creds.KeyPath != "" {
		data, err := os.ReadFile(creds.KeyPath)
		if err != nil {
			return nil, &InitError{Err: fmt.Errorf("read service account key: %w", err)}
		}
		key = string(data)
	}
	if key == "" {
		return nil, &InitError{Err: fmt.Errorf("no service account key configured")}
	}

	body, err := json.Marshal(map[string]json.RawMessage{"service_account": json.RawMessage(key)})
	if err != nil {
		return nil, &InitError{Err: fmt.Errorf("encode service account key: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, &InitError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &InitError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, &InitError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}

	var session struct {
		Token string `json:"session_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, &InitError{Err: fmt.Errorf("decode session response: %w", err)}
	}
	if session.Token == "" {
		return nil, &InitError{Err: fmt.Errorf("empty session token")}
	}

	logger.Info("sampling service session established")
	return &Session{token: session.Token}, nil
}

// Client implements extract.Sampler against the sampling service.
type Client struct {
	session    *Session
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a sampling client bound to an authenticated session.
func NewClient(session *Session, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		session: session,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// SamplePoints samples the first ERA5-Land daily image within [date, date+1)
// at every point, returning per-FID property maps. Points outside raster
// coverage are absent from the result.
func (c *Client) SamplePoints(ctx context.Context, date string, variables []string, points []domain.Point) (map[string]map[string]float64, error) {
	day, err := time.ParseInLocation(domain.DateFormat, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse sample date %q: %w", date, err)
	}

	reqBody := sampleRequest{
		Collection: Collection,
		StartDate:  date,
		EndDate:    day.AddDate(0, 0, 1).Format(domain.DateFormat),
		Bands:      variables,
		Scale:      sampleScale,
		TileScale:  tileScale,
		Geometries: false,
	}
	reqBody.Features = make([]sampleFeature, len(points))
	for i, p := range points {
		reqBody.Features[i] = sampleFeature{FID: p.FID, Lon: p.Lon, Lat: p.Lat}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode sample request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sample", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create sample request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.session.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sample request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sampling service error: status %d: %s", resp.StatusCode, msg)
	}

	var sr sampleResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode sample response: %w", err)
	}

	out := make(map[string]map[string]float64, len(sr.Features))
	for _, f := range sr.Features {
		fid, values := f.split()
		if fid == "" {
			continue
		}
		out[fid] = values
	}
	return out, nil
}

// Sampling service request/response types.

type sampleRequest struct {
	Collection string          `json:"collection"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Bands      []string        `json:"bands"`
	Scale      int             `json:"scale"`
	TileScale  int             `json:"tile_scale"`
	Geometries bool            `json:"geometries"`
	Features   []sampleFeature `json:"features"`
}

type sampleFeature struct {
	FID string  `json:"fid"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type sampleResponse struct {
	Features []responseFeature `json:"features"`
}

type responseFeature struct {
	Properties map[string]any `json:"properties"`
}

// split separates the point identity from the sampled band values. Bands the
// service could not sample come back null and are dropped here.
func (f responseFeature) split() (string, map[string]float64) {
	fid, _ := f.Properties["fid"].(string)
	values := make(map[string]float64, len(f.Properties))
	for k, v := range f.Properties {
		if k == "fid" {
			continue
		}
		if n, ok := v.(float64); ok {
			values[k] = n
		}
	}
	return fid, values
}
