// Package openmeteo adapts the Open-Meteo daily forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verdemapa/climate-etl-service/internal/domain"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Client fetches daily point-forecast series.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchDaily queries one point's daily series for the requested past/forecast
// window. The returned day sequence comes from the response's own time axis,
// which may differ from the requested window.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, req domain.SeriesRequest) (domain.PointSeries, error) {
	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', -1, 64)},
		"daily":         {strings.Join(req.Variables, ",")},
		"past_days":     {strconv.Itoa(req.PastDays)},
		"forecast_days": {strconv.Itoa(req.ForecastDays)},
	}
	if req.Timezone != "" {
		params.Set("timezone", req.Timezone)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.PointSeries{}, fmt.Errorf("create forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.PointSeries{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return domain.PointSeries{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, msg)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.PointSeries{}, fmt.Errorf("decode forecast response: %w", err)
	}
	if len(payload.Daily.Time) == 0 {
		return domain.PointSeries{}, fmt.Errorf("forecast response has no daily time axis")
	}

	series := domain.PointSeries{
		Dates:  payload.Daily.Time,
		Values: make(map[string][]float64, len(req.Variables)),
	}
	for _, variable := range req.Variables {
		raw, ok := payload.Daily.Variables[variable]
		if !ok {
			continue
		}
		// Days the model has no value for come back as JSON null.
		var sparse []*float64
		if err := json.Unmarshal(raw, &sparse); err != nil {
			return domain.PointSeries{}, fmt.Errorf("decode daily variable %q: %w", variable, err)
		}
		values := make([]float64, len(sparse))
		for i, v := range sparse {
			if v == nil {
				values[i] = math.NaN()
				continue
			}
			values[i] = *v
		}
		series.Values[variable] = values
	}
	return series, nil
}

// response mirrors the Open-Meteo daily JSON shape: a "time" axis of
// "YYYY-MM-DD" strings plus one parallel array per requested variable.
type response struct {
	Daily daily `json:"daily"`
}

type daily struct {
	Time      []string
	Variables map[string]json.RawMessage
}

func (d *daily) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["time"]; ok {
		if err := json.Unmarshal(raw, &d.Time); err != nil {
			return fmt.Errorf("daily time axis: %w", err)
		}
		delete(fields, "time")
	}
	d.Variables = fields
	return nil
}
