package domain

// SeriesRow is one (point, day) of the incrementally downloaded forecast
// series, one column per daily variable. The pair (FID, Date) is unique in
// the persisted series.
type SeriesRow struct {
	FID       string  `parquet:"FID" json:"fid"`
	Longitude float64 `parquet:"longitude" json:"longitude"`
	Latitude  float64 `parquet:"latitude" json:"latitude"`
	Date      string  `parquet:"date" json:"date"`

	Temperature2mMax               float64 `parquet:"temperature_2m_max" json:"temperature_2m_max"`
	Temperature2mMean              float64 `parquet:"temperature_2m_mean" json:"temperature_2m_mean"`
	Temperature2mMin               float64 `parquet:"temperature_2m_min" json:"temperature_2m_min"`
	DewPoint2mMean                 float64 `parquet:"dew_point_2m_mean" json:"dew_point_2m_mean"`
	RelativeHumidity2mMean         float64 `parquet:"relative_humidity_2m_mean" json:"relative_humidity_2m_mean"`
	RelativeHumidity2mMax          float64 `parquet:"relative_humidity_2m_max" json:"relative_humidity_2m_max"`
	RelativeHumidity2mMin          float64 `parquet:"relative_humidity_2m_min" json:"relative_humidity_2m_min"`
	UVIndexMax                     float64 `parquet:"uv_index_max" json:"uv_index_max"`
	UVIndexClearSkyMax             float64 `parquet:"uv_index_clear_sky_max" json:"uv_index_clear_sky_max"`
	ShortwaveRadiationSum          float64 `parquet:"shortwave_radiation_sum" json:"shortwave_radiation_sum"`
	WetBulbTemperature2mMean       float64 `parquet:"wet_bulb_temperature_2m_mean" json:"wet_bulb_temperature_2m_mean"`
	WetBulbTemperature2mMax        float64 `parquet:"wet_bulb_temperature_2m_max" json:"wet_bulb_temperature_2m_max"`
	WetBulbTemperature2mMin        float64 `parquet:"wet_bulb_temperature_2m_min" json:"wet_bulb_temperature_2m_min"`
	VapourPressureDeficitMax       float64 `parquet:"vapour_pressure_deficit_max" json:"vapour_pressure_deficit_max"`
	ET0FAOEvapotranspiration       float64 `parquet:"et0_fao_evapotranspiration" json:"et0_fao_evapotranspiration"`
	WindDirection10mDominant       float64 `parquet:"wind_direction_10m_dominant" json:"wind_direction_10m_dominant"`
	WindGusts10mMax                float64 `parquet:"wind_gusts_10m_max" json:"wind_gusts_10m_max"`
	WindSpeed10mMax                float64 `parquet:"wind_speed_10m_max" json:"wind_speed_10m_max"`
	PrecipitationProbabilityMean   float64 `parquet:"precipitation_probability_mean" json:"precipitation_probability_mean"`
	PrecipitationProbabilityMin    float64 `parquet:"precipitation_probability_min" json:"precipitation_probability_min"`
	LeafWetnessProbabilityMean     float64 `parquet:"leaf_wetness_probability_mean" json:"leaf_wetness_probability_mean"`
	GrowingDegreeDaysBase0Limit50  float64 `parquet:"growing_degree_days_base_0_limit_50" json:"growing_degree_days_base_0_limit_50"`
	ET0FAOEvapotranspirationSum    float64 `parquet:"et0_fao_evapotranspiration_sum" json:"et0_fao_evapotranspiration_sum"`
	PrecipitationSum               float64 `parquet:"precipitation_sum" json:"precipitation_sum"`
	PrecipitationHours             float64 `parquet:"precipitation_hours" json:"precipitation_hours"`
	PrecipitationProbabilityMax    float64 `parquet:"precipitation_probability_max" json:"precipitation_probability_max"`
	RainSum                        float64 `parquet:"rain_sum" json:"rain_sum"`
}

// seriesColumns maps a daily variable name to its SeriesRow column.
var seriesColumns = map[string]func(*SeriesRow) *float64{
	"temperature_2m_max":                  func(r *SeriesRow) *float64 { return &r.Temperature2mMax },
	"temperature_2m_mean":                 func(r *SeriesRow) *float64 { return &r.Temperature2mMean },
	"temperature_2m_min":                  func(r *SeriesRow) *float64 { return &r.Temperature2mMin },
	"dew_point_2m_mean":                   func(r *SeriesRow) *float64 { return &r.DewPoint2mMean },
	"relative_humidity_2m_mean":           func(r *SeriesRow) *float64 { return &r.RelativeHumidity2mMean },
	"relative_humidity_2m_max":            func(r *SeriesRow) *float64 { return &r.RelativeHumidity2mMax },
	"relative_humidity_2m_min":            func(r *SeriesRow) *float64 { return &r.RelativeHumidity2mMin },
	"uv_index_max":                        func(r *SeriesRow) *float64 { return &r.UVIndexMax },
	"uv_index_clear_sky_max":              func(r *SeriesRow) *float64 { return &r.UVIndexClearSkyMax },
	"shortwave_radiation_sum":             func(r *SeriesRow) *float64 { return &r.ShortwaveRadiationSum },
	"wet_bulb_temperature_2m_mean":        func(r *SeriesRow) *float64 { return &r.WetBulbTemperature2mMean },
	"wet_bulb_temperature_2m_max":         func(r *SeriesRow) *float64 { return &r.WetBulbTemperature2mMax },
	"wet_bulb_temperature_2m_min":         func(r *SeriesRow) *float64 { return &r.WetBulbTemperature2mMin },
	"vapour_pressure_deficit_max":         func(r *SeriesRow) *float64 { return &r.VapourPressureDeficitMax },
	"et0_fao_evapotranspiration":          func(r *SeriesRow) *float64 { return &r.ET0FAOEvapotranspiration },
	"wind_direction_10m_dominant":         func(r *SeriesRow) *float64 { return &r.WindDirection10mDominant },
	"wind_gusts_10m_max":                  func(r *SeriesRow) *float64 { return &r.WindGusts10mMax },
	"wind_speed_10m_max":                  func(r *SeriesRow) *float64 { return &r.WindSpeed10mMax },
	"precipitation_probability_mean":      func(r *SeriesRow) *float64 { return &r.PrecipitationProbabilityMean },
	"precipitation_probability_min":       func(r *SeriesRow) *float64 { return &r.PrecipitationProbabilityMin },
	"leaf_wetness_probability_mean":       func(r *SeriesRow) *float64 { return &r.LeafWetnessProbabilityMean },
	"growing_degree_days_base_0_limit_50": func(r *SeriesRow) *float64 { return &r.GrowingDegreeDaysBase0Limit50 },
	"et0_fao_evapotranspiration_sum":      func(r *SeriesRow) *float64 { return &r.ET0FAOEvapotranspirationSum },
	"precipitation_sum":                   func(r *SeriesRow) *float64 { return &r.PrecipitationSum },
	"precipitation_hours":                 func(r *SeriesRow) *float64 { return &r.PrecipitationHours },
	"precipitation_probability_max":       func(r *SeriesRow) *float64 { return &r.PrecipitationProbabilityMax },
	"rain_sum":                            func(r *SeriesRow) *float64 { return &r.RainSum },
}

// Set stores a daily variable value in its column. It reports whether the
// variable belongs to the series catalogue.
func (r *SeriesRow) Set(variable string, value float64) bool {
	col, ok := seriesColumns[variable]
	if !ok {
		return false
	}
	*col(r) = value
	return true
}

// Get reads a daily variable value from its column.
func (r *SeriesRow) Get(variable string) (float64, bool) {
	col, ok := seriesColumns[variable]
	if !ok {
		return 0, false
	}
	return *col(r), true
}

// PointSeries is one point's daily series as returned by the forecast API.
// Dates is the authoritative day sequence derived from the response itself,
// not from the requested window.
type PointSeries struct {
	Dates  []string             // "YYYY-MM-DD", ascending
	Values map[string][]float64 // variable → per-day values, parallel to Dates
}

// SeriesRequest describes one point-forecast API query.
type SeriesRequest struct {
	Variables    []string
	PastDays     int
	ForecastDays int
	Timezone     string
}
