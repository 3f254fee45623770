// Package domain models the climate ETL pipeline's core data.
//
// # Data Sources
//
// Daily reanalysis values come from the ECMWF ERA5-Land daily aggregates
// collection ("ECMWF/ERA5_LAND/DAILY_AGGR"), sampled at point locations
// through a remote gridded-raster service. Forecast and recent-history
// values come from the Open-Meteo daily forecast API, queried per point.
//
// # Units
//
// ERA5-Land publishes temperatures in Kelvin and water fluxes (evaporation,
// runoff, precipitation) in metres of water equivalent. The unit catalogue
// converts these to degrees Celsius and millimetres for the canonical table:
//
//	Kelvin variables:  value - 273.15  → °C
//	Metre variables:   value * 1000    → mm
//
// All other variables pass through unconverted with no unit assigned.
//
// # Identity
//
// Points are identified by an FID, taken from a column literally named "FID"
// or, failing that, "grid_id". Observations are keyed (FID, variable, date);
// point-series rows are keyed (FID, date). Dates are calendar days rendered
// as "YYYY-MM-DD" strings in UTC.
package domain
