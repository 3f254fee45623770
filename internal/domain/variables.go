package domain

// ERA5Variables is the default catalogue of ERA5-Land daily aggregate bands
// sampled by the extraction engine.
var ERA5Variables = []string{
	"dewpoint_temperature_2m", "temperature_2m", "temperature_2m_min", "temperature_2m_max",
	"soil_temperature_level_1", "soil_temperature_level_2", "soil_temperature_level_3", "soil_temperature_level_4",
	"volumetric_soil_water_layer_1", "volumetric_soil_water_layer_2", "volumetric_soil_water_layer_3", "volumetric_soil_water_layer_4",
	"surface_net_solar_radiation_sum", "surface_net_thermal_radiation_sum",
	"surface_solar_radiation_downwards_sum", "surface_thermal_radiation_downwards_sum",
	"evaporation_from_bare_soil_sum", "evaporation_from_the_top_of_canopy_sum",
	"evaporation_from_vegetation_transpiration_sum", "potential_evaporation_sum", "total_evaporation_sum",
	"runoff_sum", "sub_surface_runoff_sum", "surface_runoff_sum",
	"u_component_of_wind_10m", "v_component_of_wind_10m",
	"total_precipitation_sum", "leaf_area_index_high_vegetation", "leaf_area_index_low_vegetation",
}

// DailyVariables is the fixed catalogue of Open-Meteo daily variables fetched
// by the incremental downloader. The order matches the SeriesRow column order.
var DailyVariables = []string{
	"temperature_2m_max", "temperature_2m_mean", "temperature_2m_min", "dew_point_2m_mean",
	"relative_humidity_2m_mean", "relative_humidity_2m_max", "relative_humidity_2m_min", "uv_index_max",
	"uv_index_clear_sky_max", "shortwave_radiation_sum", "wet_bulb_temperature_2m_mean",
	"wet_bulb_temperature_2m_max", "wet_bulb_temperature_2m_min", "vapour_pressure_deficit_max",
	"et0_fao_evapotranspiration", "wind_direction_10m_dominant", "wind_gusts_10m_max", "wind_speed_10m_max",
	"precipitation_probability_mean", "precipitation_probability_min", "leaf_wetness_probability_mean",
	"growing_degree_days_base_0_limit_50", "et0_fao_evapotranspiration_sum", "precipitation_sum",
	"precipitation_hours", "precipitation_probability_max", "rain_sum",
}
