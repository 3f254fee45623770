package domain

// Unit is a display unit label attached to canonical observations.
type Unit string

const (
	UnitCelsius     Unit = "°C"
	UnitMillimetres Unit = "mm"
	UnitNone        Unit = ""
)

// kelvinVariables are ERA5-Land temperature bands published in Kelvin.
var kelvinVariables = toSet(
	"dewpoint_temperature_2m", "temperature_2m", "temperature_2m_min", "temperature_2m_max",
	"soil_temperature_level_1", "soil_temperature_level_2", "soil_temperature_level_3", "soil_temperature_level_4",
)

// metreVariables are ERA5-Land water-flux bands published in metres of water
// equivalent.
var metreVariables = toSet(
	"evaporation_from_bare_soil_sum", "evaporation_from_the_top_of_canopy_sum",
	"evaporation_from_vegetation_transpiration_sum", "potential_evaporation_sum", "total_evaporation_sum",
	"runoff_sum", "sub_surface_runoff_sum", "surface_runoff_sum", "total_precipitation_sum",
)

func toSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Convert applies the unit catalogue to a raw value: Kelvin bands become
// degrees Celsius, metre bands become millimetres, everything else passes
// through with no unit.
func Convert(variable string, value float64) (float64, Unit) {
	if _, ok := kelvinVariables[variable]; ok {
		return value - 273.15, UnitCelsius
	}
	if _, ok := metreVariables[variable]; ok {
		return value * 1000, UnitMillimetres
	}
	return value, UnitNone
}

// CompositeKey builds the "variable__unit" pivot key. Unitless variables keep
// the bare variable name.
func CompositeKey(variable string, unit Unit) string {
	if unit == UnitNone {
		return variable
	}
	return variable + "__" + string(unit)
}
