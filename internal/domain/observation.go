package domain

// RawObservation is one successfully sampled (point, variable, date) value,
// append-only once produced.
type RawObservation struct {
	FID       string  `parquet:"FID" json:"fid"`
	Longitude float64 `parquet:"longitude" json:"longitude"`
	Latitude  float64 `parquet:"latitude" json:"latitude"`
	Date      string  `parquet:"date" json:"date"`
	Variable  string  `parquet:"variable" json:"variable"`
	Value     float64 `parquet:"value" json:"value"`
}

// Key returns the deduplication key (FID, variable, date).
func (o RawObservation) Key() ObservationKey {
	return ObservationKey{FID: o.FID, Variable: o.Variable, Date: o.Date}
}

// ObservationKey uniquely identifies an observation after merge.
type ObservationKey struct {
	FID      string
	Variable string
	Date     string
}

// CanonicalObservation is a RawObservation after unit normalization, with the
// display unit and the "variable__unit" pivot key attached.
type CanonicalObservation struct {
	FID          string  `parquet:"FID" json:"fid"`
	Longitude    float64 `parquet:"longitude" json:"longitude"`
	Latitude     float64 `parquet:"latitude" json:"latitude"`
	Date         string  `parquet:"date" json:"date"`
	Variable     string  `parquet:"variable" json:"variable"`
	Value        float64 `parquet:"value" json:"value"`
	Unit         string  `parquet:"unit" json:"unit"`
	VariableUnit string  `parquet:"variable__unit" json:"variable__unit"`
}

// FailureReason classifies why a work unit was abandoned.
type FailureReason string

const (
	// FailureRetriesExhausted means every sampling attempt errored.
	FailureRetriesExhausted FailureReason = "retries_exhausted"
	// FailureTimeout means the final attempt hit its per-call deadline.
	FailureTimeout FailureReason = "timeout"
)

// FailedChunk records a whole work unit that exhausted its retry budget.
// A unit either fully succeeds or is recorded here; there are no partial
// successes.
type FailedChunk struct {
	Date   string
	FIDs   []string
	Reason FailureReason
}
