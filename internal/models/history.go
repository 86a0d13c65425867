package models

import "time"

// HistoryPoint is one sampled datapoint of the enclosure climate, appended
// on every successful live poll.
type HistoryPoint struct {
	ID               string    `json:"id"`
	RecordedAt       time.Time `json:"recordedAt"`
	Temperature      float64   `json:"temperature"`
	Humidity         float64   `json:"humidity"` // average of the two probes
	FoggerOn         bool      `json:"foggerOn"`
	ExhaustFanOn     bool      `json:"exhaustFanOn"`
	CirculationFanOn bool      `json:"circulationFanOn"`
}
