package models

import "time"

// CountSample is one live observation from a camera's detection pipeline.
// Samples are consumed immediately by the aggregator and never persisted.
type CountSample struct {
	CameraID   string    `json:"camera_id"`
	Count      int       `json:"count"`
	ObservedAt time.Time `json:"observed_at"`
}

// AggregateWindow is the mean of one full buffer of consecutive samples
// for a single camera. Partial windows are never emitted.
type AggregateWindow struct {
	CameraID   string    `json:"camera_id"`
	Mean       float64   `json:"mean"`
	ComputedAt time.Time `json:"computed_at"`
}

type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionUnknown Direction = "unknown"
)

// TrendState is the rolling rate-of-change computation for one camera.
// RatePerMinute stays nil until two windows have been seen.
type TrendState struct {
	LastMean       *float64   `json:"last_mean,omitempty"`
	LastComputedAt *time.Time `json:"last_computed_at,omitempty"`
	RatePerMinute  *float64   `json:"rate_per_minute,omitempty"`
	Direction      Direction  `json:"direction"`
}

// SeriesPoint is one chart entry of the bounded display history.
type SeriesPoint struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
}

// Projection combines the latest mean, the camera threshold and the current
// rate into a time-to-threshold estimate and a staffing requirement.
// Applicable is false when the crowd is not growing toward the threshold
// (or is already past it), matching the "under control" display state.
type Projection struct {
	Applicable             bool    `json:"applicable"`
	TimeToThresholdMinutes float64 `json:"time_to_threshold_minutes,omitempty"`
	GuardsRequired         int     `json:"guards_required"`
}

// MonitorSnapshot is what the console dashboard renders for one camera.
type MonitorSnapshot struct {
	CameraID   string        `json:"camera_id"`
	Threshold  int           `json:"threshold"`
	Series     []SeriesPoint `json:"series"`
	Trend      TrendState    `json:"trend"`
	Projection Projection    `json:"projection"`
}
