package models

import "time"

// Detection is a persisted people-count observation owned by the upstream
// backend. Live samples arrive over the socket instead (see CountSample).
type Detection struct {
	ID            string    `json:"_id"`
	CameraID      string    `json:"cameraId"`
	EntranceID    string    `json:"entranceId"`
	Count         int       `json:"count"`
	Density       float64   `json:"density"`
	ImageSnapshot string    `json:"imageSnapshot,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	IsDeleted     bool      `json:"isDeleted"`
}
