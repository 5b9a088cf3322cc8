package models

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ROI is the region-of-interest line pair the detection pipeline counts
// crossings against.
type ROI struct {
	L1 int `json:"L1"`
	L2 int `json:"L2"`
}

type Camera struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	DeviceID   string    `json:"deviceId"`
	EntranceID string    `json:"entranceId"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	StreamURL  string    `json:"streamUrl,omitempty"`
	Location   *Location `json:"location,omitempty"`
	ROI        ROI       `json:"roi"`
	Threshold  int       `json:"threshold"`
	IsActive   bool      `json:"isActive"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
