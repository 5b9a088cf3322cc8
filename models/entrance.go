package models

import "time"

type Entrance struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	ThresholdMedium int       `json:"thresholdMedium"`
	ThresholdHigh   int       `json:"thresholdHigh"`
	IsActive        bool      `json:"isActive"`
	IsDeleted       bool      `json:"isDeleted"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
