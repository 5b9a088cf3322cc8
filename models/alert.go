package models

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityUnknown  Severity = "unknown"
)

// ParseSeverity maps a wire severity string onto a known tier. Anything
// unrecognized (including an absent field) falls through to unknown so the
// event still renders.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return Severity(s)
	default:
		return SeverityUnknown
	}
}

type AlertScope string

const (
	ScopeGlobal   AlertScope = "global"
	ScopeEntrance AlertScope = "entrance"
)

// AlertEvent is a live notification received over the socket. Ephemeral:
// rendered once, then discarded.
type AlertEvent struct {
	Severity   Severity   `json:"severity"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Scope      AlertScope `json:"scope"`
	EntranceID string     `json:"entrance_id,omitempty"`
}

// Notification is the rendered toast pushed to console clients.
type Notification struct {
	ID         string     `json:"id"`
	Severity   Severity   `json:"severity"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Scope      AlertScope `json:"scope"`
	EntranceID string     `json:"entrance_id,omitempty"`
	Background string     `json:"background"`
	Border     string     `json:"border"`
	Color      string     `json:"color"`
	DurationMS int64      `json:"duration_ms"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Alert is the persisted alert record owned by the upstream backend,
// distinct from the live AlertEvent stream.
type Alert struct {
	ID         string    `json:"_id"`
	EntranceID string    `json:"entranceId"`
	Severity   Severity  `json:"severity"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	IsResolved bool      `json:"isResolved"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListMetadata is the pagination block returned by upstream list endpoints.
// Older endpoints report the total as "count", newer ones as
// "totalResults"; Total() hides the difference.
type ListMetadata struct {
	TotalResults int `json:"totalResults,omitempty"`
	Count        int `json:"count,omitempty"`
	Page         int `json:"page,omitempty"`
	Limit        int `json:"limit,omitempty"`
	TotalPages   int `json:"totalPages,omitempty"`
}

func (m ListMetadata) Total() int {
	if m.TotalResults > 0 {
		return m.TotalResults
	}
	return m.Count
}
