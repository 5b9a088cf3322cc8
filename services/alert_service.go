package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaspertech/crowdguard-console/models"
)

// Notifier renders a toast on the console surface.
type Notifier interface {
	Notify(n models.Notification)
}

type severityProfile struct {
	background string
	border     string
	color      string
	duration   time.Duration
}

// Visual treatment per severity tier. Critical stays on screen longest;
// anything unrecognized gets the neutral treatment.
var severityProfiles = map[models.Severity]severityProfile{
	models.SeverityCritical: {"#fef2f2", "#fecaca", "#dc2626", 10 * time.Second},
	models.SeverityHigh:     {"#fef2f2", "#fecaca", "#dc2626", 6 * time.Second},
	models.SeverityMedium:   {"#fffbeb", "#fed7aa", "#ea580c", 6 * time.Second},
	models.SeverityLow:      {"#eff6ff", "#bfdbfe", "#2563eb", 6 * time.Second},
	models.SeverityUnknown:  {"", "", "", 6 * time.Second},
}

func profileFor(severity models.Severity) severityProfile {
	if profile, ok := severityProfiles[severity]; ok {
		return profile
	}
	return severityProfiles[models.SeverityUnknown]
}

// AlertService classifies inbound alert events and renders each one as a
// time-boxed notification. The only state is the set of currently visible
// toasts, used to replace instead of stack identical re-dispatches.
type AlertService struct {
	notifier Notifier
	now      func() time.Time

	mu     sync.Mutex
	active map[string]activeToast
}

type activeToast struct {
	id      string
	expires time.Time
}

func NewAlertService(notifier Notifier) *AlertService {
	return &AlertService{
		notifier: notifier,
		now:      time.Now,
		active:   make(map[string]activeToast),
	}
}

// alertPayload tolerates the wire shape variants: the display heading
// arrives as "title" from some sources and "alert" from others, and every
// field may be absent.
type alertPayload struct {
	Severity   string `json:"severity"`
	Title      string `json:"title"`
	Alert      string `json:"alert"`
	Message    string `json:"message"`
	EntranceID string `json:"entranceId"`
}

// Dispatch decodes one inbound alert event and renders exactly one
// notification. A malformed event falls through to the unknown tier; an
// event is never dropped without rendering something.
func (s *AlertService) Dispatch(raw json.RawMessage, scope models.AlertScope) models.Notification {
	var payload alertPayload
	if err := DecodePayload(raw, &payload); err != nil {
		log.Printf("[Alert] Undecodable alert payload: %v", err)
	}

	title := payload.Title
	if title == "" {
		title = payload.Alert
	}

	return s.DispatchEvent(models.AlertEvent{
		Severity:   models.ParseSeverity(payload.Severity),
		Title:      title,
		Message:    payload.Message,
		Scope:      scope,
		EntranceID: payload.EntranceID,
	})
}

// DispatchEvent renders an already-decoded alert event.
func (s *AlertService) DispatchEvent(event models.AlertEvent) models.Notification {
	profile := profileFor(event.Severity)
	now := s.now()

	notification := models.Notification{
		Severity:   event.Severity,
		Title:      event.Title,
		Message:    event.Message,
		Scope:      event.Scope,
		EntranceID: event.EntranceID,
		Background: profile.background,
		Border:     profile.border,
		Color:      profile.color,
		DurationMS: profile.duration.Milliseconds(),
		CreatedAt:  now,
	}

	key := string(event.Severity) + "|" + event.Title
	s.mu.Lock()
	for k, toast := range s.active {
		if !now.Before(toast.expires) {
			delete(s.active, k)
		}
	}
	if toast, ok := s.active[key]; ok {
		// Same toast still visible: reuse its id so the surface replaces
		// it instead of stacking.
		notification.ID = toast.id
	} else {
		notification.ID = uuid.New().String()
	}
	s.active[key] = activeToast{id: notification.ID, expires: now.Add(profile.duration)}
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Notify(notification)
	}
	return notification
}
