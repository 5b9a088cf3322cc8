package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaspertech/crowdguard-console/models"
)

type captureNotifier struct {
	notes []models.Notification
}

func (c *captureNotifier) Notify(n models.Notification) {
	c.notes = append(c.notes, n)
}

func newTestAlerts() (*AlertService, *captureNotifier, *time.Time) {
	capture := &captureNotifier{}
	svc := NewAlertService(capture)
	current := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }
	return svc, capture, &current
}

func TestDispatchSeverityStyling(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	svc.Dispatch(json.RawMessage(`{"severity":"critical","title":"Overcrowding","message":"Gate A"}`), models.ScopeGlobal)
	svc.Dispatch(json.RawMessage(`{"severity":"low","title":"Minor uptick"}`), models.ScopeGlobal)

	require.Len(t, capture.notes, 2)

	critical := capture.notes[0]
	require.Equal(t, models.SeverityCritical, critical.Severity)
	require.Equal(t, "#fef2f2", critical.Background)
	require.Equal(t, "#fecaca", critical.Border)
	require.Equal(t, "#dc2626", critical.Color)
	require.Equal(t, int64(10000), critical.DurationMS)

	low := capture.notes[1]
	require.Equal(t, models.SeverityLow, low.Severity)
	require.Equal(t, "#2563eb", low.Color)
	require.Equal(t, int64(6000), low.DurationMS)
}

func TestDispatchUnrecognizedSeverityFallsBackToUnknown(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	svc.Dispatch(json.RawMessage(`{"severity":"catastrophic","title":"???"}`), models.ScopeGlobal)

	require.Len(t, capture.notes, 1)
	require.Equal(t, models.SeverityUnknown, capture.notes[0].Severity)
	require.Equal(t, int64(6000), capture.notes[0].DurationMS)
}

func TestDispatchTitleFallsBackToAlertField(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	svc.Dispatch(json.RawMessage(`{"severity":"high","alert":"Crowd building"}`), models.ScopeEntrance)

	require.Len(t, capture.notes, 1)
	require.Equal(t, "Crowd building", capture.notes[0].Title)
}

func TestDispatchStringEncodedPayload(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	object := json.RawMessage(`{"severity":"medium","title":"Queue forming","message":"West wing"}`)
	encoded, err := json.Marshal(string(object))
	require.NoError(t, err)

	svc.Dispatch(object, models.ScopeGlobal)
	svc.Dispatch(json.RawMessage(encoded), models.ScopeGlobal)

	require.Len(t, capture.notes, 2)
	require.Equal(t, capture.notes[0].Severity, capture.notes[1].Severity)
	require.Equal(t, capture.notes[0].Title, capture.notes[1].Title)
	require.Equal(t, capture.notes[0].Message, capture.notes[1].Message)
}

func TestDispatchMalformedPayloadStillRenders(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	svc.Dispatch(json.RawMessage(`not json at all`), models.ScopeGlobal)

	require.Len(t, capture.notes, 1)
	require.Equal(t, models.SeverityUnknown, capture.notes[0].Severity)
}

func TestDispatchReusesIDWhileToastVisible(t *testing.T) {
	svc, capture, current := newTestAlerts()

	payload := json.RawMessage(`{"severity":"high","title":"Crowd building"}`)
	svc.Dispatch(payload, models.ScopeGlobal)
	*current = current.Add(2 * time.Second)
	svc.Dispatch(payload, models.ScopeGlobal)

	require.Len(t, capture.notes, 2)
	require.Equal(t, capture.notes[0].ID, capture.notes[1].ID)

	// After the toast's six seconds expire a fresh id is issued.
	*current = current.Add(10 * time.Second)
	svc.Dispatch(payload, models.ScopeGlobal)
	require.Len(t, capture.notes, 3)
	require.NotEqual(t, capture.notes[0].ID, capture.notes[2].ID)
}

func TestDispatchDifferentTitlesGetDifferentIDs(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	svc.Dispatch(json.RawMessage(`{"severity":"high","title":"Gate A"}`), models.ScopeGlobal)
	svc.Dispatch(json.RawMessage(`{"severity":"high","title":"Gate B"}`), models.ScopeGlobal)

	require.Len(t, capture.notes, 2)
	require.NotEqual(t, capture.notes[0].ID, capture.notes[1].ID)
}

func TestDispatchCarriesScopeAndEntrance(t *testing.T) {
	svc, capture, _ := newTestAlerts()

	svc.Dispatch(json.RawMessage(`{"severity":"medium","title":"Queue","entranceId":"ent-7"}`), models.ScopeEntrance)

	require.Len(t, capture.notes, 1)
	require.Equal(t, models.ScopeEntrance, capture.notes[0].Scope)
	require.Equal(t, "ent-7", capture.notes[0].EntranceID)
}
