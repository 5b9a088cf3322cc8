package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaspertech/crowdguard-console/models"
)

type fakeClient struct {
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeClient) Send(payload []byte) error {
	if f.fail {
		return errors.New("send failed")
	}
	f.frames = append(f.frames, payload)
	return nil
}

func (f *fakeClient) Close() { f.closed = true }

func frameTypes(t *testing.T, client *fakeClient) []string {
	t.Helper()
	var types []string
	for _, raw := range client.frames {
		var frame struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(raw, &frame))
		types = append(types, frame.Type)
	}
	return types
}

func TestHubScopedToastRouting(t *testing.T) {
	hub := NewHub()
	global := &fakeClient{}
	entA := &fakeClient{}
	entB := &fakeClient{}
	hub.Register(global, "")
	hub.Register(entA, "ent-a")
	hub.Register(entB, "ent-b")

	hub.Notify(models.Notification{
		Severity:   models.SeverityHigh,
		Title:      "Crowd building",
		Scope:      models.ScopeEntrance,
		EntranceID: "ent-a",
	})

	require.Len(t, global.frames, 1, "unscoped clients see every toast")
	require.Len(t, entA.frames, 1)
	require.Empty(t, entB.frames)
}

func TestHubGlobalToastReachesEveryone(t *testing.T) {
	hub := NewHub()
	global := &fakeClient{}
	scoped := &fakeClient{}
	hub.Register(global, "")
	hub.Register(scoped, "ent-a")

	hub.Notify(models.Notification{
		Severity: models.SeverityCritical,
		Title:    "Site-wide overcrowding",
		Scope:    models.ScopeGlobal,
	})

	require.Len(t, global.frames, 1)
	require.Len(t, scoped.frames, 1)
}

func TestHubBroadcastWindowReachesAll(t *testing.T) {
	hub := NewHub()
	a := &fakeClient{}
	b := &fakeClient{}
	hub.Register(a, "")
	hub.Register(b, "ent-x")

	hub.BroadcastWindow(
		models.AggregateWindow{CameraID: "cam-1", Mean: 42},
		models.MonitorSnapshot{CameraID: "cam-1", Threshold: 100},
	)

	require.Equal(t, []string{"window"}, frameTypes(t, a))
	require.Equal(t, []string{"window"}, frameTypes(t, b))
}

func TestHubDropsFailingClient(t *testing.T) {
	hub := NewHub()
	healthy := &fakeClient{}
	broken := &fakeClient{fail: true}
	hub.Register(healthy, "")
	hub.Register(broken, "")
	require.Equal(t, 2, hub.ClientCount())

	hub.BroadcastWindow(models.AggregateWindow{CameraID: "cam-1"}, models.MonitorSnapshot{CameraID: "cam-1"})

	require.Equal(t, 1, hub.ClientCount())
	require.True(t, broken.closed)
	require.Len(t, healthy.frames, 1)
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{}
	hub.Register(client, "")
	hub.Unregister(client)

	hub.BroadcastWindow(models.AggregateWindow{CameraID: "cam-1"}, models.MonitorSnapshot{CameraID: "cam-1"})

	require.Empty(t, client.frames)
	require.Equal(t, 0, hub.ClientCount())
}
