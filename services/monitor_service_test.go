package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaspertech/crowdguard-console/config"
	"github.com/kaspertech/crowdguard-console/models"
)

func newTestMonitor(t *testing.T) (*MonitorService, *time.Time) {
	t.Helper()
	current := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	svc := NewMonitorService(config.MonitorConfig{})
	svc.now = func() time.Time { return current }
	return svc, &current
}

// ingestWindow feeds one full buffer of identical counts and returns the
// emitted window.
func ingestWindow(t *testing.T, svc *MonitorService, cameraID string, count int) *models.AggregateWindow {
	t.Helper()
	var window *models.AggregateWindow
	for i := 0; i < 5; i++ {
		var err error
		window, err = svc.Ingest(cameraID, count)
		require.NoError(t, err)
	}
	require.NotNil(t, window)
	return window
}

func TestIngestEmitsOneWindowPerFullBuffer(t *testing.T) {
	svc, _ := newTestMonitor(t)
	svc.Observe("cam-1", 100)

	var windows []models.AggregateWindow
	for i := 1; i <= 15; i++ {
		window, err := svc.Ingest("cam-1", i)
		require.NoError(t, err)
		if window != nil {
			windows = append(windows, *window)
		}
	}

	require.Len(t, windows, 3)
	require.Equal(t, 3.0, windows[0].Mean)  // mean of 1..5
	require.Equal(t, 8.0, windows[1].Mean)  // mean of 6..10
	require.Equal(t, 13.0, windows[2].Mean) // mean of 11..15
	for _, window := range windows {
		require.Equal(t, "cam-1", window.CameraID)
	}
}

func TestIngestKeepsCamerasIsolated(t *testing.T) {
	svc, _ := newTestMonitor(t)
	svc.Observe("cam-a", 100)
	svc.Observe("cam-b", 100)

	var windows []models.AggregateWindow
	for i := 0; i < 5; i++ {
		wa, err := svc.Ingest("cam-a", 10)
		require.NoError(t, err)
		if wa != nil {
			windows = append(windows, *wa)
		}
		wb, err := svc.Ingest("cam-b", 20)
		require.NoError(t, err)
		if wb != nil {
			windows = append(windows, *wb)
		}
	}

	require.Len(t, windows, 2)
	require.Equal(t, "cam-a", windows[0].CameraID)
	require.Equal(t, 10.0, windows[0].Mean)
	require.Equal(t, "cam-b", windows[1].CameraID)
	require.Equal(t, 20.0, windows[1].Mean)
}

func TestIngestDropsUnobservedCameras(t *testing.T) {
	svc, _ := newTestMonitor(t)
	svc.Observe("cam-1", 100)

	for i := 0; i < 10; i++ {
		window, err := svc.Ingest("cam-ghost", 50)
		require.NoError(t, err)
		require.Nil(t, window)
	}
	_, ok := svc.Snapshot("cam-ghost")
	require.False(t, ok)
}

func TestIngestRejectsNegativeCountWithoutAbortingBuffer(t *testing.T) {
	svc, _ := newTestMonitor(t)
	svc.Observe("cam-1", 100)

	_, err := svc.Ingest("cam-1", -3)
	require.Error(t, err)

	// The rejected sample must not have entered the buffer.
	window := ingestWindow(t, svc, "cam-1", 10)
	require.Equal(t, 10.0, window.Mean)
}

func TestTrendRateAndDirection(t *testing.T) {
	svc, current := newTestMonitor(t)
	svc.Observe("cam-1", 100)

	ingestWindow(t, svc, "cam-1", 10)
	snap, ok := svc.Snapshot("cam-1")
	require.True(t, ok)
	require.Nil(t, snap.Trend.RatePerMinute)
	require.Equal(t, models.DirectionUnknown, snap.Trend.Direction)

	*current = current.Add(time.Minute)
	ingestWindow(t, svc, "cam-1", 20)
	snap, _ = svc.Snapshot("cam-1")
	require.NotNil(t, snap.Trend.RatePerMinute)
	require.InDelta(t, 10.0, *snap.Trend.RatePerMinute, 1e-9)
	require.Equal(t, models.DirectionUp, snap.Trend.Direction)

	*current = current.Add(time.Minute)
	ingestWindow(t, svc, "cam-1", 30)
	snap, _ = svc.Snapshot("cam-1")
	require.InDelta(t, 10.0, *snap.Trend.RatePerMinute, 1e-9)
	require.Equal(t, models.DirectionUp, snap.Trend.Direction)
}

func TestTrendNonAdvancingTimestampKeepsRate(t *testing.T) {
	svc, current := newTestMonitor(t)
	svc.Observe("cam-1", 100)

	ingestWindow(t, svc, "cam-1", 10)
	*current = current.Add(time.Minute)
	ingestWindow(t, svc, "cam-1", 20)

	// Clock does not advance: the new window must not touch the rate.
	ingestWindow(t, svc, "cam-1", 40)
	snap, _ := svc.Snapshot("cam-1")
	require.NotNil(t, snap.Trend.RatePerMinute)
	require.InDelta(t, 10.0, *snap.Trend.RatePerMinute, 1e-9)
}

func TestTrendEqualMeansRetainDirection(t *testing.T) {
	svc, current := newTestMonitor(t)
	svc.Observe("cam-1", 100)

	ingestWindow(t, svc, "cam-1", 10)
	*current = current.Add(time.Minute)
	ingestWindow(t, svc, "cam-1", 20)
	*current = current.Add(time.Minute)
	ingestWindow(t, svc, "cam-1", 20)

	snap, _ := svc.Snapshot("cam-1")
	require.Equal(t, models.DirectionUp, snap.Trend.Direction)
	require.InDelta(t, 0.0, *snap.Trend.RatePerMinute, 1e-9)
}

func TestSeriesCappedAtLimit(t *testing.T) {
	svc, current := newTestMonitor(t)
	svc.Observe("cam-1", 1000)

	for i := 1; i <= 12; i++ {
		ingestWindow(t, svc, "cam-1", i)
		*current = current.Add(time.Minute)
	}

	snap, _ := svc.Snapshot("cam-1")
	require.Len(t, snap.Series, 10)
	// Oldest entries evicted first.
	require.Equal(t, 3.0, snap.Series[0].Mean)
	require.Equal(t, 12.0, snap.Series[9].Mean)
}

func TestProjectTimeToThreshold(t *testing.T) {
	rate := 10.0
	projection := Project(40, 100, &rate, 1, 0.001)
	require.True(t, projection.Applicable)
	require.InDelta(t, 6.0, projection.TimeToThresholdMinutes, 1e-9)
}

func TestProjectNotApplicableCases(t *testing.T) {
	negative := -5.0
	require.False(t, Project(40, 100, &negative, 1, 0.001).Applicable)

	require.False(t, Project(40, 100, nil, 1, 0.001).Applicable)

	// Rates below epsilon would project absurd horizons.
	tiny := 0.0001
	require.False(t, Project(40, 100, &tiny, 1, 0.001).Applicable)

	// Already over the threshold.
	rate := 10.0
	require.False(t, Project(120, 100, &rate, 1, 0.001).Applicable)
}

func TestProjectGuardStaffing(t *testing.T) {
	cases := []struct {
		mean   float64
		guards int
	}{
		{0, 0},
		{49, 1},
		{50, 1},
		{51, 2},
		{100, 2},
		{101, 3},
	}
	for _, tc := range cases {
		projection := Project(tc.mean, 1000, nil, 1, 0.001)
		require.Equal(t, tc.guards, projection.GuardsRequired, "mean %.0f", tc.mean)
	}
}

func TestUnobserveDiscardsState(t *testing.T) {
	svc, _ := newTestMonitor(t)
	svc.Observe("cam-1", 100)
	ingestWindow(t, svc, "cam-1", 10)

	svc.Unobserve("cam-1")
	_, ok := svc.Snapshot("cam-1")
	require.False(t, ok)

	window, err := svc.Ingest("cam-1", 10)
	require.NoError(t, err)
	require.Nil(t, window)
}
