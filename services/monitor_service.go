package services

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/kaspertech/crowdguard-console/config"
	"github.com/kaspertech/crowdguard-console/models"
)

// MonitorService runs the crowd-density pipeline: per-camera sample
// buffering, windowed means, rate-of-change and threshold projection.
// State is keyed by camera id so any number of cameras can be observed
// concurrently without cross-contamination.
type MonitorService struct {
	cfg config.MonitorConfig
	now func() time.Time

	mu      sync.Mutex
	cameras map[string]*cameraState
}

type cameraState struct {
	threshold int
	buffer    []int
	trend     models.TrendState
	series    []models.SeriesPoint
}

func NewMonitorService(cfg config.MonitorConfig) *MonitorService {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 5
	}
	if cfg.SeriesLimit <= 0 {
		cfg.SeriesLimit = 10
	}
	if cfg.GuardsPerFifty <= 0 {
		cfg.GuardsPerFifty = 1
	}
	return &MonitorService{
		cfg:     cfg,
		now:     time.Now,
		cameras: make(map[string]*cameraState),
	}
}

// Observe starts monitoring a camera. Re-observing an already-monitored
// camera updates its threshold but keeps the pipeline state.
func (s *MonitorService) Observe(cameraID string, threshold int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.cameras[cameraID]; ok {
		state.threshold = threshold
		return
	}
	s.cameras[cameraID] = &cameraState{
		threshold: threshold,
		trend:     models.TrendState{Direction: models.DirectionUnknown},
	}
	log.Printf("[Monitor] Observing camera %s (threshold %d)", cameraID, threshold)
}

// Unobserve drops a camera's pipeline state. Samples arriving afterwards
// are discarded.
func (s *MonitorService) Unobserve(cameraID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cameras[cameraID]; ok {
		delete(s.cameras, cameraID)
		log.Printf("[Monitor] Stopped observing camera %s", cameraID)
	}
}

// Ingest appends one count sample to the camera's buffer and returns the
// AggregateWindow when the buffer fills, nil while it is still filling.
// Samples for cameras not being observed are dropped; negative counts are
// rejected without aborting the buffer.
func (s *MonitorService) Ingest(cameraID string, count int) (*models.AggregateWindow, error) {
	if count < 0 {
		return nil, fmt.Errorf("invalid count %d for camera %s", count, cameraID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.cameras[cameraID]
	if !ok {
		return nil, nil
	}

	state.buffer = append(state.buffer, count)
	if len(state.buffer) < s.cfg.WindowSize {
		return nil, nil
	}

	sum := 0
	for _, c := range state.buffer {
		sum += c
	}
	mean := float64(sum) / float64(len(state.buffer))
	state.buffer = state.buffer[:0]

	window := models.AggregateWindow{
		CameraID:   cameraID,
		Mean:       mean,
		ComputedAt: s.now(),
	}
	updateTrend(&state.trend, window)

	state.series = append(state.series, models.SeriesPoint{
		Label: window.ComputedAt.Format("15:04:05"),
		Mean:  window.Mean,
	})
	if len(state.series) > s.cfg.SeriesLimit {
		state.series = state.series[len(state.series)-s.cfg.SeriesLimit:]
	}

	return &window, nil
}

// Snapshot returns the camera's display series, trend and projection for
// the console dashboard. The second return is false when the camera is not
// being observed.
func (s *MonitorService) Snapshot(cameraID string) (models.MonitorSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.cameras[cameraID]
	if !ok {
		return models.MonitorSnapshot{}, false
	}

	snapshot := models.MonitorSnapshot{
		CameraID:  cameraID,
		Threshold: state.threshold,
		Series:    append([]models.SeriesPoint(nil), state.series...),
		Trend:     state.trend,
	}
	if state.trend.LastMean != nil {
		snapshot.Projection = Project(*state.trend.LastMean, state.threshold,
			state.trend.RatePerMinute, s.cfg.GuardsPerFifty, s.cfg.RateEpsilon)
	}
	return snapshot, true
}

// updateTrend folds a closed window into the camera's rolling trend.
// Equal consecutive means keep the previous direction; a window whose
// timestamp does not advance keeps the previous rate.
func updateTrend(trend *models.TrendState, window models.AggregateWindow) {
	if trend.LastMean == nil || trend.LastComputedAt == nil {
		mean := window.Mean
		at := window.ComputedAt
		trend.LastMean = &mean
		trend.LastComputedAt = &at
		return
	}

	deltaMinutes := window.ComputedAt.Sub(*trend.LastComputedAt).Minutes()
	if deltaMinutes > 0 {
		rate := (window.Mean - *trend.LastMean) / deltaMinutes
		trend.RatePerMinute = &rate
	}

	if window.Mean > *trend.LastMean {
		trend.Direction = models.DirectionUp
	} else if window.Mean < *trend.LastMean {
		trend.Direction = models.DirectionDown
	}

	mean := window.Mean
	at := window.ComputedAt
	trend.LastMean = &mean
	trend.LastComputedAt = &at
}

// Project combines the latest windowed mean, the camera's threshold and
// the current rate into a time-to-threshold estimate plus the staffing
// requirement (one guard per fifty people by default). Rates at or below
// epsilon, and crowds already past the threshold, report not-applicable.
func Project(mean float64, threshold int, ratePerMinute *float64, guardsPerFifty int, epsilon float64) models.Projection {
	projection := models.Projection{
		GuardsRequired: int(math.Ceil(mean/50.0)) * guardsPerFifty,
	}
	if ratePerMinute == nil || *ratePerMinute <= 0 || *ratePerMinute < epsilon {
		return projection
	}
	minutes := (float64(threshold) - mean) / *ratePerMinute
	if minutes < 0 {
		return projection
	}
	projection.Applicable = true
	projection.TimeToThresholdMinutes = minutes
	return projection
}
