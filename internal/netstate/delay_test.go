package netstate

import (
	"testing"

	"github.com/hknc0/orbit/internal/config"
)

// TestAdaptiveDelayClampsToMinDelay is scenario S1: a server ticking at a
// steady 33ms (30Hz) interval converges the EMA toward 33ms, so the target
// bufferSnapshots * interval = 2 * 33 = 66ms falls below the default 80ms
// MinDelay and the delay clamps to MinDelay. This exercises the low clamp.
func TestAdaptiveDelayClampsToMinDelay(t *testing.T) {
	cfg := config.DefaultBuffer().Adaptive
	sim := config.DefaultSimulation()
	e := NewAdaptiveDelayEstimator(cfg, sim, float64(config.DefaultBuffer().InterpolationDelay.Milliseconds()))

	now := int64(0)
	for i := 0; i < 50; i++ {
		now += 33
		e.OnArrival(now)
	}

	if got := e.DelayMs(); got != 80 {
		t.Errorf("DelayMs after steady 33ms cadence = %v, want 80 (MinDelay clamp)", got)
	}
}

// TestAdaptiveDelayTracksModerateJitter is scenario S2: a server alternating
// between 80ms and 120ms intervals should converge the EMA toward the mean
// (100ms) and the target delay (2x that, 200ms) should clamp to MaxDelay.
func TestAdaptiveDelayTracksModerateJitter(t *testing.T) {
	cfg := config.DefaultBuffer().Adaptive
	sim := config.DefaultSimulation()
	e := NewAdaptiveDelayEstimator(cfg, sim, 100)

	now := int64(0)
	for i := 0; i < 80; i++ {
		if i%2 == 0 {
			now += 80
		} else {
			now += 120
		}
		e.OnArrival(now)
	}

	got := e.DelayMs()
	if got < 80 || got > 200 {
		t.Errorf("DelayMs after alternating 80/120ms cadence = %v, want within [80, 200]", got)
	}
}

// TestAdaptiveDelayClampsToMaxDelay is scenario S3: a server producing very
// large but still-acceptable gaps (480ms) drives the target delay above
// MaxDelay, so the delay clamps to MaxDelay.
func TestAdaptiveDelayClampsToMaxDelay(t *testing.T) {
	cfg := config.DefaultBuffer().Adaptive
	sim := config.DefaultSimulation()
	e := NewAdaptiveDelayEstimator(cfg, sim, 100)

	now := int64(0)
	for i := 0; i < 50; i++ {
		now += 480 // within (10, 500) acceptable range
		e.OnArrival(now)
	}

	if got := e.DelayMs(); got != 200 {
		t.Errorf("DelayMs after sustained 480ms cadence = %v, want 200 (MaxDelay clamp)", got)
	}
}

// TestAdaptiveDelayRejectsOutOfRangeButAdvancesLastArrival verifies the
// explicit resolution of the "does lastArrival still advance on a rejected
// sample" open question: it must, so a burst of unreasonable intervals does
// not permanently desynchronize the estimator from real arrivals.
func TestAdaptiveDelayRejectsOutOfRangeButAdvancesLastArrival(t *testing.T) {
	cfg := config.DefaultBuffer().Adaptive
	sim := config.DefaultSimulation()
	e := NewAdaptiveDelayEstimator(cfg, sim, 100)

	// The first arrival is at 1000 rather than 0: a lastArrival of 0 means
	// "no previous arrival", so no interval would be measured at all.
	e.OnArrival(1000)
	before := e.DelayMs()
	e.OnArrival(6000) // 5000ms gap: far outside (10, 500), rejected for EMA purposes
	if got := e.DelayMs(); got != before {
		t.Errorf("DelayMs changed on a rejected interval: before %v, after %v", before, got)
	}

	// A subsequent well-behaved interval must be measured against the new
	// lastArrival (6000), not the stale one (1000): a 33ms gap from the stale
	// arrival would read as 5033ms and also be rejected.
	e.OnArrival(6033)
	if got := e.DelayMs(); got != 80 {
		t.Errorf("DelayMs after interval measured from stale lastArrival = %v, want 80", got)
	}
}

func TestAdaptiveDelayReset(t *testing.T) {
	cfg := config.DefaultBuffer().Adaptive
	sim := config.DefaultSimulation()
	e := NewAdaptiveDelayEstimator(cfg, sim, 100)

	e.OnArrival(0)
	e.OnArrival(480)
	e.OnArrival(960)

	e.Reset(sim, 150)
	if got := e.DelayMs(); got != 150 {
		t.Errorf("DelayMs after Reset = %v, want 150", got)
	}

	// lastArrival must also be cleared: the next OnArrival must not compute
	// an interval against the pre-reset arrival time.
	e.OnArrival(10_000_000)
	if got := e.DelayMs(); got != 150 {
		t.Errorf("DelayMs after first post-reset arrival = %v, want unchanged 150", got)
	}
}
