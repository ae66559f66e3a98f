package netstate

import "github.com/hknc0/orbit/internal/config"

// minAcceptableInterval and maxAcceptableInterval bound the inter-arrival
// samples the EMA accepts; anything outside this range is almost certainly a
// burst or a stall rather than the server's real cadence, and is ignored for
// EMA purposes while lastArrival still advances (see AdaptiveDelayEstimator
// doc comment).
const (
	minAcceptableIntervalMs = 10
	maxAcceptableIntervalMs = 500
)

// AdaptiveDelayEstimator maintains an EMA of inter-arrival intervals and
// derives the render delay from it: a buffer of two expected gaps tolerates
// one lost packet without running out of bracketing data, and the clamp
// prevents pathological jitter from producing visibly stuck playback or
// ballooning delay.
//
// lastArrival advances on every call to OnArrival, even when the sampled
// interval is rejected as unreasonable — otherwise a burst of junk intervals
// would permanently stall the estimator by comparing every future arrival
// against a stale lastArrival.
type AdaptiveDelayEstimator struct {
	cfg           config.AdaptiveInterpolationConfig
	lastArrival   int64
	intervalEmaMs float64
	delayMs       float64
}

// NewAdaptiveDelayEstimator seeds the EMA at the simulation period, which
// biases the estimator toward the fastest plausible server rate so startup
// delay is small, and seeds the delay at the configured initial value.
func NewAdaptiveDelayEstimator(cfg config.AdaptiveInterpolationConfig, sim config.SimulationConfig, initialDelayMs float64) *AdaptiveDelayEstimator {
	return &AdaptiveDelayEstimator{
		cfg:           cfg,
		intervalEmaMs: sim.DT * 1000,
		delayMs:       initialDelayMs,
	}
}

// OnArrival records a snapshot arrival at now (milliseconds) and updates the
// delay estimate.
func (e *AdaptiveDelayEstimator) OnArrival(now int64) {
	if e.lastArrival > 0 {
		interval := float64(now - e.lastArrival)
		if interval > minAcceptableIntervalMs && interval < maxAcceptableIntervalMs {
			e.intervalEmaMs = e.intervalEmaMs*(1-e.cfg.SmoothingFactor) + interval*e.cfg.SmoothingFactor

			target := e.intervalEmaMs * e.cfg.BufferSnapshots
			e.delayMs = clamp(target, float64(e.cfg.MinDelay.Milliseconds()), float64(e.cfg.MaxDelay.Milliseconds()))
		}
	}
	e.lastArrival = now
}

// DelayMs returns the current interpolation delay in milliseconds.
func (e *AdaptiveDelayEstimator) DelayMs() float64 {
	return e.delayMs
}

// Reset restores the estimator to its construction-time state, other than
// the configuration it was built with.
func (e *AdaptiveDelayEstimator) Reset(sim config.SimulationConfig, initialDelayMs float64) {
	e.lastArrival = 0
	e.intervalEmaMs = sim.DT * 1000
	e.delayMs = initialDelayMs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
