package diagnostics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the bounded-cardinality Prometheus instruments this client
// exposes about its own network state synchronization engine. None of these
// carry per-player or per-entity labels, matching the teacher's DoS-aware
// metric design.
var (
	applySnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "netstate_apply_snapshot_duration_seconds",
		Help:    "Time spent applying a full snapshot to the engine",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005},
	})

	applyDeltaDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "netstate_apply_delta_duration_seconds",
		Help:    "Time spent applying a delta to the engine",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005},
	})

	bufferLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netstate_snapshot_buffer_length",
		Help: "Current number of snapshots held in the buffer",
	})

	interpolationDelayMs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netstate_interpolation_delay_milliseconds",
		Help: "Current adaptive interpolation delay",
	})

	pendingInputCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netstate_pending_input_count",
		Help: "Number of local inputs awaiting server reconciliation",
	})

	framesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netstate_frames_dropped_total",
		Help: "Frames dropped by the transport layer before reaching the engine",
	}, []string{"reason"}) // bounded: "decode_error", "version_mismatch"
)

// RecordApplySnapshot records how long one ApplySnapshot call took.
func RecordApplySnapshot(d time.Duration) {
	applySnapshotDuration.Observe(d.Seconds())
}

// RecordApplyDelta records how long one ApplyDelta call took.
func RecordApplyDelta(d time.Duration) {
	applyDeltaDuration.Observe(d.Seconds())
}

// UpdateBufferLength sets the current snapshot buffer occupancy gauge.
func UpdateBufferLength(n int) {
	bufferLength.Set(float64(n))
}

// UpdateInterpolationDelay sets the current adaptive delay gauge.
func UpdateInterpolationDelay(ms float64) {
	interpolationDelayMs.Set(ms)
}

// UpdatePendingInputCount sets the current unacknowledged-input gauge.
func UpdatePendingInputCount(n int) {
	pendingInputCount.Set(float64(n))
}

// RecordFrameDropped increments the dropped-frame counter for reason, which
// must be one of "decode_error" or "version_mismatch".
func RecordFrameDropped(reason string) {
	framesDropped.WithLabelValues(reason).Inc()
}
