package netstate

import "github.com/hknc0/orbit/internal/config"

// Engine is the network state synchronization engine's public surface: it
// owns the snapshot buffer, the adaptive delay estimator, the interpolator's
// name cache and entity lifecycle tracking, and the local player's predictor.
//
// Every exported method here is synchronous, and Engine is not safe for
// concurrent use: nothing in this package takes a lock. A caller that drives
// it from more than one goroutine — the transport read loop for
// ApplySnapshot/ApplyDelta, the render loop for RecordInput/
// GetInterpolatedState/GetPredictedLocalPlayer, a diagnostics HTTP handler
// for reads — must serialize access itself. In this repo the mutex lives in
// internal/diagnostics.Server and cmd/client takes it around its own calls.
type Engine struct {
	cfg    config.AppConfig
	clock  Clock
	buffer *SnapshotBuffer
	delay  *AdaptiveDelayEstimator
	interp *Interpolator
	life   *LifecycleTracker
	pred   *Predictor

	currentTick    Tick
	hasLocalPlayer bool
	localPlayerID  string
}

// NewEngine builds an Engine from cfg, using clock for all birth-time and
// delay-estimate timestamps.
func NewEngine(cfg config.AppConfig, clock Clock) *Engine {
	initialDelay := float64(cfg.Buffer.InterpolationDelay.Milliseconds())
	return &Engine{
		cfg:    cfg,
		clock:  clock,
		buffer: NewSnapshotBuffer(cfg.Buffer.SnapshotBufferSize),
		delay:  NewAdaptiveDelayEstimator(cfg.Buffer.Adaptive, cfg.Simulation, initialDelay),
		interp: NewInterpolator(),
		life:   NewLifecycleTracker(),
		pred:   NewPredictor(cfg.Physics, cfg.Simulation, cfg.Buffer.InputBufferSize),
	}
}

// SetLocalPlayerID binds the id whose inputs the predictor replays and whose
// respawns trigger a buffer reset in ApplySnapshot.
func (e *Engine) SetLocalPlayerID(id string) {
	e.localPlayerID = id
	e.hasLocalPlayer = true
	e.pred.SetLocalPlayerID(id)
}

// GetCurrentTick returns the maximum tick ever accepted by ApplySnapshot,
// directly or via delta reconstruction. A late-arriving snapshot with a
// lower tick is still buffered (see buffer.go) but never moves this value
// backwards.
func (e *Engine) GetCurrentTick() Tick {
	return e.currentTick
}

// ApplySnapshot ingests a full authoritative snapshot: it records the
// arrival for delay estimation, resets the buffer first if the local player
// just respawned, appends the snapshot, advances currentTick, and — if the
// snapshot carries the local player — reconciles the predictor against it.
func (e *Engine) ApplySnapshot(snapshot GameSnapshot) {
	now := e.clock.Now()
	e.delay.OnArrival(now)

	if e.hasLocalPlayer {
		if localPlayer, ok := findPlayer(snapshot.Players, e.localPlayerID); ok {
			if e.localRespawned(localPlayer) {
				e.buffer.Reset()
			}
		}
	}

	e.buffer.Append(snapshot, now)
	if snapshot.Tick > e.currentTick {
		e.currentTick = snapshot.Tick
	}

	if e.hasLocalPlayer {
		if localPlayer, ok := findPlayer(snapshot.Players, e.localPlayerID); ok {
			e.pred.Reconcile(snapshot.Tick, localPlayer)
		}
	}
}

// localRespawned reports whether applying a snapshot containing the local
// player's new state should reset the snapshot buffer: the buffer holds
// stale pre-respawn history that would otherwise bracket the new position
// against the old one and produce a visible fly-through. It compares against
// the previously buffered local player, if any.
func (e *Engine) localRespawned(after PlayerSnapshot) bool {
	latest, ok := e.buffer.Latest()
	if !ok {
		return false
	}
	before, ok := findPlayer(latest.Snapshot.Players, e.localPlayerID)
	if !ok {
		return false
	}
	if before.SpawnTick != after.SpawnTick {
		return true
	}
	return !before.Alive && after.Alive
}

func findPlayer(players []PlayerSnapshot, id string) (PlayerSnapshot, bool) {
	for _, p := range players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// ApplyDelta reconstructs a full snapshot from delta against its base tick
// and applies it via ApplySnapshot. If the base tick is no longer in the
// buffer the delta is dropped silently, per the reconciliation contract: the
// next full snapshot or a later delta with a reachable base will resync.
func (e *Engine) ApplyDelta(delta DeltaUpdate) {
	base, ok := e.buffer.Lookup(delta.BaseTick)
	if !ok {
		return
	}
	e.ApplySnapshot(applyDeltaToBase(base.Snapshot, delta))
}

// RecordInput queues a local input sample for prediction. It has no effect
// on anything but the predictor's pending queue.
func (e *Engine) RecordInput(input PlayerInput) {
	e.pred.RecordInput(input)
}

// GetInterpolatedState computes the render-ready world state for the
// current render time (now minus the adaptive delay), or false if the
// buffer is currently empty (nothing received yet, or cleared by Reset).
func (e *Engine) GetInterpolatedState() (InterpolatedState, bool) {
	now := e.clock.Now()
	renderTime := now - int64(e.delay.DelayMs())
	return e.interp.Interpolate(e.buffer, renderTime, e.life, now)
}

// GetPredictedLocalPlayer returns the local player's predicted pose, or
// false if no local player id has been bound.
func (e *Engine) GetPredictedLocalPlayer() (PredictedPose, bool) {
	if !e.hasLocalPlayer {
		return PredictedPose{}, false
	}
	return e.pred.Pose(), true
}

// BufferLength returns the number of snapshots currently held in the
// buffer, for diagnostics reporting.
func (e *Engine) BufferLength() int {
	return e.buffer.Len()
}

// InterpolationDelayMs returns the current adaptive render delay, for
// diagnostics reporting.
func (e *Engine) InterpolationDelayMs() float64 {
	return e.delay.DelayMs()
}

// PendingInputCount returns the number of local inputs awaiting server
// reconciliation, for diagnostics reporting.
func (e *Engine) PendingInputCount() int {
	return e.pred.PendingCount()
}

// MarkWellDestroyed tells the lifecycle tracker the server reported id as
// destroyed, so interpolated output filters it immediately instead of
// waiting for a snapshot that omits it.
func (e *Engine) MarkWellDestroyed(id int) {
	e.life.MarkWellDestroyed(id)
}

// Reset clears all buffered history, tick tracking, prediction state,
// lifecycle tracking, and name caching, restoring the adaptive delay to its
// configured initial value. The bound local player id is preserved, since a
// Reset typically models a reconnect to the same session rather than a
// change of identity.
func (e *Engine) Reset() {
	e.buffer.Reset()
	e.currentTick = 0
	e.pred.Reset()
	e.life.Reset()
	e.interp.ResetNames()
	e.delay.Reset(e.cfg.Simulation, float64(e.cfg.Buffer.InterpolationDelay.Milliseconds()))
}
