package netstate

import (
	"math"

	"github.com/hknc0/orbit/internal/config"
	"github.com/hknc0/orbit/internal/vecmath"
)

// Predictor applies the local player's inputs optimistically and rewinds to
// the server's authoritative state on every snapshot that contains the
// local player, replaying any inputs the server has not yet acknowledged.
type Predictor struct {
	cfg        config.PhysicsConfig
	sim        config.SimulationConfig
	maxPending int
	localID    string
	hasLocalID bool
	pending    []PlayerInput
	position   vecmath.Vector
	velocity   vecmath.Vector
}

// NewPredictor creates a Predictor with no bound local player.
func NewPredictor(cfg config.PhysicsConfig, sim config.SimulationConfig, maxPending int) *Predictor {
	if maxPending <= 0 {
		maxPending = 1
	}
	return &Predictor{
		cfg:        cfg,
		sim:        sim,
		maxPending: maxPending,
	}
}

// SetLocalPlayerID binds the predictor to a local player id, typically
// called once after join.
func (p *Predictor) SetLocalPlayerID(id string) {
	p.localID = id
	p.hasLocalID = true
}

// LocalPlayerID returns the bound local player id and whether one is set.
func (p *Predictor) LocalPlayerID() (string, bool) {
	return p.localID, p.hasLocalID
}

// RecordInput appends input to the pending queue, dropping the oldest entry
// if the queue is at capacity. This is the only effect of RecordInput; it
// does not touch the predicted pose.
func (p *Predictor) RecordInput(input PlayerInput) {
	if len(p.pending) >= p.maxPending {
		p.pending = p.pending[1:]
	}
	p.pending = append(p.pending, input)
}

// Reconcile rewinds the predicted pose to serverPlayer's state and replays
// every pending input whose tick is strictly greater than serverTick, using
// serverPlayer's mass for each replay. It is invoked whenever a snapshot
// containing the local player is applied.
func (p *Predictor) Reconcile(serverTick Tick, serverPlayer PlayerSnapshot) {
	kept := p.pending[:0:0]
	for _, in := range p.pending {
		if in.Tick > serverTick {
			kept = append(kept, in)
		}
	}
	p.pending = kept

	p.position = serverPlayer.Position
	p.velocity = serverPlayer.Velocity

	for _, in := range p.pending {
		p.position, p.velocity = predictStep(p.position, p.velocity, in, serverPlayer.Mass, p.cfg, p.sim)
	}
}

// Pose returns the current predicted position and velocity.
func (p *Predictor) Pose() PredictedPose {
	return PredictedPose{Position: p.position, Velocity: p.velocity}
}

// PendingCount returns the number of unacknowledged inputs.
func (p *Predictor) PendingCount() int {
	return len(p.pending)
}

// Reset clears pending inputs and the predicted pose; the bound local
// player id is left untouched (callers that want it cleared call
// SetLocalPlayerID("") themselves, matching spec.md §6's "preserved or
// cleared per integrator preference").
func (p *Predictor) Reset() {
	p.pending = nil
	p.position = vecmath.Zero
	p.velocity = vecmath.Zero
}

// predictStep advances one input through the same physics the server is
// assumed to run: thrust (mass-adjusted), drag, a velocity clamp, then
// integration.
func predictStep(position, velocity vecmath.Vector, in PlayerInput, mass float64, cfg config.PhysicsConfig, sim config.SimulationConfig) (vecmath.Vector, vecmath.Vector) {
	if in.Boost && in.Thrust.LengthSq() > 0 {
		effectiveMass := mass
		if effectiveMass < cfg.MassMinimum {
			effectiveMass = cfg.MassMinimum
		}
		mult := clamp(math.Sqrt(cfg.ReferenceMass/effectiveMass), cfg.MinThrustMult, cfg.MaxThrustMult)
		thrustMagnitude := cfg.BaseThrust * mult
		velocity = velocity.Add(in.Thrust.Normalize().Scale(thrustMagnitude * sim.DT))
	}

	velocity = velocity.Scale(1 - cfg.Drag)
	velocity = velocity.ClampLength(cfg.MaxVelocity)
	position = position.Add(velocity.Scale(sim.DT))

	return position, velocity
}
