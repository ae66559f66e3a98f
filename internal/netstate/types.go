// Package netstate is the network state synchronization engine: it turns an
// unreliable, low-rate stream of authoritative server snapshots into a
// smooth, locally-responsive world suitable for a 60+ Hz render loop.
//
// Every operation here is synchronous and takes no lock, so calls into an
// Engine must never overlap. See Engine's doc comment for the concurrency
// contract.
package netstate

import "github.com/hknc0/orbit/internal/vecmath"

// Tick identifies a server simulation step. Ticks are non-negative and
// monotonic from the server's point of view, though a single client may
// observe them out of order on a bad network path.
type Tick uint64

// DebrisSize classifies debris for rendering; debris has no velocity and is
// repositioned wholesale on every snapshot that includes it.
type DebrisSize int

const (
	DebrisSmall DebrisSize = iota
	DebrisMedium
	DebrisLarge
)

// MatchPhase is the current phase of the match.
type MatchPhase int

const (
	PhaseWaiting MatchPhase = iota
	PhaseCountdown
	PhasePlaying
	PhaseEnded
)

// PlayerSnapshot is the authoritative state of one player at a tick.
type PlayerSnapshot struct {
	ID              string
	Name            string // may be empty on steady-state snapshots; see name caching in Interpolator
	Position        vecmath.Vector
	Velocity        vecmath.Vector
	Rotation        float64 // radians
	Mass            float64
	Alive           bool
	SpawnProtection bool
	Kills           int
	Deaths          int
	Bot             bool
	ColorIndex      int
	SpawnTick       Tick // server tick at which this entity last spawned
}

// ProjectileSnapshot is the authoritative state of one projectile.
type ProjectileSnapshot struct {
	ID       int
	OwnerID  string
	Position vecmath.Vector
	Velocity vecmath.Vector
	Mass     float64
}

// DebrisSnapshot is the authoritative state of one piece of debris. Debris
// has no velocity: it is repositioned wholesale on every snapshot.
type DebrisSnapshot struct {
	ID       int
	Position vecmath.Vector
	Size     DebrisSize
}

// GravityWellSnapshot is the authoritative state of one gravity well.
type GravityWellSnapshot struct {
	ID         int
	Position   vecmath.Vector
	Mass       float64
	CoreRadius float64
}

// NotablePlayerSnapshot is a subset of a player echoed for global minimap
// visibility, independent of area-of-interest culling.
type NotablePlayerSnapshot struct {
	ID         string
	Position   vecmath.Vector
	Mass       float64
	ColorIndex int
}

// ArenaState is the collapsing-arena state carried on every snapshot.
type ArenaState struct {
	CollapsePhase int
	SafeRadius    float64
	Scale         float64
}

// GameSnapshot is a complete authoritative state at a tick.
type GameSnapshot struct {
	Tick           Tick
	Phase          MatchPhase
	MatchTime      float64
	Countdown      float64
	Players        []PlayerSnapshot
	Projectiles    []ProjectileSnapshot
	Debris         []DebrisSnapshot
	GravityWells   []GravityWellSnapshot
	NotablePlayers []NotablePlayerSnapshot
	Arena          ArenaState
	DensityGrid    []float64 // flat grid, length 64 or 256
	EchoClientTime int64     // for RTT measurement by the transport layer
}

// PlayerDelta carries only the fields of a player that changed since the
// delta's base tick. A nil field pointer means "inherit from base"; this is
// modeled with pointer fields rather than a presence bitmask to keep the
// merge logic in delta.go's mergePlayerDeltas straightforward.
type PlayerDelta struct {
	ID       string
	Position *vecmath.Vector
	Velocity *vecmath.Vector
	Rotation *float64
	Mass     *float64
	Alive    *bool
	Kills    *int
}

// ProjectileDelta carries a projectile's new position/velocity. A
// projectile id not already present in the base snapshot is created as a
// placeholder (empty owner, mass 1) until a later full snapshot corrects it.
type ProjectileDelta struct {
	ID       int
	Position vecmath.Vector
	Velocity vecmath.Vector
}

// DeltaUpdate is an incremental update referencing a prior snapshot by tick.
type DeltaUpdate struct {
	Tick               Tick
	BaseTick           Tick
	PlayerUpdates      []PlayerDelta
	ProjectileUpdates  []ProjectileDelta
	RemovedProjectiles []int
	Debris             []DebrisSnapshot // full list, never incremental
}

// PlayerInput is one captured local-input sample.
type PlayerInput struct {
	Sequence     uint64
	Tick         Tick // server tick at capture
	ClientTime   int64
	Thrust       vecmath.Vector
	Aim          vecmath.Vector
	Boost        bool
	Fire         bool
	FireReleased bool
}

// InterpolatedPlayer is a player entity materialized for rendering.
type InterpolatedPlayer struct {
	PlayerSnapshot
	BornTime int64 // wall-clock ms; 0 means "no birth animation"
}

// InterpolatedProjectile is a projectile entity materialized for rendering.
type InterpolatedProjectile struct {
	ProjectileSnapshot
}

// InterpolatedDebris is a debris entity materialized for rendering.
type InterpolatedDebris struct {
	DebrisSnapshot
}

// InterpolatedWell is a gravity well entity materialized for rendering.
type InterpolatedWell struct {
	GravityWellSnapshot
	BornTime int64
}

// InterpolatedState is the render-ready mirror of GameSnapshot: entities are
// keyed mappings rather than the wire's ordered sequences, matching how a
// renderer wants to look entities up by id each frame.
type InterpolatedState struct {
	Tick           Tick
	Phase          MatchPhase
	MatchTime      float64
	Countdown      float64
	Players        map[string]InterpolatedPlayer
	Projectiles    map[int]InterpolatedProjectile
	Debris         map[int]InterpolatedDebris
	GravityWells   map[int]InterpolatedWell
	NotablePlayers []NotablePlayerSnapshot
	Arena          ArenaState
	DensityGrid    []float64
}

// PredictedPose is the local player's predicted position/velocity, overlaid
// by the renderer on top of the interpolated world.
type PredictedPose struct {
	Position vecmath.Vector
	Velocity vecmath.Vector
}
