// Package wire defines the JSON envelope exchanged with the server and the
// decoding logic that turns a raw frame into a typed message for
// internal/transport to hand to the netstate engine.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/hknc0/orbit/internal/netstate"
	"github.com/hknc0/orbit/internal/vecmath"
)

// ProtocolVersion is the wire protocol version this client implements. Every
// Envelope carries a version; internal/transport drops any frame whose
// envelope version differs. The version inside JoinAcceptedPayload is
// decoded but not checked.
const ProtocolVersion byte = 1

// MessageType identifies the payload carried by an Envelope.
type MessageType string

const (
	TypeSnapshot             MessageType = "snapshot"
	TypeDelta                MessageType = "delta"
	TypePong                 MessageType = "pong"
	TypeJoinAccepted         MessageType = "join_accepted"
	TypeKicked               MessageType = "kicked"
	TypeEvent                MessageType = "event"
	TypePhaseChange          MessageType = "phase_change"
	TypeGravityWellDestroyed MessageType = "gravity_well_destroyed"
)

// Envelope is the outermost JSON object on every server-to-client frame.
// Payload is decoded a second time, into the concrete type selected by Type,
// once the caller knows which one it wants.
type Envelope struct {
	Type            MessageType     `json:"type"`
	ProtocolVersion byte            `json:"protocolVersion"`
	Payload         json.RawMessage `json:"payload"`
}

// wireVector mirrors vecmath.Vector's JSON shape; it exists so this package
// never needs an encoding/json tag on the netstate/vecmath types themselves.
type wireVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v wireVector) toVecmath() vecmath.Vector {
	return vecmath.Vector{X: v.X, Y: v.Y}
}

type wirePlayer struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	Position        wireVector `json:"position"`
	Velocity        wireVector `json:"velocity"`
	Rotation        float64    `json:"rotation"`
	Mass            float64    `json:"mass"`
	Alive           bool       `json:"alive"`
	SpawnProtection bool       `json:"spawnProtection"`
	Kills           int        `json:"kills"`
	Deaths          int        `json:"deaths"`
	Bot             bool       `json:"bot"`
	ColorIndex      int        `json:"colorIndex"`
	SpawnTick       uint64     `json:"spawnTick"`
}

func (p wirePlayer) toSnapshot() netstate.PlayerSnapshot {
	return netstate.PlayerSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		Position:        p.Position.toVecmath(),
		Velocity:        p.Velocity.toVecmath(),
		Rotation:        p.Rotation,
		Mass:            p.Mass,
		Alive:           p.Alive,
		SpawnProtection: p.SpawnProtection,
		Kills:           p.Kills,
		Deaths:          p.Deaths,
		Bot:             p.Bot,
		ColorIndex:      p.ColorIndex,
		SpawnTick:       netstate.Tick(p.SpawnTick),
	}
}

type wireProjectile struct {
	ID       int        `json:"id"`
	OwnerID  string     `json:"ownerId"`
	Position wireVector `json:"position"`
	Velocity wireVector `json:"velocity"`
	Mass     float64    `json:"mass"`
}

func (p wireProjectile) toSnapshot() netstate.ProjectileSnapshot {
	return netstate.ProjectileSnapshot{
		ID:       p.ID,
		OwnerID:  p.OwnerID,
		Position: p.Position.toVecmath(),
		Velocity: p.Velocity.toVecmath(),
		Mass:     p.Mass,
	}
}

type wireDebris struct {
	ID       int        `json:"id"`
	Position wireVector `json:"position"`
	Size     int        `json:"size"`
}

type wireWell struct {
	ID         int        `json:"id"`
	Position   wireVector `json:"position"`
	Mass       float64    `json:"mass"`
	CoreRadius float64    `json:"coreRadius"`
}

type wireNotablePlayer struct {
	ID         string     `json:"id"`
	Position   wireVector `json:"position"`
	Mass       float64    `json:"mass"`
	ColorIndex int        `json:"colorIndex"`
}

type wireArena struct {
	CollapsePhase int     `json:"collapsePhase"`
	SafeRadius    float64 `json:"safeRadius"`
	Scale         float64 `json:"scale"`
}

// SnapshotPayload is the payload of a TypeSnapshot message: a complete
// authoritative world state.
type SnapshotPayload struct {
	Tick           uint64              `json:"tick"`
	Phase          int                 `json:"phase"`
	MatchTime      float64             `json:"matchTime"`
	Countdown      float64             `json:"countdown"`
	Players        []wirePlayer        `json:"players"`
	Projectiles    []wireProjectile    `json:"projectiles"`
	Debris         []wireDebris        `json:"debris"`
	GravityWells   []wireWell          `json:"gravityWells"`
	NotablePlayers []wireNotablePlayer `json:"notablePlayers"`
	Arena          wireArena           `json:"arena"`
	DensityGrid    []float64           `json:"densityGrid"`
	EchoClientTime int64               `json:"echoClientTime"`
}

// ToGameSnapshot converts the wire payload into the engine's GameSnapshot.
func (p SnapshotPayload) ToGameSnapshot() netstate.GameSnapshot {
	players := make([]netstate.PlayerSnapshot, len(p.Players))
	for i, wp := range p.Players {
		players[i] = wp.toSnapshot()
	}
	projectiles := make([]netstate.ProjectileSnapshot, len(p.Projectiles))
	for i, wp := range p.Projectiles {
		projectiles[i] = wp.toSnapshot()
	}
	debris := make([]netstate.DebrisSnapshot, len(p.Debris))
	for i, wd := range p.Debris {
		debris[i] = netstate.DebrisSnapshot{ID: wd.ID, Position: wd.Position.toVecmath(), Size: netstate.DebrisSize(wd.Size)}
	}
	wells := make([]netstate.GravityWellSnapshot, len(p.GravityWells))
	for i, ww := range p.GravityWells {
		wells[i] = netstate.GravityWellSnapshot{ID: ww.ID, Position: ww.Position.toVecmath(), Mass: ww.Mass, CoreRadius: ww.CoreRadius}
	}
	notable := make([]netstate.NotablePlayerSnapshot, len(p.NotablePlayers))
	for i, wn := range p.NotablePlayers {
		notable[i] = netstate.NotablePlayerSnapshot{ID: wn.ID, Position: wn.Position.toVecmath(), Mass: wn.Mass, ColorIndex: wn.ColorIndex}
	}

	return netstate.GameSnapshot{
		Tick:           netstate.Tick(p.Tick),
		Phase:          netstate.MatchPhase(p.Phase),
		MatchTime:      p.MatchTime,
		Countdown:      p.Countdown,
		Players:        players,
		Projectiles:    projectiles,
		Debris:         debris,
		GravityWells:   wells,
		NotablePlayers: notable,
		Arena:          netstate.ArenaState{CollapsePhase: p.Arena.CollapsePhase, SafeRadius: p.Arena.SafeRadius, Scale: p.Arena.Scale},
		DensityGrid:    p.DensityGrid,
		EchoClientTime: p.EchoClientTime,
	}
}

type wirePlayerDelta struct {
	ID       string      `json:"id"`
	Position *wireVector `json:"position,omitempty"`
	Velocity *wireVector `json:"velocity,omitempty"`
	Rotation *float64    `json:"rotation,omitempty"`
	Mass     *float64    `json:"mass,omitempty"`
	Alive    *bool       `json:"alive,omitempty"`
	Kills    *int        `json:"kills,omitempty"`
}

func (d wirePlayerDelta) toDelta() netstate.PlayerDelta {
	out := netstate.PlayerDelta{ID: d.ID, Rotation: d.Rotation, Mass: d.Mass, Alive: d.Alive, Kills: d.Kills}
	if d.Position != nil {
		v := d.Position.toVecmath()
		out.Position = &v
	}
	if d.Velocity != nil {
		v := d.Velocity.toVecmath()
		out.Velocity = &v
	}
	return out
}

type wireProjectileDelta struct {
	ID       int        `json:"id"`
	Position wireVector `json:"position"`
	Velocity wireVector `json:"velocity"`
}

// DeltaPayload is the payload of a TypeDelta message: an incremental update
// against a previously-received snapshot.
type DeltaPayload struct {
	Tick               uint64                `json:"tick"`
	BaseTick           uint64                `json:"baseTick"`
	PlayerUpdates      []wirePlayerDelta     `json:"playerUpdates"`
	ProjectileUpdates  []wireProjectileDelta `json:"projectileUpdates"`
	RemovedProjectiles []int                 `json:"removedProjectiles"`
	Debris             []wireDebris          `json:"debris"`
}

// ToDeltaUpdate converts the wire payload into the engine's DeltaUpdate.
func (p DeltaPayload) ToDeltaUpdate() netstate.DeltaUpdate {
	playerUpdates := make([]netstate.PlayerDelta, len(p.PlayerUpdates))
	for i, d := range p.PlayerUpdates {
		playerUpdates[i] = d.toDelta()
	}
	projectileUpdates := make([]netstate.ProjectileDelta, len(p.ProjectileUpdates))
	for i, d := range p.ProjectileUpdates {
		projectileUpdates[i] = netstate.ProjectileDelta{ID: d.ID, Position: d.Position.toVecmath(), Velocity: d.Velocity.toVecmath()}
	}
	debris := make([]netstate.DebrisSnapshot, len(p.Debris))
	for i, wd := range p.Debris {
		debris[i] = netstate.DebrisSnapshot{ID: wd.ID, Position: wd.Position.toVecmath(), Size: netstate.DebrisSize(wd.Size)}
	}

	return netstate.DeltaUpdate{
		Tick:               netstate.Tick(p.Tick),
		BaseTick:           netstate.Tick(p.BaseTick),
		PlayerUpdates:      playerUpdates,
		ProjectileUpdates:  projectileUpdates,
		RemovedProjectiles: p.RemovedProjectiles,
		Debris:             debris,
	}
}

// PongPayload is the payload of a TypePong message, used by the transport
// layer for round-trip time measurement.
type PongPayload struct {
	ClientTime int64 `json:"clientTime"`
	ServerTime int64 `json:"serverTime"`
}

// JoinAcceptedPayload is the payload of a TypeJoinAccepted message.
type JoinAcceptedPayload struct {
	PlayerID        string `json:"playerId"`
	ProtocolVersion byte   `json:"protocolVersion"`
}

// KickedPayload is the payload of a TypeKicked message.
type KickedPayload struct {
	Reason string `json:"reason"`
}

// EventPayload is the payload of a TypeEvent message: a one-shot game event
// (a kill feed entry, a pickup, and similar) with a free-form data map since
// the set of event kinds is not fixed by this protocol version.
type EventPayload struct {
	Kind string                 `json:"kind"`
	Data map[string]interface{} `json:"data"`
}

// PhaseChangePayload is the payload of a TypePhaseChange message.
type PhaseChangePayload struct {
	Phase int `json:"phase"`
}

// GravityWellDestroyedPayload is the payload of a TypeGravityWellDestroyed
// message.
type GravityWellDestroyedPayload struct {
	ID int `json:"id"`
}

// Decode parses a raw frame into an Envelope. It does not decode Payload;
// call one of the typed decoders below once Type is known.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("wire: decode envelope: %w", err)
	}
	return env, nil
}

// DecodeSnapshot decodes env.Payload as a SnapshotPayload.
func DecodeSnapshot(env Envelope) (SnapshotPayload, error) {
	var p SnapshotPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return SnapshotPayload{}, fmt.Errorf("wire: decode snapshot payload: %w", err)
	}
	return p, nil
}

// DecodeDelta decodes env.Payload as a DeltaPayload.
func DecodeDelta(env Envelope) (DeltaPayload, error) {
	var p DeltaPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return DeltaPayload{}, fmt.Errorf("wire: decode delta payload: %w", err)
	}
	return p, nil
}

// DecodePong decodes env.Payload as a PongPayload.
func DecodePong(env Envelope) (PongPayload, error) {
	var p PongPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return PongPayload{}, fmt.Errorf("wire: decode pong payload: %w", err)
	}
	return p, nil
}

// DecodeJoinAccepted decodes env.Payload as a JoinAcceptedPayload.
func DecodeJoinAccepted(env Envelope) (JoinAcceptedPayload, error) {
	var p JoinAcceptedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return JoinAcceptedPayload{}, fmt.Errorf("wire: decode join_accepted payload: %w", err)
	}
	return p, nil
}

// DecodeKicked decodes env.Payload as a KickedPayload.
func DecodeKicked(env Envelope) (KickedPayload, error) {
	var p KickedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return KickedPayload{}, fmt.Errorf("wire: decode kicked payload: %w", err)
	}
	return p, nil
}

// DecodeEvent decodes env.Payload as an EventPayload.
func DecodeEvent(env Envelope) (EventPayload, error) {
	var p EventPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return EventPayload{}, fmt.Errorf("wire: decode event payload: %w", err)
	}
	return p, nil
}

// DecodePhaseChange decodes env.Payload as a PhaseChangePayload.
func DecodePhaseChange(env Envelope) (PhaseChangePayload, error) {
	var p PhaseChangePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return PhaseChangePayload{}, fmt.Errorf("wire: decode phase_change payload: %w", err)
	}
	return p, nil
}

// DecodeGravityWellDestroyed decodes env.Payload as a
// GravityWellDestroyedPayload.
func DecodeGravityWellDestroyed(env Envelope) (GravityWellDestroyedPayload, error) {
	var p GravityWellDestroyedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return GravityWellDestroyedPayload{}, fmt.Errorf("wire: decode gravity_well_destroyed payload: %w", err)
	}
	return p, nil
}

// EncodeInput builds the client-to-server input frame.
func EncodeInput(input netstate.PlayerInput) ([]byte, error) {
	payload := struct {
		Sequence     uint64     `json:"sequence"`
		Tick         uint64     `json:"tick"`
		ClientTime   int64      `json:"clientTime"`
		Thrust       wireVector `json:"thrust"`
		Aim          wireVector `json:"aim"`
		Boost        bool       `json:"boost"`
		Fire         bool       `json:"fire"`
		FireReleased bool       `json:"fireReleased"`
	}{
		Sequence:     input.Sequence,
		Tick:         uint64(input.Tick),
		ClientTime:   input.ClientTime,
		Thrust:       wireVector{X: input.Thrust.X, Y: input.Thrust.Y},
		Aim:          wireVector{X: input.Aim.X, Y: input.Aim.Y},
		Boost:        input.Boost,
		Fire:         input.Fire,
		FireReleased: input.FireReleased,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: encode input payload: %w", err)
	}
	env := Envelope{Type: "input", ProtocolVersion: ProtocolVersion, Payload: raw}
	return json.Marshal(env)
}
