package wire

import (
	"encoding/json"
	"testing"

	"github.com/hknc0/orbit/internal/netstate"
	"github.com/hknc0/orbit/internal/vecmath"
)

func TestDecodeSnapshotRoundTrip(t *testing.T) {
	raw := []byte(`{
		"type": "snapshot",
		"protocolVersion": 1,
		"payload": {
			"tick": 7,
			"phase": 2,
			"matchTime": 12.5,
			"countdown": 0,
			"players": [{"id":"p1","name":"Ann","position":{"x":1,"y":2},"velocity":{"x":0,"y":0},"rotation":0,"mass":50,"alive":true,"spawnProtection":false,"kills":0,"deaths":0,"bot":false,"colorIndex":1,"spawnTick":3}],
			"projectiles": [],
			"debris": [],
			"gravityWells": [],
			"notablePlayers": [],
			"arena": {"collapsePhase": 0, "safeRadius": 100, "scale": 1},
			"densityGrid": [0.1, 0.2],
			"echoClientTime": 123456
		}
	}`)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeSnapshot {
		t.Fatalf("Type = %v, want snapshot", env.Type)
	}

	payload, err := DecodeSnapshot(env)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	snap := payload.ToGameSnapshot()
	if snap.Tick != 7 {
		t.Errorf("Tick = %v, want 7", snap.Tick)
	}
	if len(snap.Players) != 1 || snap.Players[0].ID != "p1" {
		t.Fatalf("Players = %+v", snap.Players)
	}
	if snap.Players[0].Position != (vecmath.Vector{X: 1, Y: 2}) {
		t.Errorf("Player position = %v, want {1 2}", snap.Players[0].Position)
	}
}

func TestDecodeDeltaWithOmittedFieldsInheritFromBase(t *testing.T) {
	raw := []byte(`{
		"type": "delta",
		"protocolVersion": 1,
		"payload": {
			"tick": 16,
			"baseTick": 15,
			"playerUpdates": [{"id": "p1", "position": {"x": 9, "y": 9}}],
			"projectileUpdates": [],
			"removedProjectiles": [],
			"debris": []
		}
	}`)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	payload, err := DecodeDelta(env)
	if err != nil {
		t.Fatalf("DecodeDelta: %v", err)
	}

	delta := payload.ToDeltaUpdate()
	if len(delta.PlayerUpdates) != 1 {
		t.Fatalf("PlayerUpdates = %+v", delta.PlayerUpdates)
	}
	pd := delta.PlayerUpdates[0]
	if pd.Position == nil || *pd.Position != (vecmath.Vector{X: 9, Y: 9}) {
		t.Errorf("Position = %v, want non-nil {9 9}", pd.Position)
	}
	if pd.Velocity != nil {
		t.Errorf("Velocity = %v, want nil (omitted field means inherit)", pd.Velocity)
	}
}

func TestEncodeInputProducesDecodableEnvelope(t *testing.T) {
	input := netstate.PlayerInput{
		Sequence: 5,
		Tick:     10,
		Thrust:   vecmath.Vector{X: 1, Y: 0},
		Boost:    true,
	}
	raw, err := EncodeInput(input)
	if err != nil {
		t.Fatalf("EncodeInput: %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal produced frame: %v", err)
	}
	if env.ProtocolVersion != ProtocolVersion {
		t.Errorf("ProtocolVersion = %v, want %v", env.ProtocolVersion, ProtocolVersion)
	}
}
