package transport

import (
	"testing"

	"github.com/hknc0/orbit/internal/netstate"
)

// fakeEngine records which Engine method was called, for asserting that
// handleFrame routes each message type correctly without needing a live
// socket.
type fakeEngine struct {
	snapshots      []netstate.GameSnapshot
	deltas         []netstate.DeltaUpdate
	localPlayerID  string
	destroyedWells []int
}

func (f *fakeEngine) ApplySnapshot(s netstate.GameSnapshot) { f.snapshots = append(f.snapshots, s) }
func (f *fakeEngine) ApplyDelta(d netstate.DeltaUpdate)     { f.deltas = append(f.deltas, d) }
func (f *fakeEngine) SetLocalPlayerID(id string)            { f.localPlayerID = id }
func (f *fakeEngine) MarkWellDestroyed(id int)              { f.destroyedWells = append(f.destroyedWells, id) }

func testClient() *Client {
	return NewClient("ws://example.invalid", nil, nil)
}

func TestHandleFrameRoutesSnapshot(t *testing.T) {
	c := testClient()
	e := &fakeEngine{}

	frame := []byte(`{"type":"snapshot","protocolVersion":1,"payload":{"tick":5,"players":[],"projectiles":[],"debris":[],"gravityWells":[],"notablePlayers":[],"arena":{},"densityGrid":[]}}`)
	if err := c.handleFrame(frame, e); err != nil {
		t.Fatalf("handleFrame: %v", err)
	}
	if len(e.snapshots) != 1 || e.snapshots[0].Tick != 5 {
		t.Errorf("snapshots = %+v, want one with Tick 5", e.snapshots)
	}
}

func TestHandleFrameRoutesJoinAccepted(t *testing.T) {
	c := testClient()
	e := &fakeEngine{}

	frame := []byte(`{"type":"join_accepted","protocolVersion":1,"payload":{"playerId":"p42","protocolVersion":1}}`)
	if err := c.handleFrame(frame, e); err != nil {
		t.Fatalf("handleFrame: %v", err)
	}
	if e.localPlayerID != "p42" {
		t.Errorf("localPlayerID = %q, want p42", e.localPlayerID)
	}
}

func TestHandleFrameRoutesGravityWellDestroyed(t *testing.T) {
	c := testClient()
	e := &fakeEngine{}

	frame := []byte(`{"type":"gravity_well_destroyed","protocolVersion":1,"payload":{"id":3}}`)
	if err := c.handleFrame(frame, e); err != nil {
		t.Fatalf("handleFrame: %v", err)
	}
	if len(e.destroyedWells) != 1 || e.destroyedWells[0] != 3 {
		t.Errorf("destroyedWells = %v, want [3]", e.destroyedWells)
	}
}

func TestHandleFrameRejectsProtocolMismatch(t *testing.T) {
	c := testClient()
	e := &fakeEngine{}

	frame := []byte(`{"type":"snapshot","protocolVersion":99,"payload":{}}`)
	if err := c.handleFrame(frame, e); err == nil {
		t.Error("expected an error for a protocol version mismatch")
	}
}

func TestHandleFrameKickedReturnsError(t *testing.T) {
	c := testClient()
	e := &fakeEngine{}

	frame := []byte(`{"type":"kicked","protocolVersion":1,"payload":{"reason":"idle timeout"}}`)
	if err := c.handleFrame(frame, e); err == nil {
		t.Error("expected an error when the server sends kicked")
	}
}

func TestHandleFramePongIsIgnoredByEngine(t *testing.T) {
	c := testClient()
	e := &fakeEngine{}

	frame := []byte(`{"type":"pong","protocolVersion":1,"payload":{"clientTime":1,"serverTime":2}}`)
	if err := c.handleFrame(frame, e); err != nil {
		t.Fatalf("handleFrame: %v", err)
	}
	if len(e.snapshots) != 0 || len(e.deltas) != 0 {
		t.Error("pong should not reach ApplySnapshot/ApplyDelta")
	}
}
