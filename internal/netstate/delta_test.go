package netstate

import (
	"testing"

	"github.com/hknc0/orbit/internal/vecmath"
)

// TestApplyDeltaReconstruction is scenario S4: a delta referencing tick 10
// updates one player's position and creates a new projectile; the
// reconstructed snapshot at tick 15 must carry the updated fields while
// leaving everything untouched by the delta exactly as it was in the base.
func TestApplyDeltaReconstruction(t *testing.T) {
	base := GameSnapshot{
		Tick:  10,
		Phase: PhasePlaying,
		Players: []PlayerSnapshot{
			{ID: "p1", Position: vecmath.Vector{X: 0, Y: 0}, Mass: 50, Alive: true},
			{ID: "p2", Position: vecmath.Vector{X: 5, Y: 5}, Mass: 60, Alive: true},
		},
		Projectiles: []ProjectileSnapshot{
			{ID: 1, OwnerID: "p1", Position: vecmath.Vector{X: 1, Y: 1}},
		},
	}

	newPos := vecmath.Vector{X: 10, Y: 20}
	delta := DeltaUpdate{
		Tick:     15,
		BaseTick: 10,
		PlayerUpdates: []PlayerDelta{
			{ID: "p1", Position: &newPos},
		},
		ProjectileUpdates: []ProjectileDelta{
			{ID: 2, Position: vecmath.Vector{X: 2, Y: 2}, Velocity: vecmath.Vector{X: 1, Y: 0}},
		},
	}

	out := applyDeltaToBase(base, delta)

	if out.Tick != 15 {
		t.Errorf("Tick = %v, want 15", out.Tick)
	}

	p1 := mustFindPlayer(t, out.Players, "p1")
	if p1.Position != newPos {
		t.Errorf("p1 Position = %v, want %v", p1.Position, newPos)
	}
	if p1.Mass != 50 {
		t.Errorf("p1 Mass (untouched field) = %v, want 50 (inherited from base)", p1.Mass)
	}

	p2 := mustFindPlayer(t, out.Players, "p2")
	if p2.Position != (vecmath.Vector{X: 5, Y: 5}) {
		t.Errorf("p2 Position changed despite no delta entry: %v", p2.Position)
	}

	if len(out.Projectiles) != 2 {
		t.Fatalf("Projectiles len = %v, want 2", len(out.Projectiles))
	}
	newProjectile := mustFindProjectile(t, out.Projectiles, 2)
	if newProjectile.OwnerID != "" || newProjectile.Mass != 1 {
		t.Errorf("new projectile placeholder = %+v, want empty owner and mass 1", newProjectile)
	}
}

func TestApplyDeltaRemovesProjectiles(t *testing.T) {
	base := GameSnapshot{
		Tick: 1,
		Projectiles: []ProjectileSnapshot{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
	}
	delta := DeltaUpdate{Tick: 2, BaseTick: 1, RemovedProjectiles: []int{2}}

	out := applyDeltaToBase(base, delta)
	if len(out.Projectiles) != 2 {
		t.Fatalf("Projectiles len = %v, want 2", len(out.Projectiles))
	}
	for _, p := range out.Projectiles {
		if p.ID == 2 {
			t.Errorf("projectile 2 should have been removed")
		}
	}
}

func TestApplyDeltaIgnoresUnknownPlayerID(t *testing.T) {
	base := GameSnapshot{Tick: 1, Players: []PlayerSnapshot{{ID: "p1"}}}
	bogusPos := vecmath.Vector{X: 1, Y: 1}
	delta := DeltaUpdate{
		Tick:          2,
		BaseTick:      1,
		PlayerUpdates: []PlayerDelta{{ID: "ghost", Position: &bogusPos}},
	}

	out := applyDeltaToBase(base, delta)
	if len(out.Players) != 1 {
		t.Errorf("Players len = %v, want 1 (ghost delta ignored)", len(out.Players))
	}
}

func mustFindPlayer(t *testing.T, players []PlayerSnapshot, id string) PlayerSnapshot {
	t.Helper()
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("player %q not found", id)
	return PlayerSnapshot{}
}

func mustFindProjectile(t *testing.T, projectiles []ProjectileSnapshot, id int) ProjectileSnapshot {
	t.Helper()
	for _, p := range projectiles {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("projectile %d not found", id)
	return ProjectileSnapshot{}
}
