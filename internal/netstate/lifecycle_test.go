package netstate

import "testing"

func TestLifecycleFirstSightingNoBirthAnimation(t *testing.T) {
	lt := NewLifecycleTracker()
	p := PlayerSnapshot{ID: "p1", Alive: true, SpawnProtection: true}
	if got := lt.TrackPlayer("p1", nil, p, 1000); got != 0 {
		t.Errorf("first sighting BornTime = %v, want 0", got)
	}
}

func TestLifecycleRespawnTransitionAnimates(t *testing.T) {
	lt := NewLifecycleTracker()
	before := PlayerSnapshot{ID: "p1", Alive: false, SpawnProtection: false}
	after := PlayerSnapshot{ID: "p1", Alive: true, SpawnProtection: true}

	lt.TrackPlayer("p1", nil, before, 0) // first sighting, seeds the tracker

	got := lt.TrackPlayer("p1", &before, after, 5000)
	if got != 5000 {
		t.Errorf("BornTime on respawn transition = %v, want 5000", got)
	}

	// Subsequent calls with no transition must keep returning the same
	// birth time, not re-trigger.
	steady := PlayerSnapshot{ID: "p1", Alive: true, SpawnProtection: true}
	if got := lt.TrackPlayer("p1", &after, steady, 6000); got != 5000 {
		t.Errorf("BornTime held steady after no-transition update = %v, want 5000", got)
	}
}

func TestLifecyclePrunePlayersResetsOnReentry(t *testing.T) {
	lt := NewLifecycleTracker()
	p := PlayerSnapshot{ID: "p1", Alive: true}
	lt.TrackPlayer("p1", nil, p, 0)
	lt.PrunePlayers(map[string]struct{}{}) // p1 absent: pruned

	// Re-entry must be treated as a fresh first sighting (BornTime 0).
	if got := lt.TrackPlayer("p1", nil, p, 9999); got != 0 {
		t.Errorf("BornTime after re-entry = %v, want 0", got)
	}
}

func TestLifecycleWellBirthSkippedOnFirstSnapshot(t *testing.T) {
	lt := NewLifecycleTracker()
	if got := lt.TrackWell(1, 500); got != 0 {
		t.Errorf("well BornTime on very first snapshot = %v, want 0", got)
	}
	lt.MarkSnapshotProcessed()

	// A well first seen on a later snapshot does animate.
	if got := lt.TrackWell(2, 700); got != 700 {
		t.Errorf("well BornTime on later first sighting = %v, want 700", got)
	}
}

func TestLifecycleDestroyedWellFilteredUntilOmitted(t *testing.T) {
	lt := NewLifecycleTracker()
	lt.MarkWellDestroyed(1)
	if !lt.IsWellDestroyed(1) {
		t.Fatal("well 1 should be destroyed")
	}

	// Server still echoing id 1 in its snapshot: stays filtered.
	lt.ReconcileDestroyedWells(map[int]struct{}{1: {}})
	if !lt.IsWellDestroyed(1) {
		t.Error("well 1 should still be destroyed while server echoes it")
	}

	// Server omits it: destroyed marker clears.
	lt.ReconcileDestroyedWells(map[int]struct{}{})
	if lt.IsWellDestroyed(1) {
		t.Error("well 1 should no longer be destroyed once server omits it")
	}
}

func TestBirthTimeFromSpawnTick(t *testing.T) {
	p := PlayerSnapshot{SpawnTick: 100, Alive: true}
	if got := BirthTimeFromSpawnTick(p, 105, 15, 12345); got != 12345 {
		t.Errorf("BirthTimeFromSpawnTick within window = %v, want 12345", got)
	}
	if got := BirthTimeFromSpawnTick(p, 200, 15, 12345); got != 0 {
		t.Errorf("BirthTimeFromSpawnTick outside window = %v, want 0", got)
	}

	dead := PlayerSnapshot{SpawnTick: 100, Alive: false}
	if got := BirthTimeFromSpawnTick(dead, 105, 15, 12345); got != 0 {
		t.Errorf("BirthTimeFromSpawnTick for dead player = %v, want 0", got)
	}
}

func TestLifecycleReset(t *testing.T) {
	lt := NewLifecycleTracker()
	lt.TrackPlayer("p1", nil, PlayerSnapshot{ID: "p1"}, 0)
	lt.MarkWellDestroyed(1)
	lt.MarkSnapshotProcessed()

	lt.Reset()

	if got := lt.TrackPlayer("p1", nil, PlayerSnapshot{ID: "p1"}, 0); got != 0 {
		t.Errorf("player state not cleared after Reset")
	}
	if lt.IsWellDestroyed(1) {
		t.Error("destroyed set not cleared after Reset")
	}
	if got := lt.TrackWell(1, 500); got != 0 {
		t.Errorf("well BornTime after Reset should treat this as the first snapshot again, got %v", got)
	}
}
