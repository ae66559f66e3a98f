package netstate

// LifecycleTracker assigns birth times used to animate spawn effects (0
// means "no animation") and tracks which gravity wells the server has
// confirmed destroyed.
//
// The implementation below is the transition-based policy: a player's birth
// animation plays when a before/after snapshot pair shows it transitioning
// from dead to alive-with-spawn-protection. An
// equally-valid tick-based policy, driven directly off PlayerSnapshot's
// SpawnTick field, is implemented separately as BirthTimeFromSpawnTick for
// callers (and tests) that prefer it; spec.md §9 leaves the choice open and
// only this one is wired into Engine.
type LifecycleTracker struct {
	playerBornTimes          map[string]int64
	wellBornTimes            map[int]int64
	destroyedWells           map[int]struct{}
	hasReceivedFirstSnapshot bool
}

// NewLifecycleTracker creates an empty tracker.
func NewLifecycleTracker() *LifecycleTracker {
	return &LifecycleTracker{
		playerBornTimes: make(map[string]int64),
		wellBornTimes:   make(map[int]int64),
		destroyedWells:  make(map[int]struct{}),
	}
}

// TrackPlayer returns the birth time to attach to a player entity for the
// current snapshot, given the player's state in the previous snapshot (if
// any) and its state now.
func (t *LifecycleTracker) TrackPlayer(id string, before *PlayerSnapshot, after PlayerSnapshot, now int64) int64 {
	born, seen := t.playerBornTimes[id]
	if !seen {
		t.playerBornTimes[id] = 0
		return 0
	}

	if before != nil && !before.Alive && after.Alive && after.SpawnProtection {
		born = now
		t.playerBornTimes[id] = born
	}

	return born
}

// PrunePlayers removes tracking entries for ids absent from the current
// snapshot, so re-entry is treated as a fresh first-sighting.
func (t *LifecycleTracker) PrunePlayers(presentIDs map[string]struct{}) {
	for id := range t.playerBornTimes {
		if _, ok := presentIDs[id]; !ok {
			delete(t.playerBornTimes, id)
		}
	}
}

// TrackWell returns the birth time to attach to a gravity well entity.
func (t *LifecycleTracker) TrackWell(id int, now int64) int64 {
	if _, seen := t.wellBornTimes[id]; !seen {
		var born int64
		if t.hasReceivedFirstSnapshot {
			born = now
		}
		t.wellBornTimes[id] = born
		return born
	}
	return t.wellBornTimes[id]
}

// MarkSnapshotProcessed records that at least one snapshot's wells have been
// tracked, so any later first-sighting animates. It is idempotent; the
// Interpolator calls it at the end of every Interpolate pass, after that
// pass's wells have been tracked.
func (t *LifecycleTracker) MarkSnapshotProcessed() {
	t.hasReceivedFirstSnapshot = true
}

// PruneWells removes tracking entries for well ids absent from the current
// snapshot's well list, mirroring PrunePlayers.
func (t *LifecycleTracker) PruneWells(presentIDs map[int]struct{}) {
	for id := range t.wellBornTimes {
		if _, ok := presentIDs[id]; !ok {
			delete(t.wellBornTimes, id)
		}
	}
}

// MarkWellDestroyed records that the server reported id as destroyed. The id
// enters the destroyed set and its birth time is forgotten; interpolated
// output filters it until the server also omits it from a snapshot.
func (t *LifecycleTracker) MarkWellDestroyed(id int) {
	t.destroyedWells[id] = struct{}{}
	delete(t.wellBornTimes, id)
}

// IsWellDestroyed reports whether id is currently filtered from output.
func (t *LifecycleTracker) IsWellDestroyed(id int) bool {
	_, destroyed := t.destroyedWells[id]
	return destroyed
}

// ReconcileDestroyedWells removes ids from the destroyed set once the server
// confirms deletion by omitting them from a snapshot's well list.
func (t *LifecycleTracker) ReconcileDestroyedWells(presentIDs map[int]struct{}) {
	for id := range t.destroyedWells {
		if _, present := presentIDs[id]; !present {
			delete(t.destroyedWells, id)
		}
	}
}

// Reset clears all tracked state, including the destroyed set and the
// first-snapshot flag.
func (t *LifecycleTracker) Reset() {
	t.playerBornTimes = make(map[string]int64)
	t.wellBornTimes = make(map[int]int64)
	t.destroyedWells = make(map[int]struct{})
	t.hasReceivedFirstSnapshot = false
}

// BirthTimeFromSpawnTick implements the alternative, tick-based birth
// animation policy described in spec.md §4.6: a player seen with
// (currentTick - spawnTick) < birthAnimationTicks and alive == true
// animates; dead players never animate.
func BirthTimeFromSpawnTick(p PlayerSnapshot, currentTick Tick, birthAnimationTicks Tick, now int64) int64 {
	if !p.Alive {
		return 0
	}
	if currentTick >= p.SpawnTick && currentTick-p.SpawnTick < birthAnimationTicks {
		return now
	}
	return 0
}
