package netstate

import "github.com/hknc0/orbit/internal/vecmath"

// nameCache retains the last non-empty display name seen for each player id.
// The wire format omits name fields on steady-state snapshots for
// bandwidth, so "missing" and "empty" must be treated differently: missing
// keeps the cached value, an explicit non-empty name replaces it, and a
// never-seen id yields "".
type nameCache struct {
	names map[string]string
}

func newNameCache() *nameCache {
	return &nameCache{names: make(map[string]string)}
}

func (c *nameCache) resolve(id, observed string) string {
	if observed != "" {
		c.names[id] = observed
	}
	return c.names[id]
}

func (c *nameCache) reset() {
	c.names = make(map[string]string)
}

// Interpolator selects bracketing snapshots from the buffer and produces an
// InterpolatedState for a given render time.
type Interpolator struct {
	names *nameCache
}

// NewInterpolator creates an Interpolator with an empty name cache.
func NewInterpolator() *Interpolator {
	return &Interpolator{names: newNameCache()}
}

// ResetNames clears the display-name cache.
func (ip *Interpolator) ResetNames() {
	ip.names.reset()
}

// Interpolate produces an InterpolatedState for renderTime from buf, or
// false if the buffer is empty. lifecycle is consulted (and mutated) for
// birth times and destroyed-well filtering.
func (ip *Interpolator) Interpolate(buf *SnapshotBuffer, renderTime int64, lifecycle *LifecycleTracker, now int64) (InterpolatedState, bool) {
	n := buf.Len()
	if n == 0 {
		return InterpolatedState{}, false
	}

	if n == 1 {
		return ip.fromSingle(buf.At(0), lifecycle, now), true
	}

	before, after, t, bracketed := bracket(buf, renderTime)
	if !bracketed {
		if renderTime <= buf.At(0).ArrivalTime {
			return ip.fromSingle(buf.At(0), lifecycle, now), true
		}
		return ip.fromSingle(buf.At(n-1), lifecycle, now), true
	}

	return ip.fromPair(before, after, t, lifecycle, now), true
}

// bracket finds the lowest-indexed adjacent pair (before, after) such that
// before.ArrivalTime <= renderTime <= after.ArrivalTime, and the
// interpolation factor t between them.
func bracket(buf *SnapshotBuffer, renderTime int64) (before, after BufferEntry, t float64, ok bool) {
	n := buf.Len()
	for i := 0; i < n-1; i++ {
		b := buf.At(i)
		a := buf.At(i + 1)
		if b.ArrivalTime <= renderTime && renderTime <= a.ArrivalTime {
			span := a.ArrivalTime - b.ArrivalTime
			if span == 0 {
				return b, a, 0, true
			}
			return b, a, float64(renderTime-b.ArrivalTime) / float64(span), true
		}
	}
	return BufferEntry{}, BufferEntry{}, 0, false
}

func (ip *Interpolator) fromSingle(e BufferEntry, lifecycle *LifecycleTracker, now int64) InterpolatedState {
	snap := e.Snapshot
	out := newInterpolatedState(snap)

	presentPlayers := make(map[string]struct{}, len(snap.Players))
	for _, p := range snap.Players {
		presentPlayers[p.ID] = struct{}{}
		born := lifecycle.TrackPlayer(p.ID, nil, p, now)
		out.Players[p.ID] = InterpolatedPlayer{
			PlayerSnapshot: clonePlayer(p, ip.names.resolve(p.ID, p.Name)),
			BornTime:       born,
		}
	}
	lifecycle.PrunePlayers(presentPlayers)

	for _, pr := range snap.Projectiles {
		out.Projectiles[pr.ID] = InterpolatedProjectile{ProjectileSnapshot: cloneProjectile(pr)}
	}
	for _, d := range snap.Debris {
		out.Debris[d.ID] = InterpolatedDebris{DebrisSnapshot: cloneDebris(d)}
	}

	presentWells := make(map[int]struct{}, len(snap.GravityWells))
	for _, w := range snap.GravityWells {
		presentWells[w.ID] = struct{}{}
	}
	lifecycle.ReconcileDestroyedWells(presentWells)
	for _, w := range snap.GravityWells {
		if lifecycle.IsWellDestroyed(w.ID) {
			continue
		}
		born := lifecycle.TrackWell(w.ID, now)
		out.GravityWells[w.ID] = InterpolatedWell{GravityWellSnapshot: cloneWell(w), BornTime: born}
	}
	lifecycle.PruneWells(presentWells)
	lifecycle.MarkSnapshotProcessed()

	return out
}

func (ip *Interpolator) fromPair(before, after BufferEntry, t float64, lifecycle *LifecycleTracker, now int64) InterpolatedState {
	b, a := before.Snapshot, after.Snapshot
	out := newInterpolatedState(a)
	out.MatchTime = vecmath.LerpScalar(b.MatchTime, a.MatchTime, t)
	out.Countdown = vecmath.LerpScalar(b.Countdown, a.Countdown, t)
	out.Arena = ArenaState{
		CollapsePhase: a.Arena.CollapsePhase,
		SafeRadius:    vecmath.LerpScalar(b.Arena.SafeRadius, a.Arena.SafeRadius, t),
		Scale:         vecmath.LerpScalar(b.Arena.Scale, a.Arena.Scale, t),
	}

	beforePlayers := make(map[string]PlayerSnapshot, len(b.Players))
	for _, p := range b.Players {
		beforePlayers[p.ID] = p
	}

	presentPlayers := make(map[string]struct{}, len(a.Players))
	for _, ap := range a.Players {
		presentPlayers[ap.ID] = struct{}{}
		bp, hadBefore := beforePlayers[ap.ID]

		var interpolated PlayerSnapshot
		var bornBefore *PlayerSnapshot
		if !hadBefore {
			interpolated = ap
		} else {
			bornBefore = &bp
			if respawnedBetween(bp, ap) {
				interpolated = ap
			} else {
				interpolated = interpolatePlayer(bp, ap, t)
			}
		}

		born := lifecycle.TrackPlayer(ap.ID, bornBefore, ap, now)
		out.Players[ap.ID] = InterpolatedPlayer{
			PlayerSnapshot: clonePlayer(interpolated, ip.names.resolve(ap.ID, ap.Name)),
			BornTime:       born,
		}
	}
	lifecycle.PrunePlayers(presentPlayers)

	beforeProjectiles := make(map[int]ProjectileSnapshot, len(b.Projectiles))
	for _, p := range b.Projectiles {
		beforeProjectiles[p.ID] = p
	}
	for _, ap := range a.Projectiles {
		if bp, ok := beforeProjectiles[ap.ID]; ok {
			out.Projectiles[ap.ID] = InterpolatedProjectile{ProjectileSnapshot: interpolateProjectile(bp, ap, t)}
		} else {
			out.Projectiles[ap.ID] = InterpolatedProjectile{ProjectileSnapshot: cloneProjectile(ap)}
		}
	}

	beforeDebris := make(map[int]DebrisSnapshot, len(b.Debris))
	for _, d := range b.Debris {
		beforeDebris[d.ID] = d
	}
	for _, ad := range a.Debris {
		if bd, ok := beforeDebris[ad.ID]; ok {
			out.Debris[ad.ID] = InterpolatedDebris{DebrisSnapshot: DebrisSnapshot{
				ID:       ad.ID,
				Position: vecmath.Lerp(bd.Position, ad.Position, t),
				Size:     ad.Size,
			}}
		} else {
			out.Debris[ad.ID] = InterpolatedDebris{DebrisSnapshot: cloneDebris(ad)}
		}
	}

	beforeWells := before.wellIndex
	presentWells := make(map[int]struct{}, len(a.GravityWells))
	for _, aw := range a.GravityWells {
		presentWells[aw.ID] = struct{}{}
	}
	lifecycle.ReconcileDestroyedWells(presentWells)
	for _, aw := range a.GravityWells {
		if lifecycle.IsWellDestroyed(aw.ID) {
			continue
		}
		born := lifecycle.TrackWell(aw.ID, now)
		if bw, ok := beforeWells[aw.ID]; ok {
			out.GravityWells[aw.ID] = InterpolatedWell{
				GravityWellSnapshot: GravityWellSnapshot{
					ID:         aw.ID,
					Position:   vecmath.Lerp(bw.Position, aw.Position, t),
					Mass:       vecmath.LerpScalar(bw.Mass, aw.Mass, t),
					CoreRadius: vecmath.LerpScalar(bw.CoreRadius, aw.CoreRadius, t),
				},
				BornTime: born,
			}
		} else {
			out.GravityWells[aw.ID] = InterpolatedWell{GravityWellSnapshot: cloneWell(aw), BornTime: born}
		}
	}
	lifecycle.PruneWells(presentWells)
	lifecycle.MarkSnapshotProcessed()

	return out
}

// respawnedBetween reports whether a player transitioned from dead to alive,
// or from unprotected to spawn-protected, between before and after. Either
// transition means the entity must snap rather than interpolate, to avoid a
// visible fly-through from the death position to the respawn position.
func respawnedBetween(before, after PlayerSnapshot) bool {
	if !before.Alive && after.Alive {
		return true
	}
	if !before.SpawnProtection && after.SpawnProtection {
		return true
	}
	return false
}

func interpolatePlayer(before, after PlayerSnapshot, t float64) PlayerSnapshot {
	return PlayerSnapshot{
		ID:              after.ID,
		Name:            after.Name,
		Position:        vecmath.Lerp(before.Position, after.Position, t),
		Velocity:        vecmath.Lerp(before.Velocity, after.Velocity, t),
		Rotation:        vecmath.LerpAngle(before.Rotation, after.Rotation, t),
		Mass:            vecmath.LerpScalar(before.Mass, after.Mass, t),
		Alive:           after.Alive,
		SpawnProtection: after.SpawnProtection,
		Kills:           after.Kills,
		Deaths:          after.Deaths,
		Bot:             after.Bot,
		ColorIndex:      after.ColorIndex,
		SpawnTick:       after.SpawnTick,
	}
}

func interpolateProjectile(before, after ProjectileSnapshot, t float64) ProjectileSnapshot {
	return ProjectileSnapshot{
		ID:       after.ID,
		OwnerID:  after.OwnerID,
		Position: vecmath.Lerp(before.Position, after.Position, t),
		Velocity: vecmath.Lerp(before.Velocity, after.Velocity, t),
		Mass:     vecmath.LerpScalar(before.Mass, after.Mass, t),
	}
}

func clonePlayer(p PlayerSnapshot, name string) PlayerSnapshot {
	clone := p
	clone.Name = name
	clone.Position = p.Position.Clone()
	clone.Velocity = p.Velocity.Clone()
	return clone
}

func cloneProjectile(p ProjectileSnapshot) ProjectileSnapshot {
	clone := p
	clone.Position = p.Position.Clone()
	clone.Velocity = p.Velocity.Clone()
	return clone
}

func cloneDebris(d DebrisSnapshot) DebrisSnapshot {
	clone := d
	clone.Position = d.Position.Clone()
	return clone
}

func cloneWell(w GravityWellSnapshot) GravityWellSnapshot {
	clone := w
	clone.Position = w.Position.Clone()
	return clone
}

func newInterpolatedState(snap GameSnapshot) InterpolatedState {
	grid := make([]float64, len(snap.DensityGrid))
	copy(grid, snap.DensityGrid)

	notable := make([]NotablePlayerSnapshot, len(snap.NotablePlayers))
	for i, np := range snap.NotablePlayers {
		clone := np
		clone.Position = np.Position.Clone()
		notable[i] = clone
	}

	return InterpolatedState{
		Tick:           snap.Tick,
		Phase:          snap.Phase,
		MatchTime:      snap.MatchTime,
		Countdown:      snap.Countdown,
		Players:        make(map[string]InterpolatedPlayer, len(snap.Players)),
		Projectiles:    make(map[int]InterpolatedProjectile, len(snap.Projectiles)),
		Debris:         make(map[int]InterpolatedDebris, len(snap.Debris)),
		GravityWells:   make(map[int]InterpolatedWell, len(snap.GravityWells)),
		NotablePlayers: notable,
		Arena:          snap.Arena,
		DensityGrid:    grid,
	}
}
