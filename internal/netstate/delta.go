package netstate

// applyDeltaToBase reconstructs a full GameSnapshot from a base snapshot plus
// a delta payload and returns it. Locating the base by tick (and dropping the
// delta when the base is no longer buffered) is the caller's job; see
// Engine.ApplyDelta.
func applyDeltaToBase(base GameSnapshot, delta DeltaUpdate) GameSnapshot {
	out := GameSnapshot{
		Tick:           delta.Tick,
		Phase:          base.Phase,
		MatchTime:      base.MatchTime,
		Countdown:      base.Countdown,
		Arena:          base.Arena,
		DensityGrid:    base.DensityGrid,
		NotablePlayers: base.NotablePlayers,
		EchoClientTime: base.EchoClientTime,
		GravityWells:   base.GravityWells,
		Debris:         delta.Debris, // debris is always a full list, never a diff
	}

	out.Players = mergePlayerDeltas(base.Players, delta.PlayerUpdates)
	out.Projectiles = mergeProjectileDeltas(base.Projectiles, delta.ProjectileUpdates, delta.RemovedProjectiles)

	return out
}

func mergePlayerDeltas(base []PlayerSnapshot, updates []PlayerDelta) []PlayerSnapshot {
	players := make([]PlayerSnapshot, len(base))
	copy(players, base)

	index := make(map[string]int, len(players))
	for i, p := range players {
		index[p.ID] = i
	}

	for _, d := range updates {
		i, ok := index[d.ID]
		if !ok {
			// Creations arrive via full snapshot; ignore deltas for unknown ids.
			continue
		}

		merged := players[i]
		if d.Position != nil {
			merged.Position = *d.Position
		}
		if d.Velocity != nil {
			merged.Velocity = *d.Velocity
		}
		if d.Rotation != nil {
			merged.Rotation = *d.Rotation
		}
		if d.Mass != nil {
			merged.Mass = *d.Mass
		}
		if d.Alive != nil {
			merged.Alive = *d.Alive
		}
		if d.Kills != nil {
			merged.Kills = *d.Kills
		}
		players[i] = merged
	}

	return players
}

func mergeProjectileDeltas(base []ProjectileSnapshot, updates []ProjectileDelta, removed []int) []ProjectileSnapshot {
	projectiles := make([]ProjectileSnapshot, len(base))
	copy(projectiles, base)

	index := make(map[int]int, len(projectiles))
	for i, p := range projectiles {
		index[p.ID] = i
	}

	for _, d := range updates {
		if i, ok := index[d.ID]; ok {
			projectiles[i].Position = d.Position
			projectiles[i].Velocity = d.Velocity
			continue
		}
		// New id: append a placeholder, patched by a later full snapshot.
		projectiles = append(projectiles, ProjectileSnapshot{
			ID:       d.ID,
			OwnerID:  "",
			Position: d.Position,
			Velocity: d.Velocity,
			Mass:     1,
		})
		index[d.ID] = len(projectiles) - 1
	}

	if len(removed) == 0 {
		return projectiles
	}
	removedSet := make(map[int]struct{}, len(removed))
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}

	kept := projectiles[:0:0]
	for _, p := range projectiles {
		if _, gone := removedSet[p.ID]; gone {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
