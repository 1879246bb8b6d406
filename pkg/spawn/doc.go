// Package spawn chooses where pooled instances appear and puts them there.
//
// A Selector filters candidate Points to those outside their safe distance
// from the reference position and applies a Policy: Farthest, Closest or
// Random. Manual means the caller picks the point itself. Ties on distance
// go to the point used fewer times, then to the one used longest ago.
//
// A Coordinator combines a selector with a pool.Registry:
//
//	coord := spawn.NewCoordinator(reg, spawn.NewSelector(), ref)
//	ref.Set(player.Position())
//	h, ok := coord.Spawn(ctx, "Enemy", spawn.FromSource(group, spawn.Farthest))
//	if !ok {
//		return // skip this tick
//	}
//
// The chosen point is only marked used after the fetch succeeds, so a spawn
// that fails on an exhausted pool leaves usage counters untouched.
package spawn
