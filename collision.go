package cio

import (
	"github.com/akmonengine/cio/actor"
)

// Pair represents a pair of bodies that potentially overlap at one time step
type Pair struct {
	BodyA int
	BodyB int
}

// BroadPhase returns the unordered pairs of bodies whose AABBs overlap at a step.
// This is an O(n²) brute-force approach suitable for small numbers of bodies.
func BroadPhase(world *World, state WorldState) []Pair {
	aabbs := make([]actor.AABB, len(world.Bodies))
	for i, body := range world.Bodies {
		aabbs[i] = body.Shape.ComputeAABB(state.Bodies[i].Pose)
	}

	var pairs []Pair
	for i := range world.Bodies {
		for j := i + 1; j < len(world.Bodies); j++ {
			if world.Bodies[i].IsStatic() && world.Bodies[j].IsStatic() {
				continue
			}
			if aabbs[i].Overlaps(aabbs[j]) {
				pairs = append(pairs, Pair{BodyA: i, BodyB: j})
			}
		}
	}

	return pairs
}

// NarrowPhase sums the overlap costs of candidate pairs
func NarrowPhase(world *World, state WorldState, pairs []Pair) float64 {
	cost := 0.0
	for _, pair := range pairs {
		a, b := world.Bodies[pair.BodyA], world.Bodies[pair.BodyB]
		cost += actor.Overlap(a.Shape, state.Bodies[pair.BodyA].Pose, b.Shape, state.Bodies[pair.BodyB].Pose)
	}

	return cost
}
