package scenario

import (
	"math/rand/v2"

	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/actor"
	"gonum.org/v1/gonum/stat/distuv"
)

// Seed returns the trajectory holding every body at its initial pose and every
// contact at its initial state. Goals do not shape it.
func Seed(world *cio.World, goals []actor.Pose, params cio.Params) []float64 {
	states := make([]cio.WorldState, params.Steps)
	for t := range states {
		states[t] = cio.WorldState{
			Step:     t,
			Bodies:   make([]actor.BodyState, len(world.Bodies)),
			Contacts: make([]cio.ContactState, len(world.Contacts)),
		}
		for i, body := range world.Bodies {
			states[t].Bodies[i] = body.RestState()
		}
		for j, contact := range world.Contacts {
			states[t].Contacts[j].State = contact.Initial
		}
	}

	return cio.Pack(states, world)
}

// Perturb returns a copy of x with gaussian noise of standard deviation sigma
// added to every value, clamped back into the bounds. The noise only depends on seed.
func Perturb(x []float64, sigma float64, seed uint64, bounds cio.Bounds) []float64 {
	noisy := append([]float64(nil), x...)
	if sigma > 0 {
		normal := distuv.Normal{
			Mu:    0,
			Sigma: sigma,
			Src:   rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		}
		for i := range noisy {
			noisy[i] += normal.Rand()
		}
	}

	for i := range noisy {
		noisy[i] = min(bounds.Upper[i], max(bounds.Lower[i], noisy[i]))
	}

	return noisy
}
