package cio

import (
	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// ContactState is the resolved state of a contact at one time step
type ContactState struct {
	constraint.State
	// Contact point in world space
	Point mgl64.Vec2
	// Unit normal of the contact surface
	Normal mgl64.Vec2
	Errors constraint.Errors
}

// WorldState is the resolved world at one time step. It is derived from the
// decision vector and never mutated independently.
type WorldState struct {
	Step int
	// Aligned with World.Bodies
	Bodies []actor.BodyState
	// Aligned with World.Contacts
	Contacts []ContactState
}

// Expand reconstructs the per-step world states encoded by a decision vector.
// The sample preceding the first step is the initial configuration of the world,
// at rest: velocities and contact error rates of step 0 are differences against it.
func Expand(x []float64, world *World, params Params) ([]WorldState, error) {
	layout := NewLayout(world, params.Steps)
	if err := layout.Check(x); err != nil {
		return nil, err
	}

	steps := params.Steps
	states := make([]WorldState, steps)
	for t := range states {
		states[t] = WorldState{
			Step:     t,
			Bodies:   make([]actor.BodyState, len(world.Bodies)),
			Contacts: make([]ContactState, len(world.Contacts)),
		}
	}

	poses := make([]mgl64.Vec3, steps)
	for i, body := range world.Bodies {
		for t := range poses {
			if offset := layout.PoseOffset(t, i); offset >= 0 {
				poses[t] = mgl64.Vec3{x[offset], x[offset+1], x[offset+2]}
			} else {
				poses[t] = body.Initial.Vec()
			}
		}

		velocities := Differentiate(poses, body.Initial.Vec(), params.PhaseDt)
		accelerations := Differentiate(velocities, mgl64.Vec3{}, params.PhaseDt)
		for t := range states {
			states[t].Bodies[i] = actor.BodyState{
				Pose:         actor.PoseFromVec(poses[t]),
				Velocity:     velocities[t],
				Acceleration: accelerations[t],
			}
		}
	}

	objectErrors := make([]mgl64.Vec2, steps)
	counterpartErrors := make([]mgl64.Vec2, steps)
	for j, contact := range world.Contacts {
		object := world.Bodies[contact.Object]
		counterpart := world.Bodies[contact.Counterpart]

		for t := range states {
			offset := layout.ContactOffset(t, j)
			state := constraint.UnpackState(x[offset : offset+constraint.StateDims])
			objectPose := states[t].Bodies[contact.Object].Pose
			counterpartPose := states[t].Bodies[contact.Counterpart].Pose

			point := contact.Point(objectPose, state)
			objectErrors[t], counterpartErrors[t] = constraint.PositionErrors(point, object, objectPose, counterpart, counterpartPose)

			states[t].Contacts[j] = ContactState{
				State:  state,
				Point:  point,
				Normal: contact.Normal(counterpartPose),
			}
		}

		initialPoint := contact.Point(object.Initial, contact.Initial)
		initialObjectError, initialCounterpartError := constraint.PositionErrors(initialPoint, object, object.Initial, counterpart, counterpart.Initial)

		objectRates := Differentiate(objectErrors, initialObjectError, params.PhaseDt)
		counterpartRates := Differentiate(counterpartErrors, initialCounterpartError, params.PhaseDt)
		for t := range states {
			states[t].Contacts[j].Errors = constraint.Errors{
				Object:          objectErrors[t],
				Counterpart:     counterpartErrors[t],
				ObjectRate:      objectRates[t],
				CounterpartRate: counterpartRates[t],
			}
		}
	}

	return states, nil
}

// Pack writes a list of world states back into a decision vector, the inverse of Expand
func Pack(states []WorldState, world *World) []float64 {
	layout := NewLayout(world, len(states))
	x := make([]float64, layout.Len())
	for t, state := range states {
		for i := range world.Bodies {
			if offset := layout.PoseOffset(t, i); offset >= 0 {
				pose := state.Bodies[i].Pose
				x[offset], x[offset+1], x[offset+2] = pose.Position.X(), pose.Position.Y(), pose.Theta
			}
		}
		for j := range world.Contacts {
			offset := layout.ContactOffset(t, j)
			state.Contacts[j].State.Pack(x[offset : offset+constraint.StateDims])
		}
	}

	return x
}
