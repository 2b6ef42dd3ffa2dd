package cio

import (
	"testing"

	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restTrajectory holds every body at its initial pose and every contact at its initial state
func restTrajectory(world *World, steps int) []float64 {
	states := make([]WorldState, steps)
	for t := range states {
		states[t].Bodies = make([]actor.BodyState, len(world.Bodies))
		for i, body := range world.Bodies {
			states[t].Bodies[i] = body.RestState()
		}
		states[t].Contacts = make([]ContactState, len(world.Contacts))
		for j, contact := range world.Contacts {
			states[t].Contacts[j].State = contact.Initial
		}
	}

	return Pack(states, world)
}

// createRestingWorld builds a unit circle resting on the ground with a fully
// engaged ground contact at its lowest point
func createRestingWorld(t testing.TB) *World {
	t.Helper()

	world := &World{}
	object := world.AddBody(createObject(0, 1, 1))
	ground := world.AddBody(createGround())
	world.AddContact(constraint.Contact{
		Object:      object,
		Counterpart: ground,
		Initial:     constraint.State{Force: mgl64.Vec2{0, 10}, Offset: mgl64.Vec2{0, -1}, Activation: 1},
	})
	require.NoError(t, world.Validate())

	return world
}

func testParams(steps int) Params {
	params := DefaultParams()
	params.Steps = steps

	return params
}

func TestExpand_VectorLength(t *testing.T) {
	world := createTwoFingerWorld(t)

	_, err := Expand(make([]float64, 5), world, testParams(10))
	assert.ErrorIs(t, err, ErrVectorLength)
}

func TestExpand_AtRest(t *testing.T) {
	world := createTwoFingerWorld(t)
	params := testParams(4)
	x := restTrajectory(world, params.Steps)

	states, err := Expand(x, world, params)
	require.NoError(t, err)
	require.Len(t, states, params.Steps)

	for step, state := range states {
		assert.Equal(t, step, state.Step)
		for i, body := range world.Bodies {
			assert.Equal(t, body.Initial, state.Bodies[i].Pose)
			assert.Equal(t, mgl64.Vec3{}, state.Bodies[i].Velocity)
			assert.Equal(t, mgl64.Vec3{}, state.Bodies[i].Acceleration)
		}
		for j, contact := range world.Contacts {
			assert.Equal(t, contact.Initial, state.Contacts[j].State)
			assert.Equal(t, mgl64.Vec2{}, state.Contacts[j].Errors.ObjectRate)
			assert.Equal(t, mgl64.Vec2{}, state.Contacts[j].Errors.CounterpartRate)
		}
	}
}

func TestExpand_BoundaryConvention(t *testing.T) {
	world := createTwoFingerWorld(t)
	params := testParams(3)
	layout := NewLayout(world, params.Steps)
	x := restTrajectory(world, params.Steps)

	// The object jumps by one unit along x before the first step and stays there
	for step := 0; step < params.Steps; step++ {
		x[layout.PoseOffset(step, 0)] += 1
	}

	states, err := Expand(x, world, params)
	require.NoError(t, err)

	dt := params.PhaseDt
	assert.InDelta(t, 1/dt, states[0].Bodies[0].Velocity.X(), 1e-9)
	assert.InDelta(t, 0.0, states[1].Bodies[0].Velocity.X(), 1e-9)
	assert.InDelta(t, 1/(dt*dt), states[0].Bodies[0].Acceleration.X(), 1e-6)
	assert.InDelta(t, -1/(dt*dt), states[1].Bodies[0].Acceleration.X(), 1e-6)
	assert.InDelta(t, 0.0, states[2].Bodies[0].Acceleration.X(), 1e-9)
}

func TestExpand_DifferencesOverKeyframes(t *testing.T) {
	world := createTwoFingerWorld(t)
	params := testParams(2)
	params.Dt, params.PhaseDt = 0.05, 0.5
	layout := NewLayout(world, params.Steps)
	x := restTrajectory(world, params.Steps)
	x[layout.PoseOffset(0, 0)+1] += 1
	x[layout.PoseOffset(1, 0)+1] += 2

	states, err := Expand(x, world, params)
	require.NoError(t, err)

	// One unit per keyframe is 2 units/s, whatever the fine step
	assert.InDelta(t, 2.0, states[0].Bodies[0].Velocity.Y(), 1e-12)
	assert.InDelta(t, 2.0, states[1].Bodies[0].Velocity.Y(), 1e-12)
	assert.InDelta(t, 4.0, states[0].Bodies[0].Acceleration.Y(), 1e-12)
	assert.InDelta(t, 0.0, states[1].Bodies[0].Acceleration.Y(), 1e-12)
}

func TestExpand_ContactErrors(t *testing.T) {
	world := createRestingWorld(t)
	params := testParams(2)
	layout := NewLayout(world, params.Steps)

	x := restTrajectory(world, params.Steps)
	states, err := Expand(x, world, params)
	require.NoError(t, err)

	contact := states[0].Contacts[0]
	assert.Equal(t, mgl64.Vec2{0, 0}, contact.Point)
	assert.InDelta(t, 0.0, contact.Errors.SquaredNorm(), 1e-12)
	assert.InDelta(t, 1.0, contact.Normal.Y(), 1e-12)

	// Move the contact point one unit below the lowest point of the object
	x[layout.ContactOffset(0, 0)+3] = -2
	states, err = Expand(x, world, params)
	require.NoError(t, err)

	errs := states[0].Contacts[0].Errors
	assert.InDelta(t, -1.0, errs.Object.Y(), 1e-12)
	assert.InDelta(t, -1.0, errs.Counterpart.Y(), 1e-12)
	assert.InDelta(t, -1/params.PhaseDt, errs.ObjectRate.Y(), 1e-9)
	assert.InDelta(t, 1/params.PhaseDt, states[1].Contacts[0].Errors.ObjectRate.Y(), 1e-9)
}

func TestPack_InverseOfExpand(t *testing.T) {
	world := createTwoFingerWorld(t)
	params := testParams(3)

	x := make([]float64, NewLayout(world, params.Steps).Len())
	for i := range x {
		x[i] = float64(i%7) - 3.5
	}

	states, err := Expand(x, world, params)
	require.NoError(t, err)
	assert.Equal(t, x, Pack(states, world))
}
