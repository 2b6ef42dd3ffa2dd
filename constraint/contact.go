package constraint

import (
	"github.com/akmonengine/cio/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// StateDims is the number of decision variables of a contact at one time step:
// force (2), offset (2), activation (1)
const StateDims = 5

// State is the contact data optimized at every time step
type State struct {
	// Force applied by the counterpart on the object, world frame
	Force mgl64.Vec2
	// Offset of the contact point from the object center, object frame
	Offset mgl64.Vec2
	// Activation in [0, 1], a soft contact indicator
	Activation float64
}

// Pack writes the state in dst, which must hold StateDims values
func (s State) Pack(dst []float64) {
	dst[0], dst[1] = s.Force.X(), s.Force.Y()
	dst[2], dst[3] = s.Offset.X(), s.Offset.Y()
	dst[4] = s.Activation
}

// UnpackState reads a state from src, which must hold StateDims values
func UnpackState(src []float64) State {
	return State{
		Force:      mgl64.Vec2{src[0], src[1]},
		Offset:     mgl64.Vec2{src[2], src[3]},
		Activation: src[4],
	}
}

// Contact links a manipulated object to a hand or to the ground.
// Bodies are referenced by their index in the world body list.
type Contact struct {
	Object      int
	Counterpart int
	// Orientation of the contact surface relative to the counterpart orientation
	SurfaceAngle float64
	// State before the first time step
	Initial State
}

// Point returns the contact point in world space
func (c Contact) Point(objectPose actor.Pose, state State) mgl64.Vec2 {
	return objectPose.ToWorld(state.Offset)
}

// Normal returns the unit normal of the contact surface given the counterpart pose
func (c Contact) Normal(counterpartPose actor.Pose) mgl64.Vec2 {
	return SurfaceNormal(counterpartPose.Theta + c.SurfaceAngle)
}

// Errors are the contact point mismatches of a contact at one time step
type Errors struct {
	// Object is the displacement of the contact point from the object surface
	Object mgl64.Vec2
	// Counterpart is the displacement of the contact point from the counterpart surface
	Counterpart mgl64.Vec2
	// Rates are the time derivatives of the displacements
	ObjectRate      mgl64.Vec2
	CounterpartRate mgl64.Vec2
}

// PositionErrors computes the displacement of a contact point from the surfaces of both bodies
func PositionErrors(point mgl64.Vec2, object *actor.Body, objectPose actor.Pose, counterpart *actor.Body, counterpartPose actor.Pose) (mgl64.Vec2, mgl64.Vec2) {
	onObject := object.Shape.ClosestPoint(objectPose, point)
	onCounterpart := counterpart.Shape.ClosestPoint(counterpartPose, point)

	return point.Sub(onObject), point.Sub(onCounterpart)
}

// SquaredNorm sums the squared norms of the four mismatches
func (e Errors) SquaredNorm() float64 {
	return e.Object.Dot(e.Object) +
		e.Counterpart.Dot(e.Counterpart) +
		e.ObjectRate.Dot(e.ObjectRate) +
		e.CounterpartRate.Dot(e.CounterpartRate)
}
