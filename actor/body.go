package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyKind represents the role of a body in the world
type BodyKind int

const (
	// BodyKindObject bodies are manipulated: their poses are optimized and
	// their motion must be explained by contact forces and gravity
	BodyKindObject BodyKind = iota

	// BodyKindHand bodies are manipulator end-effectors: their poses are
	// optimized freely, they apply contact forces
	BodyKindHand

	// BodyKindGround bodies are immovable and keep their initial pose
	BodyKindGround
)

func (k BodyKind) String() string {
	switch k {
	case BodyKindObject:
		return "object"
	case BodyKindHand:
		return "hand"
	case BodyKindGround:
		return "ground"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// Body represents a rigid body of the world topology
type Body struct {
	Name string
	Kind BodyKind
	// Collision shape
	Shape Shape
	// Mass in kg, only meaningful for objects
	Mass float64
	// Pose before the first time step; the body starts at rest there
	Initial Pose
}

// NewBody creates a new body with the given properties
func NewBody(name string, kind BodyKind, shape Shape, mass float64, initial Pose) *Body {
	return &Body{
		Name:    name,
		Kind:    kind,
		Shape:   shape,
		Mass:    mass,
		Initial: initial,
	}
}

// IsStatic reports whether the body pose is fixed for the whole trajectory
func (b *Body) IsStatic() bool {
	return b.Kind == BodyKindGround
}

// BodyState is the resolved motion of a body at one time step
type BodyState struct {
	Pose Pose
	// Velocity and Acceleration are (x, y, angular)
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3
}

// Kinematic exposes the motion of a body at one time step, independently of its kind
type Kinematic interface {
	GetPose() Pose
	GetVelocity() mgl64.Vec3
	GetAcceleration() mgl64.Vec3
}

func (s BodyState) GetPose() Pose {
	return s.Pose
}

func (s BodyState) GetVelocity() mgl64.Vec3 {
	return s.Velocity
}

func (s BodyState) GetAcceleration() mgl64.Vec3 {
	return s.Acceleration
}

// RestState returns the state of the body at its initial pose with no motion
func (b *Body) RestState() BodyState {
	return BodyState{Pose: b.Initial}
}
