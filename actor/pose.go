package actor

import "github.com/go-gl/mathgl/mgl64"

// Pose represents a position and an orientation in the plane
type Pose struct {
	Position mgl64.Vec2
	Theta    float64
}

// NewPose creates a pose from its coordinates
func NewPose(x, y, theta float64) Pose {
	return Pose{
		Position: mgl64.Vec2{x, y},
		Theta:    theta,
	}
}

// PoseFromVec unpacks a (x, y, theta) vector
func PoseFromVec(v mgl64.Vec3) Pose {
	return Pose{Position: mgl64.Vec2{v.X(), v.Y()}, Theta: v.Z()}
}

// Vec packs the pose as (x, y, theta), the layout used for velocities and accelerations
func (p Pose) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.Position.X(), p.Position.Y(), p.Theta}
}

// Rotation returns the 2x2 rotation matrix of the pose
func (p Pose) Rotation() mgl64.Mat2 {
	return mgl64.Rotate2D(p.Theta)
}

// ToWorld transforms a point expressed in the pose frame to world space
func (p Pose) ToWorld(local mgl64.Vec2) mgl64.Vec2 {
	return p.Position.Add(p.Rotation().Mul2x1(local))
}

// RotateToWorld rotates a direction expressed in the pose frame, without translation
func (p Pose) RotateToWorld(local mgl64.Vec2) mgl64.Vec2 {
	return p.Rotation().Mul2x1(local)
}
