package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of collision shape
type ShapeType int

const (
	ShapeTypeCircle ShapeType = iota
	ShapeTypeHalfPlane
)

// Shape is the interface that all collision shapes must implement.
// The pose given to every query is the pose of the body owning the shape.
type Shape interface {
	Type() ShapeType
	// SignedDistance returns the distance from point to the shape surface,
	// negative when the point is inside the shape
	SignedDistance(pose Pose, point mgl64.Vec2) float64
	// ClosestPoint returns the point of the shape surface nearest to point
	ClosestPoint(pose Pose, point mgl64.Vec2) mgl64.Vec2
	// ComputeAABB calculates the axis-aligned bounding box for the shape
	// at the given pose
	ComputeAABB(pose Pose) AABB
}

// Circle represents a circular collision shape centered on the body position
type Circle struct {
	Radius float64
}

func (c *Circle) Type() ShapeType {
	return ShapeTypeCircle
}

func (c *Circle) SignedDistance(pose Pose, point mgl64.Vec2) float64 {
	return point.Sub(pose.Position).Len() - c.Radius
}

func (c *Circle) ClosestPoint(pose Pose, point mgl64.Vec2) mgl64.Vec2 {
	offset := point.Sub(pose.Position)
	length := offset.Len()
	if length < 1e-12 {
		// Any surface point is the closest one from the center, pick the one along the local x axis
		return pose.ToWorld(mgl64.Vec2{c.Radius, 0})
	}

	return pose.Position.Add(offset.Mul(c.Radius / length))
}

// ComputeAABB calculates the axis-aligned bounding box for the circle
func (c *Circle) ComputeAABB(pose Pose) AABB {
	// Circle AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec2{c.Radius, c.Radius}

	return AABB{
		Min: pose.Position.Sub(radiusVec),
		Max: pose.Position.Add(radiusVec),
	}
}

// HalfPlane represents an infinite solid bounded by a line through the body position.
// Normal is expressed in the body frame, points out of the solid and must be normalized.
type HalfPlane struct {
	Normal mgl64.Vec2
}

func (h *HalfPlane) Type() ShapeType {
	return ShapeTypeHalfPlane
}

func (h *HalfPlane) worldNormal(pose Pose) mgl64.Vec2 {
	return pose.RotateToWorld(h.Normal)
}

func (h *HalfPlane) SignedDistance(pose Pose, point mgl64.Vec2) float64 {
	return point.Sub(pose.Position).Dot(h.worldNormal(pose))
}

func (h *HalfPlane) ClosestPoint(pose Pose, point mgl64.Vec2) mgl64.Vec2 {
	normal := h.worldNormal(pose)

	return point.Sub(normal.Mul(point.Sub(pose.Position).Dot(normal)))
}

func (h *HalfPlane) ComputeAABB(pose Pose) AABB {
	const infinity = 1e10 // grande valeur pour les dimensions infinies

	min := mgl64.Vec2{-infinity, -infinity}
	max := mgl64.Vec2{infinity, infinity}

	// An axis-aligned half plane is bounded along its normal
	normal := h.worldNormal(pose)
	switch {
	case math.Abs(normal.X()) < 1e-12 && normal.Y() > 0:
		max[1] = pose.Position.Y()
	case math.Abs(normal.X()) < 1e-12 && normal.Y() < 0:
		min[1] = pose.Position.Y()
	case math.Abs(normal.Y()) < 1e-12 && normal.X() > 0:
		max[0] = pose.Position.X()
	case math.Abs(normal.Y()) < 1e-12 && normal.X() < 0:
		min[0] = pose.Position.X()
	}

	return AABB{Min: min, Max: max}
}

// Overlap returns the overlap cost between two placed shapes: zero when they do not
// intersect (tangency included), the squared penetration depth otherwise.
// The query is symmetric. Pairs without a circle never overlap.
func Overlap(a Shape, poseA Pose, b Shape, poseB Pose) float64 {
	if !a.ComputeAABB(poseA).Overlaps(b.ComputeAABB(poseB)) {
		return 0
	}

	depth := 0.0
	if circle, ok := a.(*Circle); ok {
		depth = circle.Radius - b.SignedDistance(poseB, poseA.Position)
	} else if circle, ok := b.(*Circle); ok {
		depth = circle.Radius - a.SignedDistance(poseA, poseB.Position)
	}

	if depth <= 0 {
		return 0
	}

	return depth * depth
}
