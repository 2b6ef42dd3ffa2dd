package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box in the plane
type AABB struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on both axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y()
}
