package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SurfaceNormal returns the unit normal of a contact surface whose tangent
// line has the given orientation
func SurfaceNormal(surfaceOrientation float64) mgl64.Vec2 {
	normalAngle := surfaceOrientation + math.Pi/2

	return mgl64.Vec2{math.Cos(normalAngle), math.Sin(normalAngle)}
}

// ConeHalfAngle returns the half-angle of the Coulomb friction cone
func ConeHalfAngle(mu float64) float64 {
	return math.Atan(mu)
}

// ConeAngle returns the angle between a force and a surface normal.
// The angle is 0 when either vector has zero magnitude.
func ConeAngle(force, normal mgl64.Vec2) float64 {
	den := force.Len() * normal.Len()
	if den == 0 {
		return 0
	}

	// Account for floating point issues
	cos := mgl64.Clamp(force.Dot(normal)/den, -1, 1)

	return math.Acos(cos)
}

// ConeCost penalizes a force leaving the friction cone around the normal:
// zero inside the cone, the squared angular excess outside
func ConeCost(force, normal mgl64.Vec2, mu float64) float64 {
	excess := ConeAngle(force, normal) - ConeHalfAngle(mu)
	if excess <= 0 {
		return 0
	}

	return excess * excess
}

// CoulombFriction returns the horizontal friction force applied by the ground
// on a sliding body: opposed to the horizontal velocity, with magnitude
// mu * activation * normalForce. No friction is applied to a body at rest.
func CoulombFriction(velocityX, mu, activation, normalForce float64) mgl64.Vec2 {
	return mgl64.Vec2{-sign(velocityX) * mu * activation * normalForce, 0}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
