package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestBodyKind_Constants(t *testing.T) {
	assert.Equal(t, BodyKind(0), BodyKindObject)
	assert.Equal(t, "hand", BodyKindHand.String())
	assert.Equal(t, "ground", BodyKindGround.String())
	assert.Equal(t, "BodyKind(7)", BodyKind(7).String())
}

func TestNewBody(t *testing.T) {
	body := NewBody("box", BodyKindObject, &Circle{Radius: 5}, 1.0, NewPose(5, 5, 0))

	assert.Equal(t, "box", body.Name)
	assert.False(t, body.IsStatic())
	assert.Equal(t, BodyState{Pose: NewPose(5, 5, 0)}, body.RestState())

	floor := NewBody("ground", BodyKindGround, &HalfPlane{Normal: mgl64.Vec2{0, 1}}, 0, Pose{})
	assert.True(t, floor.IsStatic())
}

func TestBodyState_Kinematic(t *testing.T) {
	var k Kinematic = BodyState{
		Pose:         NewPose(1, 2, 3),
		Velocity:     mgl64.Vec3{4, 5, 6},
		Acceleration: mgl64.Vec3{7, 8, 9},
	}

	assert.Equal(t, NewPose(1, 2, 3), k.GetPose())
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, k.GetVelocity())
	assert.Equal(t, mgl64.Vec3{7, 8, 9}, k.GetAcceleration())
}

func TestPose_ToWorld(t *testing.T) {
	tests := []struct {
		name     string
		pose     Pose
		local    mgl64.Vec2
		expected mgl64.Vec2
	}{
		{"identity", NewPose(0, 0, 0), mgl64.Vec2{1, 2}, mgl64.Vec2{1, 2}},
		{"translation", NewPose(5, 5, 0), mgl64.Vec2{-7, -7}, mgl64.Vec2{-2, -2}},
		{"quarter turn", NewPose(0, 0, math.Pi/2), mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}},
		{"half turn and translation", NewPose(1, 1, math.Pi), mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pose.ToWorld(tt.local)
			assert.True(t, vec2Equal(got, tt.expected, 1e-9), "got %v, want %v", got, tt.expected)
		})
	}
}

func TestPose_VecRoundTrip(t *testing.T) {
	pose := NewPose(1.5, -2, 0.25)
	assert.Equal(t, mgl64.Vec3{1.5, -2, 0.25}, pose.Vec())
	assert.Equal(t, pose, PoseFromVec(pose.Vec()))
}
