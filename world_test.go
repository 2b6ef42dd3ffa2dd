package cio

import (
	"testing"

	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions
func createObject(x, y, radius float64) *actor.Body {
	return actor.NewBody("object", actor.BodyKindObject, &actor.Circle{Radius: radius}, 1.0, actor.NewPose(x, y, 0))
}

func createFinger(name string, x, y float64) *actor.Body {
	return actor.NewBody(name, actor.BodyKindHand, &actor.Circle{Radius: 1}, 0, actor.NewPose(x, y, 0))
}

func createGround() *actor.Body {
	return actor.NewBody("ground", actor.BodyKindGround, &actor.HalfPlane{Normal: mgl64.Vec2{0, 1}}, 0, actor.NewPose(0, 0, 0))
}

// createTwoFingerWorld builds the two fingers scene: an object resting on the
// ground between two fingers. Bodies are object, finger0, finger1, ground.
func createTwoFingerWorld(t testing.TB) *World {
	t.Helper()

	world := &World{}
	object := world.AddBody(createObject(5, 5, 5))
	finger0 := world.AddBody(createFinger("finger0", -5, -5))
	finger1 := world.AddBody(createFinger("finger1", 15, -5))
	ground := world.AddBody(createGround())

	world.AddContact(constraint.Contact{Object: object, Counterpart: finger0, Initial: constraint.State{Offset: mgl64.Vec2{-7, -7}, Activation: 0.5}})
	world.AddContact(constraint.Contact{Object: object, Counterpart: finger1, Initial: constraint.State{Offset: mgl64.Vec2{7, -7}, Activation: 0.5}})
	world.AddContact(constraint.Contact{Object: object, Counterpart: ground, Initial: constraint.State{Offset: mgl64.Vec2{0, -5}, Activation: 0.5}})

	require.NoError(t, world.Validate())

	return world
}

func TestWorld_AddBody(t *testing.T) {
	world := &World{}

	assert.Equal(t, 0, world.AddBody(createObject(0, 0, 1)))
	assert.Equal(t, 1, world.AddBody(createFinger("finger", 2, 0)))
	assert.Len(t, world.Bodies, 2)
}

func TestWorld_Queries(t *testing.T) {
	world := createTwoFingerWorld(t)

	assert.Equal(t, []int{0}, world.Objects())
	assert.Equal(t, []int{1, 2}, world.Hands())
	assert.Equal(t, []int{0, 1, 2}, world.ContactsOf(0))
	assert.Empty(t, world.ContactsOf(1))

	assert.False(t, world.IsGroundContact(0))
	assert.False(t, world.IsGroundContact(1))
	assert.True(t, world.IsGroundContact(2))
}

func TestNewWorld(t *testing.T) {
	object := createObject(0, 0, 1)
	finger := createFinger("finger", 2, 0)

	world, err := NewWorld([]*actor.Body{object, finger}, []constraint.Contact{{Object: 0, Counterpart: 1}})
	require.NoError(t, err)
	assert.Len(t, world.Contacts, 1)
}

func TestWorld_Validate(t *testing.T) {
	tests := []struct {
		name     string
		bodies   []*actor.Body
		contacts []constraint.Contact
	}{
		{"no object", []*actor.Body{createFinger("finger", 0, 0)}, nil},
		{"nil body", []*actor.Body{createObject(0, 0, 1), nil}, nil},
		{"only nil bodies", []*actor.Body{nil, nil}, nil},
		{"contact on a nil body", []*actor.Body{createObject(0, 0, 1), nil}, []constraint.Contact{{Object: 0, Counterpart: 1}}},
		{"no shape", []*actor.Body{actor.NewBody("object", actor.BodyKindObject, nil, 1, actor.Pose{})}, nil},
		{"massless object", []*actor.Body{actor.NewBody("object", actor.BodyKindObject, &actor.Circle{Radius: 1}, 0, actor.Pose{})}, nil},
		{"missing body", []*actor.Body{createObject(0, 0, 1)}, []constraint.Contact{{Object: 0, Counterpart: 3}}},
		{"hand as object", []*actor.Body{createObject(0, 0, 1), createFinger("finger", 2, 0)}, []constraint.Contact{{Object: 1, Counterpart: 0}}},
		{"object as counterpart", []*actor.Body{createObject(0, 0, 1), createObject(3, 0, 1)}, []constraint.Contact{{Object: 0, Counterpart: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWorld(tt.bodies, tt.contacts)
			assert.ErrorIs(t, err, ErrInvalidWorld)
		})
	}
}

func TestWorld_ValidateNilBody(t *testing.T) {
	w := &World{Bodies: []*actor.Body{createObject(0, 0, 1), nil}}

	var err error
	require.NotPanics(t, func() { err = w.Validate() })
	require.ErrorIs(t, err, ErrInvalidWorld)
	assert.Contains(t, err.Error(), "body 1 is nil")
	assert.Equal(t, []int{0}, w.Objects())
	assert.Empty(t, w.Hands())
}
