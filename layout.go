package cio

import (
	"github.com/akmonengine/cio/constraint"
	"github.com/pkg/errors"
)

// PoseDims is the number of decision variables of a movable body at one time step: x, y, theta
const PoseDims = 3

// Layout maps the flattened decision vector to bodies and contacts.
// Every time step holds the poses of the movable bodies, in world order,
// followed by the states of the contacts, in world order.
type Layout struct {
	Steps    int
	slots    []int // body index -> movable slot, -1 for static bodies
	movable  int
	contacts int
}

// NewLayout computes the layout of a world discretized over steps
func NewLayout(world *World, steps int) Layout {
	l := Layout{
		Steps:    steps,
		slots:    make([]int, len(world.Bodies)),
		contacts: len(world.Contacts),
	}
	for i, body := range world.Bodies {
		if body.IsStatic() {
			l.slots[i] = -1
			continue
		}
		l.slots[i] = l.movable
		l.movable++
	}

	return l
}

// Stride is the number of decision variables of one time step
func (l Layout) Stride() int {
	return l.movable*PoseDims + l.contacts*constraint.StateDims
}

// Len is the length of the decision vector
func (l Layout) Len() int {
	return l.Steps * l.Stride()
}

// PoseOffset returns the index of the pose of a body at a step, or -1 for a static body
func (l Layout) PoseOffset(step, body int) int {
	slot := l.slots[body]
	if slot < 0 {
		return -1
	}

	return step*l.Stride() + slot*PoseDims
}

// ContactOffset returns the index of the state of a contact at a step
func (l Layout) ContactOffset(step, contact int) int {
	return step*l.Stride() + l.movable*PoseDims + contact*constraint.StateDims
}

// ActivationIndex returns the index of the activation of a contact at a step
func (l Layout) ActivationIndex(step, contact int) int {
	return l.ContactOffset(step, contact) + constraint.StateDims - 1
}

// Check rejects a vector that does not match the layout
func (l Layout) Check(x []float64) error {
	if len(x) != l.Len() {
		return errors.Wrapf(ErrVectorLength, "got %d values, want %d", len(x), l.Len())
	}

	return nil
}
