package cio

import (
	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// World is the static topology of a manipulation problem. It is read-only
// while optimizing: only the decision vector varies.
type World struct {
	// List of all bodies in the world, referenced by index
	Bodies []*actor.Body
	// Ordered contacts; the order is the layout order of the decision vector
	Contacts []constraint.Contact
}

// NewWorld creates a world and checks its topology
func NewWorld(bodies []*actor.Body, contacts []constraint.Contact) (*World, error) {
	w := &World{Bodies: bodies, Contacts: contacts}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	return w, nil
}

// AddBody adds a body to the world and returns its index
func (w *World) AddBody(body *actor.Body) int {
	w.Bodies = append(w.Bodies, body)

	return len(w.Bodies) - 1
}

// AddContact appends a contact between an object and a hand or the ground
func (w *World) AddContact(contact constraint.Contact) {
	w.Contacts = append(w.Contacts, contact)
}

// Objects returns the indices of the manipulated objects
func (w *World) Objects() []int {
	return w.indicesOf(actor.BodyKindObject)
}

// Hands returns the indices of the end-effectors
func (w *World) Hands() []int {
	return w.indicesOf(actor.BodyKindHand)
}

func (w *World) indicesOf(kind actor.BodyKind) []int {
	var indices []int
	for i, body := range w.Bodies {
		if body != nil && body.Kind == kind {
			indices = append(indices, i)
		}
	}

	return indices
}

// ContactsOf returns the indices of the contacts acting on an object
func (w *World) ContactsOf(object int) []int {
	var indices []int
	for j, contact := range w.Contacts {
		if contact.Object == object {
			indices = append(indices, j)
		}
	}

	return indices
}

// IsGroundContact reports whether the contact counterpart is a static body
func (w *World) IsGroundContact(contact int) bool {
	return w.Bodies[w.Contacts[contact].Counterpart].IsStatic()
}

// Validate checks the topology and reports every problem found
func (w *World) Validate() error {
	var err error

	for i, body := range w.Bodies {
		switch {
		case body == nil:
			err = multierr.Append(err, errors.Errorf("body %d is nil", i))
			continue
		case body.Shape == nil:
			err = multierr.Append(err, errors.Errorf("body %d (%s) has no shape", i, body.Name))
		}
		if body.Kind == actor.BodyKindObject && body.Mass <= 0 {
			err = multierr.Append(err, errors.Errorf("object %d (%s) must have a positive mass", i, body.Name))
		}
	}

	if len(w.Objects()) == 0 {
		err = multierr.Append(err, errors.New("no manipulated object"))
	}

	for j, contact := range w.Contacts {
		if !w.validIndex(contact.Object) || !w.validIndex(contact.Counterpart) {
			err = multierr.Append(err, errors.Errorf("contact %d references a missing body", j))
			continue
		}
		if w.Bodies[contact.Object].Kind != actor.BodyKindObject {
			err = multierr.Append(err, errors.Errorf("contact %d: body %d is not a manipulated object", j, contact.Object))
		}
		if w.Bodies[contact.Counterpart].Kind == actor.BodyKindObject {
			err = multierr.Append(err, errors.Errorf("contact %d: counterpart %d must be a hand or the ground", j, contact.Counterpart))
		}
	}

	if err != nil {
		return errors.Wrap(ErrInvalidWorld, err.Error())
	}

	return nil
}

func (w *World) validIndex(i int) bool {
	return i >= 0 && i < len(w.Bodies) && w.Bodies[i] != nil
}
