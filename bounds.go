package cio

import (
	"math"

	"github.com/pkg/errors"
)

// Bounds are the per-variable box constraints of a decision vector
type Bounds struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// DefaultBounds bounds every contact activation to [0, 1] and leaves the
// other variables unbounded
func DefaultBounds(world *World, params Params) Bounds {
	layout := NewLayout(world, params.Steps)
	b := Bounds{
		Lower: make([]float64, layout.Len()),
		Upper: make([]float64, layout.Len()),
	}
	for i := range b.Lower {
		b.Lower[i] = math.Inf(-1)
		b.Upper[i] = math.Inf(1)
	}

	for t := 0; t < layout.Steps; t++ {
		for j := range world.Contacts {
			i := layout.ActivationIndex(t, j)
			b.Lower[i], b.Upper[i] = 0, 1
		}
	}

	return b
}

// Check rejects bounds that do not match the layout or that are empty
func (b Bounds) Check(layout Layout) error {
	if len(b.Lower) != layout.Len() || len(b.Upper) != layout.Len() {
		return errors.Wrapf(ErrBoundsLength, "got %d/%d bounds, want %d", len(b.Lower), len(b.Upper), layout.Len())
	}
	for i := range b.Lower {
		if b.Lower[i] > b.Upper[i] {
			return errors.Wrapf(ErrBoundsLength, "variable %d: lower bound %v above upper bound %v", i, b.Lower[i], b.Upper[i])
		}
	}

	return nil
}
