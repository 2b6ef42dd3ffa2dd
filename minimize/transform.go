package minimize

import (
	"math"
)

// interior is the relative margin keeping a starting point off its bounds,
// where the transform derivative vanishes
const interior = 1e-4

type boundKind int

const (
	boundNone boundKind = iota
	boundLower
	boundUpper
	boundBoth
)

// transform maps an unconstrained internal vector z onto the box [lower, upper].
// Two-sided variables follow a sine, one-sided ones a hyperbola, so that an
// unconstrained method never leaves the box.
type transform struct {
	lower []float64
	upper []float64
	kinds []boundKind
}

func newTransform(lower, upper []float64) transform {
	t := transform{lower: lower, upper: upper, kinds: make([]boundKind, len(lower))}
	for i := range lower {
		lo, hi := !math.IsInf(lower[i], -1), !math.IsInf(upper[i], 1)
		switch {
		case lo && hi:
			t.kinds[i] = boundBoth
		case lo:
			t.kinds[i] = boundLower
		case hi:
			t.kinds[i] = boundUpper
		}
	}

	return t
}

// toBounded writes in dst the external point of z
func (t transform) toBounded(dst, z []float64) {
	for i, v := range z {
		lo, hi := t.lower[i], t.upper[i]
		switch t.kinds[i] {
		case boundBoth:
			dst[i] = lo + (hi-lo)*(math.Sin(v)+1)/2
		case boundLower:
			dst[i] = lo - 1 + math.Sqrt(v*v+1)
		case boundUpper:
			dst[i] = hi + 1 - math.Sqrt(v*v+1)
		default:
			dst[i] = v
		}
	}
}

// toFree writes in dst the internal point of x, which is first moved inside its bounds
func (t transform) toFree(dst, x []float64) {
	for i, v := range x {
		lo, hi := t.lower[i], t.upper[i]
		switch t.kinds[i] {
		case boundBoth:
			if hi == lo {
				dst[i] = 0
				continue
			}
			margin := interior * (hi - lo)
			v = math.Max(lo+margin, math.Min(hi-margin, v))
			dst[i] = math.Asin(2*(v-lo)/(hi-lo) - 1)
		case boundLower:
			v = math.Max(lo+interior, v)
			d := v - lo + 1
			dst[i] = math.Sqrt(d*d - 1)
		case boundUpper:
			v = math.Min(hi-interior, v)
			d := hi - v + 1
			dst[i] = math.Sqrt(d*d - 1)
		default:
			dst[i] = v
		}
	}
}

// chain multiplies in place a gradient in external space by dx/dz
func (t transform) chain(grad, z []float64) {
	for i, v := range z {
		lo, hi := t.lower[i], t.upper[i]
		switch t.kinds[i] {
		case boundBoth:
			grad[i] *= (hi - lo) * math.Cos(v) / 2
		case boundLower:
			grad[i] *= v / math.Sqrt(v*v+1)
		case boundUpper:
			grad[i] *= -v / math.Sqrt(v*v+1)
		}
	}
}
