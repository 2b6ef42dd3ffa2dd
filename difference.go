package cio

// vector is satisfied by the mgl64 vector types
type vector[V any] interface {
	Sub(V) V
	Mul(float64) V
}

// Differentiate returns the backward finite differences of a series sampled every dt.
// before is the sample preceding the first one, so the result has the length of samples.
// Every series of a trajectory is extended backward by the initial configuration
// of the world at rest, which is the single boundary convention of the expansion.
func Differentiate[V vector[V]](samples []V, before V, dt float64) []V {
	rates := make([]V, len(samples))
	previous := before
	for i, sample := range samples {
		rates[i] = sample.Sub(previous).Mul(1.0 / dt)
		previous = sample
	}

	return rates
}
