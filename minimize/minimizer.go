// Package minimize provides bounded local minimizers driven by a numerically
// differentiated objective.
package minimize

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrDimension = errors.New("problem dimension mismatch")
	ErrBounds    = errors.New("lower bound above upper bound")
)

// Problem is a box-constrained minimization problem.
// Infinite bounds leave a variable unconstrained on that side.
type Problem struct {
	Func  func(x []float64) float64
	Lower []float64
	Upper []float64
}

// Check validates the problem against a starting point
func (p Problem) Check(x0 []float64) error {
	if p.Func == nil {
		return errors.New("problem has no objective function")
	}
	if len(p.Lower) != len(x0) || len(p.Upper) != len(x0) {
		return errors.Wrapf(ErrDimension, "x0 has %d values, bounds have %d/%d", len(x0), len(p.Lower), len(p.Upper))
	}
	for i := range p.Lower {
		if p.Lower[i] > p.Upper[i] {
			return errors.Wrapf(ErrBounds, "variable %d: [%v, %v]", i, p.Lower[i], p.Upper[i])
		}
	}

	return nil
}

// Settings bound the work of a minimizer
type Settings struct {
	// GradientStep is the fixed forward-difference step of the gradient estimate
	GradientStep float64 `mapstructure:"gradient_step" json:"gradient_step"`
	// MaxIterations caps the major iterations, 0 disables the cap
	MaxIterations int `mapstructure:"max_iterations" json:"max_iterations"`
	// MaxEvaluations caps the objective evaluations, gradient ones included. 0 disables the cap
	MaxEvaluations int `mapstructure:"max_evaluations" json:"max_evaluations"`
	// Runtime caps the wall-clock time of a minimization, 0 disables the cap
	Runtime time.Duration `mapstructure:"runtime" json:"runtime"`
	// Tolerance on the decrease of the objective below which the minimization stops
	Tolerance float64 `mapstructure:"tolerance" json:"tolerance"`
	// Concurrent evaluates gradient components on several goroutines
	Concurrent bool `mapstructure:"concurrent" json:"concurrent"`
}

// DefaultSettings mirror the usual L-BFGS-B defaults with a coarse gradient step
func DefaultSettings() Settings {
	return Settings{
		GradientStep:  0.01,
		MaxIterations: 15000,
		Tolerance:     1e-9,
	}
}

// Result is the outcome of a minimization. X is the best point found, even
// when the minimizer did not converge. Iterations is 0 for backends that do
// not expose their major iterations.
type Result struct {
	X           []float64 `json:"x"`
	F           float64   `json:"f"`
	Iterations  int       `json:"iterations"`
	Evaluations int       `json:"evaluations"`
	Status      string    `json:"status"`
	Converged   bool      `json:"converged"`
}

// Minimizer finds a local minimum of a problem from a starting point.
// It returns the context error if ctx is cancelled before the end.
type Minimizer interface {
	Minimize(ctx context.Context, problem Problem, x0 []float64) (*Result, error)
}
