package cio

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const DEFAULT_WORKERS = 1

// Params holds the discretization and the physical constants of a problem
type Params struct {
	// Number of keyframes of the trajectory
	Steps int `mapstructure:"steps" json:"steps"`
	// Fine time step (s) at which the motion between keyframes is resampled
	Dt float64 `mapstructure:"dt" json:"dt"`
	// PhaseDt is the time between two keyframes (s). Velocities, accelerations
	// and contact error rates are differences over it.
	PhaseDt float64 `mapstructure:"phase_dt" json:"phase_dt"`
	// Gravity acceleration (m/s², or N/kg), applied along -y
	Gravity float64 `mapstructure:"gravity" json:"gravity"`
	// Friction coefficient
	Mu float64 `mapstructure:"mu" json:"mu"`
	// Weight of the force and acceleration regularizations
	Lambda float64 `mapstructure:"lambda" json:"lambda"`
	// AngularMomentum enables the angular momentum balance of manipulated objects.
	// The moment of inertia is approximated by the mass, keep disabled until it is derived.
	AngularMomentum bool `mapstructure:"angular_momentum" json:"angular_momentum"`
	// Workers evaluating time steps concurrently
	Workers int `mapstructure:"workers" json:"workers"`
}

// DefaultParams returns the parameters of the two fingers scene
func DefaultParams() Params {
	return Params{
		Steps:   10,
		Dt:      0.05,
		PhaseDt: 0.5,
		Gravity: 10,
		Mu:      0.9,
		Lambda:  1e-3,
		Workers: DEFAULT_WORKERS,
	}
}

// Substeps returns the number of fine steps between two keyframes, at least one
func (p Params) Substeps() int {
	return max(1, int(math.Round(p.PhaseDt/p.Dt)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Params) Validate() error {
	var err error
	if p.Steps < 1 {
		err = multierr.Append(err, errors.Errorf("steps must be positive, got %d", p.Steps))
	}
	if !(p.Dt > 0) || !finite(p.Dt) {
		err = multierr.Append(err, errors.Errorf("dt must be positive, got %v", p.Dt))
	}
	if !(p.PhaseDt > 0) || !finite(p.PhaseDt) {
		err = multierr.Append(err, errors.Errorf("phase_dt must be positive, got %v", p.PhaseDt))
	} else if p.Dt > p.PhaseDt {
		err = multierr.Append(err, errors.Errorf("dt %v is longer than phase_dt %v", p.Dt, p.PhaseDt))
	}
	if !finite(p.Gravity) {
		err = multierr.Append(err, errors.Errorf("gravity must be finite, got %v", p.Gravity))
	}
	if !(p.Mu >= 0) || !finite(p.Mu) {
		err = multierr.Append(err, errors.Errorf("mu must be non-negative, got %v", p.Mu))
	}
	if !(p.Lambda >= 0) || !finite(p.Lambda) {
		err = multierr.Append(err, errors.Errorf("lambda must be non-negative, got %v", p.Lambda))
	}
	if err != nil {
		return errors.Wrap(ErrBadParams, err.Error())
	}

	return nil
}
