package cio

import (
	"context"
	"math"
	"time"

	"github.com/akmonengine/cio/minimize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PhaseResult is the outcome of one optimization phase
type PhaseResult struct {
	Phase   int     `json:"phase"`
	Weights Weights `json:"weights"`
	// Start is the vector the minimizer started from
	Start []float64 `json:"start"`
	// X is the vector returned by the minimizer, the start of the next phase
	X           []float64     `json:"x"`
	Cost        Cost          `json:"cost"`
	Iterations  int           `json:"iterations"`
	Evaluations int           `json:"evaluations"`
	Status      string        `json:"status"`
	Converged   bool          `json:"converged"`
	Runtime     time.Duration `json:"runtime"`
}

// Optimizer runs a schedule of phases, each one minimizing the objective with
// its own weights from where the previous one stopped.
type Optimizer struct {
	objective *Objective
	minimizer minimize.Minimizer
	logger    *zap.Logger

	// OnPhase, when set, is called with every phase result as soon as it is available
	OnPhase func(PhaseResult)
}

// NewOptimizer creates an optimizer, a nil logger disables logging
func NewOptimizer(objective *Objective, minimizer minimize.Minimizer, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Optimizer{
		objective: objective,
		minimizer: minimizer,
		logger:    logger,
	}
}

// Run minimizes the objective through every phase of the schedule, starting from seed.
// Every phase result is returned in order. On error, the results of the phases
// completed so far are returned with it.
func (o *Optimizer) Run(ctx context.Context, seed []float64, bounds Bounds, schedule []Weights) ([]PhaseResult, error) {
	if err := o.check(seed, bounds, schedule); err != nil {
		return nil, err
	}

	results := make([]PhaseResult, 0, len(schedule))
	start := append([]float64(nil), seed...)
	for phase, weights := range schedule {
		result, err := o.runPhase(ctx, phase, weights, start, bounds)
		if err != nil {
			return results, errors.Wrapf(err, "phase %d", phase)
		}

		results = append(results, result)
		if o.OnPhase != nil {
			o.OnPhase(result)
		}
		start = append([]float64(nil), result.X...)
	}

	return results, nil
}

func (o *Optimizer) check(seed []float64, bounds Bounds, schedule []Weights) error {
	if len(schedule) == 0 {
		return ErrNoPhases
	}
	for phase, weights := range schedule {
		if err := weights.Validate(); err != nil {
			return errors.Wrapf(err, "phase %d", phase)
		}
	}

	layout := o.objective.Layout()
	if err := layout.Check(seed); err != nil {
		return err
	}

	return bounds.Check(layout)
}

func (o *Optimizer) runPhase(ctx context.Context, phase int, weights Weights, start []float64, bounds Bounds) (PhaseResult, error) {
	logger := o.logger.With(zap.Int("phase", phase))
	logger.Info("beginning phase",
		zap.Float64("w_contact_invariant", weights.ContactInvariant),
		zap.Float64("w_physics", weights.Physics),
		zap.Float64("w_kinematics", weights.Kinematics),
		zap.Float64("w_task", weights.Task),
	)

	problem := minimize.Problem{
		Func: func(x []float64) float64 {
			cost, err := o.objective.Evaluate(x, weights)
			if err != nil {
				return math.Inf(1)
			}

			return cost.Total
		},
		Lower: bounds.Lower,
		Upper: bounds.Upper,
	}

	began := time.Now()
	res, err := o.minimizer.Minimize(ctx, problem, append([]float64(nil), start...))
	if err != nil {
		return PhaseResult{}, err
	}

	cost, err := o.objective.Evaluate(res.X, weights)
	if err != nil {
		return PhaseResult{}, errors.Wrap(err, "minimizer returned an invalid vector")
	}

	result := PhaseResult{
		Phase:       phase,
		Weights:     weights,
		Start:       start,
		X:           res.X,
		Cost:        cost,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Status:      res.Status,
		Converged:   res.Converged,
		Runtime:     time.Since(began),
	}

	if !result.Converged {
		logger.Warn("minimizer did not converge, keeping the last iterate",
			zap.String("status", result.Status),
			zap.Int("iterations", result.Iterations),
		)
	}
	logger.Info("phase done",
		zap.Float64("total", cost.Total),
		zap.Float64("contact_invariant", cost.ContactInvariant),
		zap.Float64("physics", cost.Physics),
		zap.Float64("kinematics", cost.Kinematics),
		zap.Float64("task", cost.Task),
		zap.Int("iterations", result.Iterations),
		zap.Int("evaluations", result.Evaluations),
		zap.Duration("runtime", result.Runtime),
	)

	return result, nil
}
