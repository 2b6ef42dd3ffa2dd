package minimize

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LBFGS minimizes with gonum's limited-memory BFGS. Bounds are enforced by a
// change of variables, the gradient is a forward difference taken in the
// original variables with a fixed step.
type LBFGS struct {
	Settings Settings
	Logger   *zap.Logger
}

// NewLBFGS creates a minimizer, a nil logger disables logging
func NewLBFGS(settings Settings, logger *zap.Logger) *LBFGS {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LBFGS{Settings: settings, Logger: logger}
}

// evaluator counts the evaluations of a problem seen through a transform and
// remembers the last point evaluated by the method
type evaluator struct {
	problem   Problem
	transform transform
	settings  Settings

	evaluations atomic.Int64

	lastZ []float64
	lastX []float64
	lastF float64
	known bool
}

func (e *evaluator) eval(x []float64) float64 {
	e.evaluations.Add(1)

	return e.problem.Func(x)
}

func (e *evaluator) Func(z []float64) float64 {
	e.transform.toBounded(e.lastX, z)
	e.lastF = e.eval(e.lastX)
	copy(e.lastZ, z)
	e.known = true

	return e.lastF
}

func (e *evaluator) Grad(grad, z []float64) {
	x := make([]float64, len(z))
	e.transform.toBounded(x, z)

	s := &fd.Settings{
		Formula:    fd.Forward,
		Step:       e.settings.GradientStep,
		Concurrent: e.settings.Concurrent,
	}
	if e.known && floats.Equal(e.lastZ, z) {
		s.OriginKnown, s.OriginValue = true, e.lastF
	}

	fd.Gradient(grad, e.eval, x, s)
	e.transform.chain(grad, z)
}

func (l *LBFGS) Minimize(ctx context.Context, problem Problem, x0 []float64) (*Result, error) {
	if err := problem.Check(x0); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &evaluator{
		problem:   problem,
		transform: newTransform(problem.Lower, problem.Upper),
		settings:  l.Settings,
		lastZ:     make([]float64, len(x0)),
		lastX:     make([]float64, len(x0)),
	}
	if e.settings.GradientStep <= 0 {
		e.settings.GradientStep = DefaultSettings().GradientStep
	}

	z0 := make([]float64, len(x0))
	e.transform.toFree(z0, x0)

	p := optimize.Problem{
		Func: e.Func,
		Grad: e.Grad,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			if l.Settings.MaxEvaluations > 0 && int(e.evaluations.Load()) >= l.Settings.MaxEvaluations {
				return optimize.FunctionEvaluationLimit, nil
			}

			return optimize.NotTerminated, nil
		},
	}

	settings := &optimize.Settings{
		MajorIterations: l.Settings.MaxIterations,
		Runtime:         l.Settings.Runtime,
		Converger: &optimize.FunctionConverge{
			Absolute:   l.Settings.Tolerance,
			Relative:   l.Settings.Tolerance,
			Iterations: 20,
		},
		Recorder: &recorder{logger: logger},
	}

	res, err := optimize.Minimize(p, z0, settings, &optimize.LBFGS{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res == nil {
		if err == nil {
			err = errors.New("no result")
		}
		return nil, errors.Wrap(err, "lbfgs")
	}
	if err != nil {
		// A failed line search still leaves the best point found, keep it
		logger.Debug("lbfgs stopped early", zap.Error(err), zap.Stringer("status", res.Status))
	}

	x := make([]float64, len(x0))
	e.transform.toBounded(x, res.X)

	f := res.F
	if math.IsInf(f, 1) {
		f = problem.Func(x)
	}

	return &Result{
		X:           x,
		F:           f,
		Iterations:  res.MajorIterations,
		Evaluations: int(e.evaluations.Load()),
		Status:      res.Status.String(),
		Converged:   converged(res.Status),
	}, nil
}

func converged(status optimize.Status) bool {
	return status != optimize.NotTerminated && !status.Early()
}

// recorder logs the progress of the major iterations
type recorder struct {
	logger *zap.Logger
}

func (r *recorder) Init() error {
	return nil
}

func (r *recorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op != optimize.MajorIteration {
		return nil
	}
	if ce := r.logger.Check(zap.DebugLevel, "lbfgs iteration"); ce != nil {
		ce.Write(
			zap.Int("iteration", stats.MajorIterations),
			zap.Int("evaluations", stats.FuncEvaluations),
			zap.Float64("f", loc.F),
		)
	}

	return nil
}
