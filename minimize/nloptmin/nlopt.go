//go:build !no_cgo

// Package nloptmin minimizes with the NLopt library. It needs cgo and libnlopt.
package nloptmin

import (
	"context"
	"math"
	"sync"

	"github.com/akmonengine/cio/minimize"
	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Minimizer runs NLopt's L-BFGS with native bounds. NLopt does not expose
// its major iterations: results report evaluations only, Iterations stays 0.
type Minimizer struct {
	settings minimize.Settings
	logger   *zap.Logger
}

type optimizeReturn struct {
	solution []float64
	score    float64
	err      error
}

// New creates a minimizer, a nil logger disables logging
func New(settings minimize.Settings, logger *zap.Logger) (*Minimizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.GradientStep <= 0 {
		settings.GradientStep = minimize.DefaultSettings().GradientStep
	}

	return &Minimizer{settings: settings, logger: logger}, nil
}

func (m *Minimizer) Minimize(ctx context.Context, problem minimize.Problem, x0 []float64) (*minimize.Result, error) {
	if err := problem.Check(x0); err != nil {
		return nil, err
	}

	opt, err := nlopt.NewNLopt(nlopt.LD_LBFGS, uint(len(x0)))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	var (
		mu          sync.Mutex
		evaluations int
		best        = math.Inf(1)
		bestX       = append([]float64(nil), x0...)
	)
	jump := m.settings.GradientStep

	// Gradient is, under the hood, an unsafe C structure that we are meant to mutate in place.
	nloptMinFunc := func(x, gradient []float64) float64 {
		dist := problem.Func(x)

		mu.Lock()
		evaluations++
		if dist < best {
			best = dist
			copy(bestX, x)
		}
		mu.Unlock()

		if len(gradient) == 0 {
			return dist
		}

		shifted := append([]float64(nil), x...)
		for i := range gradient {
			flip := false
			shifted[i] += jump
			if shifted[i] >= problem.Upper[i] {
				flip = true
				shifted[i] -= 2 * jump
			}

			dist2 := problem.Func(shifted)
			gradient[i] = (dist2 - dist) / jump
			if flip {
				gradient[i] *= -1
			}
			shifted[i] = x[i]
		}

		mu.Lock()
		evaluations += len(gradient)
		mu.Unlock()

		return dist
	}

	tol := m.settings.Tolerance
	err = multierr.Combine(
		opt.SetLowerBounds(problem.Lower),
		opt.SetUpperBounds(problem.Upper),
		opt.SetFtolRel(tol),
		opt.SetFtolAbs(tol),
		opt.SetMinObjective(nloptMinFunc),
	)
	if m.settings.MaxEvaluations > 0 {
		err = multierr.Append(err, opt.SetMaxEval(m.settings.MaxEvaluations))
	} else if m.settings.MaxIterations > 0 {
		err = multierr.Append(err, opt.SetMaxEval(m.settings.MaxIterations))
	}
	if m.settings.Runtime > 0 {
		err = multierr.Append(err, opt.SetMaxTime(m.settings.Runtime.Seconds()))
	}
	if err != nil {
		return nil, errors.Wrap(err, "nlopt setup")
	}

	solveChan := make(chan *optimizeReturn, 1)
	go func() {
		solution, score, nloptErr := opt.Optimize(x0)
		solveChan <- &optimizeReturn{solution, score, nloptErr}
	}()

	var ret *optimizeReturn
	select {
	case <-ctx.Done():
		err = opt.ForceStop()
		<-solveChan
		return nil, multierr.Combine(err, ctx.Err())
	case ret = <-solveChan:
	}

	mu.Lock()
	defer mu.Unlock()

	result := &minimize.Result{
		X:           ret.solution,
		F:           ret.score,
		Evaluations: evaluations,
		Status:      opt.LastStatus(),
		Converged:   ret.err == nil && converged(opt.LastStatus()),
	}
	if ret.err != nil {
		// Roundoff or generic failures still leave a usable iterate
		m.logger.Debug("nlopt stopped early", zap.Error(ret.err))
		result.X, result.F = bestX, best
	}

	return result, nil
}

func converged(status string) bool {
	switch status {
	case "SUCCESS", "STOPVAL_REACHED", "FTOL_REACHED", "XTOL_REACHED":
		return true
	default:
		return false
	}
}
