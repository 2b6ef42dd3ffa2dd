package cio

import (
	"context"
	"testing"

	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/minimize"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingMinimizer returns every starting point shifted by one and remembers it
type recordingMinimizer struct {
	starts    [][]float64
	converged bool
	failAt    int
}

func (r *recordingMinimizer) Minimize(ctx context.Context, problem minimize.Problem, x0 []float64) (*minimize.Result, error) {
	r.starts = append(r.starts, append([]float64(nil), x0...))
	if r.failAt > 0 && len(r.starts) == r.failAt {
		return nil, errors.New("minimizer failure")
	}

	x := make([]float64, len(x0))
	for i := range x0 {
		x[i] = x0[i] + 0.25*float64(len(r.starts))
	}
	x[len(x)-1] = 0.5

	status := "IterationLimit"
	if r.converged {
		status = "FunctionConvergence"
	}

	return &minimize.Result{
		X:           x,
		F:           problem.Func(x),
		Iterations:  3,
		Evaluations: 12,
		Status:      status,
		Converged:   r.converged,
	}, nil
}

var twoPhases = []Weights{
	{ContactInvariant: 0.1, Physics: 0.1, Kinematics: 0, Task: 1},
	{ContactInvariant: 10, Physics: 1, Kinematics: 0, Task: 10},
}

func createRestingOptimizer(t *testing.T, minimizer minimize.Minimizer, logger *zap.Logger) (*Optimizer, []float64, Bounds) {
	t.Helper()

	world := createRestingWorld(t)
	params := testParams(3)
	objective, err := NewObjective(world, []actor.Pose{actor.NewPose(0, 2, 0)}, params)
	require.NoError(t, err)

	return NewOptimizer(objective, minimizer, logger), restTrajectory(world, params.Steps), DefaultBounds(world, params)
}

func TestOptimizer_WarmStart(t *testing.T) {
	minimizer := &recordingMinimizer{converged: true}
	optimizer, seed, bounds := createRestingOptimizer(t, minimizer, nil)

	var observed []int
	optimizer.OnPhase = func(result PhaseResult) {
		observed = append(observed, result.Phase)
	}

	schedule := append(twoPhases, Weights{Task: 1})
	results, err := optimizer.Run(context.Background(), seed, bounds, schedule)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{0, 1, 2}, observed)

	assert.Equal(t, seed, minimizer.starts[0])
	assert.Equal(t, seed, results[0].Start)
	for k := 1; k < len(results); k++ {
		assert.Equal(t, results[k-1].X, minimizer.starts[k], "phase %d", k)
		assert.Equal(t, results[k-1].X, results[k].Start, "phase %d", k)
	}

	for phase, result := range results {
		assert.Equal(t, phase, result.Phase)
		assert.Equal(t, schedule[phase], result.Weights)
		assert.Equal(t, 3, result.Iterations)
		assert.Equal(t, 12, result.Evaluations)
		assert.True(t, result.Converged)

		expected, err := optimizer.objective.Evaluate(result.X, schedule[phase])
		require.NoError(t, err)
		assert.Equal(t, expected, result.Cost)
	}
}

func TestOptimizer_SeedIsNotModified(t *testing.T) {
	optimizer, seed, bounds := createRestingOptimizer(t, &recordingMinimizer{}, nil)
	original := append([]float64(nil), seed...)

	_, err := optimizer.Run(context.Background(), seed, bounds, twoPhases)
	require.NoError(t, err)
	assert.Equal(t, original, seed)
}

func TestOptimizer_PhaseVectorsDoNotAlias(t *testing.T) {
	optimizer, seed, bounds := createRestingOptimizer(t, &recordingMinimizer{}, nil)

	results, err := optimizer.Run(context.Background(), seed, bounds, twoPhases)
	require.NoError(t, err)
	require.Len(t, results, 2)

	finalX := append([]float64(nil), results[0].X...)
	results[1].Start[0] = 1e6
	assert.Equal(t, finalX, results[0].X)

	results[0].Start[0] = -1e6
	assert.NotEqual(t, -1e6, seed[0])
}

func TestOptimizer_NonConvergenceIsAccepted(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	optimizer, seed, bounds := createRestingOptimizer(t, &recordingMinimizer{converged: false}, zap.New(core))

	results, err := optimizer.Run(context.Background(), seed, bounds, twoPhases)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		assert.False(t, result.Converged)
		assert.Equal(t, "IterationLimit", result.Status)
	}
	assert.Equal(t, 2, logs.FilterMessageSnippet("did not converge").Len())
}

func TestOptimizer_Preconditions(t *testing.T) {
	minimizer := &recordingMinimizer{}
	optimizer, seed, bounds := createRestingOptimizer(t, minimizer, nil)

	tests := []struct {
		name     string
		seed     []float64
		bounds   Bounds
		schedule []Weights
		expected error
	}{
		{"empty schedule", seed, bounds, nil, ErrNoPhases},
		{"negative weight", seed, bounds, []Weights{{Task: 1}, {Physics: -1}}, ErrBadWeights},
		{"short seed", seed[1:], bounds, twoPhases, ErrVectorLength},
		{"short bounds", seed, Bounds{Lower: bounds.Lower[1:], Upper: bounds.Upper}, twoPhases, ErrBoundsLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := optimizer.Run(context.Background(), tt.seed, tt.bounds, tt.schedule)
			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, results)
		})
	}

	assert.Empty(t, minimizer.starts, "no phase must run when the preconditions fail")
}

func TestOptimizer_MinimizerFailure(t *testing.T) {
	optimizer, seed, bounds := createRestingOptimizer(t, &recordingMinimizer{failAt: 2}, nil)

	results, err := optimizer.Run(context.Background(), seed, bounds, twoPhases)
	assert.ErrorContains(t, err, "phase 1")
	assert.Len(t, results, 1)
}

func TestOptimizer_LBFGS(t *testing.T) {
	settings := minimize.DefaultSettings()
	settings.MaxIterations = 100
	optimizer, seed, bounds := createRestingOptimizer(t, minimize.NewLBFGS(settings, nil), nil)

	initial, err := optimizer.objective.EvaluatePhase(seed, twoPhases, 0)
	require.NoError(t, err)

	results, err := optimizer.Run(context.Background(), seed, bounds, twoPhases)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Less(t, results[0].Cost.Total, initial.Total)
	for _, result := range results {
		assert.Greater(t, result.Iterations, 0)
		for step := 0; step < 3; step++ {
			c := result.X[optimizer.objective.Layout().ActivationIndex(step, 0)]
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
}

func TestOptimizer_Cancelled(t *testing.T) {
	optimizer, seed, bounds := createRestingOptimizer(t, minimize.NewLBFGS(minimize.DefaultSettings(), nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := optimizer.Run(ctx, seed, bounds, twoPhases)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
