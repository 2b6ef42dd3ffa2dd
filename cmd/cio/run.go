package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/minimize"
	"github.com/akmonengine/cio/minimize/nloptmin"
	"github.com/akmonengine/cio/report"
	"github.com/akmonengine/cio/scenario"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	backend   string
	save      string
	plotDir   string
	threshold float64
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Optimize the scene through every phase of its schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.backend != "" {
				a.cfg.Optimizer.Backend = opts.backend
			}

			return runOptimization(cmd.Context(), a.cfg, a.logger, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.backend, "backend", "", "minimizer backend, lbfgs or nlopt (overrides optimizer.backend)")
	cmd.Flags().StringVar(&opts.save, "save", "", "write the run report to this JSON file")
	cmd.Flags().StringVar(&opts.plotDir, "plot", "", "draw the seed and every phase trajectory as PNG files in this directory")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0.5, "activation from which a contact is reported as engaged")

	return cmd
}

func newMinimizer(cfg scenario.OptimizerConfig, logger *zap.Logger) (minimize.Minimizer, error) {
	switch cfg.Backend {
	case scenario.BACKEND_NLOPT:
		m, err := nloptmin.New(cfg.Settings, logger)
		if err != nil {
			return nil, err
		}

		return m, nil
	case scenario.BACKEND_LBFGS:
		return minimize.NewLBFGS(cfg.Settings, logger), nil
	default:
		return nil, errors.Errorf("unknown optimizer backend %q", cfg.Backend)
	}
}

func runOptimization(ctx context.Context, cfg scenario.Config, logger *zap.Logger, opts runOptions, out io.Writer) error {
	scene, err := scenario.Build(cfg)
	if err != nil {
		return err
	}
	objective, err := scene.Objective()
	if err != nil {
		return err
	}
	minimizer, err := newMinimizer(cfg.Optimizer, logger)
	if err != nil {
		return err
	}

	bounds := scene.Bounds()
	seed := scenario.Perturb(scenario.Seed(scene.World, scene.Goals, scene.Params), cfg.Noise.Sigma, cfg.Noise.Seed, bounds)

	optimizer := cio.NewOptimizer(objective, minimizer, logger)
	if opts.plotDir != "" {
		if err := report.Plot(filepath.Join(opts.plotDir, "seed.png"), scene.World, scene.Goals, scene.Params, "seed", seed); err != nil {
			return err
		}
		optimizer.OnPhase = func(result cio.PhaseResult) {
			path := filepath.Join(opts.plotDir, fmt.Sprintf("phase%d.png", result.Phase))
			title := fmt.Sprintf("phase %d", result.Phase)
			if err := report.Plot(path, scene.World, scene.Goals, scene.Params, title, result.X); err != nil {
				logger.Warn("could not plot the phase", zap.Int("phase", result.Phase), zap.Error(err))
			}
		}
	}

	results, runErr := optimizer.Run(ctx, seed, bounds, scene.Schedule)
	for _, result := range results {
		fmt.Fprintf(out, "phase %d: total %.6g (contact invariant %.6g, physics %.6g, kinematics %.6g, task %.6g) after %d iterations, %s\n",
			result.Phase, result.Cost.Total, result.Cost.ContactInvariant, result.Cost.Physics, result.Cost.Kinematics, result.Cost.Task,
			result.Iterations, result.Status)
	}

	if len(results) > 0 {
		final := results[len(results)-1].X
		if err := publishContactEvents(final, scene, opts.threshold, logger); err != nil {
			return err
		}

		if opts.save != "" {
			run := report.NewRun(scene.World, scene.Goals, scene.Params, results)
			if err := report.Save(opts.save, run); err != nil {
				return err
			}
			logger.Info("run saved", zap.String("id", run.ID.String()), zap.String("path", opts.save))
		}
	}

	return runErr
}

func publishContactEvents(x []float64, scene *scenario.Scene, threshold float64, logger *zap.Logger) error {
	states, err := cio.Expand(x, scene.World, scene.Params)
	if err != nil {
		return err
	}

	events := cio.NewEvents()
	for _, eventType := range []cio.EventType{cio.CONTACT_ENGAGE, cio.CONTACT_RELEASE} {
		events.Subscribe(eventType, func(event cio.ContactEvent) {
			contact := scene.World.Contacts[event.Contact]
			logger.Info("contact "+event.Type.String(),
				zap.Int("step", event.Step),
				zap.String("object", scene.World.Bodies[contact.Object].Name),
				zap.String("counterpart", scene.World.Bodies[contact.Counterpart].Name),
				zap.Float64("activation", event.Activation),
			)
		})
	}
	events.Subscribe(cio.CONTACT_HOLD, func(event cio.ContactEvent) {
		logger.Debug("contact held", zap.Int("step", event.Step), zap.Int("contact", event.Contact))
	})
	events.Publish(cio.ContactEvents(states, threshold))

	return nil
}
