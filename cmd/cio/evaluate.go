package main

import (
	"io"

	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/report"
	"github.com/akmonengine/cio/scenario"
	json "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	phase int
	from  string
}

func newEvaluateCmd(a *app) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Print the cost breakdown of the noisy seed, or of a saved run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluate(a.cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.phase, "phase", 0, "phase whose weights are applied")
	cmd.Flags().StringVar(&opts.from, "from", "", "evaluate the final trajectory of this run report, against its own scene, instead of the seed")

	return cmd
}

func evaluate(cfg scenario.Config, opts evaluateOptions, out io.Writer) error {
	var (
		objective *cio.Objective
		schedule  []cio.Weights
		x         []float64
	)

	if opts.from != "" {
		run, err := report.Load(opts.from)
		if err != nil {
			return err
		}
		if x = run.Final(); x == nil {
			return errors.Errorf("%s holds no completed phase", opts.from)
		}

		// The run is scored against its own world, goals and weights
		world, err := run.World()
		if err != nil {
			return err
		}
		if objective, err = cio.NewObjective(world, run.GoalPoses(), run.Params); err != nil {
			return err
		}
		schedule = run.Schedule()
	} else {
		scene, err := scenario.Build(cfg)
		if err != nil {
			return err
		}
		if objective, err = scene.Objective(); err != nil {
			return err
		}
		schedule = scene.Schedule
		x = scenario.Perturb(scenario.Seed(scene.World, scene.Goals, scene.Params), cfg.Noise.Sigma, cfg.Noise.Seed, scene.Bounds())
	}

	cost, err := objective.EvaluatePhase(x, schedule, opts.phase)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cost, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding cost")
	}
	_, err = out.Write(append(data, '\n'))

	return err
}
