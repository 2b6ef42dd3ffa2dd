package main

import (
	"github.com/akmonengine/cio/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plot <run.json> <image>",
		Short: "Draw the final trajectory of a saved run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return plotRun(args[0], args[1], a.logger)
		},
	}
}

func plotRun(runPath, imagePath string, logger *zap.Logger) error {
	run, err := report.Load(runPath)
	if err != nil {
		return err
	}
	x := run.Final()
	if x == nil {
		return errors.Errorf("%s holds no completed phase", runPath)
	}

	world, err := run.World()
	if err != nil {
		return err
	}
	if err := report.Plot(imagePath, world, run.GoalPoses(), run.Params, run.ID.String(), x); err != nil {
		return err
	}
	logger.Info("trajectory plotted", zap.String("run", run.ID.String()), zap.String("path", imagePath))

	return nil
}
