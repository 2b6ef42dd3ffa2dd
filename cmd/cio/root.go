package main

import (
	"github.com/akmonengine/cio/internal/logging"
	"github.com/akmonengine/cio/scenario"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is the state shared by the commands once the configuration is loaded
type app struct {
	configFile string
	cfg        scenario.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "cio",
		Short: "Contact-invariant trajectory optimization for planar manipulation",
		Long: `cio optimizes the trajectory of manipulated objects, hands and contacts
of a planar scene. The scene is read from a YAML file, or is the two fingers
lift when no file is given. CIO_ prefixed environment variables override
scalar settings, CIO_PARAMS_STEPS for params.steps.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := scenario.Load(a.configFile)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logging.New(cfg.Log, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "scenario file (default is the two fingers scene)")
	root.AddCommand(newRunCmd(a), newEvaluateCmd(a), newPlotCmd(a))

	return root
}
