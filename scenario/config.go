// Package scenario describes manipulation problems in configuration files and
// builds their worlds, goals, seeds and phase schedules.
package scenario

import (
	"strings"

	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/internal/logging"
	"github.com/akmonengine/cio/minimize"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	BACKEND_LBFGS = "lbfgs"
	BACKEND_NLOPT = "nlopt"

	// GROUND is the counterpart name of the contacts with the ground
	GROUND = "ground"
)

var ErrInvalidConfig = errors.New("invalid scenario configuration")

// Config is the full description of a run
type Config struct {
	Params    cio.Params      `mapstructure:"params" json:"params"`
	Objects   []BodyConfig    `mapstructure:"objects" json:"objects"`
	Hands     []BodyConfig    `mapstructure:"hands" json:"hands"`
	Ground    GroundConfig    `mapstructure:"ground" json:"ground"`
	Contacts  []ContactConfig `mapstructure:"contacts" json:"contacts"`
	Phases    []cio.Weights   `mapstructure:"phases" json:"phases"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" json:"optimizer"`
	Noise     NoiseConfig     `mapstructure:"noise" json:"noise"`
	Log       logging.Config  `mapstructure:"log" json:"log"`
}

type PoseConfig struct {
	X     float64 `mapstructure:"x" json:"x"`
	Y     float64 `mapstructure:"y" json:"y"`
	Theta float64 `mapstructure:"theta" json:"theta"`
}

type VecConfig struct {
	X float64 `mapstructure:"x" json:"x"`
	Y float64 `mapstructure:"y" json:"y"`
}

// BodyConfig describes a circular object or hand
type BodyConfig struct {
	Name   string     `mapstructure:"name" json:"name"`
	Radius float64    `mapstructure:"radius" json:"radius"`
	Mass   float64    `mapstructure:"mass" json:"mass"`
	Pose   PoseConfig `mapstructure:"pose" json:"pose"`
	// Goal is the target pose of an object at the last step, ignored for hands
	Goal PoseConfig `mapstructure:"goal" json:"goal"`
}

// GroundConfig describes the ground line, its solid side is below the line
type GroundConfig struct {
	Enabled bool       `mapstructure:"enabled" json:"enabled"`
	Pose    PoseConfig `mapstructure:"pose" json:"pose"`
}

// ContactConfig links an object to a hand, or to the ground with the GROUND counterpart
type ContactConfig struct {
	Object       string    `mapstructure:"object" json:"object"`
	Counterpart  string    `mapstructure:"counterpart" json:"counterpart"`
	SurfaceAngle float64   `mapstructure:"surface_angle" json:"surface_angle"`
	Force        VecConfig `mapstructure:"force" json:"force"`
	Offset       VecConfig `mapstructure:"offset" json:"offset"`
	Activation   float64   `mapstructure:"activation" json:"activation"`
}

type OptimizerConfig struct {
	Backend           string `mapstructure:"backend" json:"backend"`
	minimize.Settings `mapstructure:",squash"`
}

// NoiseConfig perturbs the seed trajectory before the first phase
type NoiseConfig struct {
	Sigma float64 `mapstructure:"sigma" json:"sigma"`
	Seed  uint64  `mapstructure:"seed" json:"seed"`
}

// Default returns the two fingers scene: a fingertip on each side of a disc
// resting on the ground, lifting it 15 units up.
func Default() Config {
	return Config{
		Params: cio.DefaultParams(),
		Objects: []BodyConfig{
			{Name: "object", Radius: 5, Mass: 1, Pose: PoseConfig{X: 5, Y: 5}, Goal: PoseConfig{X: 5, Y: 20}},
		},
		Hands: []BodyConfig{
			{Name: "finger0", Radius: 1, Pose: PoseConfig{X: -5, Y: -5}},
			{Name: "finger1", Radius: 1, Pose: PoseConfig{X: 15, Y: -5}},
		},
		Ground: GroundConfig{Enabled: true},
		Contacts: []ContactConfig{
			{Object: "object", Counterpart: "finger0", Offset: VecConfig{X: -7, Y: -7}, Activation: 0.5},
			{Object: "object", Counterpart: "finger1", Offset: VecConfig{X: 7, Y: -7}, Activation: 0.5},
			{Object: "object", Counterpart: GROUND, Offset: VecConfig{X: 0, Y: -5}, Activation: 0.5},
		},
		Phases: []cio.Weights{
			{ContactInvariant: 0.1, Physics: 0.1, Kinematics: 0, Task: 1},
			{ContactInvariant: 10, Physics: 1, Kinematics: 0, Task: 10},
		},
		Optimizer: OptimizerConfig{Backend: BACKEND_LBFGS, Settings: minimize.DefaultSettings()},
		Noise:     NoiseConfig{Sigma: 0.1, Seed: 1},
		Log:       logging.DefaultConfig(),
	}
}

// Load reads a configuration file over the defaults. Environment variables
// prefixed with CIO_ override scalar settings, CIO_PARAMS_STEPS for params.steps.
// An empty path loads the defaults and the environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("cio")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading %s", path)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates a configuration
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SetDefaults registers the default scene in v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("params.steps", d.Params.Steps)
	v.SetDefault("params.dt", d.Params.Dt)
	v.SetDefault("params.phase_dt", d.Params.PhaseDt)
	v.SetDefault("params.gravity", d.Params.Gravity)
	v.SetDefault("params.mu", d.Params.Mu)
	v.SetDefault("params.lambda", d.Params.Lambda)
	v.SetDefault("params.angular_momentum", d.Params.AngularMomentum)
	v.SetDefault("params.workers", d.Params.Workers)

	v.SetDefault("objects", toMaps(d.Objects, bodyMap))
	v.SetDefault("hands", toMaps(d.Hands, bodyMap))
	v.SetDefault("ground.enabled", d.Ground.Enabled)
	v.SetDefault("ground.pose", poseMap(d.Ground.Pose))
	v.SetDefault("contacts", toMaps(d.Contacts, contactMap))
	v.SetDefault("phases", toMaps(d.Phases, weightsMap))

	v.SetDefault("optimizer.backend", d.Optimizer.Backend)
	v.SetDefault("optimizer.gradient_step", d.Optimizer.GradientStep)
	v.SetDefault("optimizer.max_iterations", d.Optimizer.MaxIterations)
	v.SetDefault("optimizer.max_evaluations", d.Optimizer.MaxEvaluations)
	v.SetDefault("optimizer.runtime", d.Optimizer.Runtime)
	v.SetDefault("optimizer.tolerance", d.Optimizer.Tolerance)
	v.SetDefault("optimizer.concurrent", d.Optimizer.Concurrent)

	v.SetDefault("noise.sigma", d.Noise.Sigma)
	v.SetDefault("noise.seed", d.Noise.Seed)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)
}

func toMaps[T any](items []T, fn func(T) map[string]any) []map[string]any {
	maps := make([]map[string]any, len(items))
	for i, item := range items {
		maps[i] = fn(item)
	}

	return maps
}

func poseMap(p PoseConfig) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y, "theta": p.Theta}
}

func vecMap(v VecConfig) map[string]any {
	return map[string]any{"x": v.X, "y": v.Y}
}

func bodyMap(b BodyConfig) map[string]any {
	return map[string]any{
		"name":   b.Name,
		"radius": b.Radius,
		"mass":   b.Mass,
		"pose":   poseMap(b.Pose),
		"goal":   poseMap(b.Goal),
	}
}

func contactMap(c ContactConfig) map[string]any {
	return map[string]any{
		"object":        c.Object,
		"counterpart":   c.Counterpart,
		"surface_angle": c.SurfaceAngle,
		"force":         vecMap(c.Force),
		"offset":        vecMap(c.Offset),
		"activation":    c.Activation,
	}
}

func weightsMap(w cio.Weights) map[string]any {
	return map[string]any{
		"contact_invariant": w.ContactInvariant,
		"physics":           w.Physics,
		"kinematics":        w.Kinematics,
		"task":              w.Task,
	}
}

// Validate reports every problem of the configuration
func (c Config) Validate() error {
	err := c.Params.Validate()

	names := map[string]bool{GROUND: true}
	for _, body := range append(append([]BodyConfig(nil), c.Objects...), c.Hands...) {
		switch {
		case body.Name == "":
			err = multierr.Append(err, errors.New("every body needs a name"))
		case names[body.Name]:
			err = multierr.Append(err, errors.Errorf("body name %q is used twice", body.Name))
		}
		names[body.Name] = true

		if body.Radius <= 0 {
			err = multierr.Append(err, errors.Errorf("body %q: radius must be positive", body.Name))
		}
	}
	if len(c.Objects) == 0 {
		err = multierr.Append(err, errors.New("at least one object is required"))
	}
	for _, object := range c.Objects {
		if object.Mass <= 0 {
			err = multierr.Append(err, errors.Errorf("object %q: mass must be positive", object.Name))
		}
	}

	for i, contact := range c.Contacts {
		if !c.isObject(contact.Object) {
			err = multierr.Append(err, errors.Errorf("contact %d: %q is not an object", i, contact.Object))
		}
		switch {
		case contact.Counterpart == GROUND && !c.Ground.Enabled:
			err = multierr.Append(err, errors.Errorf("contact %d: the ground is disabled", i))
		case contact.Counterpart != GROUND && !c.isHand(contact.Counterpart):
			err = multierr.Append(err, errors.Errorf("contact %d: %q is not a hand", i, contact.Counterpart))
		}
		if contact.Activation < 0 || contact.Activation > 1 {
			err = multierr.Append(err, errors.Errorf("contact %d: activation %v outside [0, 1]", i, contact.Activation))
		}
	}

	if len(c.Phases) == 0 {
		err = multierr.Append(err, cio.ErrNoPhases)
	}
	for i, weights := range c.Phases {
		err = multierr.Append(err, errors.Wrapf(weights.Validate(), "phase %d", i))
	}

	switch c.Optimizer.Backend {
	case BACKEND_LBFGS, BACKEND_NLOPT:
	default:
		err = multierr.Append(err, errors.Errorf("unknown optimizer backend %q", c.Optimizer.Backend))
	}
	if c.Optimizer.GradientStep <= 0 {
		err = multierr.Append(err, errors.New("optimizer.gradient_step must be positive"))
	}
	if c.Noise.Sigma < 0 {
		err = multierr.Append(err, errors.New("noise.sigma must be non-negative"))
	}

	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return nil
}

func (c Config) isObject(name string) bool {
	for _, object := range c.Objects {
		if object.Name == name {
			return true
		}
	}

	return false
}

func (c Config) isHand(name string) bool {
	for _, hand := range c.Hands {
		if hand.Name == name {
			return true
		}
	}

	return false
}
