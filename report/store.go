// Package report saves optimization runs and draws their trajectories.
package report

import (
	"os"
	"time"

	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	SHAPE_CIRCLE     = "circle"
	SHAPE_HALF_PLANE = "half_plane"
)

var ErrUnknownShape = errors.New("unknown shape")

// Body is the saved description of a world body
type Body struct {
	Name   string     `json:"name"`
	Kind   string     `json:"kind"`
	Shape  string     `json:"shape"`
	Radius float64    `json:"radius,omitempty"`
	Normal mgl64.Vec2 `json:"normal"`
	Mass   float64    `json:"mass"`
	// Initial is (x, y, theta)
	Initial mgl64.Vec3 `json:"initial"`
}

type Contact struct {
	Object       int              `json:"object"`
	Counterpart  int              `json:"counterpart"`
	SurfaceAngle float64          `json:"surface_angle"`
	Initial      constraint.State `json:"initial"`
}

// Run is everything needed to inspect or replay an optimization
type Run struct {
	ID       uuid.UUID         `json:"id"`
	Created  time.Time         `json:"created"`
	Params   cio.Params        `json:"params"`
	Bodies   []Body            `json:"bodies"`
	Contacts []Contact         `json:"contacts"`
	Goals    []mgl64.Vec3      `json:"goals"`
	Phases   []cio.PhaseResult `json:"phases"`
}

// NewRun snapshots a world and the phases optimized on it
func NewRun(world *cio.World, goals []actor.Pose, params cio.Params, phases []cio.PhaseResult) *Run {
	run := &Run{
		ID:       uuid.New(),
		Created:  time.Now().UTC(),
		Params:   params,
		Bodies:   make([]Body, len(world.Bodies)),
		Contacts: make([]Contact, len(world.Contacts)),
		Goals:    make([]mgl64.Vec3, len(goals)),
		Phases:   phases,
	}

	for i, body := range world.Bodies {
		run.Bodies[i] = Body{
			Name:    body.Name,
			Kind:    body.Kind.String(),
			Mass:    body.Mass,
			Initial: body.Initial.Vec(),
		}
		switch body.Shape.Type() {
		case actor.ShapeTypeCircle:
			run.Bodies[i].Shape = SHAPE_CIRCLE
			run.Bodies[i].Radius = body.Shape.(*actor.Circle).Radius
		case actor.ShapeTypeHalfPlane:
			run.Bodies[i].Shape = SHAPE_HALF_PLANE
			run.Bodies[i].Normal = body.Shape.(*actor.HalfPlane).Normal
		}
	}
	for j, contact := range world.Contacts {
		run.Contacts[j] = Contact{
			Object:       contact.Object,
			Counterpart:  contact.Counterpart,
			SurfaceAngle: contact.SurfaceAngle,
			Initial:      contact.Initial,
		}
	}
	for i, goal := range goals {
		run.Goals[i] = goal.Vec()
	}

	return run
}

// World rebuilds the world the run was optimized on
func (r *Run) World() (*cio.World, error) {
	bodies := make([]*actor.Body, len(r.Bodies))
	for i, b := range r.Bodies {
		var shape actor.Shape
		switch b.Shape {
		case SHAPE_CIRCLE:
			shape = &actor.Circle{Radius: b.Radius}
		case SHAPE_HALF_PLANE:
			shape = &actor.HalfPlane{Normal: b.Normal}
		default:
			return nil, errors.Wrapf(ErrUnknownShape, "body %d: %q", i, b.Shape)
		}

		kind, err := parseKind(b.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "body %d", i)
		}
		bodies[i] = actor.NewBody(b.Name, kind, shape, b.Mass, actor.PoseFromVec(b.Initial))
	}

	contacts := make([]constraint.Contact, len(r.Contacts))
	for j, c := range r.Contacts {
		contacts[j] = constraint.Contact{
			Object:       c.Object,
			Counterpart:  c.Counterpart,
			SurfaceAngle: c.SurfaceAngle,
			Initial:      c.Initial,
		}
	}

	return cio.NewWorld(bodies, contacts)
}

// GoalPoses returns the goals as poses
func (r *Run) GoalPoses() []actor.Pose {
	poses := make([]actor.Pose, len(r.Goals))
	for i, goal := range r.Goals {
		poses[i] = actor.PoseFromVec(goal)
	}

	return poses
}

// Schedule returns the weights of the completed phases, in order
func (r *Run) Schedule() []cio.Weights {
	schedule := make([]cio.Weights, len(r.Phases))
	for i, phase := range r.Phases {
		schedule[i] = phase.Weights
	}

	return schedule
}

// Final returns the vector of the last phase, nil when no phase completed
func (r *Run) Final() []float64 {
	if len(r.Phases) == 0 {
		return nil
	}

	return r.Phases[len(r.Phases)-1].X
}

func parseKind(kind string) (actor.BodyKind, error) {
	for _, k := range []actor.BodyKind{actor.BodyKindObject, actor.BodyKindHand, actor.BodyKindGround} {
		if k.String() == kind {
			return k, nil
		}
	}

	return 0, errors.Errorf("unknown body kind %q", kind)
}

// Save writes the run as indented JSON. Costs must be finite to be encoded.
func Save(path string, run *Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding run")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}

// Load reads a run written by Save
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	return &run, nil
}
