package scenario

import (
	"github.com/akmonengine/cio"
	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

// Scene is a configuration turned into the inputs of an optimization
type Scene struct {
	World    *cio.World
	Goals    []actor.Pose
	Params   cio.Params
	Schedule []cio.Weights
}

func (p PoseConfig) pose() actor.Pose {
	return actor.NewPose(p.X, p.Y, p.Theta)
}

func (v VecConfig) vec() mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}

// Build validates the configuration and creates its world. Bodies are added
// objects first, then hands, then the ground.
func Build(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := &cio.World{}
	indices := make(map[string]int)
	goals := make([]actor.Pose, 0, len(cfg.Objects))

	for _, object := range cfg.Objects {
		body := actor.NewBody(object.Name, actor.BodyKindObject, &actor.Circle{Radius: object.Radius}, object.Mass, object.Pose.pose())
		indices[object.Name] = world.AddBody(body)
		goals = append(goals, object.Goal.pose())
	}
	for _, hand := range cfg.Hands {
		body := actor.NewBody(hand.Name, actor.BodyKindHand, &actor.Circle{Radius: hand.Radius}, hand.Mass, hand.Pose.pose())
		indices[hand.Name] = world.AddBody(body)
	}
	if cfg.Ground.Enabled {
		ground := actor.NewBody(GROUND, actor.BodyKindGround, &actor.HalfPlane{Normal: mgl64.Vec2{0, 1}}, 0, cfg.Ground.Pose.pose())
		indices[GROUND] = world.AddBody(ground)
	}

	for _, contact := range cfg.Contacts {
		world.AddContact(constraint.Contact{
			Object:       indices[contact.Object],
			Counterpart:  indices[contact.Counterpart],
			SurfaceAngle: contact.SurfaceAngle,
			Initial: constraint.State{
				Force:      contact.Force.vec(),
				Offset:     contact.Offset.vec(),
				Activation: contact.Activation,
			},
		})
	}

	if err := world.Validate(); err != nil {
		return nil, err
	}

	return &Scene{
		World:    world,
		Goals:    goals,
		Params:   cfg.Params,
		Schedule: cfg.Phases,
	}, nil
}

// Objective creates the objective of the scene
func (s *Scene) Objective() (*cio.Objective, error) {
	return cio.NewObjective(s.World, s.Goals, s.Params)
}

// Bounds returns the default bounds of the scene
func (s *Scene) Bounds() cio.Bounds {
	return cio.DefaultBounds(s.World, s.Params)
}
