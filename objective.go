package cio

import (
	"math"

	"github.com/akmonengine/cio/actor"
	"github.com/akmonengine/cio/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Weights scale the four cost terms during one optimization phase
type Weights struct {
	ContactInvariant float64 `mapstructure:"contact_invariant" json:"contact_invariant"`
	Physics          float64 `mapstructure:"physics" json:"physics"`
	Kinematics       float64 `mapstructure:"kinematics" json:"kinematics"`
	Task             float64 `mapstructure:"task" json:"task"`
}

// Validate rejects negative or non-finite weights
func (w Weights) Validate() error {
	for _, v := range []float64{w.ContactInvariant, w.Physics, w.Kinematics, w.Task} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrBadWeights, "%+v", w)
		}
	}

	return nil
}

// PhysicsTerms details the unweighted physics cost
type PhysicsTerms struct {
	ForceRegularization float64 `json:"force_regularization"`
	Newton              float64 `json:"newton"`
	Cone                float64 `json:"cone"`
	AngularMomentum     float64 `json:"angular_momentum"`
}

func (p PhysicsTerms) Sum() float64 {
	return p.ForceRegularization + p.Newton + p.Cone + p.AngularMomentum
}

func (p PhysicsTerms) add(o PhysicsTerms) PhysicsTerms {
	return PhysicsTerms{
		ForceRegularization: p.ForceRegularization + o.ForceRegularization,
		Newton:              p.Newton + o.Newton,
		Cone:                p.Cone + o.Cone,
		AngularMomentum:     p.AngularMomentum + o.AngularMomentum,
	}
}

// Terms are the unweighted costs summed over the trajectory
type Terms struct {
	ContactInvariant float64      `json:"contact_invariant"`
	Physics          PhysicsTerms `json:"physics"`
	Kinematics       float64      `json:"kinematics"`
	// Goal is the squared distance of the objects to their goals at the last step
	Goal float64 `json:"goal"`
	// AccelerationRegularization penalizes the accelerations of objects and hands
	AccelerationRegularization float64 `json:"acceleration_regularization"`
}

// Task is the unweighted task cost
func (t Terms) Task() float64 {
	return t.Goal + t.AccelerationRegularization
}

func (t Terms) add(o Terms) Terms {
	return Terms{
		ContactInvariant:           t.ContactInvariant + o.ContactInvariant,
		Physics:                    t.Physics.add(o.Physics),
		Kinematics:                 t.Kinematics + o.Kinematics,
		Goal:                       t.Goal + o.Goal,
		AccelerationRegularization: t.AccelerationRegularization + o.AccelerationRegularization,
	}
}

// Weigh scales the terms into a cost
func (t Terms) Weigh(w Weights) Cost {
	c := Cost{
		ContactInvariant: w.ContactInvariant * t.ContactInvariant,
		Physics:          w.Physics * t.Physics.Sum(),
		Kinematics:       w.Kinematics * t.Kinematics,
		Task:             w.Task * t.Task(),
		Terms:            t,
	}
	c.Total = c.ContactInvariant + c.Physics + c.Kinematics + c.Task

	return c
}

// Cost is the result of one evaluation of the objective: the weighted total,
// the weighted terms it sums, and the unweighted details.
type Cost struct {
	Total            float64 `json:"total"`
	ContactInvariant float64 `json:"contact_invariant"`
	Physics          float64 `json:"physics"`
	Kinematics       float64 `json:"kinematics"`
	Task             float64 `json:"task"`
	Terms            Terms   `json:"terms"`
}

// Objective evaluates the cost of decision vectors for a world and its goals.
// It holds no mutable state: concurrent evaluations are safe.
type Objective struct {
	world  *World
	goals  []actor.Pose
	params Params
	layout Layout

	objects []int
	hands   []int
}

// NewObjective checks the world, the goals and the parameters.
// goals holds one target pose per manipulated object, in world order.
func NewObjective(world *World, goals []actor.Pose, params Params) (*Objective, error) {
	if err := world.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	objects := world.Objects()
	if len(goals) != len(objects) {
		return nil, errors.Wrapf(ErrGoalCount, "got %d goals for %d objects", len(goals), len(objects))
	}

	return &Objective{
		world:   world,
		goals:   goals,
		params:  params,
		layout:  NewLayout(world, params.Steps),
		objects: objects,
		hands:   world.Hands(),
	}, nil
}

func (o *Objective) Layout() Layout {
	return o.layout
}

func (o *Objective) World() *World {
	return o.world
}

func (o *Objective) Goals() []actor.Pose {
	return o.goals
}

func (o *Objective) Params() Params {
	return o.params
}

// Evaluate expands x and returns its cost under the given weights
func (o *Objective) Evaluate(x []float64, weights Weights) (Cost, error) {
	states, err := Expand(x, o.world, o.params)
	if err != nil {
		return Cost{}, err
	}

	return o.Terms(states).Weigh(weights), nil
}

// EvaluatePhase evaluates x with the weights of a phase of the schedule
func (o *Objective) EvaluatePhase(x []float64, schedule []Weights, phase int) (Cost, error) {
	if len(schedule) == 0 {
		return Cost{}, ErrNoPhases
	}
	if phase < 0 || phase >= len(schedule) {
		return Cost{}, errors.Wrapf(ErrPhaseIndex, "phase %d of %d", phase, len(schedule))
	}

	return o.Evaluate(x, schedule[phase])
}

// Terms sums the unweighted costs of every step of an expanded trajectory
func (o *Objective) Terms(states []WorldState) Terms {
	perStep := make([]Terms, len(states))
	task(o.params.Workers, len(states), func(t int) {
		perStep[t] = o.StepTerms(states[t])
	})

	var total Terms
	for _, terms := range perStep {
		total = total.add(terms)
	}

	return total
}

// StepTerms returns the unweighted costs of a single step
func (o *Objective) StepTerms(state WorldState) Terms {
	return Terms{
		ContactInvariant:           o.ContactInvariant(state),
		Physics:                    o.Physics(state),
		Kinematics:                 o.Kinematics(state),
		Goal:                       o.Goal(state),
		AccelerationRegularization: o.AccelerationRegularization(state),
	}
}

// ContactInvariant sums the contact point mismatches weighted by the contact activations
func (o *Objective) ContactInvariant(state WorldState) float64 {
	cost := 0.0
	for _, contact := range state.Contacts {
		cost += contact.Activation * contact.Errors.SquaredNorm()
	}

	return cost
}

// Physics returns the force regularization, the Newton residual of every object
// and the friction cone violations of every contact
func (o *Objective) Physics(state WorldState) PhysicsTerms {
	var terms PhysicsTerms

	for _, contact := range state.Contacts {
		terms.ForceRegularization += contact.Force.Dot(contact.Force)
		terms.Cone += contact.Activation * constraint.ConeCost(contact.Force, contact.Normal, o.params.Mu)
	}
	terms.ForceRegularization *= o.params.Lambda

	for _, object := range o.objects {
		residual := o.NewtonResidual(state, object)
		terms.Newton += residual.Dot(residual)

		if o.params.AngularMomentum {
			r := o.AngularResidual(state, object)
			terms.AngularMomentum += r * r
		}
	}

	return terms
}

// NewtonResidual returns the difference between the forces applied on an object
// and its change of linear momentum
func (o *Objective) NewtonResidual(state WorldState, object int) mgl64.Vec2 {
	body := o.world.Bodies[object]
	var motion actor.Kinematic = state.Bodies[object]
	acceleration := motion.GetAcceleration()

	total := mgl64.Vec2{0, -body.Mass * o.params.Gravity}
	for _, j := range o.world.ContactsOf(object) {
		contact := state.Contacts[j]
		total = total.Add(contact.Force.Mul(contact.Activation))

		if o.world.IsGroundContact(j) {
			friction := constraint.CoulombFriction(motion.GetVelocity().X(), o.params.Mu, contact.Activation, contact.Force.Y())
			total = total.Add(friction)
		}
	}

	momentum := mgl64.Vec2{acceleration.X(), acceleration.Y()}.Mul(body.Mass)

	return total.Sub(momentum)
}

// AngularResidual returns the difference between the moments applied on an object
// and its change of angular momentum. The moment of inertia is approximated by the mass.
func (o *Objective) AngularResidual(state WorldState, object int) float64 {
	body := o.world.Bodies[object]
	var motion actor.Kinematic = state.Bodies[object]
	pose := motion.GetPose()

	moment := 0.0
	for _, j := range o.world.ContactsOf(object) {
		contact := state.Contacts[j]
		arm := pose.RotateToWorld(contact.Offset)
		force := contact.Force.Mul(contact.Activation)
		moment += arm.X()*force.Y() - arm.Y()*force.X()
	}

	return moment - body.Mass*motion.GetAcceleration().Z()
}

// Kinematics sums the overlap costs of every pair of bodies
func (o *Objective) Kinematics(state WorldState) float64 {
	return NarrowPhase(o.world, state, BroadPhase(o.world, state))
}

// Goal returns the squared distance of every object pose to its goal at the
// last step, and zero at any other step
func (o *Objective) Goal(state WorldState) float64 {
	if state.Step != o.params.Steps-1 {
		return 0
	}

	cost := 0.0
	for k, object := range o.objects {
		d := state.Bodies[object].GetPose().Vec().Sub(o.goals[k].Vec())
		cost += d.Dot(d)
	}

	return cost
}

// AccelerationRegularization penalizes the accelerations of objects and hands
func (o *Objective) AccelerationRegularization(state WorldState) float64 {
	cost := 0.0
	for _, body := range o.movable(state) {
		a := body.GetAcceleration()
		cost += a.Dot(a)
	}

	return o.params.Lambda * cost
}

func (o *Objective) movable(state WorldState) []actor.Kinematic {
	bodies := make([]actor.Kinematic, 0, len(o.objects)+len(o.hands))
	for _, i := range o.objects {
		bodies = append(bodies, state.Bodies[i])
	}
	for _, i := range o.hands {
		bodies = append(bodies, state.Bodies[i])
	}

	return bodies
}
