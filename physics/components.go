package physics

import (
	"math"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/tandem"
	. "github.com/oliverbestmann/tandem/gm"
)

// Transform is the position and rotation of a physics body in world space.
// The plugin pushes it into the simulation before a step and writes the
// simulated state back afterwards.
type Transform struct {
	tandem.ComparableComponent[Transform]
	Translation Vec
	Rotation    Rad
}

type Velocity struct {
	tandem.ComparableComponent[Velocity]
	Linear  Vec
	Angular Rad
}

type Mass struct {
	tandem.ComparableComponent[Mass]
	Value float64
}

type Moment struct {
	tandem.ComparableComponent[Moment]
	Value float64
}

type ExternalForces struct {
	tandem.ComparableComponent[ExternalForces]
	Linear Vec
	Torque float64
}

type Collider struct {
	tandem.Component[Collider]
	Shape ToShape

	// the actual collider cp.Shape
	shape *cp.Shape
}

func (Collider) RequireComponents() []tandem.ErasedComponent {
	return []tandem.ErasedComponent{
		ColliderDensity{Value: 1},
		ColliderElasticity{Value: 0},
		ColliderFriction{Value: 0.5},
		ShapeFilter{
			Mask:       math.MaxUint,
			Categories: 1,
		},
	}
}

type ColliderDensity struct {
	tandem.ComparableComponent[ColliderDensity]
	Value float64
}

type ColliderElasticity struct {
	tandem.ComparableComponent[ColliderElasticity]
	Value float64
}

type ColliderFriction struct {
	tandem.ComparableComponent[ColliderFriction]
	Value float64
}

type ShapeFilter struct {
	tandem.ComparableComponent[ShapeFilter]

	// Two objects with the same non-zero group value do not collide.
	// This is generally used to group objects in a composite object together to disable self collisions.
	Group uint
	// A bitmask of user definable categories that this object belongs to.
	// The category/mask combinations of both objects in a collision must agree for a collision to occur.
	Categories uint
	// A bitmask of user definable category types that this object object collides with.
	// The category/mask combinations of both objects in a collision must agree for a collision to occur.
	Mask uint
}

type Sensor struct {
	tandem.ImmutableComponent[Sensor]
}

type CollisionEventsEnabled struct {
	tandem.ImmutableComponent[CollisionEventsEnabled]
}

type Body struct {
	tandem.Component[Body]
	dynamic, static, kinematic bool

	body *cp.Body
}

func (Body) RequireComponents() []tandem.ErasedComponent {
	return []tandem.ErasedComponent{
		Transform{},
		Velocity{},
		ExternalForces{},
	}
}

func (b Body) isDynamic() bool {
	return !b.static && !b.kinematic
}

var RigidBodyDynamic = Body{dynamic: true}
var RigidBodyStatic = Body{static: true}
var RigidBodyKinematic = Body{kinematic: true}
