package physics

import (
	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/tandem"
	"github.com/oliverbestmann/tandem/gm"
)

// PhysicsConfig configures the simulation space. The plugin pushes changes
// to this resource into the space before the next step.
type PhysicsConfig struct {
	Gravity gm.Vec

	// Damping is the fraction of velocity a body keeps per second.
	Damping float64

	// Iterations is the number of solver passes per step.
	Iterations uint

	// SleepTimeThreshold is the time a body must be idle before it is put
	// to sleep. Sleeping bodies are skipped by the solver and, because their
	// state stops changing, by the sync systems of this plugin.
	SleepTimeThreshold float64
}

type cpSpace struct {
	*cp.Space
}

// Plugin adds rigid body physics to an App. Spawn an entity with a Body and
// a Collider component to simulate it. The simulation runs on the
// FixedUpdate schedule and writes its results back into the Transform and
// Velocity components of the entity.
var Plugin tandem.PluginFunc = func(app *tandem.App) {
	space := cp.NewSpace()

	app.InsertResource(cpSpace{space})
	app.InsertResource(PhysicsConfig{
		Gravity:            gm.Vec{Y: -10},
		Damping:            1.0,
		Iterations:         10,
		SleepTimeThreshold: 0.5,
	})

	app.InsertResource(entityIndex{
		Shapes: map[tandem.EntityId]*cp.Shape{},
		Bodies: map[tandem.EntityId]*cp.Body{},
	})

	app.InsertResource(collisionQueue{})

	// the callbacks run while the space is locked during a step. They only
	// record the contacts, the emit systems turn them into messages and
	// triggers once the step is done.
	queue, _ := tandem.ResourceOf[collisionQueue](app.World())

	handler := space.NewCollisionHandler(0, 0)
	handler.BeginFunc = queue.contactBegan
	handler.SeparateFunc = queue.contactEnded

	app.AddMessage(tandem.MessageType[ContactStarted]())
	app.AddMessage(tandem.MessageType[ContactEnded]())
	app.AddMessage(tandem.MessageType[SensorStarted]())
	app.AddMessage(tandem.MessageType[SensorEnded]())

	app.AddSystems(tandem.FixedUpdate, tandem.System(
		makeBodySystem,
		tandem.System(preStepSyncShapesSystem, preStepSyncBodiesSystem, preStepSyncResourcesSystem),
		updateSpaceSystem,
		postStepRemoveSystem,
		postStepSyncSystem,
		emitCollisionEventsSystem,
		emitSensorEventsSystem,
	).Chain())
}

func makeBodySystem(
	space cpSpace,
	index *entityIndex,
	bodiesQuery tandem.Query[struct {
		_ tandem.Added[Body]

		tandem.EntityId
		Body       *Body
		Collider   *Collider
		Transform  Transform
		Velocity   Velocity
		Density    ColliderDensity
		Elasticity ColliderElasticity
		Friction   ColliderFriction
		Filter     ShapeFilter
		IsSensor   tandem.Has[Sensor]
	}],
) {
	for item := range bodiesQuery.Items() {
		var body *cp.Body

		switch {
		case item.Body.static:
			body = cp.NewStaticBody()
		case item.Body.kinematic:
			body = cp.NewKinematicBody()
		default:
			body = cp.NewBody(0, 0)
		}

		// keep the entity on the body so contacts can be mapped back
		body.UserData = item.EntityId
		body.SetPosition(cp.Vector(item.Transform.Translation))
		body.SetAngle(float64(item.Transform.Rotation))
		body.SetVelocityVector(cp.Vector(item.Velocity.Linear))
		body.SetAngularVelocity(float64(item.Velocity.Angular))

		space.AddBody(body)

		shape := item.Collider.Shape.MakeShape(body)
		shape.UserData = item.EntityId
		shape.SetElasticity(item.Elasticity.Value)
		shape.SetFriction(item.Friction.Value)
		shape.SetFilter(cp.ShapeFilter{
			Group:      item.Filter.Group,
			Categories: item.Filter.Categories,
			Mask:       item.Filter.Mask,
		})
		shape.SetSensor(item.IsSensor.Exists)

		space.AddShape(shape)

		if item.Body.isDynamic() {
			// mass and moment derive from the density unless overridden by
			// a Mass or Moment component
			shape.SetDensity(item.Density.Value)
		}

		item.Body.body = body
		item.Collider.shape = shape

		// a re-inserted Body component replaces the simulation state
		if prev, ok := index.Shapes[item.EntityId]; ok {
			space.RemoveShape(prev)
		}

		if prev, ok := index.Bodies[item.EntityId]; ok {
			space.RemoveBody(prev)
		}

		// keep a reverse mapping so we can cleanup on entity despawn
		index.Bodies[item.EntityId] = body
		index.Shapes[item.EntityId] = shape
	}
}

func preStepSyncResourcesSystem(space cpSpace, config PhysicsConfig) {
	space.Iterations = config.Iterations
	space.SleepTimeThreshold = config.SleepTimeThreshold

	// pushing a gravity change wakes every sleeping body in the space,
	// only push real changes
	if space.Gravity() != cp.Vector(config.Gravity) {
		space.SetGravity(cp.Vector(config.Gravity))
	}

	if space.Damping() != config.Damping {
		space.SetDamping(config.Damping)
	}
}

// preStepSyncBodiesSystem pushes component state into chipmunk.
//
// The queries are gated by EqChanged, not Changed: postStepSyncSystem
// fetches Transform and Velocity mutably on every step, so their write
// ticks move forward for every body all the time. Filtering on write ticks
// would re-push every body every step and permanently wake the space.
// Filtering on values visits only bodies that actually moved or were
// written by the user.
func preStepSyncBodiesSystem(
	space cpSpace,
	transformsQuery tandem.Query[struct {
		_ tandem.EqChanged[Transform]

		Body      Body
		Transform Transform
	}],
	velocitiesQuery tandem.Query[struct {
		_ tandem.EqChanged[Velocity]

		Body     Body
		Velocity Velocity
	}],
	overridesQuery tandem.Query[struct {
		_ tandem.Or[tandem.With[Mass], tandem.With[Moment]]

		Body   Body
		Mass   tandem.Option[Mass]
		Moment tandem.Option[Moment]
	}],
	forcesQuery tandem.Query[struct {
		Body   Body
		Forces ExternalForces
	}],
) {
	for item := range transformsQuery.Items() {
		body := item.Body.body
		if body == nil {
			continue
		}

		// a value the body already has is an echo of the write back after
		// the previous step. Setting it again would wake the body.
		if body.Position() != cp.Vector(item.Transform.Translation) {
			body.SetPosition(cp.Vector(item.Transform.Translation))

			if item.Body.static {
				space.ReindexShapesForBody(body)
			}
		}

		if body.Angle() != float64(item.Transform.Rotation) {
			body.SetAngle(float64(item.Transform.Rotation))
		}
	}

	for item := range velocitiesQuery.Items() {
		body := item.Body.body
		if body == nil {
			continue
		}

		if body.Velocity() != cp.Vector(item.Velocity.Linear) {
			body.SetVelocityVector(cp.Vector(item.Velocity.Linear))
		}

		if body.AngularVelocity() != float64(item.Velocity.Angular) {
			body.SetAngularVelocity(float64(item.Velocity.Angular))
		}
	}

	// explicit mass and moment win over the values chipmunk derives from
	// the collider density, re-apply them whenever they drift apart
	for item := range overridesQuery.Items() {
		body := item.Body.body
		if body == nil || !item.Body.isDynamic() {
			continue
		}

		if mass, ok := item.Mass.Get(); ok && body.Mass() != mass.Value {
			body.SetMass(mass.Value)
		}

		if moment, ok := item.Moment.Get(); ok && body.Moment() != moment.Value {
			body.SetMoment(moment.Value)
		}
	}

	for item := range forcesQuery.Items() {
		body := item.Body.body
		if body == nil || !item.Body.isDynamic() {
			continue
		}

		// chipmunk consumes the force accumulator during the step, forces
		// must be applied every tick. Zero forces are skipped, applying
		// them would wake a sleeping body.
		if force := cp.Vector(item.Forces.Linear); force != (cp.Vector{}) {
			body.SetForce(force)
		}

		if item.Forces.Torque != 0 {
			body.SetTorque(item.Forces.Torque)
		}
	}
}

func preStepSyncShapesSystem(
	densitiesQuery tandem.Query[struct {
		_ tandem.EqChanged[ColliderDensity]

		Body     Body
		Collider Collider
		Density  ColliderDensity
	}],
	elasticitiesQuery tandem.Query[struct {
		_ tandem.EqChanged[ColliderElasticity]

		Collider   Collider
		Elasticity ColliderElasticity
	}],
	frictionsQuery tandem.Query[struct {
		_ tandem.EqChanged[ColliderFriction]

		Collider Collider
		Friction ColliderFriction
	}],
	filtersQuery tandem.Query[struct {
		_ tandem.EqChanged[ShapeFilter]

		Collider Collider
		Filter   ShapeFilter
	}],
) {
	for item := range densitiesQuery.Items() {
		shape := item.Collider.shape
		if shape == nil || !item.Body.isDynamic() {
			continue
		}

		shape.SetDensity(item.Density.Value)
	}

	for item := range elasticitiesQuery.Items() {
		if shape := item.Collider.shape; shape != nil {
			shape.SetElasticity(item.Elasticity.Value)
		}
	}

	for item := range frictionsQuery.Items() {
		if shape := item.Collider.shape; shape != nil {
			shape.SetFriction(item.Friction.Value)
		}
	}

	for item := range filtersQuery.Items() {
		shape := item.Collider.shape
		if shape == nil {
			continue
		}

		shape.SetFilter(cp.ShapeFilter{
			Group:      item.Filter.Group,
			Categories: item.Filter.Categories,
			Mask:       item.Filter.Mask,
		})
	}
}

func updateSpaceSystem(t tandem.FixedTime, space cpSpace) {
	space.Step(t.DeltaSecs)
}

type entityIndex struct {
	Shapes map[tandem.EntityId]*cp.Shape
	Bodies map[tandem.EntityId]*cp.Body
}

func postStepRemoveSystem(
	space cpSpace,
	index *entityIndex,
	removedBodies tandem.RemovedComponents[Body],
	removedColliders tandem.RemovedComponents[Collider],
) {
	// shapes must leave the space before their body does
	for entityId := range removedColliders.Read() {
		shape, ok := index.Shapes[entityId]
		if !ok {
			continue
		}

		delete(index.Shapes, entityId)
		space.RemoveShape(shape)
	}

	for entityId := range removedBodies.Read() {
		body, ok := index.Bodies[entityId]
		if !ok {
			continue
		}

		delete(index.Bodies, entityId)
		space.RemoveBody(body)
	}
}

// postStepSyncSystem writes the simulated state back into the components.
// The mutable fetch marks Transform and Velocity as written for every body
// it visits, moved or not. See preStepSyncBodiesSystem for why the sync in
// the other direction must not rely on those write ticks.
func postStepSyncSystem(
	bodiesQuery tandem.Query[struct {
		Body      Body
		Velocity  *Velocity
		Transform *Transform
	}],
) {
	for item := range bodiesQuery.Items() {
		body := item.Body.body
		if body == nil || item.Body.static {
			continue
		}

		item.Velocity.Linear = gm.Vec(body.Velocity())
		item.Velocity.Angular = gm.Rad(body.AngularVelocity())

		item.Transform.Translation = gm.Vec(body.Position())
		item.Transform.Rotation = gm.Rad(body.Angle())
	}
}

// collisionQueue buffers the contacts chipmunk reports while the space is
// locked during a step.
type collisionQueue struct {
	contactsStarted []ContactStarted
	contactsEnded   []ContactEnded
	sensorsStarted  []SensorStarted
	sensorsEnded    []SensorEnded
}

func (q *collisionQueue) contactBegan(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Shapes()

	idA, okA := a.UserData.(tandem.EntityId)
	idB, okB := b.UserData.(tandem.EntityId)
	if !okA || !okB {
		return true
	}

	if a.Sensor() || b.Sensor() {
		// report the sensor shape first
		if !a.Sensor() {
			idA, idB = idB, idA
		}

		q.sensorsStarted = append(q.sensorsStarted, SensorStarted{
			A:        idA,
			B:        idB,
			Position: contactPointOf(arb),
		})

		return true
	}

	set := arb.ContactPointSet()

	q.contactsStarted = append(q.contactsStarted, ContactStarted{
		A:        idA,
		B:        idB,
		Position: contactPointOf(arb),
		Normal:   gm.Vec(set.Normal),
	})

	return true
}

func (q *collisionQueue) contactEnded(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	a, b := arb.Shapes()

	idA, okA := a.UserData.(tandem.EntityId)
	idB, okB := b.UserData.(tandem.EntityId)
	if !okA || !okB {
		return
	}

	if a.Sensor() || b.Sensor() {
		if !a.Sensor() {
			idA, idB = idB, idA
		}

		q.sensorsEnded = append(q.sensorsEnded, SensorEnded{A: idA, B: idB})
		return
	}

	q.contactsEnded = append(q.contactsEnded, ContactEnded{A: idA, B: idB})
}

func contactPointOf(arb *cp.Arbiter) gm.Vec {
	set := arb.ContactPointSet()
	if set.Count == 0 {
		return gm.Vec{}
	}

	return gm.Vec(set.Points[0].PointA)
}

func emitCollisionEventsSystem(
	commands *tandem.Commands,
	queue *collisionQueue,
	writerStarted *tandem.MessageWriter[ContactStarted],
	writerEnded *tandem.MessageWriter[ContactEnded],
	hasMarkerQuery tandem.Query[tandem.With[CollisionEventsEnabled]],
) {
	started := queue.contactsStarted
	queue.contactsStarted = queue.contactsStarted[:0]

	for _, ev := range started {
		_, ok1 := hasMarkerQuery.Get(ev.A)
		_, ok2 := hasMarkerQuery.Get(ev.B)

		if !ok1 && !ok2 {
			continue
		}

		writerStarted.Write(ev)

		if ok1 {
			commands.Entity(ev.A).Trigger(OnContactStarted{
				Other:    ev.B,
				Normal:   ev.Normal,
				Position: ev.Position,
			})
		}

		if ok2 {
			commands.Entity(ev.B).Trigger(OnContactStarted{
				Other:    ev.A,
				Normal:   ev.Normal,
				Position: ev.Position,
			})
		}
	}

	ended := queue.contactsEnded
	queue.contactsEnded = queue.contactsEnded[:0]

	for _, ev := range ended {
		_, ok1 := hasMarkerQuery.Get(ev.A)
		_, ok2 := hasMarkerQuery.Get(ev.B)

		if !ok1 && !ok2 {
			continue
		}

		writerEnded.Write(ev)

		if ok1 {
			commands.Entity(ev.A).Trigger(OnContactEnded{Other: ev.B})
		}

		if ok2 {
			commands.Entity(ev.B).Trigger(OnContactEnded{Other: ev.A})
		}
	}
}

func emitSensorEventsSystem(
	commands *tandem.Commands,
	queue *collisionQueue,
	writerStarted *tandem.MessageWriter[SensorStarted],
	writerEnded *tandem.MessageWriter[SensorEnded],
	hasMarkerQuery tandem.Query[tandem.With[CollisionEventsEnabled]],
) {
	started := queue.sensorsStarted
	queue.sensorsStarted = queue.sensorsStarted[:0]

	for _, ev := range started {
		_, ok1 := hasMarkerQuery.Get(ev.A)
		_, ok2 := hasMarkerQuery.Get(ev.B)

		if !ok1 && !ok2 {
			continue
		}

		writerStarted.Write(ev)

		if ok1 {
			commands.Entity(ev.A).Trigger(OnSensorStarted{
				Other:    ev.B,
				Position: ev.Position,
			})
		}

		if ok2 {
			commands.Entity(ev.B).Trigger(OnSensorStarted{
				Other:    ev.A,
				Position: ev.Position,
			})
		}
	}

	ended := queue.sensorsEnded
	queue.sensorsEnded = queue.sensorsEnded[:0]

	for _, ev := range ended {
		_, ok1 := hasMarkerQuery.Get(ev.A)
		_, ok2 := hasMarkerQuery.Get(ev.B)

		if !ok1 && !ok2 {
			continue
		}

		writerEnded.Write(ev)

		if ok1 {
			commands.Entity(ev.A).Trigger(OnSensorEnded{Other: ev.B})
		}

		if ok2 {
			commands.Entity(ev.B).Trigger(OnSensorEnded{Other: ev.A})
		}
	}
}
