package tandem

import (
	"reflect"
	"slices"

	"github.com/oliverbestmann/tandem/hub"
)

type Command func(world *World)

type EntityCommand func(world *World, entityId EntityId)

// Commands is a SystemParam that allows you to send commands to a world.
// It allows you to spawn and despawn entities and to add and remove components.
// It must be injected as a pointer into a system.
type Commands struct {
	world *World
	queue []Command
}

func (c *Commands) applyToWorld() {
	if len(c.queue) == 0 {
		return
	}

	queue := slices.Clone(c.queue)

	// reset the queue so it can collect the commands of the next run
	c.queue = c.queue[:0]

	apply := func() {
		for _, command := range queue {
			command(c.world)
		}
	}

	if c.world.activeQueries.Load() > 0 {
		// a query is still iterating, e.g. when an observer spawned by the
		// iterating system uses commands. run them at the next flush
		c.world.flushes = append(c.world.flushes, apply)
		return
	}

	apply()
}

func (*Commands) init(world *World) SystemParamState {
	return (*commandSystemParamState)(
		&Commands{world: world},
	)
}

func (c *Commands) Queue(command Command) *Commands {
	c.queue = append(c.queue, command)
	return c
}

func (c *Commands) Spawn(components ...ErasedComponent) EntityCommands {
	entityId := c.world.reserveEntityId()

	c.Queue(func(world *World) {
		world.spawnWithEntityId(entityId, components)
	})

	return EntityCommands{
		entityId: entityId,
		commands: c,
	}
}

func (c *Commands) Entity(entityId EntityId) EntityCommands {
	return EntityCommands{
		entityId: entityId,
		commands: c,
	}
}

// Trigger queues the given event for delivery to matching observers. An
// event implementing EntityEvent is delivered to the observers watching
// its target entity, any other event only reaches unscoped observers.
func (c *Commands) Trigger(event Event) *Commands {
	return c.Queue(func(world *World) {
		targetId := NoEntityId

		if entityEvent, ok := event.(EntityEvent); ok {
			targetId = entityEvent.TargetEntityId()
		}

		world.TriggerObserver(targetId, event)
	})
}

type EntityCommands struct {
	entityId EntityId
	commands *Commands
}

func (e EntityCommands) Id() EntityId {
	return e.entityId
}

func (e EntityCommands) Update(commands ...EntityCommand) EntityCommands {
	e.commands.queue = append(e.commands.queue, func(world *World) {
		for _, command := range commands {
			command(world, e.entityId)
		}
	})

	return e
}

func (e EntityCommands) Despawn() {
	e.commands.queue = append(e.commands.queue, func(world *World) {
		world.Despawn(e.entityId)
	})
}

func (e EntityCommands) Observe(system AnySystem) EntityCommands {
	return e.Update(func(world *World, entityId EntityId) {
		world.AddObserver(NewObserver(system).WatchEntity(entityId))
	})
}

func (e EntityCommands) Trigger(eventValue any) EntityCommands {
	return e.Update(func(world *World, entityId EntityId) {
		world.TriggerObserver(entityId, eventValue)
	})
}

func RemoveComponent[C IsComponent[C]]() EntityCommand {
	componentType := hub.ComponentTypeOf[C]()

	return func(world *World, entityId EntityId) {
		world.removeComponent(entityId, componentType)
	}
}

func InsertComponent[C IsComponent[C]](maybeValue ...C) EntityCommand {
	if len(maybeValue) > 1 {
		panic("InsertComponent must be called with at most one argument")
	}

	var component C
	if len(maybeValue) == 1 {
		component = maybeValue[0]
	}

	return func(world *World, entityId EntityId) {
		world.insertComponents(entityId, []ErasedComponent{component})
	}
}

type commandSystemParamState Commands

func (c *commandSystemParamState) getValue(systemContext) reflect.Value {
	return reflect.ValueOf((*Commands)(c))
}

func (c *commandSystemParamState) cleanupValue() {
	(*Commands)(c).applyToWorld()
}

func (*commandSystemParamState) valueType() reflect.Type {
	return reflect.TypeFor[*Commands]()
}
