package tandem

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/oliverbestmann/tandem/hub"
	"github.com/oliverbestmann/tandem/internal/set"
)

const NoEntityId = EntityId(0)

type resourceValue struct {
	// Value is of kind Pointer and points to the value of the resource.
	Value reflect.Value
}

type AnyPtr = any

// World holds all entities and resources, schedules, systems, etc.
// While an empty World can be created using NewWorld, it is normally created and configured
// by using the App api.
type World struct {
	storage       *hub.Storage
	entityIdSeq   EntityId
	consumerIdSeq hub.ConsumerId
	resources     map[reflect.Type]resourceValue
	schedules     map[ScheduleId]*schedule
	systems       map[SystemId]*preparedSystem
	currentTick   Tick

	activeQueries atomic.Int32
	flushes       []func()
}

// NewWorld creates a new empty world.
// You probably want to use the App api instead.
func NewWorld() *World {
	return &World{
		storage:     hub.NewStorage(),
		resources:   map[reflect.Type]resourceValue{},
		schedules:   map[ScheduleId]*schedule{},
		systems:     map[SystemId]*preparedSystem{},
		currentTick: 1,
	}
}

// AddSystems adds systems to a schedule within the world.
func (w *World) AddSystems(scheduleId ScheduleId, firstSystem AnySystem, systems ...AnySystem) {
	schedule := w.scheduleOf(scheduleId)

	systems = append([]AnySystem{firstSystem}, systems...)

	for _, config := range asSystemConfigs(systems...) {
		schedule.AddSystem(w.prepareSystem(config))
	}

	if err := schedule.UpdateSystemOrdering(); err != nil {
		panic(err)
	}
}

// ConfigureSystemSets registers system sets with a schedule so that their
// ordering constraints are applied to the member systems.
func (w *World) ConfigureSystemSets(scheduleId ScheduleId, systemSets ...*SystemSet) {
	schedule := w.scheduleOf(scheduleId)

	for _, systemSet := range systemSets {
		schedule.AddSystemSet(systemSet)
	}

	if err := schedule.UpdateSystemOrdering(); err != nil {
		panic(err)
	}
}

// RunSystem runs a system within the world.
func (w *World) RunSystem(system AnySystem) {
	w.RunSystemWithInValue(system, nil)
}

// RunSystemWithInValue runs a system that takes an In parameter.
func (w *World) RunSystemWithInValue(system AnySystem, inValue any) {
	prepared := w.prepareSystem(asSystemConfig(system))
	w.runSystem(prepared, systemContext{InValue: inValue})
}

func (w *World) timingStats() *TimingStats {
	stats, _ := ResourceOf[TimingStats](w)
	return stats
}

func (w *World) scheduleOf(scheduleId ScheduleId) *schedule {
	schedule, ok := w.schedules[scheduleId]
	if !ok {
		schedule = newSchedule(scheduleId)
		w.schedules[scheduleId] = schedule
	}

	return schedule
}

func (w *World) runSystem(system *preparedSystem, ctx systemContext) any {
	if !w.predicatesPass(system) {
		return nil
	}

	if timings := w.timingStats(); timings != nil {
		defer timings.MeasureSystem(system).Stop()
	}

	w.currentTick += 1

	ctx.LastRun = system.LastRun
	result := system.RawSystem(ctx)

	// update last run so we can calculate changed components
	// at the next run
	system.LastRun = w.currentTick

	if w.activeQueries.Load() == 0 {
		w.flushCommands()
	}

	return result
}

func (w *World) predicatesPass(system *preparedSystem) bool {
	for _, predicate := range system.Predicates {
		result := w.runSystem(predicate, systemContext{})
		if result == nil || !result.(bool) {
			// predicate evaluated to "do not run", stop execution here
			return false
		}
	}

	for _, systemSet := range system.sets {
		for _, predicate := range systemSet.predicates {
			result := w.runSystem(w.preparePredicate(predicate), systemContext{})
			if result == nil || !result.(bool) {
				return false
			}
		}
	}

	return true
}

func (w *World) prepareSystem(config *systemConfig) *preparedSystem {
	// check cache first
	prepared, ok := w.systems[config.Id]
	if ok {
		return prepared
	}

	// need to prepare the system
	prepared = w.prepareSystemUncached(config)
	w.systems[config.Id] = prepared

	return prepared
}

// RunSchedule runs the schedule identified by the given ScheduleId.
// If no schedule with this id exists, no action is performed.
func (w *World) RunSchedule(scheduleId ScheduleId) {
	schedule, ok := w.schedules[scheduleId]
	if !ok {
		return
	}

	// remove the schedule while it is executed
	delete(w.schedules, scheduleId)

	// add the schedule back once it has finished executing
	defer func() {
		if _, exists := w.schedules[scheduleId]; exists {
			panic(fmt.Sprintf("The schedule %q was modified while it is being executed", scheduleId))
		}

		w.schedules[scheduleId] = schedule
	}()

	if timings := w.timingStats(); timings != nil {
		defer timings.MeasureSchedule(scheduleId).Stop()
	}

	for _, system := range schedule.systems {
		w.runSystem(system, systemContext{})
	}
}

// AddObserver adds a new observer.
// Observers are entities containing the Observer component.
func (w *World) AddObserver(observer Observer) EntityId {
	// prepare system here. this will also panic if the systems parameters
	// are not well formed.
	observer.system = w.prepareSystem(asSystemConfig(observer.callback))

	return w.Spawn([]ErasedComponent{observer})
}

// TriggerObserver triggers all observers listening on the given target (or all targets) for the
// given event value.
//
// TODO observer event propagation is not yet implemented.
func (w *World) TriggerObserver(targetId EntityId, eventValue any) {
	// get the event type first
	eventType := reflect.TypeOf(eventValue)

	w.RunSystemWithInValue(triggerObserverSystem, triggerObserverIn{
		ObserverType: eventType,
		TargetId:     targetId,
		EventValue:   eventValue,
	})
}

// Spawn spawns a new entity with the given components.
func (w *World) Spawn(components []ErasedComponent) EntityId {
	return w.spawnWithEntityId(w.reserveEntityId(), components)
}

func (w *World) reserveEntityId() EntityId {
	w.entityIdSeq += 1
	return w.entityIdSeq
}

func (w *World) reserveConsumerId() hub.ConsumerId {
	w.consumerIdSeq += 1
	return w.consumerIdSeq
}

func (w *World) spawnWithEntityId(entityId EntityId, components []ErasedComponent) EntityId {
	if entityId == NoEntityId {
		entityId = w.reserveEntityId()
	}

	components, spawnChildren := w.prepareComponents(entityId, components)

	w.storage.Spawn(w.currentTick, entityId, components)
	w.onComponentsInsert(entityId, components)

	// now spawn all children as necessary
	for _, spawnChild := range spawnChildren {
		components := append(spawnChild.Components, ChildOf{Parent: entityId})
		w.spawnWithEntityId(w.reserveEntityId(), components)
	}

	return entityId
}

func (w *World) insertComponents(entityId EntityId, components []ErasedComponent) {
	components, spawnChildren := w.prepareComponents(entityId, components)

	w.storage.InsertComponents(w.currentTick, entityId, components)
	w.onComponentsInsert(entityId, components)

	// now spawn all children as necessary
	for _, spawnChild := range spawnChildren {
		components := append(spawnChild.Components, ChildOf{Parent: entityId})
		w.spawnWithEntityId(w.reserveEntityId(), components)
	}
}

func (w *World) prepareComponents(entityId EntityId, components []ErasedComponent) (collectedComponents []ErasedComponent, spawnChildren []*spawnChildComponent) {
	queue := flattenComponents(nil, components...)

	var inserted set.Set[*hub.ComponentType]

	for idx := 0; idx < len(queue); idx++ {
		// if in question we'll overwrite the components if they
		// where specified directly
		overwrite := idx < len(components)

		component := queue[idx]
		componentType := component.ComponentType()

		// special handling for spawn child components. do not add them to
		// the entity, but put them into a list that we go through at the
		// end to spawn children
		if spawnChild, ok := component.(*spawnChildComponent); ok {
			spawnChildren = append(spawnChildren, spawnChild)
			continue
		}

		// skip if we've already added the component type to the queue
		if !inserted.Insert(componentType) {
			continue
		}

		// maybe skip this one if it already exists on the entity
		exists := w.storage.HasComponent(entityId, componentType)
		if exists && !overwrite {
			continue
		}

		// the parent side of a relationship is maintained by the world
		if _, ok := component.(isParentComponent); ok {
			panic(fmt.Sprintf(
				"you may not insert the target side of a relationship yourself: %T", component,
			))
		}

		collectedComponents = append(collectedComponents, component)

		// enqueue all components required by this one
		if required, ok := component.(RequiresComponents); ok {
			queue = append(queue, required.RequireComponents()...)
		}
	}

	return
}

func (w *World) onComponentsInsert(id EntityId, components []ErasedComponent) {
	for _, component := range components {
		w.onComponentInsert(id, component)
	}
}

func (w *World) onComponentInsert(entityId EntityId, component ErasedComponent) {
	if parentComponent, parentId, parentType, ok := w.parentComponentOf(component); ok {
		if parentComponent == nil {
			// the parent does not have the target component yet,
			// create a new instance
			parentComponent = parentType.New().(isParentComponent)
		} else {
			// create a copy of the component
			parentComponent = copyComponent(parentComponent).(isParentComponent)
		}

		// add the child to the relationship target
		parentComponent.addChild(entityId)

		// and replace its value by inserting it again
		w.storage.InsertComponent(w.currentTick, parentId, parentComponent)
	}
}

func (w *World) onComponentRemoved(entityId EntityId, component ErasedComponent) {
	w.removeEntityFromParentComponentOf(entityId, component)

	if registry, ok := ResourceOf[removedComponentsRegistry](w); ok {
		registry.ComponentRemoved(entityId, component.ComponentType())
	}
}

func (w *World) removeEntityFromParentComponentOf(entityId EntityId, component ErasedComponent) {
	if parentComponent, parentId, parentType, ok := w.parentComponentOf(component); ok && parentComponent != nil {
		children := parentComponent.Children()

		if len(children) == 1 && children[0] == entityId {
			// would need to remove the last element.
			// in that case, we can just remove the component itself
			w.storage.RemoveComponent(w.currentTick, parentId, parentType)
		} else {
			// create a copy of the component without the child
			parentComponent = copyComponent(parentComponent).(isParentComponent)
			parentComponent.removeChild(entityId)

			// and replace its value by inserting it again
			w.storage.InsertComponent(w.currentTick, parentId, parentComponent)
		}
	}
}

// parentComponentOf resolves the parent side of a relationship component.
// It returns a nil component if the parent entity exists but does not carry
// the target component yet.
func (w *World) parentComponentOf(component ErasedComponent) (isParentComponent, EntityId, *hub.ComponentType, bool) {
	child, ok := component.(isChildComponent)
	if !ok {
		return nil, NoEntityId, nil, false
	}

	parentId := child.ParentEntityId()

	parent, ok := w.storage.Get(parentId)
	if !ok {
		panic(fmt.Sprintf("parent entity %s does not exist", parentId))
	}

	parentType := child.RelationParentType()
	if value, ok := parent.Get(parentType); ok {
		return value.Value.(isParentComponent), parentId, parentType, true
	}

	// there is no target component in the parent yet
	return nil, parentId, parentType, true
}

// InsertResource inserts a new resource into the world.
// The resource should be provided as a non-pointer type.
//
// If the resource does not yet exist, a new value of the resources type will
// be allocated on the heap and the value provided will be copied into that memory location.
//
// If the world already contains a resource of the same type, this value will
// just be updated with the newly provided one.
func (w *World) InsertResource(resource any) {
	resType := reflect.PointerTo(reflect.TypeOf(resource))

	if existing, ok := w.resources[resType]; ok {
		// update existing value in place
		existing.Value.Elem().Set(reflect.ValueOf(resource))
		return
	}

	// allocate the resource on the heap and copy the provided value to it
	ptr := reflect.New(resType.Elem())
	ptr.Elem().Set(reflect.ValueOf(resource))

	w.resources[ptr.Type()] = resourceValue{
		Value: ptr,
	}
}

// RemoveResource removes a resource previously added with InsertResource.
func (w *World) RemoveResource(resourceType reflect.Type) {
	resType := reflect.PointerTo(resourceType)
	delete(w.resources, resType)
}

// Despawn recursively despawns the given entity following Children relations.
func (w *World) Despawn(entityId EntityId) {
	queue := []EntityId{entityId}

	for idx := 0; idx < len(queue); idx++ {
		entityId = queue[idx]

		entity, ok := w.storage.Get(entityId)
		if !ok {
			fmt.Printf("[warn] cannot despawn entity %s: does not exist\n", entityId)
			continue
		}

		// update relationships
		for _, componentValue := range entity.Components() {
			component := componentValue.Value

			w.onComponentRemoved(entityId, component)

			// despawn child entities too
			if parentComponent, ok := component.(isParentComponent); ok {
				queue = append(queue, parentComponent.Children()...)
			}
		}
	}

	for _, entityId := range queue {
		w.storage.Despawn(entityId)
	}
}

// Resource returns a pointer to the resource of the given reflect type.
// The type must be the non-pointer type of the resource, i.e. the type of the resource
// as it was passed to InsertResource.
func (w *World) Resource(ty reflect.Type) (AnyPtr, bool) {
	resValue, ok := w.resources[reflect.PointerTo(ty)]
	if !ok {
		return nil, false
	}

	return resValue.Value.Interface(), true
}

// ResourceOf is a typed version of World.Resource.
func ResourceOf[T any](w *World) (*T, bool) {
	value, ok := w.Resource(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}

	return value.(*T), true
}

// deferCommand records a storage command to run at the next flush.
// Query iteration uses this to keep storage mutations out of the
// iteration itself.
func (w *World) deferCommand(command hub.DeferredCommand) {
	w.flushes = append(w.flushes, func() { command(w.storage) })
}

func (w *World) flushCommands() {
	if w.activeQueries.Load() != 0 {
		panic("can not flush, queries are still running")
	}

	// TODO evaluate if this is save like this. maybe we can do better here?
	for len(w.flushes) > 0 {
		fn := w.flushes[0]
		w.flushes = w.flushes[1:]

		fn()
	}
}

func copyComponent(value ErasedComponent) ErasedComponent {
	return value.ComponentType().CopyOf(value)
}

func (w *World) removeComponent(entityId EntityId, componentType *hub.ComponentType) {
	component, ok := w.storage.RemoveComponent(w.currentTick, entityId, componentType)
	if !ok {
		return
	}

	w.onComponentRemoved(entityId, component)
}

type triggerObserverIn struct {
	ObserverType reflect.Type
	TargetId     EntityId
	EventValue   any
}

func triggerObserverSystem(
	w *World,
	observers Query[*Observer],
	in In[triggerObserverIn],
) {
	params := &in.Value

	for observer := range observers.Items() {
		if !observer.ObservesType(params.ObserverType) {
			continue
		}

		if params.TargetId == NoEntityId && observer.IsScoped() {
			continue
		}

		if params.TargetId != NoEntityId && !observer.Observes(params.TargetId) {
			continue
		}

		// we found a match, trigger the observer
		w.runSystem(observer.system, systemContext{
			Trigger: systemTrigger{
				TargetId:   params.TargetId,
				EventValue: params.EventValue,
			},
		})
	}
}
