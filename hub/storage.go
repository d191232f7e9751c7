package hub

import (
	"fmt"
	"iter"
)

type Storage struct {
	entityToArchetype map[EntityId]*Archetype
	archetypes        ArchetypeGraph
}

func NewStorage() *Storage {
	return &Storage{
		entityToArchetype: map[EntityId]*Archetype{},
	}
}

func (s *Storage) Spawn(tick Tick, entityId EntityId, components []ErasedComponent) {
	if _, exists := s.entityToArchetype[entityId]; exists {
		panic(fmt.Sprintf("entity %s already exists", entityId))
	}

	// collect the component types, normalizing every value to its pointer
	// erased form so the columns can copy from it
	componentTypes := make([]*ComponentType, len(components))
	for idx, component := range components {
		ty := component.ComponentType()
		components[idx] = ty.PointerTo(component)
		componentTypes[idx] = ty
	}

	// find or create the archetype we fit into
	archetype := s.archetypes.Lookup(componentTypes)

	// add entity to the archetype
	archetype.Insert(tick, entityId, components)

	// remember where we put the entity
	s.entityToArchetype[entityId] = archetype
}

func (s *Storage) Despawn(entityId EntityId) bool {
	archetype, ok := s.entityToArchetype[entityId]
	if !ok {
		return false
	}

	archetype.Remove(entityId)

	delete(s.entityToArchetype, entityId)

	if archetype.Len() == 0 {
		// TODO maybe remove the archetype from the graph if it is empty?
		//  that might speed up queries matching a lot of empty archetypes
	}

	return true
}

// InsertComponents adds the given components to an existing entity. Values of
// component types the entity already has replace the previous value and keep
// their added tick. After the call, the components slice holds the live
// pointer erased values inside the storage.
func (s *Storage) InsertComponents(tick Tick, entityId EntityId, components []ErasedComponent) {
	prevArchetype, ok := s.entityToArchetype[entityId]
	if !ok {
		panic(fmt.Sprintf("entity %s does not exist", entityId))
	}

	// normalize the values to their pointer erased form
	for idx, component := range components {
		components[idx] = component.ComponentType().PointerTo(component)
	}

	newArchetype := prevArchetype

	for _, component := range components {
		componentType := component.ComponentType()
		if newArchetype.ContainsType(componentType) {
			continue
		}

		// we need to move to a new archetype
		newArchetype = s.archetypes.NextWith(newArchetype, componentType)
	}

	if newArchetype == prevArchetype {
		// no change in archetypes, update in the existing archetype
		for idx, component := range components {
			components[idx] = prevArchetype.ReplaceComponentValue(tick, entityId, component)
		}

		return
	}

	// only the component types the previous archetype is missing enter the
	// new archetype as fresh values, the rest transfers with the entity and
	// is replaced afterwards
	var added []ErasedComponent
	for _, component := range components {
		if !prevArchetype.ContainsType(component.ComponentType()) {
			added = append(added, component)
		}
	}

	// transfer our entity
	newArchetype.Import(tick, prevArchetype, entityId, added...)

	// remove from the previous archetype
	prevArchetype.Remove(entityId)

	// and update the index
	s.entityToArchetype[entityId] = newArchetype

	for idx, component := range components {
		componentType := component.ComponentType()

		if prevArchetype.ContainsType(componentType) {
			newArchetype.ReplaceComponentValue(tick, entityId, component)
		}

		componentValue, ok := newArchetype.GetComponent(entityId, componentType)
		if !ok {
			panic("component we've just inserted is gone")
		}

		components[idx] = componentValue.Value
	}
}

// InsertComponent adds a single component to an existing entity and returns
// the live pointer erased value inside the storage.
func (s *Storage) InsertComponent(tick Tick, entityId EntityId, component ErasedComponent) ErasedComponent {
	archetype, ok := s.entityToArchetype[entityId]
	if !ok {
		panic(fmt.Sprintf("entity %s does not exist", entityId))
	}

	componentType := component.ComponentType()
	component = componentType.PointerTo(component)

	if archetype.ContainsType(componentType) {
		return archetype.ReplaceComponentValue(tick, entityId, component)
	}

	// we need to move to a new archetype
	newArchetype := s.archetypes.NextWith(archetype, componentType)

	// transfer our entity
	newArchetype.Import(tick, archetype, entityId, component)

	// remove from the previous archetype
	archetype.Remove(entityId)

	// and update the index
	s.entityToArchetype[entityId] = newArchetype

	componentValue, ok := newArchetype.GetComponent(entityId, componentType)
	if !ok {
		panic("component we've just inserted is gone")
	}

	return componentValue.Value
}

// RemoveComponent removes the component of the given type from an entity and
// returns a copy of the removed value.
func (s *Storage) RemoveComponent(tick Tick, entityId EntityId, componentType *ComponentType) (ErasedComponent, bool) {
	archetype, ok := s.entityToArchetype[entityId]
	if !ok {
		panic(fmt.Sprintf("entity %s does not exist", entityId))
	}

	componentValue, ok := archetype.GetComponent(entityId, componentType)
	if !ok {
		// entity does not have the component in question
		return nil, false
	}

	copyOfComponent := componentType.CopyOf(componentValue.Value)

	// we need to move to a new archetype
	newArchetype := s.archetypes.NextWithout(archetype, componentType)

	// import the entity
	newArchetype.Import(tick, archetype, entityId)

	// remove it from the previous archetype
	archetype.Remove(entityId)

	// update index
	s.entityToArchetype[entityId] = newArchetype

	return copyOfComponent, true
}

func (s *Storage) Get(entityId EntityId) (EntityRef, bool) {
	archetype, ok := s.entityToArchetype[entityId]
	if !ok {
		return EntityRef{}, false
	}

	return archetype.Get(entityId)
}

// GetWithQuery looks up a single entity through a query. The entity is only
// returned if it matches the query, mutable component values are marked
// written just like during iteration.
func (s *Storage) GetWithQuery(ctx *QueryContext, q *Query, entityId EntityId) (EntityRef, bool) {
	archetype, ok := s.entityToArchetype[entityId]
	if !ok {
		return EntityRef{}, false
	}

	if !q.MatchesArchetype(archetype) {
		return EntityRef{}, false
	}

	entity, ok := archetype.Get(entityId)
	if !ok {
		panic("archetype does not contain entity")
	}

	if !q.Matches(ctx, entity) {
		return EntityRef{}, false
	}

	archetype.MarkWritten(ctx.ThisRun, entity.row, q.Mutate)

	return entity, true
}

// IterQuery returns an iterator over the entities matching the given query.
// Components the query fetches mutably are marked written before their
// entity is yielded.
func (s *Storage) IterQuery(ctx *QueryContext, q *Query) iter.Seq[EntityRef] {
	return func(yield func(EntityRef) bool) {
		for _, archetype := range s.archetypes.All() {
			if archetype.Len() == 0 {
				continue
			}

			if !q.MatchesArchetype(archetype) {
				continue
			}

			for it := archetype.Iter(); it.More(); {
				entity := it.Next()

				if !q.Matches(ctx, entity) {
					continue
				}

				archetype.MarkWritten(ctx.ThisRun, entity.row, q.Mutate)

				if !yield(entity) {
					return
				}
			}
		}
	}
}

func (s *Storage) HasComponent(entityId EntityId, componentType *ComponentType) bool {
	archetype, ok := s.entityToArchetype[entityId]
	if !ok {
		// the entity itself does not exist
		return false
	}

	return archetype.ContainsType(componentType)
}

func (s *Storage) EntityCount() int {
	return len(s.entityToArchetype)
}
