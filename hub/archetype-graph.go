package hub

import "slices"

// ArchetypeGraph holds all archetypes of one storage and caches the
// transitions between them that inserting or removing a single component
// type causes.
type ArchetypeGraph struct {
	archetypes  []*Archetype
	lookup      map[ArchetypeId]*Archetype
	transitions map[archetypeTransition]*Archetype
}

func (a *ArchetypeGraph) Lookup(types []*ComponentType) *Archetype {
	id, sortedTypes := ArchetypeIdOf(types)

	at, ok := a.lookup[id]
	if !ok {
		if a.lookup == nil {
			a.lookup = map[ArchetypeId]*Archetype{}
		}

		at = makeArchetype(id, slices.Clone(sortedTypes))
		a.lookup[id] = at
		a.archetypes = append(a.archetypes, at)
	}

	return at
}

func (a *ArchetypeGraph) All() []*Archetype {
	return a.archetypes
}

func (a *ArchetypeGraph) NextWith(current *Archetype, componentType *ComponentType) *Archetype {
	tr := archetypeTransition{
		Archetype:     current,
		ComponentType: componentType,
		IsInsert:      true,
	}

	if next, ok := a.transitions[tr]; ok {
		return next
	}

	// get the target archetype by adding the componentType
	types := slices.Clone(current.Types)
	types = append(types, componentType)

	return a.insertTransition(tr, types)
}

func (a *ArchetypeGraph) NextWithout(current *Archetype, componentType *ComponentType) *Archetype {
	tr := archetypeTransition{
		Archetype:     current,
		ComponentType: componentType,
		IsInsert:      false,
	}

	if next, ok := a.transitions[tr]; ok {
		return next
	}

	// get the target archetype by removing the componentType
	var types []*ComponentType
	for _, ty := range current.Types {
		if ty != componentType {
			types = append(types, ty)
		}
	}

	return a.insertTransition(tr, types)
}

func (a *ArchetypeGraph) insertTransition(tr archetypeTransition, types []*ComponentType) *Archetype {
	if _, exists := a.transitions[tr]; exists {
		panic("archetype transition already exists")
	}

	if a.transitions == nil {
		a.transitions = map[archetypeTransition]*Archetype{}
	}

	archetype := a.Lookup(types)
	a.transitions[tr] = archetype

	return archetype
}

type archetypeTransition struct {
	Archetype     *Archetype
	ComponentType *ComponentType
	IsInsert      bool
}
