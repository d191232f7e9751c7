package hub

// DeferredCommand is storage work recorded during query iteration that runs
// once the storage is safe to mutate again.
type DeferredCommand func(storage *Storage)

// QueryContext carries the tick window of the system run executing a query.
type QueryContext struct {
	// LastRun is the tick the system executing the query last ran at.
	LastRun Tick

	// ThisRun is the tick of the current system run.
	ThisRun Tick

	// Defer records a command to run after iteration. Filters use this to
	// update their bookkeeping, they must not touch the storage while a
	// query is running.
	Defer func(command DeferredCommand)
}

type Filter struct {
	// the archetype needs to have these component types
	With []*ComponentType

	// the archetype must not have these component types
	Without []*ComponentType

	// Matches checks the per entity conditions of this filter, it may be nil.
	// It must only be called for entities of an archetype accepted by
	// Query.MatchesArchetype.
	Matches func(ctx *QueryContext, entity EntityRef) bool
}

type Query struct {
	// components we want to actually read
	Fetch []*ComponentType

	// components to fetch if the entity has them
	FetchOptional []*ComponentType

	// components we just want to check if they exist
	FetchHas []*ComponentType

	// components that are handed out mutably. Values of these are marked
	// written whenever the query yields their entity.
	Mutate []*ComponentType

	Filters []Filter
}

func (q *Query) MatchesArchetype(a *Archetype) bool {
	if !containsAllTypes(a, q.Fetch) {
		return false
	}

	for idx := range q.Filters {
		f := &q.Filters[idx]

		if !containsAllTypes(a, f.With) {
			return false
		}

		// negative check for Without
		for _, ty := range f.Without {
			if a.ContainsType(ty) {
				return false
			}
		}
	}

	return true
}

// Matches runs the per entity filters. It must only be called for entities of
// an archetype that matched MatchesArchetype.
func (q *Query) Matches(ctx *QueryContext, entity EntityRef) bool {
	for idx := range q.Filters {
		f := &q.Filters[idx]

		if f.Matches != nil && !f.Matches(ctx, entity) {
			return false
		}
	}

	return true
}

func containsAllTypes(a *Archetype, types []*ComponentType) bool {
	for _, ty := range types {
		if !a.ContainsType(ty) {
			return false
		}
	}

	return true
}
