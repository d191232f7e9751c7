package tandem

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/oliverbestmann/tandem/hub"
	"github.com/oliverbestmann/tandem/internal/query"
)

// Query provides access to all entities matching the item type T.
//
// T is either a component type, a pointer to a component type for mutable
// access, or a struct combining components, an EntityId field, Option and
// Has parameters and query filters such as With, Without, Changed or
// EqChanged.
//
// A Query must be injected into a system as a parameter. The tick window
// used for change detection is derived from the system the query belongs to.
type Query[T any] struct {
	inner *innerQuery
}

// queryAccessor gives the generic system machinery access to the
// unexported state of a Query value.
type queryAccessor interface {
	setInner(inner *innerQuery)
}

func (q *Query[T]) setInner(inner *innerQuery) {
	q.inner = inner
}

func (Query[T]) init(world *World) SystemParamState {
	ptrToQuery := reflect.New(reflect.TypeFor[Query[T]]())

	inner := newInnerQuery(world, reflect.TypeFor[T]())
	ptrToQuery.Interface().(queryAccessor).setInner(inner)

	return &queryParamState{
		inner:      inner,
		queryValue: ptrToQuery.Elem(),
	}
}

// Items returns an iterator over all matching entities.
//
// The yielded item value is reused between iterations. Mutable component
// access stays valid only during the iteration step it was yielded in.
func (q Query[T]) Items() iter.Seq[T] {
	return func(yield func(T) bool) {
		inner := q.inner
		w := inner.world

		target := inner.item.Interface().(*T)

		w.activeQueries.Add(1)
		defer w.activeQueries.Add(-1)

		for ref := range w.storage.IterQuery(&inner.ctx, &inner.parsed.Query) {
			query.FromEntity(target, inner.parsed.Setters, ref)

			if !yield(*target) {
				return
			}
		}
	}
}

// Get fetches the item for one specific entity. It returns false if the
// entity does not exist or does not match the query.
func (q Query[T]) Get(entityId EntityId) (T, bool) {
	inner := q.inner
	w := inner.world

	ref, ok := w.storage.GetWithQuery(&inner.ctx, &inner.parsed.Query, entityId)
	if !ok {
		var zero T
		return zero, false
	}

	target := inner.item.Interface().(*T)
	query.FromEntity(target, inner.parsed.Setters, ref)

	return *target, true
}

// Count returns the number of entities matching this query.
// Per entity filters are evaluated, Count consumes change detection
// state the same way iterating does.
func (q Query[T]) Count() int {
	var count int

	for range q.Items() {
		count += 1
	}

	return count
}

// Single returns the item of the query if the query matches exactly one
// entity.
func (q Query[T]) Single() (T, bool) {
	var result T
	var count int

	for item := range q.Items() {
		result = item
		count += 1
	}

	if count != 1 {
		var zero T
		return zero, false
	}

	return result, true
}

// MustGet returns the single matching item and panics if the query does
// not match exactly one entity.
func (q Query[T]) MustGet() T {
	value, ok := q.Single()
	if !ok {
		panic("query did not match exactly one entity")
	}

	return value
}

// innerQuery is the non generic part of a Query.
type innerQuery struct {
	world  *World
	parsed query.ParsedQuery
	ctx    hub.QueryContext

	// item is a pointer to a scratch value of the queried type,
	// reused when building items
	item reflect.Value
}

func newInnerQuery(world *World, itemType reflect.Type) *innerQuery {
	parsed, err := query.ParseQuery(itemType)
	if err != nil {
		panic(fmt.Sprintf("can not build query for %s: %s", itemType, err))
	}

	inner := &innerQuery{
		world:  world,
		parsed: parsed,
		item:   reflect.New(itemType),
	}

	// every value equality filter of the query gets its own consumer id
	for _, consumer := range parsed.Consumers {
		*consumer = world.reserveConsumerId()
	}

	inner.ctx.Defer = world.deferCommand

	return inner
}

type queryParamState struct {
	inner *innerQuery

	// queryValue is an addressable value holding the Query
	queryValue reflect.Value
}

func (s *queryParamState) getValue(sc systemContext) reflect.Value {
	// refresh the tick window of the owning system
	s.inner.ctx.LastRun = sc.LastRun
	s.inner.ctx.ThisRun = s.inner.world.currentTick

	return s.queryValue
}

func (s *queryParamState) cleanupValue() {
}

func (s *queryParamState) valueType() reflect.Type {
	return s.queryValue.Type()
}
