package query

import (
	"reflect"
	"testing"

	"github.com/oliverbestmann/tandem/hub"
	"github.com/stretchr/testify/require"
)

// eqQuery is one consumer of value change information with its own run
// bookkeeping, driven directly against a storage.
type eqQuery struct {
	parsed  ParsedQuery
	lastRun hub.Tick
}

func newEqQuery[Q any](t testing.TB, consumers *hub.ConsumerId) *eqQuery {
	t.Helper()

	parsed, err := ParseQuery(reflect.TypeFor[Q]())
	require.NoError(t, err)

	for _, slot := range parsed.Consumers {
		*consumers += 1
		*slot = *consumers
	}

	return &eqQuery{parsed: parsed}
}

// run iterates the query at the given tick and applies the deferred commands
// afterwards, the way a system run would.
func (q *eqQuery) run(s *hub.Storage, thisRun hub.Tick) []hub.EntityId {
	entities, deferred := q.iterate(s, thisRun)

	for _, command := range deferred {
		command(s)
	}

	return entities
}

func (q *eqQuery) iterate(s *hub.Storage, thisRun hub.Tick) ([]hub.EntityId, []hub.DeferredCommand) {
	var deferred []hub.DeferredCommand

	ctx := hub.QueryContext{
		LastRun: q.lastRun,
		ThisRun: thisRun,
		Defer: func(command hub.DeferredCommand) {
			deferred = append(deferred, command)
		},
	}

	var entities []hub.EntityId
	for entity := range s.IterQuery(&ctx, &q.parsed.Query) {
		entities = append(entities, entity.EntityId)
	}

	q.lastRun = thisRun

	return entities, deferred
}

// writePosition fetches the component mutably, the changed tick moves forward
// whether or not the value actually changes.
func writePosition(t testing.TB, s *hub.Storage, entityId hub.EntityId, tick hub.Tick, x int) {
	t.Helper()

	mutate := hub.Query{
		Fetch:  []*hub.ComponentType{hub.ComponentTypeOf[Position]()},
		Mutate: []*hub.ComponentType{hub.ComponentTypeOf[Position]()},
	}

	ctx := hub.QueryContext{LastRun: tick, ThisRun: tick}

	entity, ok := s.GetWithQuery(&ctx, &mutate, entityId)
	require.True(t, ok)

	value, _ := entity.Get(hub.ComponentTypeOf[Position]())
	value.Value.(*Position).X = x
}

func TestEqChanged_FirstObservation(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	q := newEqQuery[EqChanged[Position]](t, &consumers)

	// the first run reports the entity and sets up tracking
	require.Equal(t, []hub.EntityId{10}, q.run(s, 2))

	entity, _ := s.Get(10)
	rv, ok := entity.Get(hub.ComponentTypeOf[trackedValue[Position]]())
	require.True(t, ok)

	record := any(rv.Value).(*trackedValue[Position])
	require.Equal(t, Position{X: 1}, record.previous)
	require.Equal(t, hub.Tick(2), record.changed)
	require.Equal(t, map[hub.ConsumerId]hub.Tick{1: 2}, record.acks)

	// nothing wrote to the component since, the next run stays silent
	require.Empty(t, q.run(s, 3))
}

func TestEqChanged_WriteWithoutChange(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	q := newEqQuery[EqChanged[Position]](t, &consumers)
	require.Equal(t, []hub.EntityId{10}, q.run(s, 2))

	// a write that leaves the value as is must not be reported
	writePosition(t, s, 10, 4, 1)
	require.Empty(t, q.run(s, 5))
}

func TestEqChanged_ReportsEachChangeOnce(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	q := newEqQuery[EqChanged[Position]](t, &consumers)
	require.Equal(t, []hub.EntityId{10}, q.run(s, 2))

	writePosition(t, s, 10, 4, 2)
	require.Equal(t, []hub.EntityId{10}, q.run(s, 5))

	// the same change is not reported twice
	require.Empty(t, q.run(s, 6))

	// flipping back to an earlier value is a change again
	writePosition(t, s, 10, 7, 1)
	require.Equal(t, []hub.EntityId{10}, q.run(s, 8))
}

func TestEqChanged_ConsumersAreIndependent(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	qa := newEqQuery[EqChanged[Position]](t, &consumers)
	qb := newEqQuery[EqChanged[Position]](t, &consumers)

	// both consumers see the initial value
	require.Equal(t, []hub.EntityId{10}, qa.run(s, 2))
	require.Equal(t, []hub.EntityId{10}, qb.run(s, 3))

	writePosition(t, s, 10, 4, 2)

	// each consumer sees the change exactly once, in its own run
	require.Equal(t, []hub.EntityId{10}, qa.run(s, 5))
	require.Equal(t, []hub.EntityId{10}, qb.run(s, 6))

	require.Empty(t, qa.run(s, 7))
	require.Empty(t, qb.run(s, 8))
}

func TestEqChanged_ConcurrentFirstObservation(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	qa := newEqQuery[EqChanged[Position]](t, &consumers)
	qb := newEqQuery[EqChanged[Position]](t, &consumers)

	// both consumers iterate before either of them could attach its
	// tracking record
	entitiesA, deferredA := qa.iterate(s, 2)
	entitiesB, deferredB := qb.iterate(s, 3)

	require.Equal(t, []hub.EntityId{10}, entitiesA)
	require.Equal(t, []hub.EntityId{10}, entitiesB)

	for _, command := range deferredA {
		command(s)
	}
	for _, command := range deferredB {
		command(s)
	}

	// the second command merged into the record the first one created
	entity, _ := s.Get(10)
	rv, ok := entity.Get(hub.ComponentTypeOf[trackedValue[Position]]())
	require.True(t, ok)

	record := any(rv.Value).(*trackedValue[Position])
	require.Equal(t, hub.Tick(2), record.changed)
	require.Equal(t, map[hub.ConsumerId]hub.Tick{1: 2, 2: 2}, record.acks)

	// neither consumer reports the initial value again
	writePosition(t, s, 10, 4, 1)
	require.Empty(t, qa.run(s, 5))
	require.Empty(t, qb.run(s, 6))
}

func TestEqChanged_DespawnBeforeCommandRuns(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	q := newEqQuery[EqChanged[Position]](t, &consumers)

	entities, deferred := q.iterate(s, 2)
	require.Equal(t, []hub.EntityId{10}, entities)

	s.Despawn(10)

	// the deferred attach finds the entity gone and drops the work
	for _, command := range deferred {
		command(s)
	}

	require.Equal(t, 0, s.EntityCount())
}

func TestEqChanged_InStructQuery(t *testing.T) {
	type Item struct {
		hub.EntityId
		EqChanged[Position]

		Position Position
	}

	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})
	s.Spawn(1, 11, []hub.ErasedComponent{&Velocity{X: 1}})

	q := newEqQuery[Item](t, &consumers)

	// only the entity carrying the component is considered
	require.Equal(t, []hub.EntityId{10}, q.run(s, 2))
	require.Empty(t, q.run(s, 3))

	writePosition(t, s, 10, 4, 7)
	require.Equal(t, []hub.EntityId{10}, q.run(s, 5))
}

func TestEqChanged_NewEntityBetweenRuns(t *testing.T) {
	var consumers hub.ConsumerId

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{&Position{X: 1}})

	q := newEqQuery[EqChanged[Position]](t, &consumers)
	require.Equal(t, []hub.EntityId{10}, q.run(s, 2))

	// an entity spawned later is picked up on its first observation
	s.Spawn(3, 11, []hub.ErasedComponent{&Position{X: 5}})

	require.Equal(t, []hub.EntityId{11}, q.run(s, 4))
	require.Empty(t, q.run(s, 5))
}
