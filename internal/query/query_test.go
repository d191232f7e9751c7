package query

import (
	"reflect"
	"testing"

	"github.com/oliverbestmann/tandem/hub"
	"github.com/stretchr/testify/require"
)

type Position struct {
	hub.ComparableComponent[Position]
	X int
}

type Velocity struct {
	hub.ComparableComponent[Velocity]
	X int
}

type Acceleration struct {
	hub.ComparableComponent[Acceleration]
	X int
}

type SomeConfig struct {
	hub.ComparableComponent[SomeConfig]
	MaxX, MaxSpeed int
}

type Pinned struct {
	hub.ImmutableComponent[Pinned]
}

func TestParseQuerySimple(t *testing.T) {
	t.Run("value fetch", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[Position]())
		require.NoError(t, err)

		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Fetch)
		require.Empty(t, parsed.Query.Mutate)
		require.Len(t, parsed.Setters, 1)
	})

	t.Run("mutable fetch", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[*Position]())
		require.NoError(t, err)

		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Fetch)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Mutate)
	})

	t.Run("mutable fetch of immutable component", func(t *testing.T) {
		_, err := ParseQuery(reflect.TypeFor[*Pinned]())
		require.Error(t, err)
	})

	t.Run("option", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[Option[Position]]())
		require.NoError(t, err)

		require.Empty(t, parsed.Query.Fetch)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.FetchOptional)
	})

	t.Run("option mut", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[OptionMut[Position]]())
		require.NoError(t, err)

		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.FetchOptional)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Mutate)
	})

	t.Run("has", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[Has[Position]]())
		require.NoError(t, err)

		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.FetchHas)
	})

	t.Run("with", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[With[Position]]())
		require.NoError(t, err)

		require.Len(t, parsed.Query.Filters, 1)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Filters[0].With)
	})

	t.Run("without", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[Without[Position]]())
		require.NoError(t, err)

		require.Len(t, parsed.Query.Filters, 1)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Filters[0].Without)
	})

	t.Run("added and changed constrain the archetype", func(t *testing.T) {
		for _, ty := range []reflect.Type{
			reflect.TypeFor[Added[Position]](),
			reflect.TypeFor[Changed[Position]](),
		} {
			parsed, err := ParseQuery(ty)
			require.NoError(t, err)

			require.Len(t, parsed.Query.Filters, 1)
			require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Filters[0].With)
			require.NotNil(t, parsed.Query.Filters[0].Matches)
		}
	})

	t.Run("or does not leak branch types", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[Or[With[Velocity], Without[Position]]]())
		require.NoError(t, err)

		require.Len(t, parsed.Query.Filters, 1)
		require.Empty(t, parsed.Query.Filters[0].With)
		require.Empty(t, parsed.Query.Filters[0].Without)
		require.NotNil(t, parsed.Query.Filters[0].Matches)
	})

	t.Run("and pulls up branch types", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[And[With[Velocity], Without[Position]]]())
		require.NoError(t, err)

		require.Len(t, parsed.Query.Filters, 1)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Velocity]()}, parsed.Query.Filters[0].With)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Filters[0].Without)
	})

	t.Run("eq changed registers a consumer slot", func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[EqChanged[Position]]())
		require.NoError(t, err)

		require.Len(t, parsed.Consumers, 1)
		require.Len(t, parsed.Query.Filters, 1)
		require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Filters[0].With)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := ParseQuery(reflect.TypeFor[int]())
		require.Error(t, err)
	})
}

func TestParseQueryStruct(t *testing.T) {
	type Item struct {
		// can be embedded
		hub.EntityId

		// embeddable filters can also be embedded
		Without[Velocity]
		Changed[Position]

		// normal fetches can be recursive
		Nested struct {
			Position     *Position
			Config       SomeConfig
			Acceleration Has[Acceleration]
		}
	}

	parsed, err := ParseQuery(reflect.TypeFor[Item]())
	require.NoError(t, err)

	require.Equal(t, []*hub.ComponentType{
		hub.ComponentTypeOf[Position](),
		hub.ComponentTypeOf[SomeConfig](),
	}, parsed.Query.Fetch)

	require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Acceleration]()}, parsed.Query.FetchHas)
	require.Equal(t, []*hub.ComponentType{hub.ComponentTypeOf[Position]()}, parsed.Query.Mutate)
	require.Len(t, parsed.Query.Filters, 2)

	t.Run("components must not be embedded", func(t *testing.T) {
		type BadItem struct {
			Position
		}

		_, err := ParseQuery(reflect.TypeFor[BadItem]())
		require.Error(t, err)
	})
}

func TestFromEntity(t *testing.T) {
	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{
		&Position{X: 1},
		&Velocity{X: 2},
	})

	entity, _ := s.Get(10)

	runTestFromEntity(t, entity, Position{X: 1})
	runTestFromEntity(t, entity, &Position{X: 1})

	{
		type QueryItemWithMutable struct {
			Position *Position
			Velocity Velocity
		}

		runTestFromEntity(t, entity, QueryItemWithMutable{
			Position: &Position{X: 1},
			Velocity: Velocity{X: 2},
		})
	}

	{
		type QueryItemWithHas struct {
			Position    Position
			HasVelocity Has[Velocity]
		}

		runTestFromEntity(t, entity, QueryItemWithHas{
			Position:    Position{X: 1},
			HasVelocity: Has[Velocity]{Exists: true},
		})
	}

	{
		type QueryItemWithOption struct {
			Position     Option[Position]
			Velocity     OptionMut[Velocity]
			Acceleration Option[Acceleration]
		}

		parsed, err := ParseQuery(reflect.TypeFor[QueryItemWithOption]())
		require.NoError(t, err)

		var item QueryItemWithOption
		FromEntity(&item, parsed.Setters, entity)

		require.Equal(t, Position{X: 1}, item.Position.MustGet())
		require.Equal(t, &Velocity{X: 2}, item.Velocity.MustGet())

		_, ok := item.Acceleration.Get()
		require.False(t, ok)
		require.Equal(t, Acceleration{}, item.Acceleration.OrZero())
	}

	{
		type QueryItemWithWith struct {
			With[Velocity]
			Position Position
		}

		runTestFromEntity(t, entity, QueryItemWithWith{
			Position: Position{X: 1},
		})
	}

	{
		type QueryItemWithEmbeddedEntity struct {
			hub.EntityId
			With[Velocity]
		}

		runTestFromEntity(t, entity, QueryItemWithEmbeddedEntity{
			EntityId: hub.EntityId(10),
		})
	}

	{
		type QueryItemWithNestedStruct struct {
			hub.EntityId

			Motion struct {
				Position *Position
				Velocity Velocity
			}
		}

		runTestFromEntity(t, entity, QueryItemWithNestedStruct{
			EntityId: hub.EntityId(10),
			Motion: struct {
				Position *Position
				Velocity Velocity
			}{
				Position: &Position{X: 1},
				Velocity: Velocity{X: 2},
			},
		})
	}

	runTestFromEntity(t, entity, hub.EntityId(10))
}

func runTestFromEntity[Q any](t *testing.T, entity hub.EntityRef, expected Q) {
	t.Run(reflect.TypeFor[Q]().String(), func(t *testing.T) {
		parsed, err := ParseQuery(reflect.TypeFor[Q]())
		require.NoError(t, err)

		var queryTarget Q
		FromEntity(&queryTarget, parsed.Setters, entity)
		require.Equal(t, expected, queryTarget)
	})
}

func BenchmarkFromEntity(b *testing.B) {
	type QueryItem struct {
		hub.EntityId

		With[Acceleration]
		Changed[Velocity]

		Position        *Position
		Velocity        Velocity
		Acceleration    Option[Acceleration]
		HasAcceleration Has[Acceleration]
	}

	query, err := ParseQuery(reflect.TypeFor[QueryItem]())
	require.NoError(b, err)

	s := hub.NewStorage()
	s.Spawn(1, 10, []hub.ErasedComponent{
		&Position{X: 1},
		&Velocity{X: 2},
		&Acceleration{X: 3},
	})

	entity, _ := s.Get(10)

	var value QueryItem

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		FromEntity(&value, query.Setters, entity)
	}
}
