package hub

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkTypedColumn_Get(b *testing.B) {
	type Velocity struct {
		ComparableComponent[Velocity]
		X, Y float64
	}

	velocities := ComponentTypeOf[Velocity]().MakeColumn()

	// append a random row
	for range 1000 {
		velocities.Append(1, &Velocity{X: rand.Float64(), Y: rand.Float64()})
	}

	b.ReportAllocs()
	b.ResetTimer()

	var dummy Tick

	// get the row
	for b.Loop() {
		for row := range 1000 {
			componentValue := velocities.Get(Row(row))
			dummy += componentValue.Added
		}
	}
}

func TestTypedColumn_MarkWritten(t *testing.T) {
	type Health struct {
		ComparableComponent[Health]
		Value int
	}

	column := ComponentTypeOf[Health]().MakeColumn()

	column.Append(1, &Health{Value: 10})
	column.Append(2, &Health{Value: 20})

	column.MarkWritten(7, 0)

	first := column.Get(0)
	require.Equal(t, Tick(1), first.Added)
	require.Equal(t, Tick(7), first.Changed)

	second := column.Get(1)
	require.Equal(t, Tick(2), second.Changed)
}

func TestTypedColumn_SwapRemove(t *testing.T) {
	type Health struct {
		ComparableComponent[Health]
		Value int
	}

	column := ComponentTypeOf[Health]().MakeColumn()

	column.Append(1, &Health{Value: 10})
	column.Append(2, &Health{Value: 20})
	column.Append(3, &Health{Value: 30})

	// drop the first row the same way the archetype does
	column.Copy(2, 0)
	column.Truncate(2)

	require.Equal(t, 2, column.Len())

	first := column.Get(0)
	require.Equal(t, 30, first.Value.(*Health).Value)
	require.Equal(t, Tick(3), first.Added)
}
