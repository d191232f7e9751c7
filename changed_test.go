package tandem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Counter struct {
	ComparableComponent[Counter]
	Value int
}

var _ = ValidateComponent[Counter]()

type counterItem struct {
	EqChanged[Counter]
	Counter Counter
}

func TestEqChangedReportsOnce(t *testing.T) {
	w := NewWorld()

	w.Spawn([]ErasedComponent{Counter{Value: 0}})

	var seen []int
	reader := func(q Query[counterItem]) {
		for item := range q.Items() {
			seen = append(seen, item.Counter.Value)
		}
	}

	// the first run observes the initial value
	w.RunSystem(reader)
	require.Equal(t, []int{0}, seen)

	// the second run must not report it again
	w.RunSystem(reader)
	require.Equal(t, []int{0}, seen)

	// writing the same value marks the component written, but the value
	// did not move, so the filter stays quiet
	writeSame := func(q Query[*Counter]) {
		for counter := range q.Items() {
			counter.Value = 0
		}
	}

	w.RunSystem(writeSame)
	w.RunSystem(reader)
	require.Equal(t, []int{0}, seen)

	// an actual change is reported exactly once
	writeSeven := func(q Query[*Counter]) {
		for counter := range q.Items() {
			counter.Value = 7
		}
	}

	w.RunSystem(writeSeven)
	w.RunSystem(reader)
	w.RunSystem(reader)
	require.Equal(t, []int{0, 7}, seen)
}

func TestEqChangedVersusChanged(t *testing.T) {
	type writtenItem struct {
		Changed[Counter]
		Counter Counter
	}

	w := NewWorld()

	w.Spawn([]ErasedComponent{Counter{Value: 2}})

	var eqSeen, writtenSeen int

	eqReader := func(q Query[counterItem]) {
		for range q.Items() {
			eqSeen++
		}
	}

	writtenReader := func(q Query[writtenItem]) {
		for range q.Items() {
			writtenSeen++
		}
	}

	// both filters report the freshly spawned component once
	w.RunSystem(eqReader)
	w.RunSystem(writtenReader)
	w.RunSystem(eqReader)
	w.RunSystem(writtenReader)
	require.Equal(t, 1, eqSeen)
	require.Equal(t, 1, writtenSeen)

	// a write that keeps the value equal trips the write tick filter
	// but not the value equality filter
	writeSame := func(q Query[*Counter]) {
		for counter := range q.Items() {
			counter.Value = 2
		}
	}

	w.RunSystem(writeSame)
	w.RunSystem(writtenReader)
	w.RunSystem(eqReader)
	require.Equal(t, 2, writtenSeen)
	require.Equal(t, 1, eqSeen)
}

func TestEqChangedTwoSystems(t *testing.T) {
	w := NewWorld()

	w.Spawn([]ErasedComponent{Counter{Value: 5}})

	var seenA, seenB []int

	readerA := func(q Query[counterItem]) {
		for item := range q.Items() {
			seenA = append(seenA, item.Counter.Value)
		}
	}

	readerB := func(q Query[counterItem]) {
		for item := range q.Items() {
			seenB = append(seenB, item.Counter.Value)
		}
	}

	w.RunSystem(readerA)
	w.RunSystem(readerB)
	w.RunSystem(readerA)
	w.RunSystem(readerB)

	write := func(q Query[*Counter]) {
		for counter := range q.Items() {
			counter.Value = 9
		}
	}

	w.RunSystem(write)

	// this time the other reader goes first, both must still see the
	// change exactly once
	w.RunSystem(readerB)
	w.RunSystem(readerA)
	w.RunSystem(readerB)
	w.RunSystem(readerA)

	require.Equal(t, []int{5, 9}, seenA)
	require.Equal(t, []int{5, 9}, seenB)
}

func TestEqChangedTwoQueriesOneSystem(t *testing.T) {
	w := NewWorld()

	w.Spawn([]ErasedComponent{Counter{Value: 3}})

	var first, second []int

	both := func(qa Query[counterItem], qb Query[counterItem]) {
		for item := range qa.Items() {
			first = append(first, item.Counter.Value)
		}

		for item := range qb.Items() {
			second = append(second, item.Counter.Value)
		}
	}

	w.RunSystem(both)
	w.RunSystem(both)

	write := func(q Query[*Counter]) {
		for counter := range q.Items() {
			counter.Value = 4
		}
	}

	w.RunSystem(write)
	w.RunSystem(both)
	w.RunSystem(both)

	require.Equal(t, []int{3, 4}, first)
	require.Equal(t, []int{3, 4}, second)
}

func TestEqChangedDespawnedBeforeFlush(t *testing.T) {
	w := NewWorld()

	id := w.Spawn([]ErasedComponent{Counter{Value: 1}})

	// the entity goes away in the same system run that observed it for
	// the first time
	w.RunSystem(func(q Query[counterItem], commands *Commands) {
		count := 0
		for range q.Items() {
			count++
		}

		require.Equal(t, 1, count)
		commands.Entity(id).Despawn()
	})

	require.Zero(t, w.storage.EntityCount())

	w.RunSystem(func(q Query[counterItem]) {
		for range q.Items() {
			require.Fail(t, "the entity must be gone")
		}
	})
}

func TestEqChangedOnlyOnMovement(t *testing.T) {
	w := NewWorld()

	w.Spawn([]ErasedComponent{Counter{Value: 0}})

	var runs int
	write := func(q Query[*Counter]) {
		runs++
		for counter := range q.Items() {
			// writes every run, moves the value every third run
			counter.Value = runs / 3
		}
	}

	var seen []int
	reader := func(q Query[counterItem]) {
		for item := range q.Items() {
			seen = append(seen, item.Counter.Value)
		}
	}

	for range 8 {
		w.RunSystem(write)
		w.RunSystem(reader)
	}

	require.Equal(t, []int{0, 1, 2}, seen)
}
