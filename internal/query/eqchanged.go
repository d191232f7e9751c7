package query

import (
	"github.com/oliverbestmann/tandem/hub"
)

// trackedValue holds the last value of a component of type C that any value
// equality filter observed on the entity, together with the tick the value
// was last seen different and the tick each consumer last reported.
//
// The component is attached lazily to entities the first time a value
// equality filter sees them. It contains a map and is therefore not
// comparable itself, so it can not be watched by the filter that maintains it.
type trackedValue[C hub.IsComparableComponent[C]] struct {
	hub.Component[trackedValue[C]]

	// previous is the component value as of the last evaluation
	previous C

	// changed is the tick previous was last observed to differ
	changed hub.Tick

	// acks records per consumer the changed tick it last reported
	acks map[hub.ConsumerId]hub.Tick
}

// EqChanged matches entities whose component value of type C actually
// differs from the value the filter observed on its previous run. It never
// reports a write that left the value equal, which makes it a stricter
// version of Changed for systems that write components unconditionally.
//
// Every EqChanged instance tracks what it has reported on its own. Two
// systems, or two filters in one system, each see a change exactly once.
type EqChanged[C hub.IsComparableComponent[C]] struct{}

func (EqChanged[C]) embeddable(isEmbeddableMarker) {}

func (EqChanged[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()
	recordType := hub.ComponentTypeOf[trackedValue[C]]()

	// the world assigns the id once the query is bound to its system
	consumer := new(hub.ConsumerId)
	result.Consumers = append(result.Consumers, consumer)

	return []hub.Filter{
		{
			With: []*hub.ComponentType{componentType},

			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				cv, ok := entity.Get(componentType)
				if !ok {
					return false
				}

				// values that were not even written to since the last run
				// of the system can not have changed
				if cv.Changed < ctx.LastRun {
					return false
				}

				observed := *any(cv.Value).(*C)

				rv, ok := entity.Get(recordType)
				if !ok {
					// first time any filter sees this entity. Attaching the
					// tracking component moves the entity to another
					// archetype, which must wait until iteration is done.
					entityId := entity.EntityId
					thisRun := ctx.ThisRun

					ctx.Defer(func(storage *hub.Storage) {
						attachTrackedValue(storage, entityId, *consumer, observed, thisRun)
					})

					return true
				}

				record := any(rv.Value).(*trackedValue[C])

				if observed != record.previous {
					record.previous = observed
					record.changed = ctx.ThisRun
				}

				if record.acks[*consumer] == record.changed {
					// we already reported this change
					return false
				}

				record.acks[*consumer] = record.changed

				return true
			},
		},
	}
}

// attachTrackedValue runs deferred once the storage can be mutated again. The
// tick is the one captured when the filter evaluated the entity, not the tick
// the command runs at.
func attachTrackedValue[C hub.IsComparableComponent[C]](storage *hub.Storage, entityId hub.EntityId, consumer hub.ConsumerId, observed C, tick hub.Tick) {
	entity, ok := storage.Get(entityId)
	if !ok {
		// the entity is gone already
		return
	}

	rv, ok := entity.Get(hub.ComponentTypeOf[trackedValue[C]]())
	if !ok {
		storage.InsertComponent(tick, entityId, &trackedValue[C]{
			previous: observed,
			changed:  tick,
			acks:     map[hub.ConsumerId]hub.Tick{consumer: tick},
		})

		return
	}

	// another consumer attached the record first, merge our observation into
	// it the same way the filter itself would have
	record := any(rv.Value).(*trackedValue[C])

	if observed != record.previous {
		record.previous = observed
		record.changed = tick
	}

	record.acks[consumer] = record.changed
}
