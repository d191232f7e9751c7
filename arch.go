package tandem

import (
	"github.com/oliverbestmann/tandem/hub"
	"github.com/oliverbestmann/tandem/internal/query"
)

// EntityId uniquely identifies an entity in a World.
type EntityId = hub.EntityId

// Tick counts system runs within a World. Component values record the tick
// they were added and last written at, which is what change detection runs on.
type Tick = hub.Tick

// NoTick is the zero Tick. It marks bookkeeping values that were never set.
const NoTick = hub.NoTick

// IsComponent can be used in a type parameter to ensure that type T is a Component type.
//
// To implement the IsComponent interface for a type, you must embed the Component type.
type IsComponent[T any] = hub.IsComponent[T]

// IsImmutableComponent indicates that a component is immutable and can not be queried
// using pointer access. Immutable components can be updated by inserting a new copy of the
// same component into an entity using Commands.
//
// To implement the IsImmutableComponent interface for a type, you must embed the ImmutableComponent type.
type IsImmutableComponent[T IsComponent[T]] = hub.IsImmutableComponent[T]

// IsComparableComponent indicates that a component is comparable in the sense of the
// go specification. Only comparable components can be used with the EqChanged query
// filter, which compares component values instead of relying on write ticks.
//
// To implement the IsComparableComponent interface for a type, you must embed the ComparableComponent type.
type IsComparableComponent[T IsComponent[T]] = hub.IsComparableComponent[T]

// Component is a zero sized type that may be embedded into a struct to turn that
// struct into a component (see IsComponent).
type Component[T IsComponent[T]] = hub.Component[T]

// ImmutableComponent is a zero sized type that may be embedded into a struct to turn that
// struct into an immutable component (see IsComponent).
type ImmutableComponent[T hub.IsImmutableComponent[T]] = hub.ImmutableComponent[T]

// ComparableComponent is a zero sized type that may be embedded into a struct to turn that
// struct into a comparable component (see IsComponent).
type ComparableComponent[T IsComparableComponent[T]] = hub.ComparableComponent[T]

// ErasedComponent indicates a type erased Component value.
//
// Values handed out by a World are usually pointers, even though the
// interface is implemented directly on the component type.
type ErasedComponent = hub.ErasedComponent

// ComponentType describes a component type at runtime.
type ComponentType = hub.ComponentType

// ComponentTypeOf returns the runtime type descriptor of the component C.
func ComponentTypeOf[C IsComponent[C]]() *ComponentType {
	return hub.ComponentTypeOf[C]()
}

// Option is a query parameter that fetches a given Component of type T
// if it exists on an entity.
type Option[C IsComponent[C]] = query.Option[C]

// OptionMut is a query parameter that fetches a pointer to a Component of type T
// if it exists on an entity.
type OptionMut[C IsComponent[C]] = query.OptionMut[C]

// Has is a query parameter that does not fetch the actual Component value of type T,
// but rather just indicates if a component of such type exists on the entity. Currently
// it does not provide a performance boost over using an Option.
type Has[C IsComponent[C]] = query.Has[C]

// With is a query filter that constraints the entities queried to include only
// entities that have a Component of type T.
type With[C IsComponent[C]] = query.With[C]

// Without is a query filter that constraints the entities queried to include only
// entities that do not have a Component of type T.
type Without[C IsComponent[C]] = query.Without[C]

// Added is a query filter that constraints the entities matched to include only
// entities that have added a component of type C since the last run of the
// system owning the Query.
type Added[C IsComponent[C]] = query.Added[C]

// Changed is a query filter that constraints the entities matched to include only
// entities whose Component value of type C was written since the last run of the
// system owning the Query.
//
// Writing includes fetching the component mutably from a query, even if the
// system never modifies the value. Use EqChanged to filter on actual value
// changes instead.
type Changed[C IsComponent[C]] = query.Changed[C]

// EqChanged is a query filter that constraints the entities matched to include
// only entities whose Component value of type C differs from the value this
// filter observed the last time it reported the entity.
//
// This is a stricter version of Changed: a system that fetches a component
// mutably marks it written on every run, so Changed matches the entity on
// every following run even if the value never moved. EqChanged compares the
// current value against the previously observed one and matches only on a
// real difference.
//
// Each EqChanged instance tracks its own observations. Two systems filtering
// on the same component type each see a change exactly once, no matter in
// which order they run. The component type must embed ComparableComponent.
type EqChanged[C IsComparableComponent[C]] = query.EqChanged[C]

// Or is a query filter that allows you to combine two query filters with a logical 'or'.
// Simply adding multiple filters to a query requires all filters to match. Using Or
// you can build a query where just one of multiple filters needs to match.
type Or[A, B query.Filter] = query.Or[A, B]

// And is a query filter that combines two query filters. It is mostly useful to
// group filters inside an Or.
type And[A, B query.Filter] = query.And[A, B]
