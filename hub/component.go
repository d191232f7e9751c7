package hub

type isComponentMarker struct{}

type componentMarkerType struct{}

// ErasedComponent holds a pointer to a value
// that implements the IsComponent interface.
type ErasedComponent interface {
	ComponentType() *ComponentType
	isComponent(isComponentMarker)
}

type IsComponent[C any] interface {
	ErasedComponent
	IsComponent(C)
}

type IsComparableComponent[C IsComponent[C]] interface {
	IsComponent[C]
	IsErasedComparableComponent
	comparable
}

type IsImmutableComponent[C IsComponent[C]] interface {
	IsComponent[C]
	IsErasedImmutableComponent
}

type IsErasedComparableComponent interface {
	isComparableComponent(componentMarkerType)
}

type IsErasedImmutableComponent interface {
	isImmutableComponent(componentMarkerType)
}

// Component is embedded into a struct type to declare it a component.
type Component[C IsComponent[C]] struct{}

func (Component[C]) IsComponent(C) {}

func (Component[C]) isComponent(isComponentMarker) {}

func (Component[C]) ComponentType() *ComponentType {
	return nonComparableComponentTypeOf[C]()
}

// ComparableComponent declares a component whose values compare with ==.
// Only comparable components can be watched through value equality filters.
type ComparableComponent[C IsComparableComponent[C]] struct{}

func (ComparableComponent[C]) IsComponent(C) {}

func (ComparableComponent[C]) isComponent(isComponentMarker) {}

func (ComparableComponent[C]) isComparableComponent(componentMarkerType) {}

func (ComparableComponent[C]) ComponentType() *ComponentType {
	return comparableComponentTypeOf[C]()
}

// ImmutableComponent declares a component whose value never changes once it
// is inserted. It can not be fetched mutably. Mostly useful for markers.
type ImmutableComponent[C IsImmutableComponent[C]] struct{}

func (ImmutableComponent[C]) IsComponent(C) {}

func (ImmutableComponent[C]) isComponent(isComponentMarker) {}

func (ImmutableComponent[C]) isImmutableComponent(componentMarkerType) {}

func (ImmutableComponent[C]) ComponentType() *ComponentType {
	return immutableComponentTypeOf[C]()
}
