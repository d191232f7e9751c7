package hub

import (
	"log/slog"
	"maps"
	"reflect"
	"sync/atomic"
	"unsafe"
)

type SetValue func(target any, source ErasedComponent)

type MakeColumn func() Column

type ComponentTypeId uint16

type ComponentType struct {
	Name       string
	Type       reflect.Type
	MakeColumn MakeColumn
	SetValue   SetValue

	// The Id of the type
	Id ComponentTypeId

	// Comparable indicates that values of this type compare with ==.
	Comparable bool

	// Immutable indicates that values of this type never change once inserted.
	// Immutable components can not be fetched mutably.
	Immutable bool
}

func ComponentTypeOf[C IsComponent[C]]() *ComponentType {
	var zeroValue C

	//goland:noinspection GoDfaNilDereference
	return zeroValue.ComponentType()
}

func (c *ComponentType) New() ErasedComponent {
	return reflect.New(c.Type).Interface().(ErasedComponent)
}

// CopyOf returns a pointer erased copy of the given component value.
// The value may be pointer erased or value erased.
func (c *ComponentType) CopyOf(value ErasedComponent) ErasedComponent {
	target := reflect.New(c.Type)

	source := reflect.ValueOf(value)
	if source.Kind() == reflect.Pointer {
		source = source.Elem()
	}

	target.Elem().Set(source)

	return target.Interface().(ErasedComponent)
}

// PointerTo returns a pointer erased view of the given component value. A value
// that is already pointer erased is returned unchanged, anything else is copied
// into freshly allocated memory first.
func (c *ComponentType) PointerTo(value ErasedComponent) ErasedComponent {
	if reflect.TypeOf(value).Kind() == reflect.Pointer {
		return value
	}

	return c.CopyOf(value)
}

func (c *ComponentType) PtrType() reflect.Type {
	return reflect.PointerTo(c.Type)
}

func (c *ComponentType) String() string {
	return c.Name
}

var componentTypes atomic.Pointer[map[unsafe.Pointer]*ComponentType]

func init() {
	// initialize the lookup table
	componentTypes.Store(&map[unsafe.Pointer]*ComponentType{})
}

func ensureComponentType(ptrToType unsafe.Pointer, makeType func(id ComponentTypeId) *ComponentType) *ComponentType {
	for {
		previousTypes := componentTypes.Load()
		if cached, ok := (*previousTypes)[ptrToType]; ok {
			return cached
		}

		newTypeId := ComponentTypeId(len(*previousTypes) + 1)

		newType := makeType(newTypeId)

		newTypes := maps.Clone(*previousTypes)
		newTypes[ptrToType] = newType

		if componentTypes.CompareAndSwap(previousTypes, &newTypes) {
			slog.Debug(
				"New component type registered",
				slog.String("name", newType.Name),
				slog.Int("id", int(newType.Id)),
			)

			return newType
		}
	}
}

func abiTypePointerTo(t reflect.Type) unsafe.Pointer {
	type eface struct {
		typ, val unsafe.Pointer
	}

	// a reflect.Type is backed by an *rType. The rType contains an abi.Type as
	// its first value. This means, that a *rType can be re-interpreted as *abi.Type
	return (*eface)(unsafe.Pointer(&t)).val
}

func nonComparableComponentTypeOf[C IsComponent[C]]() *ComponentType {
	ptrToType := abiTypePointerTo(reflect.TypeFor[C]())

	if cached, ok := (*componentTypes.Load())[ptrToType]; ok {
		return cached
	}

	return ensureComponentType(ptrToType, makeComponentType[C])
}

func comparableComponentTypeOf[C IsComparableComponent[C]]() *ComponentType {
	ptrToType := abiTypePointerTo(reflect.TypeFor[C]())

	if cached, ok := (*componentTypes.Load())[ptrToType]; ok {
		return cached
	}

	return ensureComponentType(ptrToType, func(id ComponentTypeId) *ComponentType {
		ty := makeComponentType[C](id)
		ty.Comparable = true
		return ty
	})
}

func immutableComponentTypeOf[C IsImmutableComponent[C]]() *ComponentType {
	ptrToType := abiTypePointerTo(reflect.TypeFor[C]())

	if cached, ok := (*componentTypes.Load())[ptrToType]; ok {
		return cached
	}

	return ensureComponentType(ptrToType, func(id ComponentTypeId) *ComponentType {
		ty := makeComponentType[C](id)
		ty.MakeColumn = MakeImmutableColumnOf[C](ty)
		ty.Immutable = true
		return ty
	})
}

func makeComponentType[C IsComponent[C]](id ComponentTypeId) *ComponentType {
	reflectType := reflect.TypeFor[C]()

	ty := &ComponentType{
		Id:   id,
		Type: reflectType,
		Name: reflectType.String(),
	}

	ty.MakeColumn = MakeColumnOf[C](ty)

	ty.SetValue = func(target any, source ErasedComponent) {
		value := any(source).(*C)

		// the target must be either a pointer or a pointer to a pointer
		switch ptrToTarget := target.(type) {
		case *C:
			*ptrToTarget = *value
		case **C:
			*ptrToTarget = value
		}
	}

	return ty
}
