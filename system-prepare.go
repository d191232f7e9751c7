package tandem

import (
	"fmt"
	"reflect"

	"github.com/oliverbestmann/tandem/internal/refl"
	"github.com/oliverbestmann/tandem/internal/typedpool"
)

var valueSlices = typedpool.New[[]reflect.Value]()

func (w *World) prepareSystemUncached(config *systemConfig) *preparedSystem {
	rSystem := config.fn

	if rSystem.Kind() != reflect.Func {
		panic(fmt.Sprintf("not a function: %s", rSystem.Type()))
	}

	prepared := &preparedSystem{systemConfig: config}

	systemType := rSystem.Type()

	// collect the states that produce the systems parameter values
	var params []SystemParamState

	for idx := range systemType.NumIn() {
		inType := systemType.In(idx)

		resourceCopy, resourceCopyOk := w.resources[reflect.PointerTo(inType)]
		resource, resourceOk := w.resources[inType]

		switch {
		case refl.ImplementsInterfaceDirectly[SystemParam](inType):
			params = append(params, makeSystemParamState(w, inType))

		case refl.ImplementsInterfaceDirectly[SystemParam](reflect.PointerTo(inType)):
			params = append(params, makeSystemParamState(w, inType))

		case inType == reflect.TypeFor[*World]():
			params = append(params, valueSystemParamState(reflect.ValueOf(w)))

		case resourceCopyOk:
			params = append(params, valueSystemParamState(resourceCopy.Value.Elem()))

		case resourceOk:
			params = append(params, valueSystemParamState(resource.Value))

		default:
			panic(fmt.Sprintf("Can not handle system param of type %s", inType))
		}
	}

	// verify that all the param types match their actual types
	for idx, param := range params {
		inType := systemType.In(idx)
		if !param.valueType().AssignableTo(inType) {
			panic(fmt.Sprintf("Argument %d of %s is not assignable to param value of type %s", idx, systemType, inType))
		}
	}

	for _, predicate := range config.predicates {
		prepared.Predicates = append(prepared.Predicates, w.preparePredicate(predicate))
	}

	prepared.RawSystem = func(ctx systemContext) any {
		paramValues := valueSlices.Get()
		defer valueSlices.Put(paramValues)

		*paramValues = (*paramValues)[:0]

		for _, param := range params {
			*paramValues = append(*paramValues, param.getValue(ctx))
		}

		returnValues := rSystem.Call(*paramValues)

		for _, param := range params {
			param.cleanupValue()
		}

		// clear any pointers that are still in the param slice
		clear(*paramValues)

		if len(returnValues) > 0 {
			return returnValues[0].Interface()
		}

		return nil
	}

	return prepared
}

// preparePredicate prepares a single system used as a run predicate.
func (w *World) preparePredicate(predicate AnySystem) *preparedSystem {
	configs := asSystemConfigs(predicate)
	if len(configs) != 1 {
		panic(fmt.Sprintf("a predicate must be a single system, got %d", len(configs)))
	}

	return w.prepareSystem(configs[0])
}

func makeSystemParamState(world *World, ty reflect.Type) SystemParamState {
	for ty.Kind() == reflect.Pointer {
		ty = ty.Elem()
	}

	// allocate a new instance on the heap and get the value as an interface
	param := reflect.New(ty).Interface().(SystemParam)

	// initialize using the world
	return param.init(world)
}
