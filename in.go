package tandem

import (
	"fmt"
	"reflect"
)

// In describes an input parameter of a system.
// A system can only accept exactly one input parameter.
type In[T any] struct {
	Value T
}

func (i In[T]) init(*World) SystemParamState {
	wrapper := reflect.ValueOf(&In[T]{}).Elem()
	return &inSystemParamState[T]{
		wrapperValue: wrapper,
		inValue:      wrapper.Field(0),
	}
}

type inSystemParamState[T any] struct {
	wrapperValue, inValue reflect.Value
}

func (i *inSystemParamState[T]) getValue(sc systemContext) reflect.Value {
	actualValue := reflect.ValueOf(sc.InValue)

	if !actualValue.IsValid() || !actualValue.Type().AssignableTo(i.inValue.Type()) {
		panic(fmt.Sprintf("can not use value of type %T with In[%s]", sc.InValue, i.inValue.Type()))
	}

	i.inValue.Set(actualValue)
	return i.wrapperValue
}

func (i *inSystemParamState[T]) cleanupValue() {
	// clear the reference
	i.inValue.SetZero()
}

func (i *inSystemParamState[T]) valueType() reflect.Type {
	return i.wrapperValue.Type()
}
