package tandem

import (
	"reflect"
	"unsafe"

	"github.com/oliverbestmann/tandem/internal/set"
)

// SystemId identifies a system function within a World.
type SystemId uint64

// AnySystem is either a plain system function or a Systems value built
// with System that carries additional configuration.
type AnySystem = any

type AsSystemConfigs interface {
	AsSystemConfigs() []*systemConfig
}

func asSystemConfig(value AnySystem) *systemConfig {
	switch value := value.(type) {
	case *systemConfig:
		return value

	default:
		return &systemConfig{
			Id: systemIdOf(value),
			fn: reflect.ValueOf(value),
		}
	}
}

func asSystemConfigs(values ...AnySystem) []*systemConfig {
	var configs []*systemConfig

	for _, value := range values {
		switch value := value.(type) {
		case []*systemConfig:
			configs = append(configs, value...)

		case AsSystemConfigs:
			configs = append(configs, value.AsSystemConfigs()...)

		default:
			configs = append(configs, asSystemConfig(value))
		}
	}

	return configs
}

// System wraps one or more system functions so they can be configured
// with ordering constraints, run predicates and system sets.
func System(systems ...AnySystem) Systems {
	return Systems{
		systems: systems,
	}
}

func systemIdOf(system AnySystem) SystemId {
	fn := reflect.ValueOf(system)
	if fn.Kind() != reflect.Func {
		panic("system is not a function")
	}

	// the code pointer is not unique, two closures created from the same
	// function literal share it. the data word of the interface value points
	// to the funcval instance and tells those closures apart.
	type iface struct{ _, data unsafe.Pointer }
	ptr := (*iface)(unsafe.Pointer(&system)).data

	return SystemId(uintptr(ptr))
}

type systemConfig struct {
	Id SystemId

	// the actual fn, must be a function
	fn reflect.Value

	Before set.Set[SystemId]
	After  set.Set[SystemId]

	predicates []AnySystem
	sets       []*SystemSet
}

// Systems is a collection of systems sharing ordering constraints,
// predicates and set memberships. Build it using System.
type Systems struct {
	systems []AnySystem

	after      set.Set[SystemId]
	before     set.Set[SystemId]
	predicates []AnySystem
	sets       []*SystemSet
	chained    bool
}

func (s Systems) AsSystemConfigs() []*systemConfig {
	systems := asSystemConfigs(s.systems...)

	for _, system := range systems {
		system.After.InsertAll(s.after.Values())
		system.Before.InsertAll(s.before.Values())
		system.predicates = append(system.predicates, s.predicates...)
		system.sets = append(system.sets, s.sets...)
	}

	if s.chained {
		for idx := 0; idx < len(systems)-1; idx++ {
			systems[idx].Before.Insert(systems[idx+1].Id)
		}
	}

	return systems
}

// After configures all systems in s to run after the given system.
func (s Systems) After(other AnySystem) Systems {
	for _, system := range asSystemConfigs(other) {
		s.after.Insert(system.Id)
	}

	return s
}

// Before configures all systems in s to run before the given system.
func (s Systems) Before(other AnySystem) Systems {
	for _, system := range asSystemConfigs(other) {
		s.before.Insert(system.Id)
	}

	return s
}

// Chain orders the systems in s relative to each other, each system
// running before the next one.
func (s Systems) Chain() Systems {
	s.chained = true
	return s
}

// InSet adds all systems in s to the given SystemSet.
func (s Systems) InSet(systemSet *SystemSet) Systems {
	s.sets = append(s.sets, systemSet)
	return s
}

// RunIf adds a predicate to all systems in s. The predicate is itself a
// system that must return a bool. The systems only run if all of their
// predicates return true.
func (s Systems) RunIf(predicate AnySystem) Systems {
	s.predicates = append(s.predicates, predicate)
	return s
}
