package query

import (
	"fmt"

	"github.com/oliverbestmann/tandem/hub"
)

type Filter interface {
	applyTo(result *ParsedQuery) []hub.Filter
}

type EmbeddableFilter interface {
	Filter
	embeddable(isEmbeddableMarker)
}

type FromEntityRef interface {
	fromEntityRef(ref hub.EntityRef)
}

type isEmbeddableMarker struct{}

type Option[C hub.IsComponent[C]] struct {
	value *C
}

func (Option[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()
	result.Query.FetchOptional = append(result.Query.FetchOptional, componentType)
	return nil
}

func (c *Option[C]) fromEntityRef(ref hub.EntityRef) {
	value, ok := ref.Get(hub.ComponentTypeOf[C]())
	if ok {
		c.value = any(value.Value).(*C)
	} else {
		c.value = nil
	}
}

func (c *Option[C]) Get() (C, bool) {
	return c.OrZero(), c.value != nil
}

func (c *Option[C]) MustGet() C {
	return *c.value
}

func (c *Option[C]) OrZero() C {
	if c.value != nil {
		return *c.value
	}

	var zeroValue C
	return zeroValue
}

type OptionMut[C hub.IsComponent[C]] struct {
	value *C
}

func (OptionMut[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()
	if componentType.Immutable {
		panic(fmt.Sprintf("immutable component %s can not be fetched mutably", componentType))
	}

	result.Query.FetchOptional = append(result.Query.FetchOptional, componentType)
	result.Query.Mutate = append(result.Query.Mutate, componentType)

	return nil
}

func (c *OptionMut[C]) fromEntityRef(ref hub.EntityRef) {
	value, ok := ref.Get(hub.ComponentTypeOf[C]())
	if ok {
		c.value = any(value.Value).(*C)
	} else {
		c.value = nil
	}
}

func (c *OptionMut[C]) Get() (*C, bool) {
	return c.value, c.value != nil
}

func (c *OptionMut[C]) MustGet() *C {
	if c.value == nil {
		panic(fmt.Sprintf("%T is empty", *c))
	}

	return c.value
}

type Has[C hub.IsComponent[C]] struct {
	Exists bool
}

func (Has[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()
	result.Query.FetchHas = append(result.Query.FetchHas, componentType)
	return nil
}

func (c *Has[C]) fromEntityRef(ref hub.EntityRef) {
	_, ok := ref.Get(hub.ComponentTypeOf[C]())
	c.Exists = ok
}

type With[C hub.IsComponent[C]] struct{}

func (With[C]) embeddable(isEmbeddableMarker) {}

func (With[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()

	return []hub.Filter{
		{
			With: []*hub.ComponentType{componentType},

			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				_, ok := entity.Get(componentType)
				return ok
			},
		},
	}
}

type Without[C hub.IsComponent[C]] struct{}

func (Without[C]) embeddable(isEmbeddableMarker) {}

func (Without[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()

	return []hub.Filter{
		{
			Without: []*hub.ComponentType{componentType},

			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				_, ok := entity.Get(componentType)
				return !ok
			},
		},
	}
}

type Changed[C hub.IsComponent[C]] struct{}

func (Changed[C]) embeddable(isEmbeddableMarker) {}

func (Changed[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()

	return []hub.Filter{
		{
			With: []*hub.ComponentType{componentType},

			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				value, ok := entity.Get(componentType)
				if !ok {
					return false
				}

				return value.Changed >= ctx.LastRun
			},
		},
	}
}

type Added[C hub.IsComponent[C]] struct{}

func (Added[C]) embeddable(isEmbeddableMarker) {}

func (Added[C]) applyTo(result *ParsedQuery) []hub.Filter {
	componentType := hub.ComponentTypeOf[C]()

	return []hub.Filter{
		{
			With: []*hub.ComponentType{componentType},

			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				value, ok := entity.Get(componentType)
				if !ok {
					return false
				}

				return value.Added >= ctx.LastRun
			},
		},
	}
}

type Or[A, B Filter] struct{}

func (Or[A, B]) embeddable(isEmbeddableMarker) {}

func (Or[A, B]) applyTo(result *ParsedQuery) []hub.Filter {
	var aZero A
	filterA := aZero.applyTo(result)

	var bZero B
	filterB := bZero.applyTo(result)

	// the With and Without slices of the branches must not leak into the
	// combined filter, that would require both branches to match. Each
	// branch checks its own structural conditions in its Matches closure.
	return []hub.Filter{
		{
			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				return matches(filterA, ctx, entity) || matches(filterB, ctx, entity)
			},
		},
	}
}

type And[A, B Filter] struct{}

func (And[A, B]) embeddable(isEmbeddableMarker) {}

func (And[A, B]) applyTo(result *ParsedQuery) []hub.Filter {
	var aZero A
	filterA := aZero.applyTo(result)

	var bZero B
	filterB := bZero.applyTo(result)

	// for and we can optimize. We can just move the With & Without types
	// to the top filter
	var with, without []*hub.ComponentType

	for _, filter := range filterA {
		with = append(with, filter.With...)
		without = append(without, filter.Without...)
	}

	for _, filter := range filterB {
		with = append(with, filter.With...)
		without = append(without, filter.Without...)
	}

	return []hub.Filter{
		{
			With:    with,
			Without: without,

			Matches: func(ctx *hub.QueryContext, entity hub.EntityRef) bool {
				return matches(filterA, ctx, entity) && matches(filterB, ctx, entity)
			},
		},
	}
}

func matches(filters []hub.Filter, ctx *hub.QueryContext, entity hub.EntityRef) bool {
	for _, filter := range filters {
		if filter.Matches != nil && !filter.Matches(ctx, entity) {
			return false
		}
	}

	return true
}
