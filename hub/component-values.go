package hub

// ComponentValue is a pointer erased component value together with its
// bookkeeping ticks.
type ComponentValue struct {
	Type    *ComponentType
	Value   ErasedComponent
	Added   Tick
	Changed Tick
}

type TypedComponentValue[C IsComponent[C]] struct {
	Value   C
	Added   Tick
	Changed Tick
}

type ComponentValues []ComponentValue

func (values ComponentValues) ByType(ty *ComponentType) (value *ComponentValue, ok bool) {
	for idx := range values {
		if values[idx].Type == ty {
			return &values[idx], true
		}
	}

	return nil, false
}
