package hub

type Row uint32

type Column interface {
	Append(tick Tick, component ErasedComponent)
	Copy(from, to Row)
	Truncate(n Row)
	Get(row Row) ComponentValue
	Update(tick Tick, row Row, component ErasedComponent)
	Import(other Column, row Row)
	MarkWritten(tick Tick, row Row)
	Len() int
}

type TypedColumn[C IsComponent[C]] struct {
	ComponentType *ComponentType
	Values        []TypedComponentValue[C]
}

func MakeColumnOf[C IsComponent[C]](componentType *ComponentType) MakeColumn {
	return func() Column {
		return &TypedColumn[C]{
			ComponentType: componentType,
		}
	}
}

func (c *TypedColumn[C]) Len() int {
	return len(c.Values)
}

func (c *TypedColumn[C]) Append(tick Tick, component ErasedComponent) {
	value := any(component).(*C)

	c.Values = append(c.Values, TypedComponentValue[C]{
		Value:   *value,
		Added:   tick,
		Changed: tick,
	})
}

func (c *TypedColumn[C]) Copy(from, to Row) {
	c.Values[to] = c.Values[from]
}

func (c *TypedColumn[C]) Import(other Column, row Row) {
	otherColumn := other.(*TypedColumn[C])
	c.Values = append(c.Values, otherColumn.Values[row])
}

func (c *TypedColumn[C]) Truncate(n Row) {
	clear(c.Values[n:])
	c.Values = c.Values[:n]
}

func (c *TypedColumn[C]) Get(row Row) ComponentValue {
	t := &c.Values[row]

	return ComponentValue{
		Type:    c.ComponentType,
		Added:   t.Added,
		Changed: t.Changed,
		Value:   any(&t.Value).(ErasedComponent),
	}
}

func (c *TypedColumn[C]) Update(tick Tick, row Row, component ErasedComponent) {
	target := &c.Values[row]
	target.Value = *any(component).(*C)
	target.Changed = tick
}

// MarkWritten records a write to the value at row. The storage calls this for
// every component that is about to be handed out mutably, a value does not
// need to actually change for its changed tick to move forward.
func (c *TypedColumn[C]) MarkWritten(tick Tick, row Row) {
	c.Values[row].Changed = tick
}
