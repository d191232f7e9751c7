package tandem

import (
	"iter"
	"reflect"

	"github.com/oliverbestmann/tandem/hub"
)

// RemovedComponents is a system parameter that reads the entities that had
// a component of type C removed since the system last looked.
// Removal is also reported for despawned entities.
type RemovedComponents[C IsComponent[C]] struct {
	reader *MessageReader[removedComponentMessage[C]]
}

func (c RemovedComponents[C]) Read() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for _, message := range c.reader.Read() {
			if !yield(EntityId(message)) {
				return
			}
		}
	}
}

func (RemovedComponents[C]) addToWorld(w *World) *Messages[removedComponentMessage[C]] {
	if messages, exists := ResourceOf[Messages[removedComponentMessage[C]]](w); exists {
		return messages
	}

	registry, ok := ResourceOf[removedComponentsRegistry](w)
	if !ok {
		w.InsertResource(removedComponentsRegistry{
			byComponentType: map[*hub.ComponentType]func(EntityId){},
		})

		registry, _ = ResourceOf[removedComponentsRegistry](w)
	}

	w.InsertResource(Messages[removedComponentMessage[C]]{})
	w.AddSystems(Last, updateMessagesSystem[removedComponentMessage[C]])

	messages, _ := ResourceOf[Messages[removedComponentMessage[C]]](w)

	componentType := hub.ComponentTypeOf[C]()

	writer := messages.Writer()
	registry.byComponentType[componentType] = func(entityId EntityId) {
		writer.Write(removedComponentMessage[C](entityId))
	}

	return messages
}

func (c RemovedComponents[C]) init(world *World) SystemParamState {
	messages := c.addToWorld(world)

	instance := RemovedComponents[C]{reader: messages.Reader()}
	return valueSystemParamState(reflect.ValueOf(instance))
}

type removedComponentMessage[C IsComponent[C]] EntityId

type removedComponentsRegistry struct {
	byComponentType map[*hub.ComponentType]func(EntityId)
}

func (r *removedComponentsRegistry) ComponentRemoved(entityId EntityId, componentType *hub.ComponentType) {
	emit, ok := r.byComponentType[componentType]
	if !ok {
		return
	}

	emit(entityId)
}
