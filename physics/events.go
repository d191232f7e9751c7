package physics

import (
	"github.com/oliverbestmann/tandem"
	"github.com/oliverbestmann/tandem/gm"
)

// ContactStarted is sent as a message when two colliders begin to touch.
// At least one of the entities must have CollisionEventsEnabled.
type ContactStarted struct {
	A, B     tandem.EntityId
	Position gm.Vec
	Normal   gm.Vec
}

type ContactEnded struct {
	A, B tandem.EntityId
}

// OnContactStarted is triggered on the entities of a beginning contact.
type OnContactStarted struct {
	Other    tandem.EntityId
	Position gm.Vec
	Normal   gm.Vec
}

type OnContactEnded struct {
	Other tandem.EntityId
}

// SensorStarted is sent as a message when a collider begins to overlap a
// sensor shape.
type SensorStarted struct {
	A, B     tandem.EntityId
	Position gm.Vec
}

type SensorEnded struct {
	A, B tandem.EntityId
}

// OnSensorStarted is triggered on the entities of a beginning sensor overlap.
type OnSensorStarted struct {
	Other    tandem.EntityId
	Position gm.Vec
}

type OnSensorEnded struct {
	Other tandem.EntityId
}
