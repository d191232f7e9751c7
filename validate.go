package tandem

import (
	"fmt"

	"github.com/oliverbestmann/tandem/hub"
)

// ValidateComponent should be called to verify that the IsComponent interface is correctly implemented.
//
//	type Position struct {
//	   Component[Position]
//	   X, Y float64
//	}
//
//	var _ = ValidateComponent[Position]()
//
// This identifies mistakes in the type passed to Component during compile time.
func ValidateComponent[C IsComponent[C]]() struct{} {
	componentType := hub.ComponentTypeOf[C]()

	var zero C

	if parent, ok := any(&zero).(isParentComponent); ok {
		// check if the child type points back to us
		childType := parent.RelationChildType()

		child, ok := childType.New().(isChildComponent)
		if !ok {
			panic(fmt.Sprintf(
				"relationship child of %s must embed tandem.ChildComponent",
				componentType,
			))
		}

		if child.RelationParentType() != componentType {
			panic(fmt.Sprintf(
				"relationship child of %s must point to %s",
				childType, componentType,
			))
		}
	}

	if child, ok := any(zero).(isChildComponent); ok {
		// check if the parent type points back to us
		parentType := child.RelationParentType()

		parent, ok := parentType.New().(isParentComponent)
		if !ok {
			panic(fmt.Sprintf(
				"relationship parent of %s must embed tandem.ParentComponent",
				componentType,
			))
		}

		if parent.RelationChildType() != componentType {
			panic(fmt.Sprintf(
				"relationship parent of %s must point to %s",
				parentType, componentType,
			))
		}
	}

	// TODO mark component as valid somewhere, maybe calculate some
	//  kind of component type id too
	return struct{}{}
}
