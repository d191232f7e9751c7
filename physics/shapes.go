package physics

import (
	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/tandem/gm"
)

type ToShape interface {
	MakeShape(body *cp.Body) *cp.Shape
}

type CircleShape struct {
	Radius float64
}

func (s CircleShape) MakeShape(body *cp.Body) *cp.Shape {
	return cp.NewCircle(body, s.Radius, cp.Vector{})
}

type SegmentShape struct {
	A, B   gm.Vec
	Radius float64
}

func (s SegmentShape) MakeShape(body *cp.Body) *cp.Shape {
	return cp.NewSegment(body, cpVecOf(s.A), cpVecOf(s.B), s.Radius)
}

type BoxShape struct {
	Width, Height float64
	Radius        float64
}

func (s BoxShape) MakeShape(body *cp.Body) *cp.Shape {
	return cp.NewBox(body, s.Width, s.Height, s.Radius)
}

type PolygonShape struct {
	Points []gm.Vec
	Radius float64
}

func (s PolygonShape) MakeShape(body *cp.Body) *cp.Shape {
	points := make([]cp.Vector, len(s.Points))
	for idx := range s.Points {
		points[idx] = cpVecOf(s.Points[idx])
	}

	return cp.NewPolyShape(body, len(points), points, cp.NewTransformIdentity(), s.Radius)
}

func cpVecOf(vec gm.Vec) cp.Vector {
	return cp.Vector{X: vec.X, Y: vec.Y}
}
