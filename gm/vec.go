package gm

import (
	"fmt"
	"math"
)

type ScalarTypes interface {
	float32 | float64 | int32
}

type Vec32 = VecType[float32]
type Vec64 = VecType[float64]

type Vec = Vec64

var VecOne = Vec{X: 1, Y: 1}

type IVec = VecType[int32]

type Scalar interface {
	int | int32 | int64 | float32 | float64
}

func VecOf[S int32 | float32 | float64](x, y S) VecType[S] {
	return VecType[S]{X: x, Y: y}
}

// VecSplat returns a new Vec with both values set to value.
func VecSplat[S Scalar](value S) VecType[S] {
	return VecType[S]{X: value, Y: value}
}

type VecType[S Scalar] struct {
	X, Y S
}

func (v VecType[S]) Add(other VecType[S]) VecType[S] {
	v.X += other.X
	v.Y += other.Y
	return v
}

func (v VecType[S]) Sub(other VecType[S]) VecType[S] {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

func (v VecType[S]) Mul(scalar S) VecType[S] {
	v.X *= scalar
	v.Y *= scalar
	return v
}

func (v VecType[S]) MulEach(other VecType[S]) VecType[S] {
	v.X *= other.X
	v.Y *= other.Y
	return v
}

func (v VecType[S]) DivEach(other VecType[S]) VecType[S] {
	v.X /= other.X
	v.Y /= other.Y
	return v
}

func (v VecType[S]) String() string {
	return fmt.Sprintf("vec(x=%v, y=%v)", v.X, v.Y)
}

func (v VecType[S]) Normalized() VecType[S] {
	length := v.Length()
	v.X /= length
	v.Y /= length
	return v
}

func (v VecType[S]) Length() S {
	return S(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// LengthSqr returns the square of the euclidean norm of the vector.
func (v VecType[S]) LengthSqr() S {
	return v.X*v.X + v.Y*v.Y
}
