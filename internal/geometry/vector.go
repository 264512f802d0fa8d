package geometry

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Vector is an immutable 2D vector. Board squares use Vector[int], with X the file
// and Y the rank row.
type Vector[T Number] struct {
	X T `json:"x"`
	Y T `json:"y"`
}

func New[T Number](x, y T) Vector[T] {
	return Vector[T]{X: x, Y: y}
}

func (v Vector[T]) Add(o Vector[T]) Vector[T] {
	return Vector[T]{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector[T]) Sub(o Vector[T]) Vector[T] {
	return Vector[T]{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul scales both components by n.
func (v Vector[T]) Mul(n T) Vector[T] {
	return Vector[T]{X: v.X * n, Y: v.Y * n}
}

// MulVec multiplies component-wise.
func (v Vector[T]) MulVec(o Vector[T]) Vector[T] {
	return Vector[T]{X: v.X * o.X, Y: v.Y * o.Y}
}

// Div divides both components by n. Integer vectors truncate toward zero and panic
// on a zero divisor, like Go's integer division. Float vectors follow IEEE 754 and
// yield Inf or NaN components instead.
func (v Vector[T]) Div(n T) Vector[T] {
	return Vector[T]{X: v.X / n, Y: v.Y / n}
}

// DivVec divides component-wise, with the zero-divisor behaviour of Div.
func (v Vector[T]) DivVec(o Vector[T]) Vector[T] {
	return Vector[T]{X: v.X / o.X, Y: v.Y / o.Y}
}

func (v Vector[T]) Dot(o Vector[T]) T {
	return v.X*o.X + v.Y*o.Y
}

func (v Vector[T]) Length() float64 {
	return math.Hypot(float64(v.X), float64(v.Y))
}

// Unit returns the normalised vector. A zero vector yields NaN components, callers
// must not normalise it.
func (v Vector[T]) Unit() Vector[float64] {
	l := v.Length()
	return Vector[float64]{X: float64(v.X) / l, Y: float64(v.Y) / l}
}

// Floor rounds each component down. It is the identity on integer vectors.
func (v Vector[T]) Floor() Vector[T] {
	return Vector[T]{X: T(math.Floor(float64(v.X))), Y: T(math.Floor(float64(v.Y)))}
}

// Perpendicular rotates by +90 degrees.
func (v Vector[T]) Perpendicular() Vector[T] {
	return Vector[T]{X: -v.Y, Y: v.X}
}

// PerpendicularCW rotates by -90 degrees.
func (v Vector[T]) PerpendicularCW() Vector[T] {
	return Vector[T]{X: v.Y, Y: -v.X}
}

func (v Vector[T]) Abs() Vector[T] {
	return Vector[T]{X: abs(v.X), Y: abs(v.Y)}
}

func (v Vector[T]) Equals(o Vector[T]) bool {
	return v.X == o.X && v.Y == o.Y
}

func (v Vector[T]) String() string {
	return fmt.Sprintf("(%v,%v)", v.X, v.Y)
}

// Chebyshev returns the king-move distance between a and b.
func Chebyshev[T Number](a, b Vector[T]) T {
	d := a.Sub(b).Abs()
	return max(d.X, d.Y)
}

func abs[T Number](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
