package deck

import "fmt"

// Either holds exactly one of a Left or a Right value. The zero value is a
// Left holding the zero L; build values with Left and Right.
type Either[L, R any] struct {
	left    L
	right   R
	isRight bool
}

func Left[L, R any](v L) Either[L, R] {
	return Either[L, R]{left: v}
}

func Right[L, R any](v R) Either[L, R] {
	return Either[L, R]{right: v, isRight: true}
}

func (e Either[L, R]) IsLeft() bool  { return !e.isRight }
func (e Either[L, R]) IsRight() bool { return e.isRight }

// Left returns the left value and whether it is the active branch.
func (e Either[L, R]) Left() (L, bool) {
	if e.isRight {
		var zero L
		return zero, false
	}
	return e.left, true
}

// Right returns the right value and whether it is the active branch.
func (e Either[L, R]) Right() (R, bool) {
	if !e.isRight {
		var zero R
		return zero, false
	}
	return e.right, true
}

func (e Either[L, R]) String() string {
	if e.isRight {
		return fmt.Sprintf("Right(%v)", e.right)
	}
	return fmt.Sprintf("Left(%v)", e.left)
}

// Collapse returns the active value when both branches share a type and
// the side only carries meaning.
func Collapse[T any](e Either[T, T]) T {
	if e.isRight {
		return e.right
	}
	return e.left
}

// Fold applies onLeft or onRight to the active branch.
func Fold[L, R, T any](e Either[L, R], onLeft func(L) T, onRight func(R) T) T {
	if e.isRight {
		return onRight(e.right)
	}
	return onLeft(e.left)
}
