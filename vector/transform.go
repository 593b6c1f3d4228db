package vector

import "fmt"

// ValueTransform resolves a cell held by both sides of a Combine plan.
//
// The index layer only records that a conflict exists; the vector engine
// invokes the transform at materialization time, never during index
// derivation. Implementations must be pure.
type ValueTransform interface {
	// Name identifies the transform for plan debugging.
	Name() string

	// Resolve picks or merges the two candidate cell values.
	Resolve(left, right any) (any, error)
}

// PreferLeft keeps the left value on conflict.
func PreferLeft() ValueTransform { return preferSide{left: true} }

// PreferRight keeps the right value on conflict.
func PreferRight() ValueTransform { return preferSide{left: false} }

type preferSide struct {
	left bool
}

func (t preferSide) Name() string {
	if t.left {
		return "prefer-left"
	}
	return "prefer-right"
}

func (t preferSide) Resolve(left, right any) (any, error) {
	if t.left {
		return left, nil
	}
	return right, nil
}

// FailOnConflict rejects duplicate keys at materialization time.
func FailOnConflict() ValueTransform { return failOnConflict{} }

type failOnConflict struct{}

func (failOnConflict) Name() string { return "fail-on-conflict" }

func (failOnConflict) Resolve(left, right any) (any, error) {
	return nil, fmt.Errorf("conflicting values %v and %v for the same key", left, right)
}
