// Package tearcheck probes whether a two-field value aggregate can be
// published to racing goroutines without ever exposing a torn,
// half-written view.
//
// The probe keeps a Pair whose fields are always equal at every
// publish point. Workers race blind read-modify-write cycles over
// shared cells with no coordination; the equality check inside each
// update is the oracle. Any observation of x != y means the storage
// representation leaked an intermediate state.
package tearcheck

import "fmt"

// Pair is a small immutable value aggregate. It is constructed fresh
// on every update and never mutated after it is published into a cell.
//
// Invariant: x == y whenever a Pair is read from shared storage.
type Pair struct {
	x, y int32
}

// Make constructs a Pair with the fields set exactly as given.
func Make(x, y int32) Pair {
	return Pair{x: x, y: y}
}

// X returns the first field.
func (p Pair) X() int32 { return p.x }

// Y returns the second field.
func (p Pair) Y() int32 { return p.y }

// Advance checks the invariant and returns a fresh Pair with both
// fields incremented. This is the direct pathway: it relies entirely
// on ordinary field access and value-copy semantics.
func (p Pair) Advance() (Pair, error) {
	if p.x != p.y {
		return Pair{}, &InvariantViolationError{X: p.x, Y: p.y}
	}
	return Make(p.x+1, p.y+1), nil
}

// InvariantViolationError reports a torn read: a Pair observed with
// unequal fields. It is fatal and never retried; a retry would mask a
// genuine detection.
type InvariantViolationError struct {
	// Location names the shared location the Pair was read from.
	// Empty when the Pair did not come out of a harness cell.
	Location string
	X, Y     int32
}

func (e *InvariantViolationError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("inconsistent field values: x=%d y=%d", e.X, e.Y)
	}
	return fmt.Sprintf("inconsistent field values at %s: x=%d y=%d", e.Location, e.X, e.Y)
}
