// Package model contains the small shared value types of the index layer.
package model

// Address identifies a logical row position within one index's address space.
//
// Addresses are opaque to callers: they are totally ordered and comparable for
// equality, but there is no guarantee that an index hands out dense values.
// An Address is only meaningful against the index (and the vectors) it was
// obtained from; reusing it against an unrelated vector is undefined.
type Address int64

// NoAddress is the zero-information address. Operations that report a missing
// position return NoAddress alongside their missing marker.
const NoAddress Address = -1

// AddressRange is an inclusive [Lo, Hi] span of addresses.
type AddressRange struct {
	Lo Address
	Hi Address
}

// Len returns the number of addresses covered by the range.
// An inverted range is empty.
func (r AddressRange) Len() int64 {
	if r.Hi < r.Lo {
		return 0
	}
	return int64(r.Hi-r.Lo) + 1
}

// Contains reports whether a lies within the range.
func (r AddressRange) Contains(a Address) bool {
	return a >= r.Lo && a <= r.Hi
}

// Optional is a first-class missing marker.
//
// Absence is a routine, expected outcome in the index layer (lookups past the
// last key, selectors declining a segment), so it is modeled as a value rather
// than an error.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None is the missing value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Has reports whether a value is present.
func (o Optional[T]) Has() bool {
	return o.ok
}

// Or returns the value when present, otherwise the fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
