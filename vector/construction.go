package vector

import (
	"fmt"

	"github.com/rallenh/keydex/model"
)

// Kind discriminates the Construction union.
type Kind int

const (
	// KindReturn returns the source vector in the given slot unchanged.
	KindReturn Kind = iota

	// KindEmpty produces a vector of Count missing cells.
	KindEmpty

	// KindGetRange restricts the inner plan to a contiguous address range.
	KindGetRange

	// KindDropRange removes a contiguous address range from the inner plan;
	// positions after the range shift down.
	KindDropRange

	// KindSelect keeps only the inner positions listed in Selected,
	// in ascending address order.
	KindSelect

	// KindRelocate gathers inner positions into a new address space of
	// Count cells per the Moves table; addresses in Missing have no source
	// and must be marked missing by the engine.
	KindRelocate

	// KindAppend concatenates the left and right plans.
	KindAppend

	// KindCombine merges two same-length plans cell-wise; where both sides
	// hold a value the Transform resolves the conflict.
	KindCombine
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindReturn:
		return "Return"
	case KindEmpty:
		return "Empty"
	case KindGetRange:
		return "GetRange"
	case KindDropRange:
		return "DropRange"
	case KindSelect:
		return "Select"
	case KindRelocate:
		return "Relocate"
	case KindAppend:
		return "Append"
	case KindCombine:
		return "Combine"
	default:
		return "Unknown"
	}
}

// Move maps one cell of the new address space to its source position.
type Move struct {
	New model.Address
	Old model.Address
}

// Construction is the plan union. Values are immutable once built; the
// accessors expose exactly the fields meaningful for the Kind.
type Construction struct {
	kind      Kind
	source    int
	count     int
	rng       model.AddressRange
	inner     *Construction
	right     *Construction
	moves     []Move
	missing   *AddressSet
	selected  *AddressSet
	transform ValueTransform
}

// Return references the source vector in slot source.
func Return(source int) *Construction {
	return &Construction{kind: KindReturn, source: source}
}

// Empty produces count missing cells.
func Empty(count int) *Construction {
	return &Construction{kind: KindEmpty, count: count}
}

// GetRange restricts inner to the inclusive address range rng.
func GetRange(inner *Construction, rng model.AddressRange) *Construction {
	return &Construction{kind: KindGetRange, inner: inner, rng: rng, count: int(rng.Len())}
}

// DropRange removes the inclusive address range rng from inner.
func DropRange(inner *Construction, rng model.AddressRange) *Construction {
	return &Construction{kind: KindDropRange, inner: inner, rng: rng}
}

// Select keeps the inner positions contained in set, in address order.
func Select(inner *Construction, set *AddressSet) *Construction {
	return &Construction{kind: KindSelect, inner: inner, count: int(set.Cardinality()), selected: set}
}

// Relocate gathers inner positions into a new space of count cells.
// moves is listed in new-address order; missing (may be nil) holds the new
// addresses with no source position.
func Relocate(inner *Construction, count int, moves []Move, missing *AddressSet) *Construction {
	return &Construction{kind: KindRelocate, inner: inner, count: count, moves: moves, missing: missing}
}

// Append concatenates left and right.
func Append(left, right *Construction) *Construction {
	return &Construction{kind: KindAppend, inner: left, right: right}
}

// Combine merges two same-length plans cell-wise, resolving positions held by
// both sides with transform.
func Combine(count int, left, right *Construction, transform ValueTransform) *Construction {
	return &Construction{kind: KindCombine, count: count, inner: left, right: right, transform: transform}
}

// Kind returns the discriminator.
func (c *Construction) Kind() Kind { return c.kind }

// Source returns the source slot (KindReturn).
func (c *Construction) Source() int { return c.source }

// Count returns the cell count of the produced vector where the plan fixes it
// (Empty, GetRange, Select, Relocate, Combine).
func (c *Construction) Count() int { return c.count }

// Range returns the address range (GetRange, DropRange).
func (c *Construction) Range() model.AddressRange { return c.rng }

// Inner returns the single child, or the left child of a binary plan.
func (c *Construction) Inner() *Construction { return c.inner }

// Right returns the right child (Append, Combine).
func (c *Construction) Right() *Construction { return c.right }

// Moves returns the gather table (Relocate), in new-address order.
func (c *Construction) Moves() []Move { return c.moves }

// Missing returns the new addresses without a source (Relocate), or nil.
func (c *Construction) Missing() *AddressSet { return c.missing }

// Selected returns the kept address set (Select).
func (c *Construction) Selected() *AddressSet { return c.selected }

// Transform returns the conflict resolver (Combine), or nil.
func (c *Construction) Transform() ValueTransform { return c.transform }

// String renders a compact debug form of the plan tree.
func (c *Construction) String() string {
	switch c.kind {
	case KindReturn:
		return fmt.Sprintf("Return(%d)", c.source)
	case KindEmpty:
		return fmt.Sprintf("Empty(%d)", c.count)
	case KindGetRange:
		return fmt.Sprintf("GetRange(%s, [%d..%d])", c.inner, c.rng.Lo, c.rng.Hi)
	case KindDropRange:
		return fmt.Sprintf("DropRange(%s, [%d..%d])", c.inner, c.rng.Lo, c.rng.Hi)
	case KindSelect:
		return fmt.Sprintf("Select(%s, %d addrs)", c.inner, c.selected.Cardinality())
	case KindRelocate:
		return fmt.Sprintf("Relocate(%s, count=%d, moves=%d)", c.inner, c.count, len(c.moves))
	case KindAppend:
		return fmt.Sprintf("Append(%s, %s)", c.inner, c.right)
	case KindCombine:
		return fmt.Sprintf("Combine(%d, %s, %s)", c.count, c.inner, c.right)
	default:
		return "Unknown"
	}
}
