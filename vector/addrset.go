package vector

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/rallenh/keydex/model"
)

// AddressSet is a compressed set of addresses.
// It wraps a 64-bit Roaring Bitmap; iteration order is ascending.
type AddressSet struct {
	rb *roaring64.Bitmap
}

// NewAddressSet creates an empty set.
func NewAddressSet() *AddressSet {
	return &AddressSet{rb: roaring64.New()}
}

// AddressSetOf creates a set holding the given addresses.
func AddressSetOf(addrs ...model.Address) *AddressSet {
	s := NewAddressSet()
	for _, a := range addrs {
		s.Add(a)
	}
	return s
}

// Add inserts an address. Negative addresses are a contract violation and
// are ignored.
func (s *AddressSet) Add(a model.Address) {
	if a < 0 {
		return
	}
	s.rb.Add(uint64(a))
}

// AddRange inserts every address in the inclusive range.
func (s *AddressSet) AddRange(r model.AddressRange) {
	if r.Len() == 0 {
		return
	}
	s.rb.AddRange(uint64(r.Lo), uint64(r.Hi)+1)
}

// Contains reports membership.
func (s *AddressSet) Contains(a model.Address) bool {
	return a >= 0 && s.rb.Contains(uint64(a))
}

// IsEmpty reports whether the set has no members.
func (s *AddressSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of members.
func (s *AddressSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy.
func (s *AddressSet) Clone() *AddressSet {
	return &AddressSet{rb: s.rb.Clone()}
}

// All iterates the members in ascending order.
func (s *AddressSet) All() iter.Seq[model.Address] {
	return func(yield func(model.Address) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(model.Address(it.Next())) {
				return
			}
		}
	}
}
