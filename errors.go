package keydex

import (
	"errors"
	"fmt"

	"github.com/rallenh/keydex/model"
)

var (
	// ErrUnorderedIndex is returned by operations that require an ordered
	// index (KeyRange, GetRange, Aggregate, Resample) when the index is not
	// ordered.
	ErrUnorderedIndex = errors.New("index is not ordered")

	// ErrEmptyRange is returned by range queries against an empty index.
	ErrEmptyRange = errors.New("range query on an empty index")

	// ErrInvalidSegmentSize is returned by Aggregate for a non-positive
	// window or chunk size.
	ErrInvalidSegmentSize = errors.New("segment size must be positive")

	// ErrLabelCount is returned by GroupWith when the label slice does not
	// cover every address of the index.
	ErrLabelCount = errors.New("one label per address is required")
)

// ErrKeyNotFound indicates that an address has no key in the index.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrKeyNotFound struct {
	Address model.Address
	cause   error
}

func (e *ErrKeyNotFound) Error() string {
	return fmt.Sprintf("key not found: no key at address %d", e.Address)
}

func (e *ErrKeyNotFound) Unwrap() error { return e.cause }

// NewErrKeyNotFound wraps an invalid address, optionally with its cause.
func NewErrKeyNotFound(addr model.Address, cause error) *ErrKeyNotFound {
	return &ErrKeyNotFound{Address: addr, cause: cause}
}
