// Package codec centralizes snapshot payload encoding.
//
// Codec selection is a breaking-change boundary: persisted snapshots are
// self-describing (the manifest records the codec name) and are opened by
// selecting the codec by name, so changing the default never breaks old data.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "json+zstd":
		return NewZstd(JSON{}), true
	case "json+lz4":
		return NewLZ4(JSON{}), true
	default:
		return nil, false
	}
}

// Default is the codec used for newly written snapshots.
var Default Codec = NewZstd(JSON{})

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
