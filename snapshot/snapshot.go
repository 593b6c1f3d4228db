// Package snapshot persists index key sets as immutable blobs.
//
// A snapshot is a pair of blobs in a blobstore.Store: a small JSON manifest
// (key count, order flag, payload codec name) and the encoded key payload.
// The manifest is self-describing, so a reader never needs out-of-band
// configuration to decode the payload, and it is cheap to fetch on its own,
// which lets a virtual index answer KeyCount/IsEmpty without loading keys.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rallenh/keydex/blobstore"
	"github.com/rallenh/keydex/codec"
)

// FormatVersion identifies the manifest layout.
const FormatVersion = 1

// ErrUnknownCodec is returned when a manifest names a codec this build does
// not provide.
var ErrUnknownCodec = errors.New("snapshot: unknown payload codec")

// Manifest describes one snapshot.
type Manifest struct {
	FormatVersion int       `json:"format_version"`
	Name          string    `json:"name"`
	KeyCount      int       `json:"key_count"`
	Ordered       bool      `json:"ordered"`
	Codec         string    `json:"codec"`
	CreatedAt     time.Time `json:"created_at"`
}

// payload is the encoded key body.
type payload[K comparable] struct {
	Keys []K `json:"keys"`
}

func manifestBlob(name string) string { return name + ".manifest.json" }
func keysBlob(name string) string     { return name + ".keys" }

// Write persists keys as the snapshot called name, using c for the payload
// (codec.Default when nil). The payload is written before the manifest so a
// manifest never points at a missing body.
func Write[K comparable](ctx context.Context, store blobstore.Store, name string, keys []K, ordered bool, c codec.Codec) (*Manifest, error) {
	if c == nil {
		c = codec.Default
	}

	body, err := c.Marshal(payload[K]{Keys: keys})
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: encode keys: %w", name, err)
	}
	if err := store.Put(ctx, keysBlob(name), body); err != nil {
		return nil, fmt.Errorf("snapshot %q: write keys: %w", name, err)
	}

	m := &Manifest{
		FormatVersion: FormatVersion,
		Name:          name,
		KeyCount:      len(keys),
		Ordered:       ordered,
		Codec:         c.Name(),
		CreatedAt:     time.Now().UTC(),
	}
	head, err := codec.JSON{}.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: encode manifest: %w", name, err)
	}
	if err := store.Put(ctx, manifestBlob(name), head); err != nil {
		return nil, fmt.Errorf("snapshot %q: write manifest: %w", name, err)
	}
	return m, nil
}

// ReadManifest fetches and decodes a snapshot's manifest.
func ReadManifest(ctx context.Context, store blobstore.Store, name string) (*Manifest, error) {
	b, err := store.Open(ctx, manifestBlob(name))
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: open manifest: %w", name, err)
	}
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: read manifest: %w", name, err)
	}

	var m Manifest
	if err := (codec.JSON{}).Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot %q: decode manifest: %w", name, err)
	}
	return &m, nil
}

// ReadKeys fetches and decodes a snapshot's key payload per its manifest.
func ReadKeys[K comparable](ctx context.Context, store blobstore.Store, m *Manifest) ([]K, error) {
	c, ok := codec.ByName(m.Codec)
	if !ok {
		return nil, fmt.Errorf("snapshot %q: codec %q: %w", m.Name, m.Codec, ErrUnknownCodec)
	}

	b, err := store.Open(ctx, keysBlob(m.Name))
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: open keys: %w", m.Name, err)
	}
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: read keys: %w", m.Name, err)
	}

	var p payload[K]
	if err := c.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("snapshot %q: decode keys: %w", m.Name, err)
	}
	if len(p.Keys) != m.KeyCount {
		return nil, fmt.Errorf("snapshot %q: payload holds %d keys, manifest says %d", m.Name, len(p.Keys), m.KeyCount)
	}
	return p.Keys, nil
}

// Delete removes a snapshot's blobs.
func Delete(ctx context.Context, store blobstore.Store, name string) error {
	if err := store.Delete(ctx, manifestBlob(name)); err != nil {
		return err
	}
	return store.Delete(ctx, keysBlob(name))
}
