package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd wraps another codec with zstd compression.
type Zstd struct {
	inner   Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd creates a zstd-compressing codec around inner.
func NewZstd(inner Codec) *Zstd {
	// Stateless EncodeAll/DecodeAll usage; construction cannot fail with
	// default options.
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &Zstd{inner: inner, encoder: enc, decoder: dec}
}

// Marshal encodes with the inner codec and compresses the result.
func (c *Zstd) Marshal(v any) ([]byte, error) {
	raw, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

// Unmarshal decompresses and decodes with the inner codec.
func (c *Zstd) Unmarshal(data []byte, v any) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd decompress: %w", err)
	}
	return c.inner.Unmarshal(raw, v)
}

// Name returns the composed codec name.
func (c *Zstd) Name() string { return c.inner.Name() + "+zstd" }
