package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name string `json:"name"`
	Keys []int  `json:"keys"`
}

func TestCodecs_RoundTrip(t *testing.T) {
	in := samplePayload{Name: "daily", Keys: []int{1, 2, 3, 5, 8, 13}}

	for _, name := range []string{"json", "json+zstd", "json+lz4"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			require.Equal(t, name, c.Name())

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out samplePayload
			require.NoError(t, c.Unmarshal(data, &out))
			require.Equal(t, in, out)
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("msgpack")
	require.False(t, ok)
}

func TestCompressedCodecs_RejectGarbage(t *testing.T) {
	var out samplePayload
	for _, name := range []string{"json+zstd", "json+lz4"} {
		c, _ := ByName(name)
		require.Error(t, c.Unmarshal([]byte("not a compressed frame"), &out), name)
	}
}

func TestZstd_CompressesRepetitiveData(t *testing.T) {
	keys := make([]int, 10000)
	payload := samplePayload{Name: "bulk", Keys: keys}

	plain, err := (JSON{}).Marshal(payload)
	require.NoError(t, err)

	packed, err := NewZstd(JSON{}).Marshal(payload)
	require.NoError(t, err)
	require.Less(t, len(packed), len(plain))
}
