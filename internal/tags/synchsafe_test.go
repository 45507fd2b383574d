package tags_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/tags"
	"github.com/stretchr/testify/require"
)

func TestSynchsafeInt_RoundTrip(t *testing.T) {
	cases := []int{0, 1, 127, 128, 255, 1 << 10, 1 << 20, (1 << 28) - 1}
	for _, v := range cases {
		encoded := tags.EncodeSynchsafeInt(v)
		require.Equal(t, v, tags.ParseSynchsafeInt(encoded[:]))
	}
}

func TestParseSynchsafeInt_HighBitIgnored(t *testing.T) {
	// Any stray high bit in an input byte must be masked off, since a real
	// synchsafe-encoded value never sets it.
	b := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	require.Equal(t, (1<<28)-1, tags.ParseSynchsafeInt(b))
}
