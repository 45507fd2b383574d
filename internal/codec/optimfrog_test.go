package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func buildOptimFROG(uncompressedSize uint32) []byte {
	head := make([]byte, 12)
	copy(head[0:4], "OFR ")
	copy(head[4:8], le32(uncompressedSize))
	return head
}

func TestOptimFROGParser_RecordsUncompressedSize(t *testing.T) {
	data := buildOptimFROG(123456)
	out, diagnostics, err := parseWithDiagnostics(t, codec.OptimFROGParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, "123456", diagnostics.Context["uncompressedBytes"])
	require.Nil(t, out.CoreInfo.SampleRate)
}

func TestOptimFROGParser_MissingMagicFails(t *testing.T) {
	_, err := parseWith(t, codec.OptimFROGParser{}, make([]byte, 12), model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInvalidHeader, kind)
}

func TestOptimFROGParser_CanParse(t *testing.T) {
	require.True(t, codec.OptimFROGParser{}.CanParse([]byte("OFR "), ""))
	require.False(t, codec.OptimFROGParser{}.CanParse([]byte("nope"), ""))
}
