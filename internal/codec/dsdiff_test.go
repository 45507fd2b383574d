package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func be64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
	return b
}

// buildDSDIFF constructs a minimal FRM8/DSD container with a PROP/SND chunk
// (carrying FS and CHNL sub-chunks) followed by a DSD data chunk header.
// The parser derives its FRM8 form-size field from a 12-byte header whose
// last 4 bytes must read "DSD ", so the encoded size is necessarily a large
// value; the read-truncation at the real end of the buffer naturally
// terminates the chunk walk regardless.
func buildDSDIFF(sampleRate uint32, channels uint16, sampleCount uint64) []byte {
	head := append([]byte("FRM8"), 0, 0, 0, 0)
	head = append(head, "DSD "...)

	fsChunk := append([]byte("FS  "), be64(4)...)
	fsChunk = append(fsChunk, be32(sampleRate)...)

	chnlChunk := append([]byte("CHNL"), be64(2)...)
	chnlChunk = append(chnlChunk, be16(channels)...)

	sndBody := append([]byte("SND "), fsChunk...)
	sndBody = append(sndBody, chnlChunk...)

	propChunk := append([]byte("PROP"), be64(uint64(len(sndBody)))...)
	propChunk = append(propChunk, sndBody...)

	dsdChunkSize := sampleCount / 8
	dsdChunk := append([]byte("DSD "), be64(dsdChunkSize)...)

	return append(append(head, propChunk...), dsdChunk...)
}

func TestDSDIFFParser_PropAndDSDChunks(t *testing.T) {
	data := buildDSDIFF(2822400, 2, 56448000)
	out, err := parseWith(t, codec.DSDIFFParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, *out.CoreInfo.Channels)
	require.Equal(t, 2822400, *out.CoreInfo.SampleRate)
	require.InDelta(t, 10.0, *out.CoreInfo.Length, 1e-9)
}

func TestDSDIFFParser_MissingHeaderFails(t *testing.T) {
	_, err := parseWith(t, codec.DSDIFFParser{}, make([]byte, 12), model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInvalidHeader, kind)
}

func TestDSDIFFParser_CanParse(t *testing.T) {
	head := append([]byte("FRM8"), 0, 0, 0, 0)
	head = append(head, "DSD "...)
	require.True(t, codec.DSDIFFParser{}.CanParse(head, ""))
	require.False(t, codec.DSDIFFParser{}.CanParse(make([]byte, 12), ""))
}
