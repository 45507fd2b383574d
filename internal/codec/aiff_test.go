package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

// extendedFloat80At44100 is the 80-bit IEEE extended-precision encoding of
// 44100.0, the AIFF COMM chunk's sample-rate representation.
func extendedFloat80At44100() []byte {
	return []byte{0x40, 0x0E, 0xAC, 0x44, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
}

func buildAIFF(numSampleFrames uint32) []byte {
	commBody := append(be16(2), be32(numSampleFrames)...) // channels=2
	commBody = append(commBody, be16(16)...)               // bits per sample
	commBody = append(commBody, extendedFloat80At44100()...)
	comm := riffChunkBE("COMM", commBody)

	nameChunk := riffChunkBE("NAME", []byte("Test Song"))

	formBody := append([]byte("AIFF"), comm...)
	formBody = append(formBody, nameChunk...)

	head := append([]byte("FORM"), be32(uint32(len(formBody)))...)
	return append(head, formBody...)
}

// riffChunkBE builds a big-endian-length chunk, the AIFF/IFF counterpart of
// the RIFF chunk helper used by the WAVE fixtures.
func riffChunkBE(id string, body []byte) []byte {
	out := append([]byte(id), be32(uint32(len(body)))...)
	out = append(out, body...)
	if len(body)%2 != 0 {
		out = append(out, 0)
	}
	return out
}

func TestAIFFParser_COMMAndNAME(t *testing.T) {
	data := buildAIFF(441000)
	out, err := parseWith(t, codec.AIFFParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, *out.CoreInfo.Channels)
	require.Equal(t, 16, *out.CoreInfo.BitsPerSample)
	require.Equal(t, 44100, *out.CoreInfo.SampleRate)
	require.InDelta(t, 10.0, *out.CoreInfo.Length, 1e-6)
	require.Equal(t, []string{"Test Song"}, out.Tags["TIT2"].Text)
}

func TestAIFFParser_MissingCOMMFails(t *testing.T) {
	formBody := []byte("AIFF")
	head := append([]byte("FORM"), be32(uint32(len(formBody)))...)
	data := append(head, formBody...)
	_, err := parseWith(t, codec.AIFFParser{}, data, model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInconsistentContainer, kind)
}

func TestAIFFParser_CanParse(t *testing.T) {
	require.True(t, codec.AIFFParser{}.CanParse(append([]byte("FORM\x00\x00\x00\x00"), "AIFF"...), ""))
	require.True(t, codec.AIFFParser{}.CanParse(append([]byte("FORM\x00\x00\x00\x00"), "AIFC"...), ""))
	require.False(t, codec.AIFFParser{}.CanParse(append([]byte("FORM\x00\x00\x00\x00"), "WAVE"...), ""))
}
