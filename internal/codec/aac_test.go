package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

// buildADTSFrame builds a single ADTS frame header (sampleFreqIdx=3 -> 48000,
// channelConfig=2 -> stereo) with a total frame length of 100 bytes, padded
// to exactly that length.
func buildADTSFrame(frameLen int) []byte {
	head := make([]byte, 7)
	head[0] = 0xFF
	head[1] = 0xF1
	head[2] = 0x0C // sampleFreqIdx=3<<2
	head[3] = 0x80 // channelConfig low bits = 2<<6
	head[4] = byte(frameLen >> 3)
	head[5] = byte((frameLen & 0x07) << 5)
	head[6] = 0x00
	buf := make([]byte, frameLen)
	copy(buf, head)
	return buf
}

func TestAACParser_SingleFrame(t *testing.T) {
	data := buildADTSFrame(100)
	out, err := parseWith(t, codec.AACParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, 48000, *out.CoreInfo.SampleRate)
	require.Equal(t, 2, *out.CoreInfo.Channels)
	require.InDelta(t, 1024.0/48000.0, *out.CoreInfo.Length, 1e-9)
}

func TestAACParser_MissingSyncFails(t *testing.T) {
	_, err := parseWith(t, codec.AACParser{}, []byte{0, 0, 0, 0, 0, 0, 0}, model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInvalidHeader, kind)
}

func TestAACParser_CanParse(t *testing.T) {
	head := buildADTSFrame(100)[:7]
	require.True(t, codec.AACParser{}.CanParse(head, ""))
	require.False(t, codec.AACParser{}.CanParse([]byte{0, 0, 0, 0, 0, 0, 0}, ""))
}
