package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func buildMonkeysAudio(channels uint16, sampleRate, blocksPerFrame, totalFrames uint32) []byte {
	head := make([]byte, 6)
	copy(head[0:4], "MAC ")
	copy(head[4:6], le16(3980))

	descriptor := make([]byte, 46)

	hdr := make([]byte, 24)
	copy(hdr[4:6], le16(channels))
	copy(hdr[6:10], le32(sampleRate))
	copy(hdr[10:14], le32(blocksPerFrame))
	copy(hdr[14:18], le32(totalFrames))

	return append(append(head, descriptor...), hdr...)
}

func TestMonkeysAudioParser_ModernHeader(t *testing.T) {
	data := buildMonkeysAudio(2, 44100, 4608, 10)
	out, err := parseWith(t, codec.MonkeysAudioParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, *out.CoreInfo.Channels)
	require.Equal(t, 44100, *out.CoreInfo.SampleRate)
	require.InDelta(t, 10.0*4608.0/44100.0, *out.CoreInfo.Length, 1e-9)
}

func TestMonkeysAudioParser_OldVersionRecordsVersionOnly(t *testing.T) {
	head := make([]byte, 6)
	copy(head[0:4], "MAC ")
	copy(head[4:6], le16(3970))
	out, diagnostics, err := parseWithDiagnostics(t, codec.MonkeysAudioParser{}, head, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, "0x0f82", diagnostics.Context["macVersion"])
	require.Nil(t, out.CoreInfo.SampleRate)
}

func TestMonkeysAudioParser_MissingMagicFails(t *testing.T) {
	_, err := parseWith(t, codec.MonkeysAudioParser{}, make([]byte, 6), model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInvalidHeader, kind)
}

func TestMonkeysAudioParser_CanParse(t *testing.T) {
	require.True(t, codec.MonkeysAudioParser{}.CanParse([]byte("MAC "), ""))
	require.False(t, codec.MonkeysAudioParser{}.CanParse([]byte("nope"), ""))
}
