package codec_test

import (
	"testing"
	"unicode/utf16"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

var (
	testASFHeaderGUID = []byte{
		0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
		0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
	}
	testASFFilePropGUID = []byte{
		0xA1, 0xDC, 0xAB, 0x8C, 0x47, 0xA9, 0xCF, 0x11,
		0x8E, 0xE4, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65,
	}
	testASFStreamPropGUID = []byte{
		0x91, 0x07, 0xDC, 0xB7, 0xB7, 0xA9, 0xCF, 0x11,
		0x8E, 0xE6, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65,
	}
	testASFStreamTypeWMA = []byte{
		0x40, 0x9E, 0x69, 0xF8, 0x4D, 0x5B, 0xCF, 0x11,
		0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B,
	}
	testASFExtContentDescGUID = []byte{
		0x40, 0xA4, 0xD0, 0xD2, 0x07, 0xE3, 0xD2, 0x11,
		0x97, 0xF0, 0x00, 0xA0, 0xC9, 0x5E, 0xA8, 0x50,
	}
)

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func utf16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func asfSubObject(guid []byte, body []byte) []byte {
	out := append([]byte{}, guid...)
	out = append(out, le64(uint64(24+len(body)))...)
	out = append(out, body...)
	return out
}

func buildASF(playDurationSeconds float64, channels, bitsPerSample uint16, sampleRate, byteRate uint32) []byte {
	filePropBody := make([]byte, 56)
	le64Into(filePropBody[40:48], uint64(playDurationSeconds*1e7))
	fileProp := asfSubObject(testASFFilePropGUID, filePropBody)

	streamBody := make([]byte, 54)
	copy(streamBody[0:16], testASFStreamTypeWMA)
	copy(streamBody[40:44], le32(16))
	wfx := make([]byte, 16)
	copy(wfx[2:4], le16(channels))
	copy(wfx[4:8], le32(sampleRate))
	copy(wfx[8:12], le32(byteRate))
	copy(wfx[14:16], le16(bitsPerSample))
	streamProp := asfSubObject(testASFStreamPropGUID, append(streamBody, wfx...))

	name := utf16LE("Mood")
	value := utf16LE("Happy")
	extBody := append(le16(1), le16(uint16(len(name)))...)
	extBody = append(extBody, name...)
	extBody = append(extBody, le16(0)...) // dataType: UTF-16 string
	extBody = append(extBody, le16(uint16(len(value)))...)
	extBody = append(extBody, value...)
	extContentDesc := asfSubObject(testASFExtContentDescGUID, extBody)

	subObjects := append(append(fileProp, streamProp...), extContentDesc...)
	headerObjectSize := uint64(30 + len(subObjects))

	head := append([]byte{}, testASFHeaderGUID...)
	head = append(head, le64(headerObjectSize)...)
	head = append(head, le32(3)...) // numHeaderObjects
	head = append(head, 0x01, 0x02) // reserved1, reserved2

	return append(head, subObjects...)
}

func TestASFParser_FileAndStreamProperties(t *testing.T) {
	data := buildASF(5.0, 2, 16, 44100, 16000)
	out, err := parseWith(t, codec.ASFParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.InDelta(t, 5.0, *out.CoreInfo.Length, 1e-6)
	require.Equal(t, 2, *out.CoreInfo.Channels)
	require.Equal(t, 44100, *out.CoreInfo.SampleRate)
	require.Equal(t, 16, *out.CoreInfo.BitsPerSample)
	require.Equal(t, 128000, *out.CoreInfo.Bitrate)
}

func TestASFParser_ExtendedContentDescription(t *testing.T) {
	data := buildASF(5.0, 2, 16, 44100, 16000)
	out, err := parseWith(t, codec.ASFParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"Happy"}, out.Tags["Mood"].Text)
}

func TestASFParser_TagsSkippedWhenDisabled(t *testing.T) {
	data := buildASF(5.0, 2, 16, 44100, 16000)
	noTags := false
	out, err := parseWith(t, codec.ASFParser{}, data, model.ParseOptions{ParseTags: &noTags})
	require.NoError(t, err)
	require.Empty(t, out.Tags)
}

func TestASFParser_HeaderObjectTooSmallFails(t *testing.T) {
	head := append([]byte{}, testASFHeaderGUID...)
	head = append(head, le64(10)...)
	head = append(head, le32(0)...)
	head = append(head, 0, 0)
	_, err := parseWith(t, codec.ASFParser{}, head, model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInvalidHeader, kind)
}

func TestASFParser_CanParse(t *testing.T) {
	require.True(t, codec.ASFParser{}.CanParse(testASFHeaderGUID, ""))
	require.False(t, codec.ASFParser{}.CanParse([]byte("nope"), ""))
}
