package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

// buildAPEv2OnlyFile builds a file whose entire content is an APEv2 tag:
// a leading "APETAGEX"-prefixed header block (satisfying the parser's
// header-variant CanParse check) followed by one text item and a real
// footer the tag body length is computed against.
func buildAPEv2OnlyFile(key, value string) []byte {
	headerBlock := make([]byte, 32)
	copy(headerBlock, "APETAGEX")

	item := append(le32(uint32(len(value))), le32(0)...)
	item = append(item, key...)
	item = append(item, 0)
	item = append(item, value...)

	footer := make([]byte, 0, 32)
	footer = append(footer, "APETAGEX"...)
	footer = append(footer, le32(2000)...)
	footer = append(footer, le32(uint32(32+len(item)))...)
	footer = append(footer, le32(1)...) // item count
	footer = append(footer, le32(0)...) // flags, no header bit
	footer = append(footer, make([]byte, 8)...)

	return append(append(headerBlock, item...), footer...)
}

func TestAPEv2ContainerParser_TextItem(t *testing.T) {
	data := buildAPEv2OnlyFile("TITLE", "Hello")
	out, err := parseWith(t, codec.APEv2ContainerParser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"Hello"}, out.Tags["TITLE"].Text)
	require.Nil(t, out.CoreInfo.SampleRate)
}

func TestAPEv2ContainerParser_TagsSkippedWhenDisabled(t *testing.T) {
	data := buildAPEv2OnlyFile("TITLE", "Hello")
	noTags := false
	out, err := parseWith(t, codec.APEv2ContainerParser{}, data, model.ParseOptions{ParseTags: &noTags})
	require.NoError(t, err)
	require.Empty(t, out.Tags)
}

func TestAPEv2ContainerParser_CanParse(t *testing.T) {
	require.True(t, codec.APEv2ContainerParser{}.CanParse([]byte("APETAGEX"), ""))
	require.False(t, codec.APEv2ContainerParser{}.CanParse([]byte("nope"), ""))
}
