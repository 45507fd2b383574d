package tags_test

import (
	"encoding/binary"
	"testing"

	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func TestDecodeMP4DataAtom_UTF8Text(t *testing.T) {
	v, ok := tags.DecodeMP4DataAtom("\xa9nam", 1, []byte("Pyramid Song"), false, 0)
	require.True(t, ok)
	require.Equal(t, model.TagText, v.Kind)
	require.Equal(t, []string{"Pyramid Song"}, v.Text)
}

func TestDecodeMP4DataAtom_BEIntSigned(t *testing.T) {
	payload := []byte{0xFF} // -1 as int8
	v, ok := tags.DecodeMP4DataAtom("tmpo", 21, payload, false, 0)
	require.True(t, ok)
	require.Equal(t, model.TagInt, v.Kind)
	require.Equal(t, int64(-1), v.Int)
}

func TestDecodeMP4DataAtom_TrknPair(t *testing.T) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint16(payload[2:4], 3)
	binary.BigEndian.PutUint16(payload[4:6], 12)
	v, ok := tags.DecodeMP4DataAtom("trkn", 0, payload, false, 0)
	require.True(t, ok)
	require.Equal(t, model.TagText, v.Kind)
	require.Equal(t, []string{"3/12"}, v.Text)
}

func TestDecodeMP4DataAtom_TrknPairUnknownTotal(t *testing.T) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint16(payload[2:4], 5)
	v, ok := tags.DecodeMP4DataAtom("disk", 0, payload, false, 0)
	require.True(t, ok)
	require.Equal(t, []string{"5"}, v.Text)
}

func TestDecodeMP4DataAtom_CoverArtJPEG(t *testing.T) {
	img := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	v, ok := tags.DecodeMP4DataAtom("covr", 13, img, true, 1<<20)
	require.True(t, ok)
	require.Equal(t, model.TagBinary, v.Kind)
	require.Equal(t, "image/jpeg", v.Binary.MIME)
	require.Equal(t, img, v.Binary.Data)
}

func TestDecodeMP4DataAtom_EmptyPayloadIsSkipped(t *testing.T) {
	_, ok := tags.DecodeMP4DataAtom("\xa9nam", 1, nil, false, 0)
	require.False(t, ok)
}
