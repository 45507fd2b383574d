package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func buildMP4(majorBrand string, coverArt []byte, includeTrkn bool) []byte {
	return buildMP4WithCpil(majorBrand, coverArt, includeTrkn, nil)
}

func buildMP4WithCpil(majorBrand string, coverArt []byte, includeTrkn bool, cpil []byte) []byte {
	ftypBody := append([]byte(majorBrand), be32(0)...)
	ftypBody = append(ftypBody, majorBrand...)
	ftyp := mp4Atom("ftyp", ftypBody)

	mvhdBody := make([]byte, 12) // version/flags(4) + creation_time(4) + modification_time(4)
	mvhdBody = append(mvhdBody, be32(1000)...)          // timescale
	mvhdBody = append(mvhdBody, be32(5000)...)          // duration: 5s at timescale 1000
	mvhd := mp4Atom("mvhd", mvhdBody)

	var ilstBody []byte
	ilstBody = append(ilstBody, mp4ILSTItem("\xa9nam", 1, []byte("Test Song"))...)
	if coverArt != nil {
		ilstBody = append(ilstBody, mp4ILSTItem("covr", 13, coverArt)...)
	}
	if includeTrkn {
		trknPayload := append(make([]byte, 2), be16(3)...)
		trknPayload = append(trknPayload, be16(12)...)
		ilstBody = append(ilstBody, mp4ILSTItem("trkn", 0, trknPayload)...)
	}
	if cpil != nil {
		ilstBody = append(ilstBody, mp4ILSTItem("cpil", 21, cpil)...)
	}
	ilst := mp4Atom("ilst", ilstBody)
	meta := mp4Atom("meta", append(be32(0), ilst...))
	udta := mp4Atom("udta", meta)

	moovBody := append(mvhd, udta...)
	moov := mp4Atom("moov", moovBody)

	return append(ftyp, moov...)
}

func TestMP4Parser_CoreFieldsAndTextTag(t *testing.T) {
	data := buildMP4("M4A ", nil, false)
	out, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, model.FormatM4A, out.Format)
	require.InDelta(t, 5.0, *out.CoreInfo.Length, 1e-9)
	require.Equal(t, []string{"Test Song"}, out.Tags["\xa9nam"].Text)
}

func TestMP4Parser_MajorBrandDecidesReportedFormat(t *testing.T) {
	data := buildMP4("mp42", nil, false)
	out, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, model.FormatMP4, out.Format)
}

func TestMP4Parser_TrknPairTag(t *testing.T) {
	data := buildMP4("M4A ", nil, true)
	out, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"3/12"}, out.Tags["trkn"].Text)
}

func TestMP4Parser_CpilDecodesAsBoolNotInt(t *testing.T) {
	data := buildMP4WithCpil("M4A ", nil, false, []byte{1})
	out, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{})
	require.NoError(t, err)
	cpil := out.Tags["cpil"]
	require.Equal(t, model.TagBool, cpil.Kind)
	require.True(t, cpil.Bool)
}

func TestMP4Parser_CoverArtRespectsIncludeBinaryDataGate(t *testing.T) {
	cover := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	data := buildMP4("M4A ", cover, false)

	withoutEmbed, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{IncludeBinaryData: false})
	require.NoError(t, err)
	covr := withoutEmbed.Tags["covr"]
	require.Equal(t, model.TagBinary, covr.Kind)
	require.Nil(t, covr.Binary.Data)
	require.NotEmpty(t, covr.Binary.SHA256)

	withEmbed, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{IncludeBinaryData: true, MaxBinaryTagBytes: 1 << 20})
	require.NoError(t, err)
	embeddedCovr := withEmbed.Tags["covr"]
	require.Equal(t, cover, embeddedCovr.Binary.Data)
	require.Equal(t, covr.Binary.SHA256, embeddedCovr.Binary.SHA256, "digest must be stable regardless of the embed gate")
}

func TestMP4Parser_MissingMoovFails(t *testing.T) {
	data := mp4Atom("ftyp", append([]byte("M4A "), be32(0)...))
	_, err := parseWith(t, codec.MP4Parser{}, data, model.ParseOptions{})
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrInconsistentContainer, kind)
}
