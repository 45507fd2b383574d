package ioreader_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/source"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func sampleData(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestWindowedReader_ReadWithinWindow(t *testing.T) {
	data := sampleData(1000)
	src := source.NewMemorySource(data, "")
	r := ioreader.New(src, 256, 1<<20)

	got, err := r.Read(0, 100)
	require.NoError(t, err)
	require.Equal(t, data[0:100], got)
	require.Equal(t, uint64(256), r.BytesRead())

	got, err = r.Read(50, 50)
	require.NoError(t, err)
	require.Equal(t, data[50:100], got)
	require.Equal(t, uint64(256), r.BytesRead(), "a read served from the cached window must not touch the source again")
}

func TestWindowedReader_ReadOutsideWindowRefetches(t *testing.T) {
	data := sampleData(1000)
	src := source.NewMemorySource(data, "")
	r := ioreader.New(src, 100, 1<<20)

	_, err := r.Read(0, 50)
	require.NoError(t, err)
	require.Equal(t, uint64(100), r.BytesRead())

	got, err := r.Read(500, 50)
	require.NoError(t, err)
	require.Equal(t, data[500:550], got)
	require.Equal(t, uint64(200), r.BytesRead())
}

func TestWindowedReader_ReadExceedingMaxReadBytesFails(t *testing.T) {
	data := sampleData(1000)
	src := source.NewMemorySource(data, "")
	r := ioreader.New(src, 100, 200)

	_, err := r.Read(0, 300)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrIOFailure, kind)
}

func TestWindowedReader_ReadExact_FailsOnShortRead(t *testing.T) {
	data := sampleData(10)
	src := source.NewMemorySource(data, "")
	r := ioreader.New(src, 64, 1<<20)

	_, err := r.ReadExact(5, 20)
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	require.Equal(t, model.ErrTruncatedData, kind)
}

func TestWindowedReader_NegativeOffsetFails(t *testing.T) {
	src := source.NewMemorySource(sampleData(10), "")
	r := ioreader.New(src, 64, 1<<20)

	_, err := r.Read(-1, 4)
	require.Error(t, err)
}

func TestWindowedReader_ZeroLengthReadIsNoop(t *testing.T) {
	src := source.NewMemorySource(sampleData(10), "")
	r := ioreader.New(src, 64, 1<<20)

	got, err := r.Read(0, 0)
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, uint64(0), r.BytesRead())
}

func TestWindowedReader_IntegerDecoders(t *testing.T) {
	data := []byte{
		0x01,
		0x02, 0x03, // LE16 at 1
		0x04, 0x05, // BE16 at 3
		0x06, 0x07, 0x08, // BE24 at 5
		0x09, 0x0A, 0x0B, 0x0C, // LE32 at 8
		0x0D, 0x0E, 0x0F, 0x10, // BE32 at 12
	}
	src := source.NewMemorySource(data, "")
	r := ioreader.New(src, 64, 1<<20)

	b, err := r.ReadUInt8(0)
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), b)

	le16, err := r.ReadUInt16LE(1)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0302), le16)

	be16, err := r.ReadUInt16BE(3)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0405), be16)

	be24, err := r.ReadUInt24BE(5)
	require.NoError(t, err)
	require.Equal(t, uint32(0x060708), be24)

	le32, err := r.ReadUInt32LE(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0x0C0B0A09), le32)

	be32, err := r.ReadUInt32BE(12)
	require.NoError(t, err)
	require.Equal(t, uint32(0x0D0E0F10), be32)
}

func TestWindowedReader_NameHintAndLength(t *testing.T) {
	src := source.NewMemorySource(sampleData(42), "track.flac")
	r := ioreader.New(src, 64, 1<<20)

	require.Equal(t, "track.flac", r.NameHint())
	length, ok := r.Length()
	require.True(t, ok)
	require.Equal(t, int64(42), length)
}
