package source_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/source"
	"github.com/stretchr/testify/require"
)

func TestMemorySource_ReadWithinBounds(t *testing.T) {
	data := []byte("0123456789")
	s := source.NewMemorySource(data, "file.mp3")

	got, err := s.Read(2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("2345"), got)

	length, ok := s.Length()
	require.True(t, ok)
	require.Equal(t, int64(10), length)
	require.Equal(t, "file.mp3", s.NameHint())
}

func TestMemorySource_ReadPastEndTruncates(t *testing.T) {
	s := source.NewMemorySource([]byte("short"), "")
	got, err := s.Read(2, 100)
	require.NoError(t, err)
	require.Equal(t, []byte("ort"), got)
}

func TestMemorySource_ReadAtOrPastLengthReturnsNil(t *testing.T) {
	s := source.NewMemorySource([]byte("abc"), "")
	got, err := s.Read(3, 5)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemorySource_ReturnsCopyNotAliasedToBuffer(t *testing.T) {
	data := []byte("mutateme")
	s := source.NewMemorySource(data, "")
	got, err := s.Read(0, 4)
	require.NoError(t, err)
	got[0] = 'X'
	require.Equal(t, byte('m'), data[0], "Read must not expose the backing array for mutation")
}

func TestMemorySource_NegativeOffsetErrors(t *testing.T) {
	s := source.NewMemorySource([]byte("abc"), "")
	_, err := s.Read(-1, 1)
	require.Error(t, err)
}

func TestMemorySource_CloseIsNoop(t *testing.T) {
	s := source.NewMemorySource([]byte("abc"), "")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
