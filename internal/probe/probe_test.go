package probe_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/probe"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func topFormat(cands []probe.Candidate) (model.AudioFormat, bool) {
	if len(cands) == 0 {
		return "", false
	}
	return cands[0].Format, true
}

func TestProbe_FLACMagic(t *testing.T) {
	header := append([]byte("fLaC"), make([]byte, 100)...)
	cands := probe.Probe(header, "")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Equal(t, model.FormatFLAC, f)
}

func TestProbe_RIFFWaveRequiresWAVESubtype(t *testing.T) {
	header := append([]byte("RIFF"), []byte{0, 0, 0, 0}...)
	header = append(header, []byte("WAVE")...)
	cands := probe.Probe(header, "")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Equal(t, model.FormatWAVE, f)
}

func TestProbe_RIFFWithoutWAVESubtypeDoesNotMatchWave(t *testing.T) {
	header := append([]byte("RIFF"), []byte{0, 0, 0, 0}...)
	header = append(header, []byte("AVI ")...)
	cands := probe.Probe(header, "")
	for _, c := range cands {
		require.NotEqual(t, model.FormatWAVE, c.Format)
	}
}

func TestProbe_MP4BrandAtOffset4(t *testing.T) {
	header := append([]byte{0, 0, 0, 0x18}, []byte("ftypM4A ")...)
	cands := probe.Probe(header, "")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Equal(t, model.FormatM4A, f, "MP4 and M4A tie at the same score; \"m4a\" sorts before \"mp4\" as a tiebreak")
}

func TestProbe_ID3PrefixFavoursMP3OverID3(t *testing.T) {
	header := append([]byte("ID3"), make([]byte, 50)...)
	cands := probe.Probe(header, "")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Equal(t, model.FormatMP3, f)
}

func TestProbe_FilenameExtensionBumpsScore(t *testing.T) {
	header := make([]byte, 16) // no recognisable magic at all
	cands := probe.Probe(header, "track.opus")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Equal(t, model.FormatOggOpus, f)
}

func TestProbe_NoSignatureNoExtensionReturnsEmpty(t *testing.T) {
	cands := probe.Probe(make([]byte, 16), "")
	require.Empty(t, cands)
}

func TestProbe_AC3SyncWord(t *testing.T) {
	header := []byte{0x0B, 0x77, 0, 0}
	cands := probe.Probe(header, "")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Contains(t, []model.AudioFormat{model.FormatAC3, model.FormatEAC3}, f)
}

func TestProbe_ADTSSyncMatchesAAC(t *testing.T) {
	aac := []byte{0xFF, 0xF1} // 12-bit ADTS sync with layer bits zeroed
	cands := probe.Probe(aac, "")
	f, ok := topFormat(cands)
	require.True(t, ok)
	require.Equal(t, model.FormatAAC, f)
}
