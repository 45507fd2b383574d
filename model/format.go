package model

// AudioFormat is the closed set of container/codec formats the engine can
// recognise. Each format carries an ordered list of lowercase file
// extensions used by the probe's filename heuristic.
type AudioFormat string

const (
	FormatMP3          AudioFormat = "mp3"
	FormatID3          AudioFormat = "id3"
	FormatFLAC         AudioFormat = "flac"
	FormatMP4          AudioFormat = "mp4"
	FormatM4A          AudioFormat = "m4a"
	FormatWAVE         AudioFormat = "wave"
	FormatAIFF         AudioFormat = "aiff"
	FormatASF          AudioFormat = "asf"
	FormatAPEv2        AudioFormat = "apev2"
	FormatMusepack     AudioFormat = "musepack"
	FormatWavPack      AudioFormat = "wavpack"
	FormatTAK          AudioFormat = "tak"
	FormatDSF          AudioFormat = "dsf"
	FormatDSDIFF       AudioFormat = "dsdiff"
	FormatAAC          AudioFormat = "aac"
	FormatAC3          AudioFormat = "ac3"
	FormatEAC3         AudioFormat = "eac3"
	FormatOgg          AudioFormat = "ogg"
	FormatOggVorbis    AudioFormat = "oggVorbis"
	FormatOggOpus      AudioFormat = "oggOpus"
	FormatOggSpeex     AudioFormat = "oggSpeex"
	FormatOggTheora    AudioFormat = "oggTheora"
	FormatOggFLAC      AudioFormat = "oggFlac"
	FormatTrueAudio    AudioFormat = "trueAudio"
	FormatOptimFROG    AudioFormat = "optimFrog"
	FormatSMF          AudioFormat = "smf"
	FormatMonkeysAudio AudioFormat = "monkeysAudio"
	FormatUnknown      AudioFormat = "unknown"
)

// Extensions returns the lowercase, dot-less file extensions associated with
// a format, in the order the probe should prefer them.
func (f AudioFormat) Extensions() []string {
	switch f {
	case FormatMP3:
		return []string{"mp3"}
	case FormatID3:
		return []string{"id3"}
	case FormatFLAC:
		return []string{"flac"}
	case FormatMP4:
		return []string{"mp4", "m4v", "m4p"}
	case FormatM4A:
		return []string{"m4a", "m4b"}
	case FormatWAVE:
		return []string{"wav", "wave"}
	case FormatAIFF:
		return []string{"aiff", "aif", "aifc"}
	case FormatASF:
		return []string{"wma", "asf"}
	case FormatAPEv2:
		return []string{"ape"}
	case FormatMusepack:
		return []string{"mpc", "mp+", "mpp"}
	case FormatWavPack:
		return []string{"wv"}
	case FormatTAK:
		return []string{"tak"}
	case FormatDSF:
		return []string{"dsf"}
	case FormatDSDIFF:
		return []string{"dff"}
	case FormatAAC:
		return []string{"aac"}
	case FormatAC3:
		return []string{"ac3"}
	case FormatEAC3:
		return []string{"eac3", "ec3"}
	case FormatOgg:
		return []string{"ogg", "oga"}
	case FormatOggVorbis:
		return []string{"ogg", "oga"}
	case FormatOggOpus:
		return []string{"opus"}
	case FormatOggSpeex:
		return []string{"spx"}
	case FormatOggTheora:
		return []string{"oggtheora", "ogv"}
	case FormatOggFLAC:
		return []string{"oggflac"}
	case FormatTrueAudio:
		return []string{"tta"}
	case FormatOptimFROG:
		return []string{"ofr", "ofs"}
	case FormatSMF:
		return []string{"mid", "midi"}
	case FormatMonkeysAudio:
		return []string{"ape"}
	default:
		return nil
	}
}

// AllFormats returns every recognised format except FormatUnknown, in
// declaration order. Used by diagnostic tooling that wants to enumerate the
// closed set (the CLI's "formats" listing).
func AllFormats() []AudioFormat {
	return []AudioFormat{
		FormatMP3, FormatID3, FormatFLAC, FormatMP4, FormatM4A, FormatWAVE,
		FormatAIFF, FormatASF, FormatAPEv2, FormatMusepack, FormatWavPack,
		FormatTAK, FormatDSF, FormatDSDIFF, FormatAAC, FormatAC3, FormatEAC3,
		FormatOgg, FormatOggVorbis, FormatOggOpus, FormatOggSpeex,
		FormatOggTheora, FormatOggFLAC, FormatTrueAudio, FormatOptimFROG,
		FormatSMF, FormatMonkeysAudio,
	}
}
