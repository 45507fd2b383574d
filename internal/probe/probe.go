// Package probe implements the magic-byte and filename-extension scoring
// that produces an ordered list of format candidates for a prefix buffer,
// mirroring the signature-table approach of the file-carving registry this
// engine descends from.
package probe

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ostafen/audiometa/model"
)

// Candidate is a scored guess at a prefix buffer's format. Higher scores are
// more specific/confident.
type Candidate struct {
	Format model.AudioFormat
	Score  int
}

var asfHeaderGUID = []byte{
	0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
	0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
}

// Probe scores header (the prefix buffer, typically 4 KiB) against every
// recognised magic signature, bumps scores from the filename extension, and
// returns candidates sorted by descending score, format name ascending on
// ties.
func Probe(header []byte, nameHint string) []Candidate {
	scores := make(map[model.AudioFormat]int)
	bump := func(f model.AudioFormat, s int) {
		if s > scores[f] {
			scores[f] = s
		}
	}

	if hasPrefix(header, []byte("ID3")) {
		bump(model.FormatMP3, 80)
		bump(model.FormatID3, 60)
	}
	if hasPrefix(header, []byte("fLaC")) {
		bump(model.FormatFLAC, 100)
	}
	if hasPrefix(header, []byte("RIFF")) && len(header) >= 12 && bytes.Equal(header[8:12], []byte("WAVE")) {
		bump(model.FormatWAVE, 100)
	}
	if hasPrefix(header, []byte("FORM")) && len(header) >= 12 &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))) {
		bump(model.FormatAIFF, 100)
	}
	if hasPrefix(header, []byte("OggS")) {
		bump(model.FormatOgg, 60)
	}
	if len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")) {
		bump(model.FormatMP4, 95)
		bump(model.FormatM4A, 95)
	}
	if hasPrefix(header, asfHeaderGUID) {
		bump(model.FormatASF, 100)
	}
	if hasPrefix(header, []byte("wvpk")) {
		bump(model.FormatWavPack, 100)
	}
	if hasPrefix(header, []byte("MPCK")) || hasPrefix(header, []byte("MP+")) {
		bump(model.FormatMusepack, 100)
	}
	if hasPrefix(header, []byte("MAC ")) {
		bump(model.FormatMonkeysAudio, 100)
	}
	if hasPrefix(header, []byte("TTA1")) {
		bump(model.FormatTrueAudio, 100)
	}
	if hasPrefix(header, []byte("DSD ")) {
		bump(model.FormatDSF, 100)
	}
	if hasPrefix(header, []byte("FRM8")) {
		bump(model.FormatDSDIFF, 100)
	}
	if hasPrefix(header, []byte("MThd")) {
		bump(model.FormatSMF, 100)
	}
	if hasPrefix(header, []byte("OFR ")) {
		bump(model.FormatOptimFROG, 100)
	}
	if hasPrefix(header, []byte("tBaK")) {
		bump(model.FormatTAK, 100)
	}
	if hasPrefix(header, []byte("APET")) {
		bump(model.FormatAPEv2, 90)
	}
	if len(header) >= 2 && header[0] == 0xFF && header[1]&0xF0 == 0xF0 {
		// ADTS-like sync; distinguish AAC from a plain MPEG frame sync by the
		// layer bits (MPEG layer == 0 for ADTS).
		if header[1]&0x06 == 0 {
			bump(model.FormatAAC, 65)
		} else {
			bump(model.FormatMP3, 30)
		}
	}
	if len(header) >= 2 && header[0] == 0x0B && header[1] == 0x77 {
		bump(model.FormatAC3, 100)
		bump(model.FormatEAC3, 100)
	}

	if nameHint != "" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(nameHint), "."))
		if ext != "" {
			for _, f := range allFormats {
				for _, e := range f.Extensions() {
					if e == ext {
						bump(f, 25)
					}
				}
			}
		}
	}

	out := make([]Candidate, 0, len(scores))
	for f, s := range scores {
		out = append(out, Candidate{Format: f, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Format < out[j].Format
	})
	return out
}

func hasPrefix(header, sig []byte) bool {
	return len(header) >= len(sig) && bytes.Equal(header[:len(sig)], sig)
}

var allFormats = []model.AudioFormat{
	model.FormatMP3, model.FormatID3, model.FormatFLAC, model.FormatMP4, model.FormatM4A,
	model.FormatWAVE, model.FormatAIFF, model.FormatASF, model.FormatAPEv2, model.FormatMusepack,
	model.FormatWavPack, model.FormatTAK, model.FormatDSF, model.FormatDSDIFF, model.FormatAAC,
	model.FormatAC3, model.FormatEAC3, model.FormatOgg, model.FormatOggVorbis, model.FormatOggOpus,
	model.FormatOggSpeex, model.FormatOggTheora, model.FormatOggFLAC, model.FormatTrueAudio,
	model.FormatOptimFROG, model.FormatSMF, model.FormatMonkeysAudio,
}
