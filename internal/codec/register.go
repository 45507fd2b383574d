// Package codec implements the per-format FormatParser set: one file per
// container/codec family, each grounded on the corresponding detection
// and field-layout logic learned from the reference decoders this engine
// descends from.
package codec

import (
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

// DefaultParsers returns the full, ordered parser set the engine registers
// by default. Order matters only for the unprobed (no-candidate) fallback
// path in registry.Registry.Resolve; the probed path always dispatches on
// score first.
func DefaultParsers() []registry.FormatParser {
	return []registry.FormatParser{
		MP3Parser{},
		FLACParser{},
		WAVEParser{},
		AIFFParser{},
		MP4Parser{format: model.FormatMP4},
		MP4Parser{format: model.FormatM4A},
		OggParser{},
		ASFParser{},
		APEv2ContainerParser{},
		WavPackParser{},
		MusepackParser{},
		TAKParser{},
		DSFParser{},
		DSDIFFParser{},
		AACParser{},
		AC3Parser{format: model.FormatAC3},
		AC3Parser{format: model.FormatEAC3},
		TrueAudioParser{},
		OptimFROGParser{},
		SMFParser{},
		MonkeysAudioParser{},
		FallbackParser{},
	}
}
