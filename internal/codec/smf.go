package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

// SMFParser implements registry.FormatParser for Standard MIDI Files. MIDI
// carries no sampled-audio parameters (no sample rate, bit depth, or
// channel count in the audio sense). Only the MThd header is read: its
// format, track count and (for metrical division) ticks per quarter note
// are recorded as diagnostics context. The MTrk chunks are not walked, so
// no duration is set.
type SMFParser struct{}

func (SMFParser) Format() model.AudioFormat { return model.FormatSMF }

func (SMFParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("MThd"))
}

func (p SMFParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatSMF)
	head, err := r.ReadExact(0, 14)
	if err != nil || string(head[0:4]) != "MThd" {
		return out, model.NewError(model.ErrInvalidHeader, "smf: missing MThd magic")
	}
	format := binary.BigEndian.Uint16(head[8:10])
	numTracks := binary.BigEndian.Uint16(head[10:12])
	division := binary.BigEndian.Uint16(head[12:14])

	ctx.Diagnostics.SetContext("smfFormat", formatUint16Hex(format))
	ctx.Diagnostics.SetContext("smfTrackCount", formatUint16Hex(numTracks))
	if division&0x8000 == 0 {
		ctx.Diagnostics.SetContext("smfTicksPerQuarterNote", formatUint16Hex(division))
	}
	return out, nil
}
