package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

// TrueAudioParser implements registry.FormatParser for TTA (True Audio):
// a "TTA1" header with sample rate/channels/bit depth at fixed offsets.
// Tags are conventionally an APEv2 footer.
type TrueAudioParser struct{}

func (TrueAudioParser) Format() model.AudioFormat { return model.FormatTrueAudio }

func (TrueAudioParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("TTA1"))
}

func (p TrueAudioParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatTrueAudio)
	head, err := r.ReadExact(0, 22)
	if err != nil || string(head[0:4]) != "TTA1" {
		return out, model.NewError(model.ErrInvalidHeader, "tta: missing TTA1 magic")
	}
	channels := int(binary.LittleEndian.Uint16(head[6:8]))
	bitsPerSample := int(binary.LittleEndian.Uint16(head[8:10]))
	sampleRate := int(binary.LittleEndian.Uint32(head[10:14]))
	dataLength := binary.LittleEndian.Uint32(head[14:18])

	out.CoreInfo.SetChannels(channels)
	out.CoreInfo.SetBitsPerSample(bitsPerSample)
	if sampleRate > 0 {
		out.CoreInfo.SetSampleRate(sampleRate)
		if dataLength > 0 {
			out.CoreInfo.SetLength(float64(dataLength) / float64(sampleRate))
		}
	}

	applyTrailingAPEv2Tags(r, ctx, &out)
	return out, nil
}
