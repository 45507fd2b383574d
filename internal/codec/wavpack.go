package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

var wavPackSampleRates = []int{
	6000, 8000, 9600, 11025, 12000, 16000, 22050, 24000,
	32000, 44100, 48000, 64000, 88200, 96000, 192000,
}

// WavPackParser implements registry.FormatParser for WavPack (.wv): a
// sequence of "wvpk" blocks, the first of which carries the stream's
// sample rate/channel/bit-depth flags. Tags are conventionally an APEv2
// footer.
type WavPackParser struct{}

func (WavPackParser) Format() model.AudioFormat { return model.FormatWavPack }

func (WavPackParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("wvpk"))
}

func (p WavPackParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatWavPack)
	head, err := r.ReadExact(0, 32)
	if err != nil {
		return out, err
	}
	if string(head[0:4]) != "wvpk" {
		return out, model.NewError(model.ErrInvalidHeader, "wavpack: missing wvpk block id")
	}
	totalSamples := binary.LittleEndian.Uint32(head[12:16])
	flags := binary.LittleEndian.Uint32(head[24:28])

	bytesPerSample := int(flags&0x3) + 1
	channels := 2
	if flags&0x4 != 0 {
		channels = 1
	}
	sampleRateIdx := (flags >> 23) & 0xF
	var sampleRate int
	if int(sampleRateIdx) < len(wavPackSampleRates) {
		sampleRate = wavPackSampleRates[sampleRateIdx]
	}

	out.CoreInfo.SetChannels(channels)
	out.CoreInfo.SetBitsPerSample(bytesPerSample * 8)
	if sampleRate > 0 {
		out.CoreInfo.SetSampleRate(sampleRate)
		if totalSamples > 0 {
			out.CoreInfo.SetLength(float64(totalSamples) / float64(sampleRate))
		}
	}

	applyTrailingAPEv2Tags(r, ctx, &out)
	return out, nil
}
