package codec

import (
	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

var aacSampleRates = []int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

// AACParser implements registry.FormatParser for bare ADTS elementary
// streams (a raw AAC frame sequence with no container, as commonly found
// with a ".aac" extension).
type AACParser struct{}

func (AACParser) Format() model.AudioFormat { return model.FormatAAC }

func (AACParser) CanParse(header []byte, nameHint string) bool {
	return len(header) >= 7 && header[0] == 0xFF && header[1]&0xF6 == 0xF0 && header[1]&0x06 == 0
}

func (p AACParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatAAC)
	head, err := r.ReadExact(0, 7)
	if err != nil {
		return out, err
	}
	if head[0] != 0xFF || head[1]&0xF0 != 0xF0 {
		return out, model.NewError(model.ErrInvalidHeader, "aac: missing ADTS sync word")
	}
	sampleFreqIdx := (head[2] >> 2) & 0x0F
	if int(sampleFreqIdx) >= len(aacSampleRates) {
		return out, model.NewError(model.ErrInvalidHeader, "aac: reserved sampling frequency index")
	}
	channelConfig := int((head[2]&0x01)<<2 | (head[3]>>6)&0x03)

	out.CoreInfo.SetSampleRate(aacSampleRates[sampleFreqIdx])
	if channelConfig > 0 {
		out.CoreInfo.SetChannels(channelConfig)
	}

	length, ok := r.Length()
	if !ok {
		return out, nil
	}
	frames, totalFrameLen := 0, int64(0)
	pos := int64(0)
	for pos+7 <= length {
		fh, err := r.Read(pos, 7)
		if err != nil || len(fh) < 7 || fh[0] != 0xFF || fh[1]&0xF0 != 0xF0 {
			break
		}
		frameLen := int64(fh[3]&0x03)<<11 | int64(fh[4])<<3 | int64(fh[5]>>5)
		if frameLen < 7 {
			break
		}
		totalFrameLen += frameLen
		pos += frameLen
		frames++
		if frames > 2_000_000 {
			break
		}
	}
	if frames > 0 {
		const samplesPerFrame = 1024.0
		durationSeconds := float64(frames) * samplesPerFrame / float64(aacSampleRates[sampleFreqIdx])
		out.CoreInfo.SetLength(durationSeconds)
		if durationSeconds > 0 {
			out.CoreInfo.SetBitrate(int(float64(totalFrameLen*8) / durationSeconds))
		}
	}
	return out, nil
}
