package codec

import (
	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

var ac3SampleRates = []int{48000, 44100, 32000}

// ac3BitrateKbps gives the nominal bitrate (kbps) for each of the 38 valid
// frmsizecod values. The bitrate depends on frmsizecod alone; only the
// frame word count varies with the sample rate, and it is not read here.
var ac3BitrateKbps = []int{
	32, 32, 40, 40, 48, 48, 56, 56, 64, 64, 80, 80, 96, 96, 112, 112,
	128, 128, 160, 160, 192, 192, 224, 224, 256, 256, 320, 320, 384, 384,
	448, 448, 512, 512, 576, 576, 640, 640,
}

var ac3ChannelsByACMod = []int{2, 1, 2, 3, 3, 4, 4, 5}

// AC3Parser implements registry.FormatParser for both classic AC-3 (bsid
// <= 10) and Enhanced AC-3 (bsid > 10, normally 16) elementary streams.
type AC3Parser struct {
	format model.AudioFormat
}

func (p AC3Parser) Format() model.AudioFormat { return p.format }

func (AC3Parser) CanParse(header []byte, nameHint string) bool {
	return len(header) >= 6 && header[0] == 0x0B && header[1] == 0x77
}

func (p AC3Parser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	head, err := r.ReadExact(0, 6)
	if err != nil {
		return model.ParsedAudioMetadata{}, err
	}
	if head[0] != 0x0B || head[1] != 0x77 {
		return model.ParsedAudioMetadata{}, model.NewError(model.ErrInvalidHeader, "ac3: missing sync word")
	}

	bsid := head[5] >> 3
	if bsid > 10 {
		return parseEAC3(head, ctx)
	}
	return parseClassicAC3(head, ctx)
}

func parseClassicAC3(head []byte, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatAC3)
	fscod := head[4] >> 6
	frmsizecod := head[4] & 0x3F
	if fscod == 3 || int(frmsizecod) >= len(ac3BitrateKbps) {
		return out, model.NewError(model.ErrInvalidHeader, "ac3: reserved fscod or frmsizecod")
	}
	bsiByte := head[5]
	acmod := (bsiByte >> 0) & 0x07 // not exact bit position across all header variants, treated as an estimate

	out.CoreInfo.SetSampleRate(ac3SampleRates[fscod])
	out.CoreInfo.SetBitrate(ac3BitrateKbps[frmsizecod] * 1000)
	if int(acmod) < len(ac3ChannelsByACMod) {
		out.CoreInfo.SetChannels(ac3ChannelsByACMod[acmod])
	}
	return out, nil
}

var eac3SampleRates = []int{48000, 44100, 32000}

func parseEAC3(head []byte, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatEAC3)
	// E-AC-3 header: 2 sync bytes, strmtyp(2b)+substreamid(3b)+frmsiz(11b)
	// packed into the next two bytes, then fscod(2b)+... in the following
	// byte. We only need fscod and acmod/lfeon for channel layout.
	b4 := head[4]
	fscod := b4 >> 6
	var sampleRate int
	if fscod == 3 {
		fscod2 := (b4 >> 4) & 0x03
		halfRates := []int{24000, 22050, 16000}
		if int(fscod2) < len(halfRates) {
			sampleRate = halfRates[fscod2]
		}
	} else if int(fscod) < len(eac3SampleRates) {
		sampleRate = eac3SampleRates[fscod]
	}
	if sampleRate > 0 {
		out.CoreInfo.SetSampleRate(sampleRate)
	}
	acmod := (b4 >> 1) & 0x07
	if int(acmod) < len(ac3ChannelsByACMod) {
		out.CoreInfo.SetChannels(ac3ChannelsByACMod[acmod])
	}
	return out, nil
}
