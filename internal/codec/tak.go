package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

// TAKParser implements registry.FormatParser for the TAK lossless codec:
// a "tBaK" magic followed by a chain of metadata blocks, the first of
// which ("streaminfo", type 1) carries sample rate/channels/depth packed
// into a bitfield. Tags are conventionally an APEv2 footer.
type TAKParser struct{}

func (TAKParser) Format() model.AudioFormat { return model.FormatTAK }

func (TAKParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("tBaK"))
}

func (p TAKParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatTAK)
	head, err := r.ReadExact(0, 4)
	if err != nil || string(head) != "tBaK" {
		return out, model.NewError(model.ErrInvalidHeader, "tak: missing tBaK magic")
	}

	pos := int64(4)
	for i := 0; i < 32; i++ {
		blockHead, err := r.Read(pos, 4)
		if err != nil || len(blockHead) < 4 {
			break
		}
		blockType := blockHead[0] & 0x7F
		blockSize := int(binary.LittleEndian.Uint16(blockHead[2:4]))
		bodyOff := pos + 4

		if blockType == 1 { // streaminfo
			body, err := r.Read(bodyOff, blockSize)
			if err == nil && len(body) >= 10 {
				bits := binary.LittleEndian.Uint64(body[2:10])
				sampleRate := int(bits & 0x3FFFF)
				channels := int((bits>>18)&0xF) + 1
				bitsPerSample := int((bits>>22)&0x1F) + 1
				if sampleRate > 0 {
					out.CoreInfo.SetSampleRate(sampleRate)
				}
				out.CoreInfo.SetChannels(channels)
				out.CoreInfo.SetBitsPerSample(bitsPerSample)
			}
			break
		}
		pos = bodyOff + int64(blockSize)
	}

	applyTrailingAPEv2Tags(r, ctx, &out)
	return out, nil
}
