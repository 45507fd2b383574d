package codec

import (
	"bytes"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

const (
	flacBlockTypeStreamInfo    = 0
	flacBlockTypeVorbisComment = 4
	flacBlockTypePicture       = 6
)

// FLACParser implements registry.FormatParser for native FLAC: the fLaC
// magic followed by a chain of metadata blocks, the first of which must be
// STREAMINFO.
type FLACParser struct{}

func (FLACParser) Format() model.AudioFormat { return model.FormatFLAC }

func (FLACParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("fLaC"))
}

func (p FLACParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatFLAC)
	opts := ctx.Options

	magic, err := r.ReadExact(0, 4)
	if err != nil || string(magic) != "fLaC" {
		return out, model.NewError(model.ErrInvalidHeader, "flac: missing fLaC magic")
	}

	pos := int64(4)
	sawStreamInfo := false
	for {
		blockHead, err := r.ReadExact(pos, 4)
		if err != nil {
			break
		}
		isLast := blockHead[0]&0x80 != 0
		blockType := blockHead[0] & 0x7F
		blockLen := int(blockHead[1])<<16 | int(blockHead[2])<<8 | int(blockHead[3])
		bodyOff := pos + 4

		body, err := r.Read(bodyOff, blockLen)
		if err != nil {
			ctx.Diagnostics.AddWarning("flac: truncated metadata block, stopping scan")
			break
		}
		if len(body) < blockLen {
			if blockType == flacBlockTypeStreamInfo {
				return out, model.NewError(model.ErrTruncatedData, "flac: truncated STREAMINFO block").WithOffset(bodyOff)
			}
			out.SetExtension("flac_metadata_truncated", model.NewBoolTag(true))
			break
		}

		switch blockType {
		case flacBlockTypeStreamInfo:
			if len(body) >= 34 {
				parseFLACStreamInfo(body, &out)
				sawStreamInfo = true
			}
		case flacBlockTypeVorbisComment:
			if opts.ShouldParseTags() {
				if vc, verr := tags.ParseVorbisComment(body); verr == nil {
					for k, v := range vc.Tags {
						out.SetTag(k, v)
					}
				} else {
					ctx.Diagnostics.AddWarning("flac: malformed VORBIS_COMMENT block: " + verr.Error())
				}
			}
		case flacBlockTypePicture:
			if opts.ShouldParseTags() {
				if v, ok := parseFLACPicture(body, opts.IncludeBinaryData, opts.MaxBinaryTagBytes); ok {
					out.SetTag("PICTURE", v)
				}
			}
		}

		pos = bodyOff + int64(len(body))
		if isLast || len(body) < blockLen {
			break
		}
	}

	if !sawStreamInfo {
		return out, model.NewError(model.ErrInconsistentContainer, "flac: missing STREAMINFO block")
	}
	return out, nil
}

// parseFLACStreamInfo decodes the 34-byte STREAMINFO body. Sample rate,
// channel count, bits per sample, and total sample count are packed into a
// single 64-bit big-endian field starting at byte 10.
func parseFLACStreamInfo(body []byte, out *model.ParsedAudioMetadata) {
	var bits uint64
	for _, b := range body[10:18] {
		bits = bits<<8 | uint64(b)
	}

	const (
		sampleRateMask    = 0xFFFFF00000000000
		channelCountMask  = 0x00000E0000000000
		bitsPerSampleMask = 0x000001F000000000
		sampleCountMask   = 0x0000000FFFFFFFFF
	)

	sampleRate := uint32(bits & sampleRateMask >> 44)
	channels := uint8(bits&channelCountMask>>41) + 1
	bitsPerSample := uint8(bits&bitsPerSampleMask>>36) + 1
	sampleCount := bits & sampleCountMask

	if sampleRate == 0 {
		return
	}
	out.CoreInfo.SetSampleRate(int(sampleRate))
	out.CoreInfo.SetChannels(int(channels))
	out.CoreInfo.SetBitsPerSample(int(bitsPerSample))
	if sampleCount > 0 {
		out.CoreInfo.SetLength(float64(sampleCount) / float64(sampleRate))
	}
}

// parseFLACPicture decodes a METADATA_BLOCK_PICTURE body: type(4) +
// mimeLen(4) + mime + descLen(4) + desc + width(4) + height(4) + depth(4) +
// colors(4) + dataLen(4) + data.
func parseFLACPicture(body []byte, includeBinaryData bool, maxBinaryTagBytes int) (model.MetadataTagValue, bool) {
	if len(body) < 4 {
		return model.MetadataTagValue{}, false
	}
	pos := 4 // picture type, unused
	mimeLen, ok := be32(body, pos)
	if !ok {
		return model.MetadataTagValue{}, false
	}
	pos += 4
	if pos+int(mimeLen) > len(body) {
		return model.MetadataTagValue{}, false
	}
	mime := string(body[pos : pos+int(mimeLen)])
	pos += int(mimeLen)

	descLen, ok := be32(body, pos)
	if !ok || pos+4+int(descLen) > len(body) {
		return model.MetadataTagValue{}, false
	}
	pos += 4 + int(descLen)

	pos += 16 // width, height, depth, colors (4 bytes each), all unused here
	dataLen, ok := be32(body, pos)
	if !ok {
		return model.MetadataTagValue{}, false
	}
	pos += 4
	if pos+int(dataLen) > len(body) {
		return model.MetadataTagValue{}, false
	}
	data := body[pos : pos+int(dataLen)]
	return model.NewBinaryTag(tags.BuildDigest(data, mime, includeBinaryData, maxBinaryTagBytes)), true
}

func be32(b []byte, off int) (uint32, bool) {
	if off+4 > len(b) {
		return 0, false
	}
	return uint32(b[off])<<24 | uint32(b[off+1])<<16 | uint32(b[off+2])<<8 | uint32(b[off+3]), true
}
