package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// DSDIFFParser implements registry.FormatParser for Philips DSDIFF (.dff):
// an IFF-style container ("FRM8"/"DSD ") but with 64-bit big-endian chunk
// sizes. Stream parameters live in the nested "PROP"/"SND " chunk; an
// optional top-level "ID3 " chunk carries an ID3v2 tag (a common, if
// unofficial, extension several encoders use).
type DSDIFFParser struct{}

func (DSDIFFParser) Format() model.AudioFormat { return model.FormatDSDIFF }

func (DSDIFFParser) CanParse(header []byte, nameHint string) bool {
	return len(header) >= 12 && bytes.Equal(header[0:4], []byte("FRM8")) && bytes.Equal(header[8:12], []byte("DSD "))
}

func (p DSDIFFParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatDSDIFF)
	head, err := r.ReadExact(0, 12)
	if err != nil || string(head[0:4]) != "FRM8" || string(head[8:12]) != "DSD " {
		return out, model.NewError(model.ErrInvalidHeader, "dsdiff: missing FRM8/DSD header")
	}
	formSize := int64(binary.BigEndian.Uint64(head[4:12]))
	end := int64(12) + formSize

	pos := int64(12)
	var channels, sampleRate int
	var sampleCount uint64
	for pos+12 <= end {
		chunkHead, err := r.Read(pos, 12)
		if err != nil || len(chunkHead) < 12 {
			break
		}
		chunkID := string(chunkHead[0:4])
		chunkSize := int64(binary.BigEndian.Uint64(chunkHead[4:12]))
		bodyOff := pos + 12

		switch chunkID {
		case "PROP":
			if body, perr := r.Read(bodyOff, int(chunkSize)); perr == nil {
				channels, sampleRate = parseDSDIFFProp(body)
			}
		case "DSD ":
			sampleCount = uint64(chunkSize) * 8 // one bit per sample per channel
		case "ID3 ":
			if ctx.Options.ShouldParseTags() {
				result, warnings, ierr := tags.ParseID3v2(r.Read, bodyOff, ctx.Options.MaxReadBytes, ctx.Options.IncludeBinaryData, ctx.Options.MaxBinaryTagBytes)
				_ = warnings
				if ierr == nil && result != nil {
					for k, v := range result.Tags {
						out.SetTag(k, v)
					}
				}
			}
		}

		pos = bodyOff + chunkSize
		if chunkSize%2 != 0 {
			pos++
		}
	}

	if channels > 0 {
		out.CoreInfo.SetChannels(channels)
	}
	if sampleRate > 0 {
		out.CoreInfo.SetSampleRate(sampleRate)
		if sampleCount > 0 && channels > 0 {
			out.CoreInfo.SetLength(float64(sampleCount) / float64(channels) / float64(sampleRate))
		}
	}
	return out, nil
}

func parseDSDIFFProp(body []byte) (channels, sampleRate int) {
	if len(body) < 4 || string(body[0:4]) != "SND " {
		return 0, 0
	}
	pos := 4
	for pos+12 <= len(body) {
		id := string(body[pos : pos+4])
		size := int64(binary.BigEndian.Uint64(body[pos+4 : pos+12]))
		valOff := pos + 12
		valEnd := valOff + int(size)
		if valEnd > len(body) {
			break
		}
		switch id {
		case "FS  ":
			if size >= 4 {
				sampleRate = int(binary.BigEndian.Uint32(body[valOff : valOff+4]))
			}
		case "CHNL":
			if size >= 2 {
				channels = int(binary.BigEndian.Uint16(body[valOff : valOff+2]))
			}
		}
		pos = valEnd
		if size%2 != 0 {
			pos++
		}
	}
	return channels, sampleRate
}
