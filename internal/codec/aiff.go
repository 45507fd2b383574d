package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// AIFFParser implements registry.FormatParser for FORM/AIFF and FORM/AIFC,
// the big-endian sibling of RIFF/WAVE. Layout mirrors WAVEParser: a single
// pass over the top-level chunk list.
type AIFFParser struct{}

func (AIFFParser) Format() model.AudioFormat { return model.FormatAIFF }

func (AIFFParser) CanParse(header []byte, nameHint string) bool {
	if len(header) < 12 || !bytes.Equal(header[0:4], []byte("FORM")) {
		return false
	}
	return bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))
}

func (p AIFFParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatAIFF)
	opts := ctx.Options

	head, err := r.ReadExact(0, 12)
	if err != nil {
		return out, err
	}
	formSize := int64(binary.BigEndian.Uint32(head[4:8]))
	fileEnd := int64(8) + formSize

	pos := int64(12)
	var numSampleFrames uint32
	foundCOMM := false

	for pos+8 <= fileEnd {
		chunkHead, err := r.Read(pos, 8)
		if err != nil || len(chunkHead) < 8 {
			break
		}
		chunkID := string(chunkHead[0:4])
		chunkSize := int64(binary.BigEndian.Uint32(chunkHead[4:8]))
		bodyOff := pos + 8

		switch chunkID {
		case "COMM":
			if body, cerr := r.Read(bodyOff, int(chunkSize)); cerr == nil && len(body) >= 18 {
				channels := int(binary.BigEndian.Uint16(body[0:2]))
				numSampleFrames = binary.BigEndian.Uint32(body[2:6])
				bitsPerSample := int(binary.BigEndian.Uint16(body[6:8]))
				sampleRate := decodeExtendedFloat80(body[8:18])

				out.CoreInfo.SetChannels(channels)
				out.CoreInfo.SetBitsPerSample(bitsPerSample)
				if sampleRate > 0 {
					out.CoreInfo.SetSampleRate(int(sampleRate))
					if numSampleFrames > 0 {
						out.CoreInfo.SetLength(float64(numSampleFrames) / sampleRate)
					}
					out.CoreInfo.SetBitrate(int(sampleRate) * channels * bitsPerSample)
				}
				foundCOMM = true
			}
		case "NAME", "AUTH", "ANNO", "(c) ":
			if opts.ShouldParseTags() {
				if body, aerr := r.Read(bodyOff, int(chunkSize)); aerr == nil {
					key := map[string]string{"NAME": "TIT2", "AUTH": "TPE1", "ANNO": "COMM:", "(c) ": "TCOP"}[chunkID]
					v := string(bytes.TrimRight(body, "\x00"))
					if v != "" {
						out.AppendTagText(key, v)
					}
				}
			}
		case "ID3 ", "id3 ":
			if opts.ShouldParseTags() {
				result, warnings, ierr := tags.ParseID3v2(r.Read, bodyOff, opts.MaxReadBytes, opts.IncludeBinaryData, opts.MaxBinaryTagBytes)
				if ierr == nil && result != nil {
					for k, v := range result.Tags {
						out.SetTag(k, v)
					}
				}
				for _, w := range warnings {
					ctx.Diagnostics.AddWarning(w)
				}
			}
		}

		pos = bodyOff + chunkSize
		if chunkSize%2 != 0 {
			pos++
		}
	}

	if !foundCOMM {
		return out, model.NewError(model.ErrInconsistentContainer, "aiff: missing 'COMM' chunk")
	}
	return out, nil
}

// decodeExtendedFloat80 decodes the 80-bit IEEE 754 extended-precision float
// AIFF uses for its sample rate field: a sign+15-bit exponent followed by a
// 64-bit mantissa with an explicit integer bit.
func decodeExtendedFloat80(b []byte) float64 {
	if len(b) < 10 {
		return 0
	}
	sign := 1.0
	expBits := binary.BigEndian.Uint16(b[0:2])
	if expBits&0x8000 != 0 {
		sign = -1.0
	}
	exponent := int(expBits & 0x7FFF)
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if exponent == 0 && mantissa == 0 {
		return 0
	}
	return sign * float64(mantissa) * math.Pow(2, float64(exponent-16383-63))
}
