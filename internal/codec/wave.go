package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// WAVEParser implements registry.FormatParser for RIFF/WAVE. It walks the
// top-level chunk list once, pulling core parameters from "fmt ", duration
// from "data", INFO tags from a "LIST"/"INFO" chunk, and an embedded
// ID3v2 tag from an "id3 "/"ID3 " chunk.
type WAVEParser struct{}

func (WAVEParser) Format() model.AudioFormat { return model.FormatWAVE }

func (WAVEParser) CanParse(header []byte, nameHint string) bool {
	return len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE"))
}

var riffInfoKeys = map[string]string{
	"INAM": "TIT2",
	"IART": "TPE1",
	"IPRD": "TALB",
	"ICRD": "TYER",
	"ICMT": "COMM:",
	"IGNR": "TCON",
	"ITRK": "TRCK",
}

func (p WAVEParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatWAVE)
	opts := ctx.Options

	head, err := r.ReadExact(0, 12)
	if err != nil {
		return out, err
	}
	riffSize := int64(binary.LittleEndian.Uint32(head[4:8]))
	fileEnd := int64(8) + riffSize

	pos := int64(12)
	var dataSize int64
	foundFmt := false

	for pos+8 <= fileEnd {
		chunkHead, err := r.Read(pos, 8)
		if err != nil || len(chunkHead) < 8 {
			break
		}
		chunkID := string(chunkHead[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHead[4:8]))
		bodyOff := pos + 8

		switch chunkID {
		case "fmt ":
			if body, ferr := r.Read(bodyOff, int(chunkSize)); ferr == nil && len(body) >= 16 {
				audioFormat := binary.LittleEndian.Uint16(body[0:2])
				channels := int(binary.LittleEndian.Uint16(body[2:4]))
				sampleRate := int(binary.LittleEndian.Uint32(body[4:8]))
				byteRate := binary.LittleEndian.Uint32(body[8:12])
				bitsPerSample := int(binary.LittleEndian.Uint16(body[14:16]))

				out.CoreInfo.SetChannels(channels)
				out.CoreInfo.SetSampleRate(sampleRate)
				out.CoreInfo.SetBitsPerSample(bitsPerSample)
				out.CoreInfo.SetBitrate(int(byteRate) * 8)
				ctx.Diagnostics.SetContext("wFormatTag", formatUint16Hex(audioFormat))
				foundFmt = true
			}
		case "data":
			dataSize = chunkSize
		case "LIST":
			if opts.ShouldParseTags() {
				if body, lerr := r.Read(bodyOff, int(chunkSize)); lerr == nil {
					parseRIFFInfoList(body, &out)
				}
			}
		case "id3 ", "ID3 ":
			if opts.ShouldParseTags() {
				if body, berr := r.Read(bodyOff, int(chunkSize)); berr == nil {
					result, warnings, ierr := tags.ParseID3v2(ioreader.FromBytes(body).Read, 0, opts.MaxReadBytes, opts.IncludeBinaryData, opts.MaxBinaryTagBytes)
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
		}

		pos = bodyOff + chunkSize
		if chunkSize%2 != 0 {
			pos++ // chunks are word-aligned
		}
	}

	if !foundFmt {
		return out, model.NewError(model.ErrInconsistentContainer, "wave: missing 'fmt ' chunk")
	}
	if dataSize > 0 {
		if rate := out.CoreInfo.SampleRate; rate != nil && *rate > 0 {
			if bits := out.CoreInfo.BitsPerSample; bits != nil && out.CoreInfo.Channels != nil {
				bytesPerSec := float64(*rate) * float64(*out.CoreInfo.Channels) * float64(*bits) / 8
				if bytesPerSec > 0 {
					out.CoreInfo.SetLength(float64(dataSize) / bytesPerSec)
				}
			}
		}
	}
	return out, nil
}

func parseRIFFInfoList(body []byte, out *model.ParsedAudioMetadata) {
	if len(body) < 4 || string(body[0:4]) != "INFO" {
		return
	}
	pos := 4
	for pos+8 <= len(body) {
		id := string(body[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(body[pos+4 : pos+8]))
		valStart := pos + 8
		valEnd := valStart + size
		if valEnd > len(body) {
			break
		}
		if key, ok := riffInfoKeys[id]; ok {
			value := bytes.TrimRight(body[valStart:valEnd], "\x00")
			if len(value) > 0 {
				out.SetTag(key, model.NewTextTag(string(value)))
			}
		}
		pos = valEnd
		if size%2 != 0 {
			pos++
		}
	}
}

func formatUint16Hex(v uint16) string {
	const hexDigits = "0123456789abcdef"
	return "0x" + string([]byte{
		hexDigits[(v>>12)&0xF], hexDigits[(v>>8)&0xF],
		hexDigits[(v>>4)&0xF], hexDigits[v&0xF],
	})
}
