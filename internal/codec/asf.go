package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// ASF object GUIDs, little-endian as they appear on disk.
var (
	asfHeaderGUID = []byte{
		0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
		0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
	}
	asfFilePropGUID = []byte{
		0xA1, 0xDC, 0xAB, 0x8C, 0x47, 0xA9, 0xCF, 0x11,
		0x8E, 0xE4, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65,
	}
	asfStreamPropGUID = []byte{
		0x91, 0x07, 0xDC, 0xB7, 0xB7, 0xA9, 0xCF, 0x11,
		0x8E, 0xE6, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65,
	}
	asfStreamTypeWMA = []byte{
		0x40, 0x9E, 0x69, 0xF8, 0x4D, 0x5B, 0xCF, 0x11,
		0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B,
	}
	asfContentDescGUID = []byte{
		0x33, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11,
		0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C,
	}
	asfExtContentDescGUID = []byte{
		0x40, 0xA4, 0xD0, 0xD2, 0x07, 0xE3, 0xD2, 0x11,
		0x97, 0xF0, 0x00, 0xA0, 0xC9, 0x5E, 0xA8, 0x50,
	}
)

const asfMinHeaderObjSize = 30
const asfSubObjectHeaderSize = 24
const asfMaxHeaderObjects = 1024

// ASFParser implements registry.FormatParser for ASF containers (Windows
// Media Audio). It walks the mandatory header object's sub-objects for
// File Properties (duration), Stream Properties (codec parameters, when
// the stream type is WMA audio), Content Description (title/author/
// copyright/description), and Extended Content Description (arbitrary
// name/value pairs).
type ASFParser struct{}

func (ASFParser) Format() model.AudioFormat { return model.FormatASF }

func (ASFParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, asfHeaderGUID)
}

func (p ASFParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatASF)
	opts := ctx.Options

	head, err := r.ReadExact(0, asfMinHeaderObjSize)
	if err != nil {
		return out, err
	}
	headerObjectSize := binary.LittleEndian.Uint64(head[16:24])
	numHeaderObjects := binary.LittleEndian.Uint32(head[24:28])
	if headerObjectSize < asfMinHeaderObjSize {
		return out, model.NewError(model.ErrInvalidHeader, "asf: header object too small")
	}

	pos := int64(asfMinHeaderObjSize)
	end := int64(headerObjectSize)
	for i := uint32(0); i < numHeaderObjects && i < asfMaxHeaderObjects && pos+asfSubObjectHeaderSize <= end; i++ {
		subHead, err := r.Read(pos, asfSubObjectHeaderSize)
		if err != nil || len(subHead) < asfSubObjectHeaderSize {
			break
		}
		objID := subHead[0:16]
		objSize := binary.LittleEndian.Uint64(subHead[16:24])
		if objSize < asfSubObjectHeaderSize || pos+int64(objSize) > end {
			break
		}
		bodyOff := pos + asfSubObjectHeaderSize
		bodyLen := int(objSize) - asfSubObjectHeaderSize

		switch {
		case bytes.Equal(objID, asfFilePropGUID):
			parseASFFileProperties(r, bodyOff, bodyLen, &out)
		case bytes.Equal(objID, asfStreamPropGUID):
			parseASFStreamProperties(r, bodyOff, bodyLen, &out)
		case opts.ShouldParseTags() && bytes.Equal(objID, asfContentDescGUID):
			parseASFContentDescription(r, bodyOff, bodyLen, &out)
		case opts.ShouldParseTags() && bytes.Equal(objID, asfExtContentDescGUID):
			parseASFExtContentDescription(r, bodyOff, bodyLen, &out)
		}

		pos += int64(objSize)
	}
	return out, nil
}

// File Properties Object body (after the 24-byte GUID+size header):
// FileID(16) PresentFileSize(8) ... PlayDuration(8 @ offset 40)
// SendDuration(8) Preroll(8 @ offset 56, ms) Flags(4) MinPacketSize(4)
// MaxPacketSize(4) MaxBitrate(4 @ offset 76).
func parseASFFileProperties(r *ioreader.WindowedReader, off int64, bodyLen int, out *model.ParsedAudioMetadata) {
	if bodyLen < 56 {
		return
	}
	n := bodyLen
	if n > 80 {
		n = 80
	}
	body, err := r.Read(off, n)
	if err != nil || len(body) < 56 {
		return
	}
	playDuration100ns := binary.LittleEndian.Uint64(body[40:48])
	if len(body) >= 64 {
		preroll100ns := binary.LittleEndian.Uint64(body[56:64]) * 10000
		if preroll100ns < playDuration100ns {
			playDuration100ns -= preroll100ns
		}
	}
	if playDuration100ns > 0 {
		out.CoreInfo.SetLength(float64(playDuration100ns) / 1e7)
	}
	if len(body) >= 80 {
		if maxBitrate := binary.LittleEndian.Uint32(body[76:80]); maxBitrate > 0 {
			out.CoreInfo.SetBitrate(int(maxBitrate))
		}
	}
}

// Stream Properties Object body: StreamType(16) ErrorCorrectionType(16)
// TimeOffset(8) TypeSpecificDataLength(4) ErrorCorrectionDataLength(4)
// Flags(2) Reserved(4) then TypeSpecificData, whose layout for an audio
// stream is the WAVEFORMATEX structure (codec tag, channels, sample
// rate, byte rate, ...).
func parseASFStreamProperties(r *ioreader.WindowedReader, off int64, bodyLen int, out *model.ParsedAudioMetadata) {
	if bodyLen < 54 {
		return
	}
	body, err := r.Read(off, 54)
	if err != nil || len(body) < 54 {
		return
	}
	if !bytes.Equal(body[0:16], asfStreamTypeWMA) {
		return
	}
	typeSpecificLen := binary.LittleEndian.Uint32(body[40:44])
	if typeSpecificLen < 16 {
		return
	}
	wfx, err := r.Read(off+54, 16)
	if err != nil || len(wfx) < 16 {
		return
	}
	channels := int(binary.LittleEndian.Uint16(wfx[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(wfx[4:8]))
	byteRate := binary.LittleEndian.Uint32(wfx[8:12])
	bitsPerSample := int(binary.LittleEndian.Uint16(wfx[14:16]))

	out.CoreInfo.SetChannels(channels)
	out.CoreInfo.SetSampleRate(sampleRate)
	out.CoreInfo.SetBitsPerSample(bitsPerSample)
	if byteRate > 0 {
		out.CoreInfo.SetBitrate(int(byteRate) * 8)
	}
}

// Content Description Object: five uint16le lengths, then five UTF-16LE
// strings of those lengths in fixed order: Title, Author, Copyright,
// Description, Rating.
func parseASFContentDescription(r *ioreader.WindowedReader, off int64, bodyLen int, out *model.ParsedAudioMetadata) {
	body, err := r.Read(off, bodyLen)
	if err != nil || len(body) < 10 {
		return
	}
	lens := make([]int, 5)
	for i := 0; i < 5; i++ {
		lens[i] = int(binary.LittleEndian.Uint16(body[i*2 : i*2+2]))
	}
	pos := 10
	keys := []string{"Title", "Author", "Copyright", "Description", "Rating"}
	for i, l := range lens {
		if pos+l > len(body) {
			break
		}
		text := decodeUTF16(body[pos:pos+l], false)
		text = trimNUL(text)
		if text != "" {
			out.SetTag(keys[i], model.NewTextTag(text))
		}
		pos += l
	}
}

// Extended Content Description Object: uint16le count, then for each
// entry: NameLen(2) Name(UTF-16LE) ValueDataType(2) ValueLen(2) Value.
func parseASFExtContentDescription(r *ioreader.WindowedReader, off int64, bodyLen int, out *model.ParsedAudioMetadata) {
	body, err := r.Read(off, bodyLen)
	if err != nil || len(body) < 2 {
		return
	}
	count := int(binary.LittleEndian.Uint16(body[0:2]))
	pos := 2
	for i := 0; i < count && pos+2 <= len(body); i++ {
		nameLen := int(binary.LittleEndian.Uint16(body[pos : pos+2]))
		pos += 2
		if pos+nameLen > len(body) {
			break
		}
		name := trimNUL(decodeUTF16(body[pos:pos+nameLen], false))
		pos += nameLen
		if pos+4 > len(body) {
			break
		}
		dataType := binary.LittleEndian.Uint16(body[pos : pos+2])
		valueLen := int(binary.LittleEndian.Uint16(body[pos+2 : pos+4]))
		pos += 4
		if pos+valueLen > len(body) {
			break
		}
		value := body[pos : pos+valueLen]
		pos += valueLen

		switch dataType {
		case 0: // UTF-16LE string
			text := trimNUL(decodeUTF16(value, false))
			if text != "" {
				out.SetTag(name, model.NewTextTag(text))
			}
		case 1: // binary
			out.SetTag(name, model.NewBinaryTag(tags.BuildDigest(value, "", false, 0)))
		case 2: // bool (32-bit)
			if len(value) >= 4 {
				out.SetTag(name, model.NewBoolTag(binary.LittleEndian.Uint32(value) != 0))
			}
		case 3: // uint32
			if len(value) >= 4 {
				out.SetTag(name, model.NewIntTag(int64(binary.LittleEndian.Uint32(value))))
			}
		case 4: // uint64
			if len(value) >= 8 {
				out.SetTag(name, model.NewIntTag(int64(binary.LittleEndian.Uint64(value))))
			}
		case 5: // uint16
			if len(value) >= 2 {
				out.SetTag(name, model.NewIntTag(int64(binary.LittleEndian.Uint16(value))))
			}
		}
	}
}

func trimNUL(s string) string {
	return string(bytes.TrimRight([]byte(s), "\x00"))
}
