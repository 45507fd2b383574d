package codec

import (
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// mp4MaxAtomDepth bounds the recursive descent into container atoms
// (moov/trak/mdia/minf/stbl/udta/meta/ilst), guarding against a
// pathologically or maliciously nested atom tree.
const mp4MaxAtomDepth = 12

var mp4ContainerAtoms = map[string]bool{
	"moov": true, "trak": true, "mdia": true, "minf": true,
	"stbl": true, "udta": true, "ilst": true,
	"edts": true, "moof": true, "traf": true,
}

// MP4Parser implements registry.FormatParser for the ISO base media file
// format as used by MP4/M4A/M4B: a tree of length-prefixed atoms walked
// once to find `mvhd` (core timing), `stsd` (audio sample entry), and
// `ilst` (iTunes metadata).
type MP4Parser struct {
	format model.AudioFormat
}

func (p MP4Parser) Format() model.AudioFormat { return p.format }

func (p MP4Parser) CanParse(header []byte, nameHint string) bool {
	return len(header) >= 8 && string(header[4:8]) == "ftyp"
}

func (p MP4Parser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(mp4FormatFromBrand(r))
	opts := ctx.Options

	length, ok := r.Length()
	if !ok {
		return out, model.NewError(model.ErrIOFailure, "mp4: source does not expose a length")
	}

	state := &mp4WalkState{r: r, ctx: ctx, out: &out}
	sawMoov, err := state.walkAtoms(0, length, 0, opts.ShouldParseTags())
	if err != nil {
		return out, err
	}
	if !sawMoov {
		return out, model.NewError(model.ErrInconsistentContainer, "mp4: missing moov atom")
	}
	return out, nil
}

type mp4WalkState struct {
	r   *ioreader.WindowedReader
	ctx *registry.ParseCtx
	out *model.ParsedAudioMetadata
}

// walkAtoms reads atoms in [start, end) and recurses into container atoms,
// returning whether a moov atom was encountered anywhere in the tree.
func (s *mp4WalkState) walkAtoms(start, end int64, depth int, parseTags bool) (bool, error) {
	if depth > mp4MaxAtomDepth {
		return false, nil
	}
	sawMoov := false
	pos := start
	for pos+8 <= end {
		head, err := s.r.Read(pos, 8)
		if err != nil || len(head) < 8 {
			break
		}
		size := int64(binary.BigEndian.Uint32(head[0:4]))
		atomType := string(head[4:8])
		bodyOff := pos + 8

		if size == 1 {
			ext, err := s.r.ReadExact(pos+8, 8)
			if err != nil {
				break
			}
			size = int64(binary.BigEndian.Uint64(ext))
			bodyOff = pos + 16
		} else if size == 0 {
			size = end - pos // extends to end of parent
		}
		if size < 8 || pos+size > end {
			break
		}
		bodyEnd := pos + size

		switch {
		case atomType == "moov":
			sawMoov = true
			if _, err := s.walkAtoms(bodyOff, bodyEnd, depth+1, parseTags); err != nil {
				return sawMoov, err
			}
		case atomType == "mvhd":
			s.parseMVHD(bodyOff, bodyEnd)
		case atomType == "stsd":
			s.parseSTSD(bodyOff, bodyEnd)
		case atomType == "meta":
			// A full box: 4-byte version/flags precedes its children.
			if _, err := s.walkAtoms(bodyOff+4, bodyEnd, depth+1, parseTags); err != nil {
				return sawMoov, err
			}
		case mp4ContainerAtoms[atomType]:
			if atomType == "ilst" {
				if parseTags {
					s.parseILST(bodyOff, bodyEnd)
				}
			} else if _, err := s.walkAtoms(bodyOff, bodyEnd, depth+1, parseTags); err != nil {
				return sawMoov, err
			}
		}

		pos = bodyEnd
	}
	return sawMoov, nil
}

func (s *mp4WalkState) parseMVHD(off, end int64) {
	head, err := s.r.Read(off, 1)
	if err != nil || len(head) < 1 {
		return
	}
	version := head[0]
	var timescale, duration uint64
	if version == 1 {
		body, err := s.r.Read(off+4+16, 12)
		if err != nil || len(body) < 12 {
			return
		}
		timescale = uint64(binary.BigEndian.Uint32(body[0:4]))
		duration = binary.BigEndian.Uint64(body[4:12])
	} else {
		body, err := s.r.Read(off+4+8, 8)
		if err != nil || len(body) < 8 {
			return
		}
		timescale = uint64(binary.BigEndian.Uint32(body[0:4]))
		duration = uint64(binary.BigEndian.Uint32(body[4:8]))
	}
	if timescale > 0 {
		s.out.CoreInfo.SetLength(float64(duration) / float64(timescale))
	}
}

func (s *mp4WalkState) parseSTSD(off, end int64) {
	head, err := s.r.Read(off, 8)
	if err != nil || len(head) < 8 {
		return
	}
	entryCount := binary.BigEndian.Uint32(head[4:8])
	if entryCount == 0 {
		return
	}
	entryOff := off + 8
	entryHead, err := s.r.Read(entryOff, 8)
	if err != nil || len(entryHead) < 8 {
		return
	}
	entrySize := int64(binary.BigEndian.Uint32(entryHead[0:4]))
	format := string(entryHead[4:8])
	s.ctx.Diagnostics.SetContext("sampleEntryFormat", format)

	body, err := s.r.Read(entryOff+8, int(entrySize)-8)
	if err != nil || len(body) < 20 {
		return
	}
	// Audio sample entry: reserved(6) + data_reference_index(2) +
	// reserved(8) + channelcount(2) + samplesize(2) + pre_defined(2) +
	// reserved(2) + samplerate(4, 16.16 fixed point).
	channels := int(binary.BigEndian.Uint16(body[16:18]))
	sampleSize := int(binary.BigEndian.Uint16(body[18:20]))
	if len(body) >= 28 {
		sampleRateFixed := binary.BigEndian.Uint32(body[24:28])
		sampleRate := int(sampleRateFixed >> 16)
		if sampleRate > 0 {
			s.out.CoreInfo.SetSampleRate(sampleRate)
		}
	}
	if channels > 0 {
		s.out.CoreInfo.SetChannels(channels)
	}
	if sampleSize > 0 {
		s.out.CoreInfo.SetBitsPerSample(sampleSize)
	}
}

func (s *mp4WalkState) parseILST(start, end int64) {
	opts := s.ctx.Options
	pos := start
	for pos+8 <= end {
		head, err := s.r.Read(pos, 8)
		if err != nil || len(head) < 8 {
			break
		}
		size := int64(binary.BigEndian.Uint32(head[0:4]))
		name := string(head[4:8])
		if size < 8 || pos+size > end {
			break
		}
		itemEnd := pos + size

		if v, ok := s.parseILSTItem(name, pos+8, itemEnd, opts.IncludeBinaryData, opts.MaxBinaryTagBytes); ok {
			s.out.SetTag(mp4TagKey(name), v)
		}
		pos = itemEnd
	}
}

func (s *mp4WalkState) parseILSTItem(name string, start, end int64, includeBinaryData bool, maxBinaryTagBytes int) (model.MetadataTagValue, bool) {
	var value model.MetadataTagValue
	found := false
	pos := start
	for pos+8 <= end {
		head, err := s.r.Read(pos, 8)
		if err != nil || len(head) < 8 {
			break
		}
		size := int64(binary.BigEndian.Uint32(head[0:4]))
		atomType := string(head[4:8])
		if size < 8 || pos+size > end {
			break
		}
		if atomType == "data" {
			body, err := s.r.Read(pos+8, int(size)-8)
			if err != nil || len(body) < 8 {
				break
			}
			dataType := binary.BigEndian.Uint32(body[0:4])
			payload := body[8:]
			if v, ok := tags.DecodeMP4DataAtom(name, dataType, payload, includeBinaryData, maxBinaryTagBytes); ok {
				switch {
				case !found:
					value, found = v, true
				case value.Kind == model.TagText && v.Kind == model.TagText:
					value.Text = append(value.Text, v.Text...)
				}
			}
		}
		pos += size
	}
	return value, found
}

// mp4TagKey maps an ilst atom name to a stable tag key. The iTunes "©"
// atoms use byte 0xA9 followed by three ASCII letters; we keep the name
// as-is since it's already a compact, stable identifier.
func mp4TagKey(name string) string {
	return name
}

// mp4FormatFromBrand distinguishes an audio-only M4A/M4B from a general
// MP4 container by inspecting ftyp's major brand, falling back to
// FormatMP4 when the brand is unrecognised or unreadable.
func mp4FormatFromBrand(r *ioreader.WindowedReader) model.AudioFormat {
	head, err := r.Read(0, 12)
	if err != nil || len(head) < 12 || string(head[4:8]) != "ftyp" {
		return model.FormatMP4
	}
	switch string(head[8:12]) {
	case "M4A ", "M4B ":
		return model.FormatM4A
	default:
		return model.FormatMP4
	}
}
