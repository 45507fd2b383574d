package tags

import (
	"encoding/binary"
	"strings"

	"github.com/ostafen/audiometa/model"
)

// VorbisComments is the decoded body of a Vorbis comment packet: the vendor
// string (skipped by callers, kept for completeness) and the tag map, keyed
// by uppercased field name per the Vorbis comment spec's case-insensitivity
// rule.
type VorbisComments struct {
	Vendor string
	Tags   map[string]model.MetadataTagValue
}

// ParseVorbisComment decodes a raw Vorbis comment packet body:
//
//	uint32le vendor_length
//	byte     vendor_string[vendor_length]
//	uint32le comment_count
//	{ uint32le length; byte string[length] /* "KEY=value" */ } * comment_count
func ParseVorbisComment(data []byte) (*VorbisComments, error) {
	off := 0
	vendorLen, err := readLE32(data, off)
	if err != nil {
		return nil, err
	}
	off += 4
	if off+int(vendorLen) > len(data) {
		return nil, model.NewError(model.ErrTruncatedData, "vorbis comment: vendor string overruns packet")
	}
	vendor := string(data[off : off+int(vendorLen)])
	off += int(vendorLen)

	count, err := readLE32(data, off)
	if err != nil {
		return nil, err
	}
	off += 4

	out := &VorbisComments{Vendor: vendor, Tags: make(map[string]model.MetadataTagValue)}
	for i := uint32(0); i < count; i++ {
		length, err := readLE32(data, off)
		if err != nil {
			return nil, err
		}
		off += 4
		if off+int(length) > len(data) {
			return nil, model.NewError(model.ErrTruncatedData, "vorbis comment: comment vector overruns packet")
		}
		vector := string(data[off : off+int(length)])
		off += int(length)

		eq := strings.IndexByte(vector, '=')
		if eq < 0 {
			continue // malformed vector, skip rather than fail the whole block
		}
		key := strings.ToUpper(vector[:eq])
		value := vector[eq+1:]

		existing, ok := out.Tags[key]
		if ok && existing.Kind == model.TagText {
			existing.Text = append(existing.Text, value)
			out.Tags[key] = existing
		} else {
			out.Tags[key] = model.NewTextTag(value)
		}
	}
	return out, nil
}

func readLE32(data []byte, off int) (uint32, error) {
	if off+4 > len(data) {
		return 0, model.NewError(model.ErrTruncatedData, "vorbis comment: header field overruns packet")
	}
	return binary.LittleEndian.Uint32(data[off : off+4]), nil
}
