package tags

import (
	"encoding/binary"
	"fmt"

	"github.com/ostafen/audiometa/model"
)

// ID3v2Result is the decoded form of an ID3v2 tag: the total on-disk size
// of the tag (header + frames, so callers can skip past it) and the merged
// tag map.
type ID3v2Result struct {
	TotalSize int
	Tags      map[string]model.MetadataTagValue
}

// ParseID3v2 decodes an ID3v2 tag starting at offset. It reads the 10-byte
// tag header at offset itself; if fewer than 10 bytes are available or they
// don't begin with "ID3" this returns (nil, nil, nil) — no tag present is
// not an error. maxPayloadBytes caps how
// much of the declared tag size is actually read and parsed; frames beyond
// the read window are silently dropped rather than treated as a failure.
func ParseID3v2(readAt func(off int64, n int) ([]byte, error), offset int64, maxPayloadBytes int, includeBinaryData bool, maxBinaryTagBytes int) (*ID3v2Result, []string, error) {
	head, err := readAt(offset, 10)
	if err != nil || len(head) < 10 {
		return nil, nil, nil
	}
	if string(head[0:3]) != "ID3" {
		return nil, nil, nil
	}
	major := head[3]
	declared := ParseSynchsafeInt(head[6:10])
	totalSize := 10 + declared

	var warnings []string
	payloadLen := declared
	if payloadLen > maxPayloadBytes {
		payloadLen = maxPayloadBytes
		warnings = append(warnings, fmt.Sprintf("id3v2 tag truncated to %d of %d declared bytes", maxPayloadBytes, declared))
	}
	payload, err := readAt(offset+10, payloadLen)
	if err != nil {
		return nil, nil, model.NewError(model.ErrTruncatedData, "id3v2: could not read tag payload").WithOffset(offset)
	}

	out := &ID3v2Result{TotalSize: totalSize, Tags: make(map[string]model.MetadataTagValue)}
	pos := 0
	for pos+10 <= len(payload) {
		fh := payload[pos : pos+10]
		if isZero(fh) {
			break
		}
		id := string(fh[0:4])
		if !validFrameID(id) {
			break
		}
		var size int
		if major >= 4 {
			size = ParseSynchsafeInt(fh[4:8])
		} else {
			size = int(binary.BigEndian.Uint32(fh[4:8]))
		}
		bodyStart := pos + 10
		bodyEnd := bodyStart + size
		if size < 0 || bodyEnd > len(payload) {
			break
		}
		body := payload[bodyStart:bodyEnd]
		decodeFrame(id, body, out.Tags, includeBinaryData, maxBinaryTagBytes)
		pos = bodyEnd
	}
	return out, warnings, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func validFrameID(id string) bool {
	if len(id) != 4 {
		return false
	}
	for _, c := range id {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

func decodeFrame(id string, body []byte, tags map[string]model.MetadataTagValue, includeBinaryData bool, maxBinaryTagBytes int) {
	if len(body) == 0 {
		return
	}
	switch {
	case id == "APIC":
		if v, ok := DecodeAPICFrame(body, includeBinaryData, maxBinaryTagBytes); ok {
			tags["APIC"] = v
		}
	case id == "TXXX":
		decodeDescribedText(id, body, 0, tags)
	case id == "COMM":
		decodeDescribedText(id, body, 3, tags) // skip 3-byte language code
	case id[0] == 'T':
		decodeTextFrame(id, body, tags)
	}
}

func decodeTextFrame(id string, body []byte, tags map[string]model.MetadataTagValue) {
	enc := body[0]
	values := decodeTextValues(enc, body[1:])
	if len(values) == 0 {
		return
	}
	tags[id] = model.NewTextTag(values...)
}

func decodeDescribedText(id string, body []byte, skip int, tags map[string]model.MetadataTagValue) {
	if len(body) < 1+skip {
		return
	}
	enc := body[0]
	rest := body[1+skip:]
	nulWidth := 1
	if enc == 1 || enc == 2 {
		nulWidth = 2
	}
	descEnd := indexNUL(rest, nulWidth)
	var desc string
	var value []byte
	if descEnd < 0 {
		desc = ""
		value = rest
	} else {
		if vals := decodeTextValues(enc, rest[:descEnd]); len(vals) > 0 {
			desc = vals[0]
		}
		value = rest[descEnd+nulWidth:]
	}
	values := decodeTextValues(enc, value)
	if len(values) == 0 {
		values = []string{""}
	}
	key := fmt.Sprintf("%s:%s", id, desc)
	tags[key] = model.NewTextTag(values...)
}

func decodeAPICLike(body []byte) (mime string, pictureType byte, description string, imageData []byte, ok bool) {
	if len(body) < 2 {
		return "", 0, "", nil, false
	}
	enc := body[0]
	rest := body[1:]
	mimeEnd := indexNUL(rest, 1)
	if mimeEnd < 0 {
		return "", 0, "", nil, false
	}
	mime = decodeLatin1(rest[:mimeEnd])
	rest = rest[mimeEnd+1:]
	if len(rest) < 1 {
		return "", 0, "", nil, false
	}
	pictureType = rest[0]
	rest = rest[1:]

	nulWidth := 1
	if enc == 1 || enc == 2 {
		nulWidth = 2
	}
	descEnd := indexNUL(rest, nulWidth)
	if descEnd < 0 {
		description = ""
		imageData = rest
	} else {
		if vals := decodeTextValues(enc, rest[:descEnd]); len(vals) > 0 {
			description = vals[0]
		}
		imageData = rest[descEnd+nulWidth:]
	}
	return mime, pictureType, description, imageData, true
}

// DecodeAPICFrame is the ParseOptions-aware entry point format parsers use,
// so the embed/size-cap decision always reflects the caller's
// includeBinaryData and maxBinaryTagBytes.
func DecodeAPICFrame(body []byte, includeBinaryData bool, maxBinaryTagBytes int) (model.MetadataTagValue, bool) {
	mime, _, _, imageData, ok := decodeAPICLike(body)
	if !ok {
		return model.MetadataTagValue{}, false
	}
	digest := BuildDigest(imageData, mime, includeBinaryData, maxBinaryTagBytes)
	return model.NewBinaryTag(digest), true
}

func indexNUL(b []byte, width int) int {
	if width == 1 {
		for i, c := range b {
			if c == 0 {
				return i
			}
		}
		return -1
	}
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return i
		}
	}
	return -1
}

// decodeTextValues decodes an ID3v2 encoded text field into its list of
// values: Latin-1 is always a single (trimmed) value, UTF-8/UTF-16 are
// split on NUL with empty values dropped.
func decodeTextValues(enc byte, b []byte) []string {
	switch enc {
	case 0:
		return []string{trimControlChars(decodeLatin1(b))}
	case 1:
		var out []string
		for _, seg := range splitUTF16OnNUL(b, false) {
			if s := decodeUTF16(seg, false); s != "" {
				out = append(out, s)
			}
		}
		return out
	case 2:
		var out []string
		for _, seg := range splitUTF16OnNUL(b, true) {
			if s := decodeUTF16(seg, true); s != "" {
				out = append(out, s)
			}
		}
		return out
	default: // 3: UTF-8
		var out []string
		start := 0
		for i := 0; i < len(b); i++ {
			if b[i] == 0 {
				if i > start {
					out = append(out, string(b[start:i]))
				}
				start = i + 1
			}
		}
		if start < len(b) {
			out = append(out, string(b[start:]))
		}
		return out
	}
}
