package tags

import (
	"encoding/binary"
	"strings"

	"github.com/ostafen/audiometa/model"
)

const (
	apeFooterSize  = 32
	apePreambleLen = 8 // "APETAGEX"
)

var apePreamble = []byte("APETAGEX")

// apeItemFlagsTypeMask isolates the item-type bits (bits 1-2) of an APEv2
// item's flags field: 0 = UTF-8 text; any other value (binary, external
// locator, reserved) is decoded as a binary digest.
const apeItemFlagsTypeMask = 0x6

// apeMaxItems caps the number of items ParseAPEv2 will decode even when a
// corrupt itemCount field claims more.
const apeMaxItems = 512

// ParseAPEv2 decodes an APEv2 tag whose footer occupies the last 32 bytes
// of tagRegion (tagRegion is the trailing slice of the file that may hold
// the tag, e.g. the last few hundred KiB). It returns nil, nil when no
// APEv2 footer is present — absence is not an error.
func ParseAPEv2(tagRegion []byte, includeBinaryData bool, maxBinaryTagBytes int) (map[string]model.MetadataTagValue, error) {
	if len(tagRegion) < apeFooterSize {
		return nil, nil
	}
	footer := tagRegion[len(tagRegion)-apeFooterSize:]
	if string(footer[0:apePreambleLen]) != string(apePreamble) {
		return nil, nil
	}
	tagSize := int(binary.LittleEndian.Uint32(footer[12:16]))
	itemCount := int(binary.LittleEndian.Uint32(footer[16:20]))
	flags := binary.LittleEndian.Uint32(footer[20:24])
	hasHeader := flags&(1<<31) != 0

	bodySize := tagSize - apeFooterSize
	if hasHeader {
		bodySize -= apeFooterSize // header is the same shape as the footer
	}
	if bodySize < 0 || bodySize > len(tagRegion) {
		return nil, model.NewError(model.ErrTruncatedData, "apev2: declared tag size overruns available data")
	}
	bodyEnd := len(tagRegion) - apeFooterSize
	bodyStart := bodyEnd - bodySize
	if bodyStart < 0 {
		return nil, model.NewError(model.ErrTruncatedData, "apev2: tag body extends before start of scanned region")
	}
	body := tagRegion[bodyStart:bodyEnd]

	if itemCount > apeMaxItems {
		itemCount = apeMaxItems
	}

	tags := make(map[string]model.MetadataTagValue)
	pos := 0
	for i := 0; i < itemCount && pos+8 <= len(body); i++ {
		if pos+apePreambleLen <= len(body) && string(body[pos:pos+apePreambleLen]) == string(apePreamble) {
			break // embedded header record, not an item
		}

		valueLen := int(binary.LittleEndian.Uint32(body[pos : pos+4]))
		itemFlags := binary.LittleEndian.Uint32(body[pos+4 : pos+8])
		pos += 8

		keyEnd := indexByteFrom(body, pos, 0)
		if keyEnd < 0 {
			break
		}
		key := string(body[pos:keyEnd])
		pos = keyEnd + 1

		if valueLen < 0 || pos+valueLen > len(body) {
			break
		}
		value := body[pos : pos+valueLen]
		pos += valueLen

		switch itemFlags & apeItemFlagsTypeMask {
		case 0: // UTF-8 text, possibly NUL-separated multi-value
			parts := strings.Split(string(value), "\x00")
			var filtered []string
			for _, p := range parts {
				if p != "" {
					filtered = append(filtered, p)
				}
			}
			if len(filtered) == 0 {
				continue
			}
			tags[key] = model.NewTextTag(filtered...)
		default: // binary, external locator, or reserved
			digest := BuildDigest(value, "", includeBinaryData, maxBinaryTagBytes)
			tags[key] = model.NewBinaryTag(digest)
		}
	}
	return tags, nil
}

func indexByteFrom(b []byte, from int, c byte) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}
