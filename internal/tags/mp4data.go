package tags

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/ostafen/audiometa/model"
)

// MP4 `data` atom well-known type codes (from the iTunes metadata spec).
const (
	mp4DataTypeReserved = 0  // implicit type, used by trkn/disk pairs
	mp4DataTypeUTF8     = 1
	mp4DataTypeUTF16    = 2
	mp4DataTypeJPEG     = 13
	mp4DataTypePNG      = 14
	mp4DataTypeBEInt    = 21
	mp4DataTypeBEUint   = 22
)

// DecodeMP4DataAtom decodes the payload of an ilst `data` atom (i.e. the
// bytes after the 8-byte type-flags+locale header) given its data type
// code, per the iTunes metadata convention. name is the parent atom's
// four-character code (e.g. "trkn", "covr", "\xa9nam"), used only to pick
// the trkn/disk pair heuristic for the reserved type.
func DecodeMP4DataAtom(name string, dataType uint32, payload []byte, includeBinaryData bool, maxBinaryTagBytes int) (model.MetadataTagValue, bool) {
	if (name == "trkn" || name == "disk") && len(payload) >= 6 {
		num := binary.BigEndian.Uint16(payload[2:4])
		total := binary.BigEndian.Uint16(payload[4:6])
		return model.NewTextTag(trknPairText(num, total)), true
	}
	if name == "cpil" && dataType == mp4DataTypeBEInt && len(payload) >= 1 {
		return model.NewBoolTag(payload[0] != 0), true
	}

	switch dataType {
	case mp4DataTypeReserved, mp4DataTypeUTF8:
		text := strings.TrimRight(string(payload), "\x00")
		if text == "" {
			return model.MetadataTagValue{}, false
		}
		return model.NewTextTag(text), true
	case mp4DataTypeUTF16:
		text := decodeUTF16(payload, true)
		if text == "" {
			return model.MetadataTagValue{}, false
		}
		return model.NewTextTag(text), true
	case mp4DataTypeJPEG:
		return model.NewBinaryTag(BuildDigest(payload, "image/jpeg", includeBinaryData, maxBinaryTagBytes)), true
	case mp4DataTypePNG:
		return model.NewBinaryTag(BuildDigest(payload, "image/png", includeBinaryData, maxBinaryTagBytes)), true
	case mp4DataTypeBEInt, mp4DataTypeBEUint:
		v, ok := decodeBEInt(payload, dataType == mp4DataTypeBEUint)
		if !ok {
			return model.MetadataTagValue{}, false
		}
		return model.NewIntTag(v), true
	default:
		if len(payload) == 0 {
			return model.MetadataTagValue{}, false
		}
		return model.NewBinaryTag(BuildDigest(payload, "", includeBinaryData, maxBinaryTagBytes)), true
	}
}

// trknPairText renders a trkn/disk BE16 pair as "n/m", or just "n" when the
// total field is zero (unknown), matching the convention iTunes itself uses.
func trknPairText(num, total uint16) string {
	if total == 0 {
		return strconv.Itoa(int(num))
	}
	return strconv.Itoa(int(num)) + "/" + strconv.Itoa(int(total))
}

func decodeBEInt(b []byte, unsigned bool) (int64, bool) {
	switch len(b) {
	case 1:
		if unsigned {
			return int64(b[0]), true
		}
		return int64(int8(b[0])), true
	case 2:
		v := binary.BigEndian.Uint16(b)
		if unsigned {
			return int64(v), true
		}
		return int64(int16(v)), true
	case 4:
		v := binary.BigEndian.Uint32(b)
		if unsigned {
			return int64(v), true
		}
		return int64(int32(v)), true
	case 8:
		v := binary.BigEndian.Uint64(b)
		if unsigned {
			return int64(v), true
		}
		return int64(v), true
	default:
		return 0, false
	}
}
