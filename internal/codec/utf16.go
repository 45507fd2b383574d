package codec

import "unicode/utf16"

// decodeUTF16 decodes raw UTF-16 code units into a string. ASF's text
// fields are always UTF-16LE without a BOM.
func decodeUTF16(b []byte, bigEndian bool) string {
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		lo, hi := b[2*i], b[2*i+1]
		if bigEndian {
			units[i] = uint16(lo)<<8 | uint16(hi)
		} else {
			units[i] = uint16(hi)<<8 | uint16(lo)
		}
	}
	return string(utf16.Decode(units))
}
