package tags

import "unicode/utf16"

// decodeLatin1 maps each byte to its Unicode code point (ISO-8859-1 is a
// direct subset of the first 256 Unicode code points).
func decodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

// trimControlChars strips leading/trailing ASCII control characters (as
// Latin-1 ID3v2 frames sometimes carry stray padding).
func trimControlChars(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] < 0x20 {
		start++
	}
	for end > start && s[end-1] < 0x20 {
		end--
	}
	return s[start:end]
}

// decodeUTF16 decodes raw UTF-16 code units (2 bytes each) into a string.
// bigEndian selects byte order when no BOM is present.
func decodeUTF16(b []byte, bigEndian bool) string {
	if len(b) >= 2 {
		switch {
		case b[0] == 0xFF && b[1] == 0xFE:
			bigEndian = false
			b = b[2:]
		case b[0] == 0xFE && b[1] == 0xFF:
			bigEndian = true
			b = b[2:]
		}
	}
	units := bytesToUTF16Units(b, bigEndian)
	return string(utf16.Decode(units))
}

func bytesToUTF16Units(b []byte, bigEndian bool) []uint16 {
	n := len(b) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		hi, lo := b[2*i], b[2*i+1]
		if bigEndian {
			units[i] = uint16(hi)<<8 | uint16(lo)
		} else {
			units[i] = uint16(lo)<<8 | uint16(hi)
		}
	}
	return units
}

// splitUTF16OnNUL splits raw UTF-16 bytes on a 0x0000 code unit, honouring a
// leading BOM for the first segment (subsequent segments assume the same
// byte order, since ID3v2 doesn't repeat the BOM per value).
func splitUTF16OnNUL(b []byte, bigEndian bool) [][]byte {
	if len(b) >= 2 {
		switch {
		case b[0] == 0xFF && b[1] == 0xFE:
			bigEndian = false
		case b[0] == 0xFE && b[1] == 0xFF:
			bigEndian = true
		}
	}
	var out [][]byte
	start := 0
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			out = append(out, b[start:i])
			start = i + 2
		}
	}
	if start < len(b) {
		out = append(out, b[start:])
	}
	return out
}
