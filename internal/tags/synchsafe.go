// Package tags implements the tag-vocabulary decoders shared across format
// parsers: ID3v2, APEv2, Vorbis comments, and the MP4 ilst `data` atom. They
// are free functions over a reader or byte slice, deliberately avoiding any
// parser base class or inheritance hierarchy — format parsers invoke them
// directly, passing a sub-reader when they need to reparse an embedded
// chunk.
package tags

// ParseSynchsafeInt decodes a 28-bit big-endian integer packed across four
// bytes where the high bit of each byte is always zero — ID3v2's trick for
// keeping tag sizes from looking like an MPEG frame sync.
func ParseSynchsafeInt(b []byte) int {
	return int(b[0]&0x7F)<<21 |
		int(b[1]&0x7F)<<14 |
		int(b[2]&0x7F)<<7 |
		int(b[3]&0x7F)
}

// EncodeSynchsafeInt is the inverse of ParseSynchsafeInt, used by tests to
// verify the round trip.
func EncodeSynchsafeInt(v int) [4]byte {
	return [4]byte{
		byte(v>>21) & 0x7F,
		byte(v>>14) & 0x7F,
		byte(v>>7) & 0x7F,
		byte(v) & 0x7F,
	}
}
