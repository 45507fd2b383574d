package codec_test

import "encoding/binary"

// Shared byte-fixture builders used across this package's parser tests.
// Each builder constructs the minimal on-disk shape a real encoder would
// produce for the fields the corresponding parser actually reads.

func be16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// mp4Atom wraps body in a standard 32-bit-size ISO BMFF box header.
func mp4Atom(typ string, body []byte) []byte {
	out := make([]byte, 0, 8+len(body))
	out = append(out, be32(uint32(8+len(body)))...)
	out = append(out, typ...)
	out = append(out, body...)
	return out
}

// mp4DataAtom wraps payload in the ilst "data" atom shape: type/flags(4) +
// locale(4) + payload.
func mp4DataAtom(dataType uint32, payload []byte) []byte {
	body := append(be32(dataType), be32(0)...)
	body = append(body, payload...)
	return mp4Atom("data", body)
}

// mp4ILSTItem wraps a data atom in its parent ilst item box.
func mp4ILSTItem(name string, dataType uint32, payload []byte) []byte {
	return mp4Atom(name, mp4DataAtom(dataType, payload))
}

func vorbisCommentPacket(vendor string, vectors ...string) []byte {
	var buf []byte
	buf = append(buf, le32(uint32(len(vendor)))...)
	buf = append(buf, vendor...)
	buf = append(buf, le32(uint32(len(vectors)))...)
	for _, v := range vectors {
		buf = append(buf, le32(uint32(len(v)))...)
		buf = append(buf, v...)
	}
	return buf
}

// flacStreamInfoBody packs the 34-byte STREAMINFO body this package's
// parser reads sample rate, channel count, bit depth and total samples from.
func flacStreamInfoBody(sampleRate uint32, channels, bitsPerSample uint8, totalSamples uint64) []byte {
	body := make([]byte, 34)
	// bytes 0-9 (min/max block size, min/max frame size) are left zero;
	// the parser doesn't read them.
	var packed uint64
	packed |= uint64(sampleRate) << 44
	packed |= uint64(channels-1) << 41
	packed |= uint64(bitsPerSample-1) << 36
	packed |= totalSamples & 0x0000000FFFFFFFFF
	for i := 0; i < 8; i++ {
		body[10+i] = byte(packed >> (56 - 8*i))
	}
	return body
}

func flacMetadataBlock(blockType byte, isLast bool, body []byte) []byte {
	head := make([]byte, 4)
	head[0] = blockType
	if isLast {
		head[0] |= 0x80
	}
	head[1] = byte(len(body) >> 16)
	head[2] = byte(len(body) >> 8)
	head[3] = byte(len(body))
	return append(head, body...)
}

// mp3Frame builds a single MPEG-1 Layer III frame header: 128 kbps,
// 44100 Hz, stereo, no CRC.
func mp3Frame() []byte {
	return []byte{0xFF, 0xFB, 0x90, 0x00}
}

func xingHeader(frames, byteCount uint32, encoderTag string) []byte {
	var buf []byte
	buf = append(buf, "Xing"...)
	buf = append(buf, be32(0x3)...) // frames + bytes present
	buf = append(buf, be32(frames)...)
	buf = append(buf, be32(byteCount)...)
	tag := make([]byte, 16)
	copy(tag, encoderTag)
	buf = append(buf, tag...)
	return buf
}

func riffChunk(id string, body []byte) []byte {
	out := []byte(id)
	out = append(out, le32(uint32(len(body)))...)
	out = append(out, body...)
	if len(body)%2 != 0 {
		out = append(out, 0)
	}
	return out
}
