package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// Bitrate tables (kbps), indexed by the 4-bit bitrate index in an MPEG
// frame header.
var mp3BitrateMPEG1Layer3 = []int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
var mp3BitrateMPEG2Layer3 = []int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}

// Sample rates (Hz), indexed [mpegVersionBits][sampleRateIndex].
var mp3SampleRateTable = [][]int{
	{11025, 12000, 8000, 0}, // MPEG 2.5
	{0, 0, 0, 0},            // reserved
	{22050, 24000, 16000, 0},
	{44100, 48000, 32000, 0},
}

type mp3FrameHeader struct {
	mpegVersionBits  int
	channelModeBits  int
	bitrateKbps      int
	sampleRate       int
	channels         int
	padding          bool
	protectionAbsent bool
	frameSize        int
}

// mp3SyncScanBudget bounds how far past the declared audio start
// scanMP3Sync will scan for a frame sync. Real encoders place the first
// frame immediately after any ID3v2 tag; padding or stray bytes before it
// are tolerated up to this bound.
const mp3SyncScanBudget = 128 * 1024

// scanMP3Sync looks for the first valid MPEG frame sync at or after start,
// scanning up to budget bytes. It returns the decoded header, the absolute
// offset it was found at, and whether a sync was found at all.
func scanMP3Sync(r *ioreader.WindowedReader, start int64, budget int) (mp3FrameHeader, int64, bool) {
	buf, err := r.Read(start, budget)
	if err != nil || len(buf) < 4 {
		return mp3FrameHeader{}, 0, false
	}
	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xFF || buf[i+1]&0xE0 != 0xE0 {
			continue
		}
		if header, ok := parseMP3FrameHeader(buf[i : i+4]); ok {
			return header, start + int64(i), true
		}
	}
	return mp3FrameHeader{}, 0, false
}

// parseMP3FrameHeader decodes a 4-byte MPEG audio frame header. It returns
// ok=false for anything that isn't a valid Layer III sync word.
func parseMP3FrameHeader(b []byte) (mp3FrameHeader, bool) {
	if len(b) < 4 {
		return mp3FrameHeader{}, false
	}
	header := binary.BigEndian.Uint32(b)
	if header&0xFFE00000 != 0xFFE00000 {
		return mp3FrameHeader{}, false
	}

	versionBits := int((header >> 19) & 0x03)
	if versionBits == 1 {
		return mp3FrameHeader{}, false // reserved
	}
	layerBits := int((header >> 17) & 0x03)
	if layerBits != 1 { // Layer III only
		return mp3FrameHeader{}, false
	}
	bitrateIndex := int((header >> 12) & 0x0F)
	if bitrateIndex == 0 || bitrateIndex == 15 {
		return mp3FrameHeader{}, false
	}
	var bitrate int
	if versionBits == 3 { // MPEG 1
		bitrate = mp3BitrateMPEG1Layer3[bitrateIndex]
	} else {
		bitrate = mp3BitrateMPEG2Layer3[bitrateIndex]
	}
	sampleRateIndex := int((header >> 10) & 0x03)
	if sampleRateIndex == 3 {
		return mp3FrameHeader{}, false
	}
	sampleRate := mp3SampleRateTable[versionBits][sampleRateIndex]
	if sampleRate == 0 {
		return mp3FrameHeader{}, false
	}
	padding := (header>>9)&0x01 != 0
	protectionAbsent := (header>>16)&0x01 != 0
	channelMode := int((header >> 6) & 0x03)
	channels := 2
	if channelMode == 3 {
		channels = 1
	}

	samplesPerFrame := 1152
	if versionBits != 3 {
		samplesPerFrame = 576
	}
	frameSize := (samplesPerFrame*bitrate*1000)/(8*sampleRate) + 0
	if padding {
		frameSize++
	}
	if frameSize <= 4 {
		return mp3FrameHeader{}, false
	}
	return mp3FrameHeader{
		mpegVersionBits:  versionBits,
		channelModeBits:  channelMode,
		bitrateKbps:      bitrate,
		sampleRate:       sampleRate,
		channels:         channels,
		padding:          padding,
		protectionAbsent: protectionAbsent,
		frameSize:        frameSize,
	}, true
}

// xingHeaderOffset returns the byte offset from the start of a frame (past
// its 4-byte header) at which a Xing/Info header lives, per the side-info
// size table keyed by MPEG version and channel mode, plus 2 bytes when a
// CRC follows the header.
func xingHeaderOffset(fh mp3FrameHeader) int {
	var sideInfo int
	mono := fh.channelModeBits == 3
	switch {
	case fh.mpegVersionBits == 3 && !mono: // MPEG1 stereo/joint/dual
		sideInfo = 32
	case fh.mpegVersionBits == 3 && mono: // MPEG1 mono
		sideInfo = 17
	case fh.mpegVersionBits != 3 && !mono: // MPEG2/2.5 stereo/joint/dual
		sideInfo = 17
	default: // MPEG2/2.5 mono
		sideInfo = 9
	}
	offset := 4 + sideInfo
	if !fh.protectionAbsent {
		offset += 2
	}
	return offset
}

// xingInfo holds what a Xing/Info/VBRI header exposed.
type xingInfo struct {
	vbr        bool
	frames     int
	bytes      int
	encoderTag string
}

// parseXingOrVBRI looks for a Xing/Info header at its version/channel-mode
// offset past frameStart, or a VBRI header at the fixed offset 32+4=36
// bytes past frameStart, and extracts frame/byte counts plus an optional
// trailing LAME encoder tag.
func parseXingOrVBRI(r *ioreader.WindowedReader, frameStart int64, fh mp3FrameHeader) (xingInfo, bool) {
	off := frameStart + int64(xingHeaderOffset(fh))
	tag, err := r.Read(off, 4)
	if err == nil && len(tag) == 4 && (string(tag) == "Xing" || string(tag) == "Info") {
		info, ok := parseXingBody(r, off, string(tag) == "Xing")
		if ok {
			return info, true
		}
	}

	vbriOff := frameStart + 36
	vtag, verr := r.Read(vbriOff, 4)
	if verr == nil && len(vtag) == 4 && string(vtag) == "VBRI" {
		body, berr := r.Read(vbriOff+4, 20)
		if berr == nil && len(body) >= 20 {
			frames := int(binary.BigEndian.Uint32(body[10:14]))
			bytes := int(binary.BigEndian.Uint32(body[6:10]))
			return xingInfo{vbr: true, frames: frames, bytes: bytes}, true
		}
	}
	return xingInfo{}, false
}

func parseXingBody(r *ioreader.WindowedReader, tagOff int64, vbr bool) (xingInfo, bool) {
	flagsBuf, err := r.Read(tagOff+4, 4)
	if err != nil || len(flagsBuf) < 4 {
		return xingInfo{}, false
	}
	flags := binary.BigEndian.Uint32(flagsBuf)
	pos := tagOff + 8

	var frames, byteCount int
	if flags&0x1 != 0 {
		b, err := r.Read(pos, 4)
		if err != nil || len(b) < 4 {
			return xingInfo{}, false
		}
		frames = int(binary.BigEndian.Uint32(b))
		pos += 4
	}
	if flags&0x2 != 0 {
		b, err := r.Read(pos, 4)
		if err != nil || len(b) < 4 {
			return xingInfo{}, false
		}
		byteCount = int(binary.BigEndian.Uint32(b))
		pos += 4
	}
	if flags&0x4 != 0 {
		pos += 100 // TOC table, unused
	}
	if flags&0x8 != 0 {
		pos += 4 // quality indicator, unused
	}

	encoderTag := ""
	if lame, err := r.Read(pos, 16); err == nil && len(lame) >= 4 && string(lame[0:4]) == "LAME" {
		encoderTag = string(bytes.TrimRight(lame, "\x00"))
	}
	return xingInfo{vbr: vbr, frames: frames, bytes: byteCount, encoderTag: encoderTag}, true
}

// MP3Parser implements registry.FormatParser for MPEG-1/2/2.5 Layer III
// streams, with an optional leading ID3v2 tag and a trailing APEv2 or
// ID3v1 tag.
type MP3Parser struct{}

func (MP3Parser) Format() model.AudioFormat { return model.FormatMP3 }

func (MP3Parser) CanParse(header []byte, nameHint string) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	if len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0 {
		return true
	}
	return false
}

func (p MP3Parser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatMP3)
	opts := ctx.Options

	var audioStart int64
	head, err := r.Read(0, 10)
	if err == nil && len(head) >= 3 && string(head[0:3]) == "ID3" {
		if opts.ShouldParseTags() {
			result, warnings, ierr := tags.ParseID3v2(r.Read, 0, opts.MaxReadBytes, opts.IncludeBinaryData, opts.MaxBinaryTagBytes)
			if ierr != nil {
				return out, ierr
			}
			for _, w := range warnings {
				ctx.Diagnostics.AddWarning(w)
			}
			if result != nil {
				for k, v := range result.Tags {
					out.SetTag(k, v)
				}
				audioStart = int64(result.TotalSize)
			}
		} else if len(head) >= 10 {
			audioStart = int64(10 + tags.ParseSynchsafeInt(head[6:10]))
		}
	}

	firstHeader, syncOffset, found := scanMP3Sync(r, audioStart, mp3SyncScanBudget)
	if !found {
		return out, model.NewErrorf(model.ErrInvalidHeader, "mp3: no MPEG frame sync found within %d bytes of offset %d", mp3SyncScanBudget, audioStart).WithOffset(audioStart)
	}
	audioStart = syncOffset

	if info, ok := parseXingOrVBRI(r, audioStart, firstHeader); ok && info.frames > 0 {
		samplesPerFrame := 1152.0
		if firstHeader.mpegVersionBits != 3 {
			samplesPerFrame = 576.0
		}
		length := float64(info.frames) * samplesPerFrame / float64(firstHeader.sampleRate)
		out.CoreInfo.SetSampleRate(firstHeader.sampleRate)
		out.CoreInfo.SetChannels(firstHeader.channels)
		if length > 0 {
			out.CoreInfo.SetLength(length)
			if info.bytes > 0 {
				out.CoreInfo.SetBitrate(int(float64(info.bytes) * 8 / length))
			}
		}
		mode := "CBR"
		if info.vbr {
			mode = "VBR"
		}
		out.SetExtension("bitrate_mode", model.NewTextTag(mode))
		if info.encoderTag != "" {
			out.SetExtension("encoder_info", model.NewTextTag(info.encoderTag))
		}
	} else if err := scanMP3Frames(r, audioStart, &out); err != nil {
		return out, err
	}

	if opts.ShouldParseTags() {
		if length, ok := r.Length(); ok {
			tailLen := int64(64 * 1024)
			if tailLen > length {
				tailLen = length
			}
			tailOff := length - tailLen
			if tail, terr := r.Read(tailOff, int(tailLen)); terr == nil {
				if apeTags, aerr := tags.ParseAPEv2(tail, opts.IncludeBinaryData, opts.MaxBinaryTagBytes); aerr == nil {
					for k, v := range apeTags {
						out.SetTag(k, v)
					}
				}
				parseID3v1(tail, &out)
			}
		}
	}
	return out, nil
}

// scanMP3Frames walks consecutive frame headers starting at offset, summing
// durations to derive stream length, and records the first frame's bitrate
// and sample rate as representative of the whole stream (CBR assumption;
// VBR files will be slightly off, which is acceptable for an estimate).
func scanMP3Frames(r *ioreader.WindowedReader, offset int64, out *model.ParsedAudioMetadata) error {
	pos := offset
	frames := 0
	var totalSamples float64
	var firstHeader *mp3FrameHeader

	length, hasLength := r.Length()
	for {
		if hasLength && pos+4 > length {
			break
		}
		buf, err := r.Read(pos, 4)
		if err != nil || len(buf) < 4 {
			break
		}
		fh, ok := parseMP3FrameHeader(buf)
		if !ok {
			break
		}
		if firstHeader == nil {
			h := fh
			firstHeader = &h
		}
		samplesPerFrame := 1152.0
		if fh.mpegVersionBits != 3 {
			samplesPerFrame = 576.0
		}
		totalSamples += samplesPerFrame
		pos += int64(fh.frameSize)
		frames++
		if frames > 5_000_000 { // pathological guard, not a real-world limit
			break
		}
	}

	if firstHeader != nil {
		out.CoreInfo.SetBitrate(firstHeader.bitrateKbps * 1000)
		out.CoreInfo.SetSampleRate(firstHeader.sampleRate)
		out.CoreInfo.SetChannels(firstHeader.channels)
		if firstHeader.sampleRate > 0 {
			out.CoreInfo.SetLength(totalSamples / float64(firstHeader.sampleRate))
		}
	}
	return nil
}

// parseID3v1 looks for a 128-byte ID3v1 tag at the very end of tail and, if
// present, fills in any of title/artist/album/year/comment not already set
// by an ID3v2 or APEv2 tag.
func parseID3v1(tail []byte, out *model.ParsedAudioMetadata) {
	if len(tail) < 128 {
		return
	}
	t := tail[len(tail)-128:]
	if string(t[0:3]) != "TAG" {
		return
	}
	setIfAbsent := func(key string, raw []byte) {
		if _, ok := out.Tags[key]; ok {
			return
		}
		v := trimID3v1Field(raw)
		if v == "" {
			return
		}
		out.SetTag(key, model.NewTextTag(v))
	}
	setIfAbsent("TIT2", t[3:33])
	setIfAbsent("TPE1", t[33:63])
	setIfAbsent("TALB", t[63:93])
	setIfAbsent("TYER", t[93:97])
	setIfAbsent("COMM:", t[97:127])
}

func trimID3v1Field(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ') {
		end--
	}
	return string(b[:end])
}
