package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// DSFParser implements registry.FormatParser for Sony's DSF (DSD Stream
// File) container: a fixed "DSD " chunk naming the total file size and an
// optional ID3v2 tag offset, followed by a "fmt " chunk with the DSD
// stream parameters.
type DSFParser struct{}

func (DSFParser) Format() model.AudioFormat { return model.FormatDSF }

func (DSFParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("DSD "))
}

func (p DSFParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatDSF)
	dsdHead, err := r.ReadExact(0, 28)
	if err != nil || string(dsdHead[0:4]) != "DSD " {
		return out, model.NewError(model.ErrInvalidHeader, "dsf: missing DSD chunk")
	}
	id3Offset := int64(binary.LittleEndian.Uint64(dsdHead[20:28]))

	fmtHead, err := r.ReadExact(28, 12)
	if err != nil || string(fmtHead[0:4]) != "fmt " {
		return out, model.NewError(model.ErrInconsistentContainer, "dsf: missing fmt chunk")
	}
	fmtSize := int64(binary.LittleEndian.Uint64(fmtHead[4:12]))
	fmtBody, err := r.Read(40, int(fmtSize)-12)
	if err != nil || len(fmtBody) < 32 {
		return out, model.NewError(model.ErrTruncatedData, "dsf: truncated fmt chunk")
	}
	channelNum := int(binary.LittleEndian.Uint32(fmtBody[8:12]))
	samplingFreq := int(binary.LittleEndian.Uint32(fmtBody[12:16]))
	bitsPerSample := int(binary.LittleEndian.Uint32(fmtBody[16:20]))
	sampleCount := binary.LittleEndian.Uint64(fmtBody[20:28])

	out.CoreInfo.SetChannels(channelNum)
	out.CoreInfo.SetSampleRate(samplingFreq)
	out.CoreInfo.SetBitsPerSample(bitsPerSample)
	if samplingFreq > 0 && sampleCount > 0 {
		out.CoreInfo.SetLength(float64(sampleCount) / float64(samplingFreq))
	}

	if ctx.Options.ShouldParseTags() && id3Offset > 0 {
		result, warnings, ierr := tags.ParseID3v2(r.Read, id3Offset, ctx.Options.MaxReadBytes, ctx.Options.IncludeBinaryData, ctx.Options.MaxBinaryTagBytes)
		if ierr == nil && result != nil {
			for k, v := range result.Tags {
				out.SetTag(k, v)
			}
		}
		for _, w := range warnings {
			ctx.Diagnostics.AddWarning(w)
		}
	}
	return out, nil
}
