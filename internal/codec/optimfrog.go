package codec

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/model"
)

// OptimFROGParser implements registry.FormatParser for OptimFROG (.ofr/
// .ofs): a "OFR " magic followed by a header whose exact field layout
// differs across the format's many revisions. Only the magic and the
// total uncompressed size are read; sample rate, channels and total
// samples are left unset. Tags come from the trailing APEv2 footer, same
// as the other lossless formats in this family.
type OptimFROGParser struct{}

func (OptimFROGParser) Format() model.AudioFormat { return model.FormatOptimFROG }

func (OptimFROGParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("OFR "))
}

func (p OptimFROGParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatOptimFROG)
	head, err := r.ReadExact(0, 12)
	if err != nil || string(head[0:4]) != "OFR " {
		return out, model.NewError(model.ErrInvalidHeader, "optimfrog: missing OFR magic")
	}
	// Bytes 4-8: total uncompressed size (bytes). Bytes 8-12: compressed
	// size. Sample rate/channels live in the subsequent codec-specific
	// header, whose layout is revision-dependent; we leave CoreInfo
	// otherwise unset rather than guess at a field offset we can't ground.
	uncompressedSize := binary.LittleEndian.Uint32(head[4:8])
	ctx.Diagnostics.SetContext("uncompressedBytes", strconv.FormatUint(uint64(uncompressedSize), 10))

	applyTrailingAPEv2Tags(r, ctx, &out)
	return out, nil
}
