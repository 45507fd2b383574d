package codec

import (
	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// FallbackParser always accepts, producing a result tagged with the
// unknown format that carries only the tags recovered from a leading
// ID3v2 tag or a trailing APEv2 tag (no core info). It's the last entry in
// the registry and only runs when nothing else claimed the
// header/extension and the caller's options permit the heuristic fallback
// path.
type FallbackParser struct{}

func (FallbackParser) Format() model.AudioFormat { return model.FormatUnknown }

func (FallbackParser) CanParse(header []byte, nameHint string) bool { return true }

func (FallbackParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatUnknown)
	ctx.Diagnostics.AddWarning("no format parser recognised this source; returning only recoverable ID3v2/APEv2 tags")
	opts := ctx.Options
	if opts.ShouldParseTags() {
		if head, err := r.Read(0, 3); err == nil && string(head) == "ID3" {
			result, warnings, ierr := tags.ParseID3v2(r.Read, 0, opts.MaxReadBytes, opts.IncludeBinaryData, opts.MaxBinaryTagBytes)
			if ierr == nil && result != nil {
				for k, v := range result.Tags {
					out.SetTag(k, v)
				}
			}
			for _, w := range warnings {
				ctx.Diagnostics.AddWarning(w)
			}
		}
	}
	applyTrailingAPEv2Tags(r, ctx, &out)
	return out, nil
}
