package codec

import (
	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// applyTrailingAPEv2Tags reads the last chunk of the source (bounded by
// ctx's MaxReadBytes) and merges in any APEv2 tag found there. Several
// lossless formats (WavPack, Musepack, TAK, TrueAudio, OptimFROG, Monkey's
// Audio) conventionally carry their tag as an APEv2 footer at the very end
// of the file regardless of the audio container in front of it, so this is
// shared across their parsers, and the fallback parser, rather than
// duplicated.
func applyTrailingAPEv2Tags(r *ioreader.WindowedReader, ctx *registry.ParseCtx, out *model.ParsedAudioMetadata) {
	if !ctx.Options.ShouldParseTags() {
		return
	}
	length, ok := r.Length()
	if !ok {
		return
	}
	tailLen := int64(256 * 1024)
	if tailLen > length {
		tailLen = length
	}
	tail, err := r.Read(length-tailLen, int(tailLen))
	if err != nil {
		return
	}
	apeTags, err := tags.ParseAPEv2(tail, ctx.Options.IncludeBinaryData, ctx.Options.MaxBinaryTagBytes)
	if err != nil {
		ctx.Diagnostics.AddWarning("apev2 trailer: " + err.Error())
		return
	}
	for k, v := range apeTags {
		out.SetTag(k, v)
	}
}
