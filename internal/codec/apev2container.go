package codec

import (
	"bytes"

	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/tags"
	"github.com/ostafen/audiometa/model"
)

// APEv2ContainerParser implements registry.FormatParser for a file whose
// entire content is an APEv2 tag (header variant, "APETAGEX" at the very
// start rather than the more common footer-only placement). It carries no
// audio stream of its own, so CoreInfo is left unset.
type APEv2ContainerParser struct{}

func (APEv2ContainerParser) Format() model.AudioFormat { return model.FormatAPEv2 }

func (APEv2ContainerParser) CanParse(header []byte, nameHint string) bool {
	return bytes.HasPrefix(header, []byte("APETAGEX"))
}

func (p APEv2ContainerParser) Parse(r *ioreader.WindowedReader, ctx *registry.ParseCtx) (model.ParsedAudioMetadata, error) {
	out := model.NewParsedAudioMetadata(model.FormatAPEv2)
	if !ctx.Options.ShouldParseTags() {
		return out, nil
	}
	length, ok := r.Length()
	if !ok {
		return out, model.NewError(model.ErrIOFailure, "apev2: source does not expose a length")
	}
	whole, err := r.Read(0, int(length))
	if err != nil {
		return out, err
	}
	apeTags, err := tags.ParseAPEv2(whole, ctx.Options.IncludeBinaryData, ctx.Options.MaxBinaryTagBytes)
	if err != nil {
		return out, err
	}
	for k, v := range apeTags {
		out.SetTag(k, v)
	}
	return out, nil
}
