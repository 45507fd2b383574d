// Package engine wires the pieces together: it opens a ByteSource for
// whatever a caller handed in (a path, a byte slice, a stream), reads a
// probe prefix, resolves a FormatParser from the registry, and runs the
// parse under a counting permit pool — the one stateful object a caller
// needs to hold onto.
package engine

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/logx"
	"github.com/ostafen/audiometa/internal/probe"
	"github.com/ostafen/audiometa/internal/registry"
	"github.com/ostafen/audiometa/internal/source"
	"github.com/ostafen/audiometa/model"
)

// probePrefixSize is the number of leading bytes handed to the format
// probe, per the scoring table's stated assumption of a 4 KiB prefix.
const probePrefixSize = 4096

// Engine is a value object: its registry and permit pool are fixed at
// construction, and it holds no state across calls. Multiple engines with
// independent option sets may coexist.
type Engine struct {
	registry *registry.Registry
	options  model.ParseOptions
	logger   *slog.Logger
	permits  *semaphore.Weighted
}

// New builds an Engine with opts normalized and a fixed parser registry. A
// nil logger falls back to a discarding logger so call sites never need a
// nil check.
func New(opts model.ParseOptions, logger *slog.Logger) *Engine {
	opts = opts.Normalize()
	if logger == nil {
		logger = logx.Discard()
	}
	return &Engine{
		registry: registry.New(codec.DefaultParsers()...),
		options:  opts,
		logger:   logger,
		permits:  semaphore.NewWeighted(int64(opts.MaxConcurrentTasks)),
	}
}

// ParseFile opens path and parses it.
func (e *Engine) ParseFile(ctx context.Context, path string) (model.ParsedAudioMetadata, error) {
	src, err := source.OpenFile(path)
	if err != nil {
		return model.ParsedAudioMetadata{}, err
	}
	return e.parse(ctx, src)
}

// ParseBytes parses an in-memory buffer. nameHint (typically the original
// filename) feeds the probe's extension heuristic; it may be empty.
func (e *Engine) ParseBytes(ctx context.Context, data []byte, nameHint string) (model.ParsedAudioMetadata, error) {
	return e.parse(ctx, source.NewMemorySource(data, nameHint))
}

// ParseStream drains r eagerly and parses the buffered result. Stream
// parsing is reduced to buffered parsing, per the source's own contract.
func (e *Engine) ParseStream(ctx context.Context, r io.Reader, nameHint string) (model.ParsedAudioMetadata, error) {
	src, err := source.NewStreamSource(r, nameHint)
	if err != nil {
		return model.ParsedAudioMetadata{}, err
	}
	return e.parse(ctx, src)
}

// parse is the shared top-level call: acquire a permit, open the windowed
// reader, resolve a parser, run it, and release the permit and the source
// on every exit path (success, parse failure, or context cancellation).
func (e *Engine) parse(ctx context.Context, src source.ByteSource) (model.ParsedAudioMetadata, error) {
	defer src.Close()

	if err := ctx.Err(); err != nil {
		return model.ParsedAudioMetadata{}, model.NewErrorf(model.ErrIOFailure, "parse canceled before start: %v", err)
	}

	if err := e.permits.Acquire(ctx, 1); err != nil {
		return model.ParsedAudioMetadata{}, model.NewErrorf(model.ErrIOFailure, "acquiring parse permit: %v", err)
	}
	defer e.permits.Release(1)

	r := ioreader.New(src, e.options.WindowSize, e.options.MaxReadBytes)

	prefixLen := probePrefixSize
	if length, ok := r.Length(); ok && length < int64(prefixLen) {
		prefixLen = int(length)
	}
	header, err := r.Read(0, prefixLen)
	if err != nil {
		return model.ParsedAudioMetadata{}, err
	}

	nameHint := r.NameHint()
	parser := e.registry.Resolve(header, nameHint)
	if parser == nil {
		return model.ParsedAudioMetadata{}, model.NewError(model.ErrUnsupportedFormat, "no parser recognised the input")
	}
	if parser.Format() == model.FormatUnknown && !e.options.ShouldAllowHeuristicFallback() {
		return model.ParsedAudioMetadata{}, model.NewError(model.ErrUnsupportedFormat, "no parser recognised the input and heuristic fallback is disabled")
	}

	diagnostics := &model.ParserDiagnostics{ParserName: string(parser.Format())}
	pctx := &registry.ParseCtx{Options: e.options, Diagnostics: diagnostics}

	e.logger.Debug("resolved parser", "format", parser.Format(), "nameHint", nameHint)

	out, err := parser.Parse(r, pctx)
	diagnostics.BytesRead = r.BytesRead()
	out.Diagnostics = *diagnostics
	if err != nil {
		e.logger.Warn("parse failed", "format", parser.Format(), "err", err)
		return out, err
	}
	return out, nil
}

// ProbeCandidates exposes the raw probe scoring for a prefix buffer,
// mirroring the format probe's own signature so diagnostic tooling (the
// CLI's probe subcommand) can show candidates without re-deriving them.
func ProbeCandidates(header []byte, nameHint string) []probe.Candidate {
	return probe.Probe(header, nameHint)
}
