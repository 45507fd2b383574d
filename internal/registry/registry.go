// Package registry holds the FormatParser capability interface and the
// fixed, ordered parser list the engine resolves against.
package registry

import (
	"github.com/ostafen/audiometa/internal/ioreader"
	"github.com/ostafen/audiometa/internal/probe"
	"github.com/ostafen/audiometa/model"
)

// ParseCtx is threaded through a FormatParser's Parse call. It carries the
// normalized options for this call and the diagnostics record the parser
// should annotate (warnings, context key/values); bytesRead is filled in by
// the engine after Parse returns.
type ParseCtx struct {
	Options     model.ParseOptions
	Diagnostics *model.ParserDiagnostics
}

// FormatParser is the capability every container/codec parser implements:
// a fixed format identity, a cheap header/extension acceptance check, and
// the parse entry point itself.
type FormatParser interface {
	Format() model.AudioFormat
	// CanParse inspects the header prefix (and optionally the filename
	// hint) and reports whether this parser is willing to attempt a parse.
	// It must be side-effect free and must not read from the reader.
	CanParse(header []byte, nameHint string) bool
	Parse(r *ioreader.WindowedReader, ctx *ParseCtx) (model.ParsedAudioMetadata, error)
}

// Registry holds a fixed, ordered list of parsers. Order only matters for
// the unprobed fallback path.
type Registry struct {
	parsers []FormatParser
}

// New builds a Registry over parsers, preserving their order.
func New(parsers ...FormatParser) *Registry {
	return &Registry{parsers: parsers}
}

// Parsers returns the registered parsers in registration order.
func (r *Registry) Parsers() []FormatParser {
	return r.parsers
}

// Resolve picks the parser that should handle header/nameHint: it walks
// probe candidates in descending score order and returns the first parser
// whose format matches a candidate and whose CanParse accepts; failing
// that, it falls back to the first registered parser (in registration
// order) whose CanParse accepts unconditionally. Returns nil if nothing
// matches.
func (r *Registry) Resolve(header []byte, nameHint string) FormatParser {
	for _, cand := range probe.Probe(header, nameHint) {
		for _, p := range r.parsers {
			if p.Format() == cand.Format && p.CanParse(header, nameHint) {
				return p
			}
		}
	}
	for _, p := range r.parsers {
		if p.CanParse(header, nameHint) {
			return p
		}
	}
	return nil
}
