// Package model holds the data types shared across the audiometa engine:
// error kinds, the audio format enumeration, and the parsed-metadata shape
// returned to callers.
package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures the parsing pipeline can raise, mirroring
// the taxonomy used throughout the engine's diagnostics.
type ErrorKind string

const (
	// ErrUnsupportedFormat means the registry found no parser willing to
	// handle the input.
	ErrUnsupportedFormat ErrorKind = "unsupportedFormat"
	// ErrInvalidHeader means a required magic/shape check failed at a known
	// offset.
	ErrInvalidHeader ErrorKind = "invalidHeader"
	// ErrTruncatedData means a read requested N bytes but fewer were
	// available, or a declared size extends past the source.
	ErrTruncatedData ErrorKind = "truncatedData"
	// ErrInconsistentContainer means internal offsets or sizes contradict the
	// container spec. Reserved for strict mode.
	ErrInconsistentContainer ErrorKind = "inconsistentContainer"
	// ErrInvalidTagPayload means a tag-vocabulary decode failed where the
	// outer container format is otherwise valid.
	ErrInvalidTagPayload ErrorKind = "invalidTagPayload"
	// ErrIOFailure means the underlying source raised, or a request violated
	// reader bounds.
	ErrIOFailure ErrorKind = "ioFailure"
	// ErrInternalInvariant marks a condition that should never occur at
	// runtime.
	ErrInternalInvariant ErrorKind = "internalInvariant"
)

// AudioError is the error type raised anywhere in the parsing pipeline. It
// always carries a kind, a human message, and an optional byte offset plus a
// free-form context map for diagnostics.
type AudioError struct {
	Kind    ErrorKind
	Message string
	Offset  int64 // -1 when not applicable
	Context map[string]string
}

func (e *AudioError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (offset %d)", e.Kind, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an AudioError with no offset and no context.
func NewError(kind ErrorKind, msg string) *AudioError {
	return &AudioError{Kind: kind, Message: msg, Offset: -1}
}

// NewErrorf builds an AudioError with no offset, formatting the message.
func NewErrorf(kind ErrorKind, format string, args ...any) *AudioError {
	return &AudioError{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// WithOffset returns a copy of the error carrying the given byte offset.
func (e *AudioError) WithOffset(off int64) *AudioError {
	clone := *e
	clone.Offset = off
	return &clone
}

// WithContext returns a copy of the error with a key/value pair merged into
// its context map.
func (e *AudioError) WithContext(key, value string) *AudioError {
	clone := *e
	ctx := make(map[string]string, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	clone.Context = ctx
	return &clone
}

// KindOf extracts the ErrorKind from err if it is (or wraps) an *AudioError,
// returning ok=false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var aerr *AudioError
	if errors.As(err, &aerr) {
		return aerr.Kind, true
	}
	return "", false
}
