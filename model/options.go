package model

import "runtime"

const (
	minWindowSize      = 4096
	defaultWindowSize  = 65536
	minMaxReadBytes    = 256 * 1024
	defaultMaxReadBytes = 16 * 1024 * 1024
	defaultMaxBinaryTagBytes = 8 * 1024 * 1024
)

// ParseOptions configures a single parse call or an Engine's default
// behaviour. Every field is optional; Normalize replaces zero or
// out-of-range values with the documented defaults, except for
// MaxBinaryTagBytes, where zero is kept and only a negative value is
// replaced.
type ParseOptions struct {
	WindowSize            int
	ParseTags             *bool
	StrictMode            bool
	MaxReadBytes          int
	IncludeBinaryData     bool
	MaxBinaryTagBytes      int
	AllowHeuristicFallback *bool
	MaxConcurrentTasks     int
}

// DefaultParseOptions returns the documented defaults.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		WindowSize:         defaultWindowSize,
		MaxReadBytes:       defaultMaxReadBytes,
		MaxBinaryTagBytes:  defaultMaxBinaryTagBytes,
		MaxConcurrentTasks: defaultConcurrency(),
	}
}

func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Normalize returns a copy of o with every field clamped to its documented
// floor/default, so downstream code can read fields directly without
// re-checking zero values.
func (o ParseOptions) Normalize() ParseOptions {
	out := o
	if out.WindowSize < minWindowSize {
		out.WindowSize = defaultWindowSize
	}
	if out.MaxReadBytes < minMaxReadBytes {
		out.MaxReadBytes = defaultMaxReadBytes
	}
	if out.MaxBinaryTagBytes < 0 {
		out.MaxBinaryTagBytes = defaultMaxBinaryTagBytes
	}
	if out.MaxConcurrentTasks < 1 {
		out.MaxConcurrentTasks = defaultConcurrency()
	}
	if out.ParseTags == nil {
		t := true
		out.ParseTags = &t
	}
	if out.AllowHeuristicFallback == nil {
		t := true
		out.AllowHeuristicFallback = &t
	}
	return out
}

// ShouldParseTags reports whether tag parsing is enabled.
func (o ParseOptions) ShouldParseTags() bool {
	return o.ParseTags == nil || *o.ParseTags
}

// ShouldAllowHeuristicFallback reports whether the fallback signature parser
// may run.
func (o ParseOptions) ShouldAllowHeuristicFallback() bool {
	return o.AllowHeuristicFallback == nil || *o.AllowHeuristicFallback
}
