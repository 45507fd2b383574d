package model

// AudioCoreInfo carries the core audio parameters a container parser can
// surface. Every field is independently optional: a parser leaves a field
// unset (nil) when the container doesn't expose that quantity.
type AudioCoreInfo struct {
	Length        *float64 // seconds
	Bitrate       *int     // bits per second
	SampleRate    *int     // Hz
	Channels      *int
	BitsPerSample *int
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

// SetLength records the stream length in seconds.
func (c *AudioCoreInfo) SetLength(seconds float64) { c.Length = f64(seconds) }

// SetBitrate records the stream bitrate in bits per second.
func (c *AudioCoreInfo) SetBitrate(bps int) { c.Bitrate = i(bps) }

// SetSampleRate records the sample rate in Hz.
func (c *AudioCoreInfo) SetSampleRate(hz int) { c.SampleRate = i(hz) }

// SetChannels records the channel count.
func (c *AudioCoreInfo) SetChannels(n int) { c.Channels = i(n) }

// SetBitsPerSample records the sample depth.
func (c *AudioCoreInfo) SetBitsPerSample(n int) { c.BitsPerSample = i(n) }

// TagValueKind discriminates the variants a MetadataTagValue can hold.
type TagValueKind int

const (
	TagText TagValueKind = iota
	TagInt
	TagDouble
	TagBool
	TagBinary
)

// MetadataTagValue is a tagged-union value for a decoded tag. Text values are
// always carried as an ordered list, even for tags the vocabulary only ever
// emits a single value for, so that multi-value tags (Vorbis comments,
// ID3v2.4 repeated frames) round-trip uniformly.
type MetadataTagValue struct {
	Kind   TagValueKind
	Text   []string
	Int    int64
	Double float64
	Bool   bool
	Binary *BinaryDigest
}

// NewTextTag builds a text-kind tag value from one or more strings.
func NewTextTag(values ...string) MetadataTagValue {
	return MetadataTagValue{Kind: TagText, Text: values}
}

// NewIntTag builds an int-kind tag value.
func NewIntTag(v int64) MetadataTagValue {
	return MetadataTagValue{Kind: TagInt, Int: v}
}

// NewDoubleTag builds a double-kind tag value.
func NewDoubleTag(v float64) MetadataTagValue {
	return MetadataTagValue{Kind: TagDouble, Double: v}
}

// NewBoolTag builds a bool-kind tag value.
func NewBoolTag(v bool) MetadataTagValue {
	return MetadataTagValue{Kind: TagBool, Bool: v}
}

// NewBinaryTag builds a binary-kind tag value wrapping a digest.
func NewBinaryTag(d *BinaryDigest) MetadataTagValue {
	return MetadataTagValue{Kind: TagBinary, Binary: d}
}

// BinaryDigest is the canonical representation of an embedded binary
// payload (picture, generic attachment): always a SHA-256 of the decoded
// bytes, the declared size, an optional MIME type, and the bytes themselves
// only when the caller's options ask for embedding.
type BinaryDigest struct {
	Size   int
	MIME   string // empty when unknown
	SHA256 string // hex, lowercase
	Data   []byte // nil unless embedding was requested and size allowed it
}

// ParserDiagnostics records bookkeeping produced during a single parse:
// which parser ran, how many bytes it pulled through the windowed reader,
// non-fatal warnings, and arbitrary context.
type ParserDiagnostics struct {
	ParserName string
	BytesRead  uint64
	Warnings   []string
	Context    map[string]string
}

// AddWarning appends a warning message.
func (d *ParserDiagnostics) AddWarning(msg string) {
	d.Warnings = append(d.Warnings, msg)
}

// SetContext records a key/value pair in the diagnostics context map,
// allocating the map on first use.
func (d *ParserDiagnostics) SetContext(key, value string) {
	if d.Context == nil {
		d.Context = make(map[string]string)
	}
	d.Context[key] = value
}

// ParsedAudioMetadata is the normalized result of a top-level parse call:
// the detected format, the core audio parameters, the decoded tag
// vocabulary, format-specific supplementary fields, and diagnostics.
type ParsedAudioMetadata struct {
	Format     AudioFormat
	CoreInfo   AudioCoreInfo
	Tags       map[string]MetadataTagValue
	Extensions map[string]MetadataTagValue
	Diagnostics ParserDiagnostics
}

// NewParsedAudioMetadata returns a ParsedAudioMetadata with initialized maps,
// ready for a parser to populate.
func NewParsedAudioMetadata(format AudioFormat) ParsedAudioMetadata {
	return ParsedAudioMetadata{
		Format:     format,
		Tags:       make(map[string]MetadataTagValue),
		Extensions: make(map[string]MetadataTagValue),
	}
}

// SetTag inserts or overwrites a tag by key.
func (m *ParsedAudioMetadata) SetTag(key string, v MetadataTagValue) {
	m.Tags[key] = v
}

// AppendTagText appends values to an existing text tag, or creates one.
func (m *ParsedAudioMetadata) AppendTagText(key string, values ...string) {
	existing, ok := m.Tags[key]
	if ok && existing.Kind == TagText {
		existing.Text = append(existing.Text, values...)
		m.Tags[key] = existing
		return
	}
	m.Tags[key] = NewTextTag(values...)
}

// SetExtension inserts or overwrites a format-specific supplementary field.
func (m *ParsedAudioMetadata) SetExtension(key string, v MetadataTagValue) {
	m.Extensions[key] = v
}
