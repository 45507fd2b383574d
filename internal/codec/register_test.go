package codec_test

import (
	"testing"

	"github.com/ostafen/audiometa/internal/codec"
	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func TestDefaultParsers_CoversEveryDeclaredFormat(t *testing.T) {
	parsers := codec.DefaultParsers()
	require.NotEmpty(t, parsers)

	seen := make(map[model.AudioFormat]bool)
	for _, p := range parsers {
		seen[p.Format()] = true
	}

	for _, f := range model.AllFormats() {
		require.True(t, seen[f], "no registered parser reports format %q", f)
	}
}

func TestDefaultParsers_FallbackIsLast(t *testing.T) {
	parsers := codec.DefaultParsers()
	last := parsers[len(parsers)-1]
	require.Equal(t, model.FormatUnknown, last.Format())
}
