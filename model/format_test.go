package model_test

import (
	"testing"

	"github.com/ostafen/audiometa/model"
	"github.com/stretchr/testify/require"
)

func TestAllFormats_ExcludesUnknown(t *testing.T) {
	for _, f := range model.AllFormats() {
		require.NotEqual(t, model.FormatUnknown, f)
	}
}

func TestAllFormats_EveryEntryHasExtensions(t *testing.T) {
	for _, f := range model.AllFormats() {
		require.NotEmpty(t, f.Extensions(), "format %q should declare at least one extension", f)
	}
}

func TestAudioFormat_UnknownHasNoExtensions(t *testing.T) {
	require.Nil(t, model.FormatUnknown.Extensions())
}
