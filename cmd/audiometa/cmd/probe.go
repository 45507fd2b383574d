package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/ostafen/audiometa/internal/engine"
	"github.com/ostafen/audiometa/internal/logx"
	"github.com/ostafen/audiometa/model"
	"github.com/ostafen/audiometa/pkg/util/format"
	"github.com/spf13/cobra"
)

// DefineProbeCommand builds the "probe" subcommand: parse a single file and
// print its core info, tags, and extensions.
func DefineProbeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "probe <file>",
		Short:        "Extract metadata from an audio file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunProbe,
	}

	cmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.Flags().Bool("include-binary-data", false, "embed binary tag payloads (pictures) instead of just a digest")
	cmd.Flags().Int("max-binary-tag-bytes", 8*1024*1024, "maximum payload size eligible for embedding")
	cmd.Flags().Int("window-size", 0, "target size of the reader's cached window (0 = default)")
	cmd.Flags().Int("max-read-bytes", 0, "hard cap on a single reader request (0 = default)")
	cmd.Flags().Bool("no-tags", false, "skip tag-vocabulary decoding")
	cmd.Flags().Bool("no-fallback", false, "fail instead of falling back to the unknown-format heuristic parser")
	cmd.Flags().Bool("strict", false, "promote non-fatal warnings to errors")
	cmd.Flags().Int("concurrency", 0, "permits in the engine's concurrency pool (0 = default)")
	cmd.Flags().String("log-level", "warn", "log level: debug, info, warn, error")

	return cmd
}

func RunProbe(cmd *cobra.Command, args []string) error {
	includeBinary, _ := cmd.Flags().GetBool("include-binary-data")
	maxBinaryBytes, _ := cmd.Flags().GetInt("max-binary-tag-bytes")
	windowSize, _ := cmd.Flags().GetInt("window-size")
	maxReadBytes, _ := cmd.Flags().GetInt("max-read-bytes")
	noTags, _ := cmd.Flags().GetBool("no-tags")
	noFallback, _ := cmd.Flags().GetBool("no-fallback")
	strict, _ := cmd.Flags().GetBool("strict")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	asJSON, _ := cmd.Flags().GetBool("json")
	logLevel, _ := cmd.Flags().GetString("log-level")

	parseTags := !noTags
	allowFallback := !noFallback

	opts := model.ParseOptions{
		WindowSize:             windowSize,
		ParseTags:              &parseTags,
		StrictMode:             strict,
		MaxReadBytes:           maxReadBytes,
		IncludeBinaryData:      includeBinary,
		MaxBinaryTagBytes:      maxBinaryBytes,
		AllowHeuristicFallback: &allowFallback,
		MaxConcurrentTasks:     concurrency,
	}

	eng := engine.New(opts, logx.Default(logx.ParseLevel(logLevel)))

	result, err := eng.ParseFile(context.Background(), args[0])
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(result)
	}
	return printTable(result)
}

func printJSON(result model.ParsedAudioMetadata) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"format":      result.Format,
		"coreInfo":    coreInfoJSON(result.CoreInfo),
		"tags":        tagsJSON(result.Tags),
		"extensions":  tagsJSON(result.Extensions),
		"diagnostics": result.Diagnostics,
	})
}

func coreInfoJSON(c model.AudioCoreInfo) map[string]any {
	out := map[string]any{}
	if c.Length != nil {
		out["length"] = *c.Length
	}
	if c.Bitrate != nil {
		out["bitrate"] = *c.Bitrate
	}
	if c.SampleRate != nil {
		out["sampleRate"] = *c.SampleRate
	}
	if c.Channels != nil {
		out["channels"] = *c.Channels
	}
	if c.BitsPerSample != nil {
		out["bitsPerSample"] = *c.BitsPerSample
	}
	return out
}

func tagsJSON(tags map[string]model.MetadataTagValue) map[string]any {
	out := make(map[string]any, len(tags))
	for k, v := range tags {
		out[k] = tagValueJSON(v)
	}
	return out
}

func tagValueJSON(v model.MetadataTagValue) any {
	switch v.Kind {
	case model.TagText:
		return v.Text
	case model.TagInt:
		return v.Int
	case model.TagDouble:
		return v.Double
	case model.TagBool:
		return v.Bool
	case model.TagBinary:
		if v.Binary == nil {
			return nil
		}
		d := map[string]any{
			"size":   v.Binary.Size,
			"sha256": v.Binary.SHA256,
		}
		if v.Binary.MIME != "" {
			d["mime"] = v.Binary.MIME
		}
		if v.Binary.Data != nil {
			d["dataHex"] = hex.EncodeToString(v.Binary.Data)
		}
		return d
	default:
		return nil
	}
}

func printTable(result model.ParsedAudioMetadata) error {
	fmt.Printf("Format: %s\n", result.Format)
	fmt.Println()

	c := result.CoreInfo
	fmt.Println("Core info:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	printOptionalFloat(w, "length (s)", c.Length)
	printOptionalInt(w, "bitrate (bps)", c.Bitrate)
	printOptionalInt(w, "sampleRate (Hz)", c.SampleRate)
	printOptionalInt(w, "channels", c.Channels)
	printOptionalInt(w, "bitsPerSample", c.BitsPerSample)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Tags:")
	if err := printTagTable(result.Tags); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Extensions:")
	if err := printTagTable(result.Extensions); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Parser: %s\tBytesRead: %s\n", result.Diagnostics.ParserName, format.FormatBytes(int64(result.Diagnostics.BytesRead)))
	for _, warning := range result.Diagnostics.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}
	return nil
}

func printTagTable(tags map[string]model.MetadataTagValue) error {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, renderTagValue(tags[k]))
	}
	return w.Flush()
}

func renderTagValue(v model.MetadataTagValue) string {
	switch v.Kind {
	case model.TagText:
		return fmt.Sprintf("%v", v.Text)
	case model.TagInt:
		return fmt.Sprintf("%d", v.Int)
	case model.TagDouble:
		return fmt.Sprintf("%f", v.Double)
	case model.TagBool:
		return fmt.Sprintf("%t", v.Bool)
	case model.TagBinary:
		if v.Binary == nil {
			return "<binary:nil>"
		}
		return fmt.Sprintf("<binary size=%s mime=%q sha256=%s>", format.FormatBytes(int64(v.Binary.Size)), v.Binary.MIME, v.Binary.SHA256)
	default:
		return ""
	}
}

func printOptionalFloat(w *tabwriter.Writer, name string, v *float64) {
	if v == nil {
		fmt.Fprintf(w, "%s\t-\n", name)
		return
	}
	fmt.Fprintf(w, "%s\t%f\n", name, *v)
}

func printOptionalInt(w *tabwriter.Writer, name string, v *int) {
	if v == nil {
		fmt.Fprintf(w, "%s\t-\n", name)
		return
	}
	fmt.Fprintf(w, "%s\t%d\n", name, *v)
}
