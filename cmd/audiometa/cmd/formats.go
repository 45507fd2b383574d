package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ostafen/audiometa/model"
	"github.com/spf13/cobra"
)

// DefineFormatsCommand lists every recognised AudioFormat and its
// extensions, mirroring the "formats" listing of the scanning CLI this
// tool descends from.
func DefineFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "formats",
		Short:        "List all recognised audio formats",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunFormats,
	}
}

func RunFormats(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tEXTENSIONS")
	for _, f := range model.AllFormats() {
		fmt.Fprintf(w, "%s\t%s\n", f, strings.Join(f.Extensions(), ","))
	}
	return w.Flush()
}
