package main

import (
	"fmt"
	"os"

	"github.com/ostafen/audiometa/cmd/audiometa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
