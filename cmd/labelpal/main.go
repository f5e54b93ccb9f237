package main

import (
	"fmt"
	"os"

	"github.com/labelpal/backend/internal/cli"
	"github.com/pterm/pterm"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", pterm.Red("Error:"), err)
		os.Exit(1)
	}
}
