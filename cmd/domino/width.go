package main

import (
	"os"

	"github.com/aretw0/domino/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// terminalWidth sizes markdown output to the terminal when writing to one.
func terminalWidth(cmd *cobra.Command) int {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return tui.TerminalWidth(f)
	}
	return tui.DefaultWidth
}
