package main

import (
	"fmt"

	"github.com/aretw0/domino"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of domino",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "domino version %s\n", domino.Version)
		},
	}
}
