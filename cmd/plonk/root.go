package main

import (
	"github.com/spf13/cobra"
)

var verbose bool

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "plonk",
		Short: "Hot-reload driver for compiled native binaries",
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging")

	root.AddCommand(newBuildCommand())
	root.AddCommand(newRunCommand())

	return root
}
