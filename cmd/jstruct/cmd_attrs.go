package main

import (
	"fmt"

	"github.com/dhamidi/jstruct/classfile"
	"github.com/spf13/cobra"
)

func newAttrsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attrs",
		Short: "List the attribute names with a registered parser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range classfile.DefaultRegistry().Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
