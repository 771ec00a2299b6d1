package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/speakerkit/version"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetVersionInfo()
			if ctx.json {
				return writeJSON(cmd, info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "speakerctl %s\n", info.String())
			return nil
		},
	}
}
