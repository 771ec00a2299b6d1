package main

import (
	"time"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8000"

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "speakerctl",
		Short:         "Speaker-attributed transcript tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.server, "server", envOr("SPEAKERCTL_SERVER", defaultServer), "speakerd base URL")
	flags.StringVar(&ctx.token, "token", envOr("SPEAKERCTL_TOKEN", ""), "Bearer token for speakerd")
	flags.DurationVar(&ctx.timeout, "timeout", 30*time.Second, "Request timeout")
	flags.BoolVar(&ctx.json, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(newMergeCommand(ctx))
	rootCmd.AddCommand(newExclusivizeCommand(ctx))
	rootCmd.AddCommand(newSpeakersCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))

	return rootCmd
}
