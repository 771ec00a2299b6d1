package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/speakerkit/httpclient"
	"github.com/kbukum/speakerkit/service"
	"github.com/kbukum/speakerkit/speakerdb"
)

func newSpeakersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Manage enrolled speakers on a running speakerd",
	}
	cmd.AddCommand(newSpeakersListCommand(ctx))
	cmd.AddCommand(newSpeakersGetCommand(ctx))
	cmd.AddCommand(newSpeakersDeleteCommand(ctx))
	return cmd
}

func newSpeakersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List enrolled speakers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var list service.SpeakerList
			if err := client.Get(cmd.Context(), "/speakers", &list); err != nil {
				return fmt.Errorf("list speakers: %w", serverError(err))
			}
			if ctx.json {
				return writeJSON(cmd, list)
			}
			if len(list.Speakers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No speakers enrolled")
				return nil
			}
			printSpeakers(cmd, list.Speakers)
			return nil
		},
	}
}

func newSpeakersGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <speaker-id>",
		Short: "Show one speaker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var speaker speakerdb.Speaker
			if err := client.Get(cmd.Context(), speakerPath(args[0]), &speaker); err != nil {
				if httpclient.IsNotFound(err) {
					return fmt.Errorf("speaker %s not found", args[0])
				}
				return fmt.Errorf("get speaker: %w", serverError(err))
			}
			if ctx.json {
				return writeJSON(cmd, speaker)
			}
			printSpeakers(cmd, []speakerdb.Speaker{speaker})
			return nil
		},
	}
}

func newSpeakersDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <speaker-id>",
		Short: "Delete a speaker and all of its embeddings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var reply map[string]string
			if err := client.Delete(cmd.Context(), speakerPath(args[0]), &reply); err != nil {
				if httpclient.IsNotFound(err) {
					return fmt.Errorf("speaker %s not found", args[0])
				}
				return fmt.Errorf("delete speaker: %w", serverError(err))
			}
			if ctx.json {
				return writeJSON(cmd, reply)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply["message"])
			return nil
		},
	}
}

func speakerPath(id string) string {
	return "/speakers/" + url.PathEscape(id)
}

func printSpeakers(cmd *cobra.Command, speakers []speakerdb.Speaker) {
	rows := make([][]string, 0, len(speakers))
	for _, sp := range speakers {
		created := "-"
		if !sp.CreatedAt.IsZero() {
			created = sp.CreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{sp.ID, sp.Name, strconv.Itoa(sp.EmbeddingCount), created})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Name", "Embeddings", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}
