package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/speakerkit/transcript"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var transcriptionPath, diarizationPath, identitiesPath string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a transcription and a diarization into a speaker-attributed transcript",
		Long: `Merge reads producer output from JSON files and prints the merged transcript.

The transcription file holds {"text", "words", "segments", "duration"}; the
diarization file holds {"segments": [{"speaker", "start", "end"}], ...}. An
optional identities file maps diarization labels to {"name", "confidence"}.
Use "-" to read one of them from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tr transcript.Transcription
			if err := readJSON(cmd, transcriptionPath, &tr); err != nil {
				return err
			}
			var dr transcript.Diarization
			if err := readJSON(cmd, diarizationPath, &dr); err != nil {
				return err
			}
			var ids transcript.IdentityMap
			if identitiesPath != "" {
				if err := readJSON(cmd, identitiesPath, &ids); err != nil {
					return err
				}
			}

			merged, err := transcript.Merge(tr, dr, ids)
			if err != nil {
				return err
			}
			if ctx.json {
				return writeJSON(cmd, merged)
			}
			printTranscript(cmd, merged)
			return nil
		},
	}

	cmd.Flags().StringVarP(&transcriptionPath, "transcription", "t", "", "Transcription JSON file")
	cmd.Flags().StringVarP(&diarizationPath, "diarization", "d", "", "Diarization JSON file")
	cmd.Flags().StringVarP(&identitiesPath, "identities", "i", "", "Identity map JSON file")
	_ = cmd.MarkFlagRequired("transcription")
	_ = cmd.MarkFlagRequired("diarization")
	return cmd
}

func printTranscript(cmd *cobra.Command, t *transcript.Transcript) {
	out := cmd.OutOrStdout()
	painter := newLabelPainter(out)

	rows := make([][]string, 0, len(t.Turns))
	for _, turn := range t.Turns {
		identity, confidence := "-", "-"
		if turn.IdentifiedAs != nil {
			identity = *turn.IdentifiedAs
			confidence = strconv.FormatFloat(*turn.Confidence, 'f', 3, 64)
		}
		rows = append(rows, []string{
			formatClock(turn.Start),
			formatClock(turn.End),
			painter.paint(turn.Speaker),
			identity,
			confidence,
			turn.Text,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Start", "End", "Speaker", "Identified As", "Confidence", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))

	summary := fmt.Sprintf("%d speakers, %d turns, %s", t.NumSpeakers, len(t.Turns), formatClock(t.Duration))
	if t.Language != "" {
		summary += ", language " + t.Language
	}
	fmt.Fprintln(out, summary)
}

func newExclusivizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exclusivize <diarization.json>",
		Short: "Resolve overlapping diarization segments into a single-speaker timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dr transcript.Diarization
			if err := readJSON(cmd, args[0], &dr); err != nil {
				return err
			}
			for i, seg := range dr.Segments {
				if err := seg.Span().Validate(); err != nil {
					return fmt.Errorf("segment %d: %w", i, err)
				}
			}

			dr.Segments = transcript.Exclusivize(dr.Segments)
			dr.Exclusive = true
			if ctx.json {
				return writeJSON(cmd, dr)
			}

			out := cmd.OutOrStdout()
			painter := newLabelPainter(out)
			rows := make([][]string, 0, len(dr.Segments))
			for _, seg := range dr.Segments {
				rows = append(rows, []string{
					painter.paint(seg.Speaker),
					formatClock(seg.Start),
					formatClock(seg.End),
					strconv.FormatFloat(seg.Duration(), 'f', 3, 64),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Speaker", "Start", "End", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

// formatClock renders seconds as [h:]mm:ss.mmm.
func formatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	frac := ms % 1000

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%d:", h)
	}
	fmt.Fprintf(&b, "%02d:%02d.%03d", m, s, frac)
	return b.String()
}
