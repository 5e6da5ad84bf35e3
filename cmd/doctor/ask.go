package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"voice-doctor/internal/domain"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var turn domain.UserTurn

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer one turn from local audio, text, and image inputs",
		Example: `  doctor ask --text "I have a red itchy patch" --image rash.jpg
  doctor ask --audio question.wav`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			a, err := buildApp(cfg, logger)
			if err != nil {
				return err
			}

			result, err := a.doctor.Consult(cmd.Context(), turn)
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&turn.AudioPath, "audio", "", "path to a recorded voice question")
	cmd.Flags().StringVar(&turn.Text, "text", "", "typed question")
	cmd.Flags().StringVar(&turn.ImagePath, "image", "", "path to a medical image")
	return cmd
}

func printResult(w io.Writer, result *domain.Result) {
	fmt.Fprintf(w, "Speech to Text: %s\n", result.SpeechText)
	fmt.Fprintf(w, "Doctor's Response: %s\n", result.Response)
	if result.Artifact != nil {
		fmt.Fprintf(w, "Doctor's Voice: %s\n", result.Artifact.PlaybackPath)
	}
}
