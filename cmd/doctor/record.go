package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voice-doctor/internal/infra/audio"
)

func newRecordCmd(opts *rootOptions) *cobra.Command {
	var (
		out         string
		maxDuration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice question from the microphone to a WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			recOpts := audio.RecordOptions{
				StartTimeout:   cfg.Recorder.StartTimeout,
				MaxDuration:    cfg.Recorder.MaxDuration,
				SilenceTimeout: cfg.Recorder.SilenceTimeout,
			}
			if maxDuration > 0 {
				recOpts.MaxDuration = maxDuration
			}

			recorder := audio.NewMicrophoneRecorder(cfg.Recorder.SampleRate, logger)
			if err := recorder.Record(cmd.Context(), out, recOpts); err != nil {
				return fmt.Errorf("recording: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recording saved: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "recording.wav", "output WAV path")
	cmd.Flags().DurationVar(&maxDuration, "max-duration", 0, "maximum recording length (overrides recorder.max_duration)")
	return cmd
}
