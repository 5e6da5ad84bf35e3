//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"voice-doctor/internal/infra"
)

type MicrophoneRecorder struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophoneRecorder(sampleRate int, logger *slog.Logger) *MicrophoneRecorder {
	if sampleRate <= 0 {
		sampleRate = CaptureFormat().SampleRate
	}
	return &MicrophoneRecorder{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Record captures one phrase from the default input device into a WAV file.
func (m *MicrophoneRecorder) Record(ctx context.Context, path string, opts RecordOptions) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	framesPerBuffer := 1024
	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	m.logger.Info("start speaking now", "sampleRate", m.sampleRate)

	detector := newPhraseDetector(opts, m.sampleRate)
	samples := make([]int16, 0, m.sampleRate*5)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return fmt.Errorf("reading from stream: %w", err)
		}

		keep, done, err := detector.Feed(buffer)
		if err != nil {
			return err
		}
		if keep {
			samples = append(samples, buffer...)
		}
		if done {
			break
		}
	}

	m.logger.Info("recording complete", "samples", len(samples))

	wav, err := SamplesToWAV(samples, m.sampleRate)
	if err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}

	if err := infra.WriteFileAtomic("audio.Record", path, wav); err != nil {
		return err
	}

	m.logger.Info("audio saved", "path", path)
	return nil
}
