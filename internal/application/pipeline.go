package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"voice-doctor/internal/domain"
)

type Pipeline struct {
	synth      Synthesizer
	transcoder Transcoder
	store      ArtifactStore
	logger     *slog.Logger
}

func NewPipeline(synth Synthesizer, transcoder Transcoder, store ArtifactStore, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		synth:      synth,
		transcoder: transcoder,
		store:      store,
		logger:     logger,
	}
}

// Render speaks response into the turn's MP3 file and transcodes it to WAV.
// On failure neither file is left behind.
func (p *Pipeline) Render(ctx context.Context, turnID, response string) (*domain.VoiceArtifact, error) {
	artifact, err := p.store.Prepare(turnID)
	if err != nil {
		return nil, fmt.Errorf("preparing artifact paths: %w", err)
	}

	if err := p.synth.Synthesize(ctx, response, artifact.PrimaryPath); err != nil {
		removeQuietly(artifact.PrimaryPath)
		return nil, fmt.Errorf("synthesizing speech with %s: %w", p.synth.Name(), err)
	}

	p.logger.Info("speech synthesized", "turn_id", turnID, "backend", p.synth.Name())

	if err := p.transcoder.Transcode(ctx, artifact.PrimaryPath, artifact.PlaybackPath); err != nil {
		removeQuietly(artifact.PlaybackPath)
		_, typed := domain.KindOf(err)
		if !typed && !isContextErr(err) {
			err = domain.NewError(domain.KindCodec, "pipeline.Transcode", err)
		}
		return nil, fmt.Errorf("transcoding speech: %w", err)
	}

	return &artifact, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
