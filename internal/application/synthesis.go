package application

import (
	"context"

	"voice-doctor/internal/domain"
)

// Synthesizer writes spoken audio for text into an MP3 file at outputPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) error
	Name() string
}

// Transcoder converts the synthesized MP3 into the WAV playback format.
type Transcoder interface {
	Transcode(ctx context.Context, srcPath, dstPath string) error
}

type ArtifactStore interface {
	Prepare(turnID string) (domain.VoiceArtifact, error)
}
