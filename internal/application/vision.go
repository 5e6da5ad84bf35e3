package application

import (
	"context"

	"voice-doctor/internal/domain"
)

type VisionModel interface {
	Ask(ctx context.Context, prompt string, image domain.EncodedImage) (string, error)
}

type ImageEncoder interface {
	Encode(path string) (domain.EncodedImage, error)
}
