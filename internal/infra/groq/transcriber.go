package groq

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"

	"voice-doctor/internal/domain"
)

const DefaultSTTModel = "whisper-large-v3"

type Transcriber struct {
	client   openai.Client
	cred     domain.Credential
	model    string
	language string
}

func NewTranscriber(cred domain.Credential, model, language string, cfg Config) *Transcriber {
	if model == "" {
		model = DefaultSTTModel
	}
	if language == "" {
		language = "en"
	}
	return &Transcriber{
		client:   newClient(cred, cfg),
		cred:     cred,
		model:    model,
		language: language,
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	const op = "groq.Transcribe"

	f, err := os.Open(audioPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.NewError(domain.KindNotFound, op, err)
		}
		return "", domain.NewError(domain.KindIO, op, fmt.Errorf("opening audio: %w", err))
	}
	defer f.Close()

	if err := t.cred.Require(op); err != nil {
		return "", err
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     f,
		Model:    openai.AudioModel(t.model),
		Language: openai.String(t.language),
	})
	if err != nil {
		return "", classify(op, err)
	}

	return resp.Text, nil
}
