package application

import (
	"context"
	"fmt"
	"log/slog"

	"voice-doctor/internal/domain"
)

type ArbitratorConfig struct {
	Prompts Prompts
	// TextRecovery lets a turn continue on typed text when transcription
	// fails. Without it a transcription error always aborts the turn.
	TextRecovery bool
}

type Arbitrator struct {
	stt    SpeechToText
	vision VisionModel
	images ImageEncoder
	cfg    ArbitratorConfig
	logger *slog.Logger
}

func NewArbitrator(
	stt SpeechToText,
	vision VisionModel,
	images ImageEncoder,
	cfg ArbitratorConfig,
	logger *slog.Logger,
) *Arbitrator {
	cfg.Prompts = cfg.Prompts.withDefaults()
	return &Arbitrator{
		stt:    stt,
		vision: vision,
		images: images,
		cfg:    cfg,
		logger: logger,
	}
}

type Decision struct {
	Outcome    domain.Outcome
	SpeechText string
	Query      string
	Response   string
}

func (a *Arbitrator) Decide(ctx context.Context, turn domain.UserTurn) (*Decision, error) {
	typed := turn.TypedText()

	var speechText string
	if turn.HasAudio() {
		text, err := a.stt.Transcribe(ctx, turn.AudioPath)
		if err != nil {
			if !a.cfg.TextRecovery || typed == "" {
				return nil, fmt.Errorf("transcribing audio: %w", err)
			}
			a.logger.Warn("transcription failed, continuing with typed text",
				"turn_id", turn.ID,
				"error", err,
			)
		} else {
			speechText = text
			a.logger.Info("transcribed", "turn_id", turn.ID, "text", speechText)
		}
	}

	query := speechText
	if typed != "" {
		query = typed
	}

	if query == "" {
		a.logger.Info("no input provided", "turn_id", turn.ID)
		return &Decision{
			Outcome:    domain.OutcomeNoInput,
			SpeechText: domain.NoInputSpeechText,
			Response:   domain.NoInputResponse,
		}, nil
	}

	decision := &Decision{
		Outcome:    domain.OutcomeAnswered,
		SpeechText: speechText,
		Query:      query,
	}

	if !turn.HasImage() {
		decision.Response = a.cfg.Prompts.Fallback
		return decision, nil
	}

	image, err := a.images.Encode(turn.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	answer, err := a.vision.Ask(ctx, a.cfg.Prompts.VisionPrompt(query), image)
	if err != nil {
		return nil, fmt.Errorf("asking vision model: %w", err)
	}

	a.logger.Info("vision answer received", "turn_id", turn.ID, "chars", len(answer))
	decision.Response = answer

	return decision, nil
}
