package application

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"voice-doctor/internal/domain"
)

// Doctor runs one consultation turn: arbitration, then speech rendering.
// Every turn gets its own id and scratch files, so turns may run concurrently.
type Doctor struct {
	arbitrator *Arbitrator
	pipeline   *Pipeline
	logger     *slog.Logger
}

func NewDoctor(arbitrator *Arbitrator, pipeline *Pipeline, logger *slog.Logger) *Doctor {
	return &Doctor{
		arbitrator: arbitrator,
		pipeline:   pipeline,
		logger:     logger,
	}
}

func (d *Doctor) Consult(ctx context.Context, turn domain.UserTurn) (*domain.Result, error) {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}

	d.logger.Info("consultation started",
		"turn_id", turn.ID,
		"audio", turn.HasAudio(),
		"text", turn.TypedText() != "",
		"image", turn.HasImage(),
	)

	decision, err := d.arbitrator.Decide(ctx, turn)
	if err != nil {
		return nil, err
	}

	if decision.Outcome == domain.OutcomeNoInput {
		return domain.NoInputResult(turn.ID), nil
	}

	artifact, err := d.pipeline.Render(ctx, turn.ID, decision.Response)
	if err != nil {
		return nil, err
	}

	d.logger.Info("consultation finished", "turn_id", turn.ID, "audio", artifact.PlaybackPath)

	return &domain.Result{
		TurnID:     turn.ID,
		Outcome:    domain.OutcomeAnswered,
		SpeechText: decision.SpeechText,
		Response:   decision.Response,
		Artifact:   artifact,
	}, nil
}
