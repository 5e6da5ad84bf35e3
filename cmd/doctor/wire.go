package main

import (
	"log/slog"

	"voice-doctor/config"
	"voice-doctor/internal/application"
	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra/anthropic"
	"voice-doctor/internal/infra/audio"
	"voice-doctor/internal/infra/elevenlabs"
	"voice-doctor/internal/infra/filesystem"
	"voice-doctor/internal/infra/gemini"
	"voice-doctor/internal/infra/groq"
	"voice-doctor/internal/infra/gtts"
	"voice-doctor/internal/infra/imagecodec"
)

type app struct {
	doctor *application.Doctor
	store  *filesystem.Store
}

func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	store := filesystem.NewStore(cfg.Artifacts.Dir, cfg.Artifacts.Retention, logger)
	if err := store.Init(); err != nil {
		return nil, err
	}

	groqCfg := groq.Config{BaseURL: cfg.Groq.BaseURL, Timeout: cfg.Groq.Timeout}
	stt := groq.NewTranscriber(domain.NewCredential(cfg.Groq.APIKey), cfg.Groq.STTModel, cfg.Groq.Language, groqCfg)

	arbitrator := application.NewArbitrator(
		stt,
		newVisionModel(cfg),
		imagecodec.New(cfg.Vision.MaxImageSize),
		application.ArbitratorConfig{
			Prompts: application.Prompts{
				System:   cfg.Prompt.System,
				Fallback: cfg.Prompt.Fallback,
			},
			TextRecovery: cfg.Arbitration.TextRecovery,
		},
		logger,
	)

	pipeline := application.NewPipeline(newSynthesizer(cfg), audio.NewMP3ToWAV(), store, logger)

	return &app{
		doctor: application.NewDoctor(arbitrator, pipeline, logger),
		store:  store,
	}, nil
}

func newVisionModel(cfg *config.Config) application.VisionModel {
	switch cfg.Vision.Backend {
	case "gemini":
		return gemini.NewVisionClient(domain.NewCredential(cfg.Gemini.APIKey), cfg.Gemini.Model, cfg.Gemini.Timeout)
	case "anthropic":
		return anthropic.NewVisionClient(domain.NewCredential(cfg.Anthropic.APIKey), cfg.Anthropic.Model, cfg.Anthropic.Timeout)
	default:
		return groq.NewVisionClient(
			domain.NewCredential(cfg.Groq.APIKey),
			cfg.Groq.VisionModel,
			groq.Config{BaseURL: cfg.Groq.BaseURL, Timeout: cfg.Groq.Timeout},
		)
	}
}

func newSynthesizer(cfg *config.Config) application.Synthesizer {
	switch cfg.Speech.Backend {
	case "gtts":
		return gtts.NewSynthesizer(gtts.Config{
			Language: cfg.GTTS.Language,
			TLD:      cfg.GTTS.TLD,
			Timeout:  cfg.Speech.Timeout,
		})
	default:
		return elevenlabs.NewSynthesizer(domain.NewCredential(cfg.ElevenLabs.APIKey), elevenlabs.Config{
			VoiceID:      cfg.ElevenLabs.VoiceID,
			Model:        cfg.ElevenLabs.Model,
			OutputFormat: cfg.ElevenLabs.OutputFormat,
			Timeout:      cfg.Speech.Timeout,
		})
	}
}
