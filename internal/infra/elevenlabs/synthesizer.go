package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra"
)

const (
	DefaultVoiceID      = "9BWtsMINqrJLrRacOk9x"
	DefaultModel        = "eleven_turbo_v2"
	DefaultOutputFormat = "mp3_22050_32"
)

type Config struct {
	VoiceID      string
	Model        string
	OutputFormat string
	Timeout      time.Duration
}

type Synthesizer struct {
	cred       domain.Credential
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

func NewSynthesizer(cred domain.Credential, cfg Config) *Synthesizer {
	return NewSynthesizerWithURL(cred, cfg, "https://api.elevenlabs.io/v1")
}

func NewSynthesizerWithURL(cred domain.Credential, cfg Config, baseURL string) *Synthesizer {
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Synthesizer{
		cred:       cred,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		cfg:        cfg,
	}
}

func (s *Synthesizer) Name() string {
	return "elevenlabs"
}

type request struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

func (s *Synthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	const op = "elevenlabs.Synthesize"

	if err := s.cred.Require(op); err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(request{Text: text, ModelID: s.cfg.Model})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		s.baseURL, url.PathEscape(s.cfg.VoiceID), url.QueryEscape(s.cfg.OutputFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.cred.Value())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return infra.TransportError(op, err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return infra.TransportError(op, fmt.Errorf("reading audio: %w", err))
	}

	if !infra.IsSuccessHTTPStatus(resp.StatusCode) {
		return infra.StatusError(op, resp.StatusCode, audio)
	}

	if len(audio) == 0 {
		return domain.Errorf(domain.KindUpstream, op, "empty audio from elevenlabs")
	}

	return infra.WriteFileAtomic(op, outputPath, audio)
}
