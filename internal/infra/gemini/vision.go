package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/"
	DefaultModel   = "gemini-2.0-flash"
)

type VisionClient struct {
	cred    domain.Credential
	timeout time.Duration
	baseURL string
	model   string
}

func NewVisionClient(cred domain.Credential, model string, timeout time.Duration) *VisionClient {
	return NewVisionClientWithURL(cred, model, timeout, DefaultBaseURL)
}

func NewVisionClientWithURL(cred domain.Credential, model string, timeout time.Duration, baseURL string) *VisionClient {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &VisionClient{
		cred:    cred,
		timeout: timeout,
		baseURL: baseURL,
		model:   model,
	}
}

func (c *VisionClient) Ask(ctx context.Context, prompt string, image domain.EncodedImage) (string, error) {
	const op = "gemini.Ask"

	if err := c.cred.Require(op); err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(image.Data)
	if err != nil {
		return "", domain.NewError(domain.KindCodec, op, err)
	}

	// The client needs the key at construction, so it is built per call
	// after the credential check.
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.cred.Value(),
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: c.timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return "", domain.NewError(domain.KindUpstream, op, err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, image.MediaType),
		},
	}}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", classify(op, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", domain.Errorf(domain.KindUpstream, op, "empty response from gemini")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", domain.Errorf(domain.KindUpstream, op, "empty answer from gemini")
	}

	return answer, nil
}

func classify(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return infra.StatusError(op, apiErr.Code, []byte(apiErr.Message))
	}
	return infra.TransportError(op, err)
}
