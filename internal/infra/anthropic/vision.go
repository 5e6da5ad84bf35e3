package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra"
)

const (
	DefaultBaseURL = "https://api.anthropic.com/"
	DefaultModel   = "claude-sonnet-4-20250514"
)

type VisionClient struct {
	cred      domain.Credential
	timeout   time.Duration
	baseURL   string
	model     string
	maxTokens int64
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
		cred:      cred,
		timeout:   timeout,
		baseURL:   baseURL,
		model:     model,
		maxTokens: 1024,
	}
}

// newClient builds an SDK client with retries disabled.
func (c *VisionClient) newClient() anthropic.Client {
	return anthropic.NewClient(
		option.WithAPIKey(c.cred.Value()),
		option.WithBaseURL(c.baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: c.timeout}),
	)
}

func (c *VisionClient) Ask(ctx context.Context, prompt string, image domain.EncodedImage) (string, error) {
	const op = "anthropic.Ask"

	if err := c.cred.Require(op); err != nil {
		return "", err
	}

	client := c.newClient()
	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(image.MediaType, image.Data),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", classify(op, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", domain.Errorf(domain.KindUpstream, op, "empty response from claude")
	}

	return answer, nil
}

func classify(op string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return infra.StatusError(op, apiErr.StatusCode, []byte(apiErr.Error()))
	}
	return infra.TransportError(op, err)
}
