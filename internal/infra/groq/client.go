package groq

import (
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"voice-doctor/internal/domain"
	"voice-doctor/internal/infra"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1/"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// newClient builds an OpenAI-compatible client pointed at Groq. SDK retries
// are disabled: a single failure fails the call.
func newClient(cred domain.Credential, cfg Config) openai.Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return openai.NewClient(
		option.WithAPIKey(cred.Value()),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

func classify(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return infra.StatusError(op, apiErr.StatusCode, []byte(apiErr.Error()))
	}
	return infra.TransportError(op, err)
}
