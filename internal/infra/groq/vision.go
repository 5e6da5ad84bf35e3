package groq

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"

	"voice-doctor/internal/domain"
)

const DefaultVisionModel = "llama-3.2-11b-vision-preview"

type VisionClient struct {
	client openai.Client
	cred   domain.Credential
	model  string
}

func NewVisionClient(cred domain.Credential, model string, cfg Config) *VisionClient {
	if model == "" {
		model = DefaultVisionModel
	}
	return &VisionClient{
		client: newClient(cred, cfg),
		cred:   cred,
		model:  model,
	}
}

func (c *VisionClient) Ask(ctx context.Context, prompt string, image domain.EncodedImage) (string, error) {
	const op = "groq.Ask"

	if err := c.cred.Require(op); err != nil {
		return "", err
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: image.DataURL(),
				}),
			}),
		},
	})
	if err != nil {
		return "", classify(op, err)
	}

	if len(completion.Choices) == 0 {
		return "", domain.Errorf(domain.KindUpstream, op, "empty response from groq")
	}

	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	if answer == "" {
		return "", domain.Errorf(domain.KindUpstream, op, "empty answer from groq")
	}

	return answer, nil
}
