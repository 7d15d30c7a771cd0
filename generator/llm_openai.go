package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient using the official openai-go SDK. The
// client is rebuilt per call so a per-request API key override is just a
// different option slice.
type OpenAILLM struct {
	Model      string
	ImageModel string
	APIKey     string
	BaseOpts   []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	var opts []option.RequestOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "gpt-image-1"
	}
	return &OpenAILLM{
		Model:      cfg.Model,
		ImageModel: imageModel,
		APIKey:     cfg.APIKey,
		BaseOpts:   opts,
	}, nil
}

// opts resolves the credential for one call: the per-call key wins, then
// the configured default. An empty key is still sent so the provider's own
// auth error surfaces instead of a local guess.
func (o *OpenAILLM) opts(perCallKey string) []option.RequestOption {
	key := perCallKey
	if key == "" {
		key = o.APIKey
	}
	return append(append([]option.RequestOption{}, o.BaseOpts...), option.WithAPIKey(key))
}

func (o *OpenAILLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	client := openai.NewClient(o.opts(req.APIKey)...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAILLM) CompleteJSON(ctx context.Context, req CompletionRequest, schemaName string, schema any) ([]byte, error) {
	client := openai.NewClient(o.opts(req.APIKey)...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return []byte(resp.Choices[0].Message.Content), nil
}

func (o *OpenAILLM) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	client := openai.NewClient(o.opts(req.APIKey)...)

	// Portrait tier, closest the provider offers to a 3:4 card.
	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(o.ImageModel),
		Size:   openai.ImageGenerateParamsSize1024x1536,
		N:      openai.Int(1),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", nil
	}
	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}
