package generator

import "context"

// CompletionRequest is one text-mode call to the model. APIKey, when set,
// overrides the configured credential for this call only.
type CompletionRequest struct {
	System string
	User   string
	APIKey string
}

// ImageRequest is one image-mode call. The prompt is final: style template,
// theme and negative constraints have already been assembled.
type ImageRequest struct {
	Prompt string
	APIKey string
}

// LLMClient abstracts the generation service so it can be swapped or mocked.
// Complete returns the plain text body, or "" when the provider yields no
// text. CompleteJSON returns the raw schema-constrained JSON payload.
// GenerateImage returns a base64 data URI, or "" when no image part is
// present in the response.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	CompleteJSON(ctx context.Context, req CompletionRequest, schemaName string, schema any) ([]byte, error)
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// LLMSettings is the base configuration handed to a concrete client.
type LLMSettings struct {
	Provider   string
	Model      string
	ImageModel string
	APIKey     string
	BaseURL    string
}
