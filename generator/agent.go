package generator

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog/log"
)

// feedbackSchema is reflected once from the Feedback struct; the enum
// constraints come from the jsonschema tags on DesignConfig.
var feedbackSchema = generateSchema[Feedback]()

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Agent is the generation client. Every public method issues exactly one
// provider call, wrapped in the retry policy; provider errors come back
// unchanged and are classified by the caller.
type Agent struct {
	llm    LLMClient
	retry  RetryPolicy
	apiKey string
}

func NewAgent(llm LLMClient, defaultAPIKey string) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, retry: DefaultRetryPolicy(), apiKey: defaultAPIKey}, nil
}

// resolveAPIKey is called fresh per request: the explicit per-call key
// wins, then the configured default, then empty (the provider rejects it).
func (a *Agent) resolveAPIKey(perCall string) string {
	if perCall != "" {
		return perCall
	}
	return a.apiKey
}

// ProduceRecord turns raw session notes into a formal Markdown record.
func (a *Agent) ProduceRecord(ctx context.Context, rawInput, apiKey string) (string, error) {
	req := CompletionRequest{
		System: recordSystemPrompt(),
		User:   rawInput,
		APIKey: a.resolveAPIKey(apiKey),
	}
	return Invoke(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, req)
	})
}

// ProduceFeedback derives the structured feedback card from a record.
func (a *Agent) ProduceFeedback(ctx context.Context, formalRecord, apiKey string) (Feedback, error) {
	req := CompletionRequest{
		System: feedbackSystemPrompt(),
		User:   formalRecord,
		APIKey: a.resolveAPIKey(apiKey),
	}
	raw, err := Invoke(ctx, a.retry, func(ctx context.Context) ([]byte, error) {
		return a.llm.CompleteJSON(ctx, req, "feedback", feedbackSchema)
	})
	if err != nil {
		return Feedback{}, err
	}
	return ParseFeedback(raw), nil
}

// ParseFeedback decodes the structured payload. A payload that does not
// parse is downgraded to an empty Feedback rather than an error; downstream
// consumers see all-empty fields. The branch is logged so it stays visible.
func ParseFeedback(raw []byte) Feedback {
	var fb Feedback
	if err := json.Unmarshal(raw, &fb); err != nil {
		log.Warn().Err(err).Msg("feedback payload did not parse, substituting empty feedback")
		return Feedback{}
	}
	fb.RecomputeFullText()
	return fb
}

// ProduceImage sends a finished prompt to the image model and returns a
// data URI, or "" when the response carries no image part. The universal
// no-text constraint is appended to every prompt, refined ones included.
func (a *Agent) ProduceImage(ctx context.Context, prompt, apiKey string) (string, error) {
	req := ImageRequest{
		Prompt: withUniversalNegative(prompt),
		APIKey: a.resolveAPIKey(apiKey),
	}
	return Invoke(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.llm.GenerateImage(ctx, req)
	})
}

// Refine rewrites existing record or feedback text under an instruction.
func (a *Agent) Refine(ctx context.Context, current, instruction string, kind ContentKind, apiKey string) (string, error) {
	req := CompletionRequest{
		System: refineSystemPrompt(kind),
		User:   refineUserPrompt(current, instruction),
		APIKey: a.resolveAPIKey(apiKey),
	}
	return Invoke(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, req)
	})
}

// RefineImagePrompt rewrites an image prompt under an instruction.
func (a *Agent) RefineImagePrompt(ctx context.Context, currentPrompt, instruction, apiKey string) (string, error) {
	req := CompletionRequest{
		System: promptEngineerSystemPrompt(),
		User:   refineUserPrompt(currentPrompt, instruction),
		APIKey: a.resolveAPIKey(apiKey),
	}
	return Invoke(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.llm.Complete(ctx, req)
	})
}
