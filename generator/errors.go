package generator

import (
	"errors"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
)

// Local precondition failures. The UI is expected to gate these before an
// operation is triggered, so they are defensive no-ops rather than faults.
var (
	ErrEmptyInput       = errors.New("notes are empty")
	ErrEmptyInstruction = errors.New("instruction is empty")
	ErrNoImagePrompt    = errors.New("no image prompt to refine")
	ErrWrongStage       = errors.New("operation not valid in current stage")
)

// Category classifies a failed operation for the presentation layer.
type Category string

const (
	CategoryRateLimit  Category = "rate_limit"
	CategoryAuth       Category = "auth"
	CategoryValidation Category = "validation"
	CategoryTransport  Category = "transport"
)

// IsRateLimited reports whether err is a rate-limit signal: HTTP 429 or a
// resource-exhausted message from the provider. Only these are retried.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resource_exhausted")
}

func isAuthError(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) &&
		(apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "incorrect api key") ||
		strings.Contains(msg, "api key expired")
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrEmptyInstruction) ||
		errors.Is(err, ErrNoImagePrompt) ||
		errors.Is(err, ErrWrongStage) ||
		errors.Is(err, ErrUnknownStyle)
}

// Classify maps an error onto the category the caller should present.
func Classify(err error) Category {
	switch {
	case isValidationError(err):
		return CategoryValidation
	case isAuthError(err):
		return CategoryAuth
	case IsRateLimited(err):
		return CategoryRateLimit
	default:
		return CategoryTransport
	}
}

// UserMessage renders a classified error as the message shown in the wizard.
// The provider's own message is kept out of it; Classify decides the tone.
func UserMessage(err error) string {
	switch Classify(err) {
	case CategoryValidation:
		return err.Error()
	case CategoryAuth:
		return "The API key was rejected. Reconnect your credentials and try again."
	case CategoryRateLimit:
		return "The model is receiving too many requests. Wait a moment and try again."
	default:
		return "The generation service is unavailable right now. Try again later."
	}
}
