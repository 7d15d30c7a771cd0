package generator

import (
	"context"
	"strings"
)

// MockLLM is a placeholder client for local runs without an API key. It
// echoes the input into a plausibly shaped record and returns fixed
// feedback and a 1x1 image.
type MockLLM struct{}

// Transparent 1x1 PNG.
const mockImageDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func (m MockLLM) Complete(_ context.Context, req CompletionRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("# Supervision Record\n\n")
	sb.WriteString("## Session Overview\n\nGenerated from the notes below (mock mode).\n\n")
	sb.WriteString("## Key Issues Discussed\n\n")
	sb.WriteString("```\n")
	sb.WriteString(req.User)
	sb.WriteString("\n```\n\n")
	sb.WriteString("## Supervisor Guidance\n\nnot recorded\n\n")
	sb.WriteString("## Agreed Actions\n\nnot recorded\n\n")
	sb.WriteString("## Follow-up\n\nnot recorded\n")
	return sb.String(), nil
}

func (m MockLLM) CompleteJSON(_ context.Context, _ CompletionRequest, _ string, _ any) ([]byte, error) {
	return []byte(`{
		"feedbackCard": "You held a difficult session with steadiness and real care.",
		"healingSentence": "Let this week be a little lighter on you.",
		"theme": "calm dawn over quiet water",
		"designConfig": {"textColor": "dark", "textPosition": "center", "fontStyle": "rounded"}
	}`), nil
}

func (m MockLLM) GenerateImage(_ context.Context, _ ImageRequest) (string, error) {
	return mockImageDataURI, nil
}
