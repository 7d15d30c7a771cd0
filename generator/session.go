package generator

import (
	"context"
	"strings"
)

// Session holds the pipeline state of one supervision-note workflow and
// drives the stage machine:
//
//	initial --GenerateRecord--> record --GenerateFeedback--> feedback
//	feedback --GenerateVisual--> visual --BackToFeedback--> feedback
//	any --Reset--> initial
//
// A failed transition leaves stage and data as they were, except the
// two-phase RefineImage sequence noted below. Callers must not run two
// operations against the same session concurrently.
type Session struct {
	ID           string
	RawInput     string
	FormalRecord string
	Feedback     *Feedback
	ImagePrompt  string
	CardImage    string
	Stage        Stage
	LastError    string

	agent *Agent
}

func NewSession(id string, agent *Agent) *Session {
	return &Session{ID: id, Stage: StageInitial, agent: agent}
}

func (s *Session) fail(err error) error {
	s.LastError = UserMessage(err)
	return err
}

// GenerateRecord produces the formal record from raw notes. Empty input is
// rejected before any provider call and the session stays at initial.
func (s *Session) GenerateRecord(ctx context.Context, rawInput, apiKey string) error {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return s.fail(ErrEmptyInput)
	}
	record, err := s.agent.ProduceRecord(ctx, trimmed, apiKey)
	if err != nil {
		return s.fail(err)
	}
	s.RawInput = rawInput
	s.FormalRecord = record
	s.Stage = StageRecord
	s.LastError = ""
	return nil
}

// GenerateFeedback derives the feedback card from the current record.
func (s *Session) GenerateFeedback(ctx context.Context, apiKey string) error {
	if s.Stage != StageRecord && s.Stage != StageFeedback {
		return s.fail(ErrWrongStage)
	}
	fb, err := s.agent.ProduceFeedback(ctx, s.FormalRecord, apiKey)
	if err != nil {
		return s.fail(err)
	}
	s.Feedback = &fb
	s.Stage = StageFeedback
	s.LastError = ""
	return nil
}

// GenerateVisual builds the image prompt from the selected style and the
// feedback theme (falling back to "warmth"), stores it, then generates the
// card image. The session lands on visual even when the provider returns no
// image part; only a provider error keeps the previous stage.
func (s *Session) GenerateVisual(ctx context.Context, styleKey, apiKey string) error {
	if s.Stage != StageFeedback && s.Stage != StageVisual {
		return s.fail(ErrWrongStage)
	}
	theme := FallbackTheme
	if s.Feedback != nil && strings.TrimSpace(s.Feedback.Theme) != "" {
		theme = s.Feedback.Theme
	}
	prompt, err := BuildImagePrompt(styleKey, theme)
	if err != nil {
		return s.fail(err)
	}
	s.ImagePrompt = prompt
	image, err := s.agent.ProduceImage(ctx, prompt, apiKey)
	if err != nil {
		return s.fail(err)
	}
	s.CardImage = image
	s.Stage = StageVisual
	s.LastError = ""
	return nil
}

// BackToFeedback returns from the visual stage without clearing the image
// prompt or the card image; they stay until regenerated.
func (s *Session) BackToFeedback() error {
	if s.Stage != StageVisual {
		return s.fail(ErrWrongStage)
	}
	s.Stage = StageFeedback
	s.LastError = ""
	return nil
}

// Reset clears all derived state and returns to initial.
func (s *Session) Reset() {
	s.RawInput = ""
	s.FormalRecord = ""
	s.Feedback = nil
	s.ImagePrompt = ""
	s.CardImage = ""
	s.Stage = StageInitial
	s.LastError = ""
}

// Refine replaces the current stage's text output in place: the formal
// record at the record stage, the feedback card text at the feedback stage.
// The stage does not change.
func (s *Session) Refine(ctx context.Context, instruction, apiKey string) error {
	if strings.TrimSpace(instruction) == "" {
		return s.fail(ErrEmptyInstruction)
	}
	switch s.Stage {
	case StageRecord:
		revised, err := s.agent.Refine(ctx, s.FormalRecord, instruction, ContentRecord, apiKey)
		if err != nil {
			return s.fail(err)
		}
		s.FormalRecord = revised
	case StageFeedback:
		if s.Feedback == nil {
			return s.fail(ErrWrongStage)
		}
		revised, err := s.agent.Refine(ctx, s.Feedback.FullText, instruction, ContentFeedback, apiKey)
		if err != nil {
			return s.fail(err)
		}
		s.Feedback.FullText = revised
	default:
		return s.fail(ErrWrongStage)
	}
	s.LastError = ""
	return nil
}

// RefineImage rewrites the image prompt under the instruction, then
// regenerates the card image with the new prompt. The two calls are not
// atomic: once the new prompt is stored and the old image cleared, a
// failure of the regeneration keeps the new prompt and leaves no image.
func (s *Session) RefineImage(ctx context.Context, instruction, apiKey string) error {
	if strings.TrimSpace(instruction) == "" {
		return s.fail(ErrEmptyInstruction)
	}
	if s.ImagePrompt == "" {
		return s.fail(ErrNoImagePrompt)
	}
	newPrompt, err := s.agent.RefineImagePrompt(ctx, s.ImagePrompt, instruction, apiKey)
	if err != nil {
		return s.fail(err)
	}
	s.ImagePrompt = newPrompt
	s.CardImage = ""
	image, err := s.agent.ProduceImage(ctx, newPrompt, apiKey)
	if err != nil {
		return s.fail(err)
	}
	s.CardImage = image
	s.LastError = ""
	return nil
}
