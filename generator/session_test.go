package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedbackPayload = `{"feedbackCard":"You carried that session with care.","healingSentence":"Rest a little.","theme":"calm dawn","designConfig":{"textColor":"light","textPosition":"center","fontStyle":"serif"}}`

func newTestSession(t *testing.T, llm LLMClient) *Session {
	t.Helper()
	return NewSession("test-session", newTestAgent(t, llm, "key"))
}

func advanceToVisual(t *testing.T, sess *Session, style string) {
	t.Helper()
	require.NoError(t, sess.GenerateRecord(context.Background(), "informal notes", ""))
	require.NoError(t, sess.GenerateFeedback(context.Background(), ""))
	require.NoError(t, sess.GenerateVisual(context.Background(), style, ""))
	require.Equal(t, StageVisual, sess.Stage)
}

func TestGenerateRecord_EmptyInputNeverCallsModel(t *testing.T) {
	llm := &scriptedLLM{}
	sess := newTestSession(t, llm)

	err := sess.GenerateRecord(context.Background(), "   \n\t ", "")
	require.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, StageInitial, sess.Stage)
	assert.Zero(t, llm.completeCalls)
}

func TestGenerateRecord_FailureStaysInitial(t *testing.T) {
	llm := &scriptedLLM{completeErr: errors.New("connection refused")}
	sess := newTestSession(t, llm)

	err := sess.GenerateRecord(context.Background(), "notes", "")
	require.Error(t, err)
	assert.Equal(t, StageInitial, sess.Stage)
	assert.Empty(t, sess.FormalRecord)
	assert.NotEmpty(t, sess.LastError)
}

func TestPipeline_ForwardTransitions(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Supervision Record\n\ncontent",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,abcd",
	}
	sess := newTestSession(t, llm)

	require.NoError(t, sess.GenerateRecord(context.Background(), "informal notes", ""))
	assert.Equal(t, StageRecord, sess.Stage)
	assert.Equal(t, "# Supervision Record\n\ncontent", sess.FormalRecord)

	require.NoError(t, sess.GenerateFeedback(context.Background(), ""))
	assert.Equal(t, StageFeedback, sess.Stage)
	require.NotNil(t, sess.Feedback)
	assert.Equal(t, "You carried that session with care.\n\nRest a little.", sess.Feedback.FullText)

	require.NoError(t, sess.GenerateVisual(context.Background(), StyleAuto, ""))
	assert.Equal(t, StageVisual, sess.Stage)
	assert.Equal(t, "data:image/png;base64,abcd", sess.CardImage)
	assert.NotEmpty(t, sess.ImagePrompt)
}

func TestBackToFeedback_KeepsImageState(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,abcd",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, StyleAuto)

	require.NoError(t, sess.BackToFeedback())
	assert.Equal(t, StageFeedback, sess.Stage)
	assert.Equal(t, "data:image/png;base64,abcd", sess.CardImage)
	assert.NotEmpty(t, sess.ImagePrompt)
}

func TestBackToFeedback_OnlyFromVisual(t *testing.T) {
	sess := newTestSession(t, &scriptedLLM{})
	require.ErrorIs(t, sess.BackToFeedback(), ErrWrongStage)
}

func TestReset_ClearsEverything(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,abcd",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, StyleAuto)

	sess.Reset()
	assert.Equal(t, StageInitial, sess.Stage)
	assert.Empty(t, sess.RawInput)
	assert.Empty(t, sess.FormalRecord)
	assert.Nil(t, sess.Feedback)
	assert.Empty(t, sess.ImagePrompt)
	assert.Empty(t, sess.CardImage)
}

func TestGenerateVisual_AutoStyleCarriesPortraitDirectiveAndTheme(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,abcd",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, StyleAuto)

	assert.Contains(t, sess.ImagePrompt, autoPortraitDirective)
	assert.Contains(t, sess.ImagePrompt, "calm dawn")
}

func TestGenerateVisual_NamedStyleHasNoPortraitDirective(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,abcd",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, "watercolor")

	assert.NotContains(t, sess.ImagePrompt, autoPortraitDirective)
	assert.Contains(t, sess.ImagePrompt, "calm dawn")
}

func TestGenerateVisual_ThemeFallsBackToWarmth(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(`{"feedbackCard":"A","healingSentence":"B","theme":"","designConfig":{"textColor":"light","textPosition":"top","fontStyle":"serif"}}`),
		imageURI:     "data:image/png;base64,abcd",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, "forest")

	assert.Contains(t, sess.ImagePrompt, FallbackTheme)
}

func TestGenerateVisual_AbsentImageStillReachesVisual(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, StyleAuto)

	assert.Equal(t, StageVisual, sess.Stage)
	assert.Empty(t, sess.CardImage)
}

func TestGenerateVisual_UnknownStyleRejected(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
	}
	sess := newTestSession(t, llm)
	require.NoError(t, sess.GenerateRecord(context.Background(), "notes", ""))
	require.NoError(t, sess.GenerateFeedback(context.Background(), ""))

	err := sess.GenerateVisual(context.Background(), "vaporwave", "")
	require.ErrorIs(t, err, ErrUnknownStyle)
	assert.Equal(t, StageFeedback, sess.Stage)
	assert.Zero(t, llm.imageCalls)
}

func TestRefine_RecordStageReplacesRecordInPlace(t *testing.T) {
	llm := &scriptedLLM{completeText: "# Record v1"}
	sess := newTestSession(t, llm)
	require.NoError(t, sess.GenerateRecord(context.Background(), "notes", ""))

	llm.completeText = "# Record v2"
	require.NoError(t, sess.Refine(context.Background(), "tighten the overview", ""))
	assert.Equal(t, StageRecord, sess.Stage)
	assert.Equal(t, "# Record v2", sess.FormalRecord)
}

func TestRefine_FeedbackStageReplacesFullTextOnly(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
	}
	sess := newTestSession(t, llm)
	require.NoError(t, sess.GenerateRecord(context.Background(), "notes", ""))
	require.NoError(t, sess.GenerateFeedback(context.Background(), ""))

	llm.completeText = "A gentler version of the card."
	require.NoError(t, sess.Refine(context.Background(), "make it gentler", ""))
	assert.Equal(t, StageFeedback, sess.Stage)
	assert.Equal(t, "A gentler version of the card.", sess.Feedback.FullText)
	assert.Equal(t, "You carried that session with care.", sess.Feedback.FeedbackCard)
}

func TestRefine_EmptyInstructionNeverCallsModel(t *testing.T) {
	llm := &scriptedLLM{completeText: "# Record"}
	sess := newTestSession(t, llm)
	require.NoError(t, sess.GenerateRecord(context.Background(), "notes", ""))
	callsBefore := llm.completeCalls

	err := sess.Refine(context.Background(), "   ", "")
	require.ErrorIs(t, err, ErrEmptyInstruction)
	assert.Equal(t, callsBefore, llm.completeCalls)
}

// The refine-image sequence is deliberately two-phase: the refined prompt
// sticks even when the regeneration that follows it fails.
func TestRefineImage_PartialUpdatePersists(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,old",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, StyleAuto)

	llm.completeText = "a refined prompt"
	llm.imageErr = errors.New("connection refused")
	err := sess.RefineImage(context.Background(), "add more light", "")
	require.Error(t, err)
	assert.Equal(t, "a refined prompt", sess.ImagePrompt, "prompt update from the first call is retained")
	assert.Empty(t, sess.CardImage, "old image was cleared before regeneration")
	assert.Equal(t, StageVisual, sess.Stage)
}

func TestRefineImage_Success(t *testing.T) {
	llm := &scriptedLLM{
		completeText: "# Record",
		jsonPayload:  []byte(feedbackPayload),
		imageURI:     "data:image/png;base64,old",
	}
	sess := newTestSession(t, llm)
	advanceToVisual(t, sess, StyleAuto)

	llm.completeText = "a refined prompt"
	llm.imageURI = "data:image/png;base64,new"
	require.NoError(t, sess.RefineImage(context.Background(), "add more light", ""))
	assert.Equal(t, "a refined prompt", sess.ImagePrompt)
	assert.Equal(t, "data:image/png;base64,new", sess.CardImage)
}

func TestRefineImage_RequiresExistingPrompt(t *testing.T) {
	llm := &scriptedLLM{}
	sess := newTestSession(t, llm)

	err := sess.RefineImage(context.Background(), "add more light", "")
	require.ErrorIs(t, err, ErrNoImagePrompt)
	assert.Zero(t, llm.completeCalls)
}
