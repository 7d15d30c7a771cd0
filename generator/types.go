package generator

// Stage is one node in the linear pipeline: raw notes are turned into a
// formal record, the record into a feedback card, the card into an image.
type Stage string

const (
	StageInitial  Stage = "initial"
	StageRecord   Stage = "record"
	StageFeedback Stage = "feedback"
	StageVisual   Stage = "visual"
)

// DesignConfig carries the layout hints the model picks for the card.
// The jsonschema tags constrain the structured-output schema to these values.
type DesignConfig struct {
	TextColor    string `json:"textColor" jsonschema:"enum=light,enum=dark"`
	TextPosition string `json:"textPosition" jsonschema:"enum=top,enum=center,enum=bottom"`
	FontStyle    string `json:"fontStyle" jsonschema:"enum=rounded,enum=serif,enum=handwritten"`
}

// Feedback is the structured result of the feedback stage.
// FullText is derived locally and is never part of the model schema.
type Feedback struct {
	FeedbackCard    string       `json:"feedbackCard"`
	HealingSentence string       `json:"healingSentence"`
	Theme           string       `json:"theme"`
	Design          DesignConfig `json:"designConfig"`
	FullText        string       `json:"fullText,omitempty" jsonschema:"-"`
}

// RecomputeFullText joins the card and the healing sentence with a blank
// line. Must be called whenever either text field changes.
func (f *Feedback) RecomputeFullText() {
	f.FullText = f.FeedbackCard + "\n\n" + f.HealingSentence
}

// ContentKind selects the refinement persona.
type ContentKind string

const (
	ContentRecord   ContentKind = "record"
	ContentFeedback ContentKind = "feedback"
)
