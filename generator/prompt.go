package generator

import (
	"errors"
	"fmt"
	"strings"
)

// --- Text personas ---

func recordSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are an experienced social-work supervisor writing formal supervision records.\n")
	sb.WriteString("Rewrite the supervisor's informal session notes as a structured record in Markdown.\n")
	sb.WriteString("Use exactly this template:\n\n")
	sb.WriteString("# Supervision Record\n\n")
	sb.WriteString("## Session Overview\n")
	sb.WriteString("(date, participants, format and purpose of the session, as far as the notes reveal them)\n\n")
	sb.WriteString("## Key Issues Discussed\n")
	sb.WriteString("(the concerns and cases the supervisee brought, as neutral bullet points)\n\n")
	sb.WriteString("## Supervisor Guidance\n")
	sb.WriteString("(the direction, reframing and professional advice given)\n\n")
	sb.WriteString("## Agreed Actions\n")
	sb.WriteString("(concrete next steps with owners where stated)\n\n")
	sb.WriteString("## Follow-up\n")
	sb.WriteString("(open points to revisit in the next session)\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Keep the professional, non-judgmental register of social-work documentation.\n")
	sb.WriteString("- Do not invent facts that are not in the notes; write \"not recorded\" instead.\n")
	sb.WriteString("- Output Markdown only, no commentary before or after.\n")
	return sb.String()
}

func feedbackSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You read a formal supervision record and produce a short affirming feedback card for the supervisee.\n")
	sb.WriteString("- feedbackCard: one warm, specific, affirming message of 50-80 characters.\n")
	sb.WriteString("- healingSentence: one gentle closing sentence that releases pressure.\n")
	sb.WriteString("- theme: a short English keyword phrase describing an image mood that fits the card.\n")
	sb.WriteString("- designConfig: pick the text color, position and font style that suit the mood.\n")
	sb.WriteString("Ground every statement in what the record actually says.\n")
	return sb.String()
}

func refineSystemPrompt(kind ContentKind) string {
	if kind == ContentFeedback {
		var sb strings.Builder
		sb.WriteString("You edit short affirming feedback cards for social workers.\n")
		sb.WriteString("Apply the user's instruction with the smallest possible change.\n")
		sb.WriteString("Keep the main message between 50 and 80 characters.\n")
		sb.WriteString("Output the revised card text only, no explanation.\n")
		return sb.String()
	}
	var sb strings.Builder
	sb.WriteString("You edit formal supervision records written in Markdown.\n")
	sb.WriteString("Apply the user's instruction with the smallest necessary change.\n")
	sb.WriteString("Preserve the heading structure and the documentation register.\n")
	sb.WriteString("Output the full revised Markdown only, no explanation.\n")
	return sb.String()
}

func promptEngineerSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are a prompt engineer for an image generation model.\n")
	sb.WriteString("Revise the given image prompt according to the instruction.\n")
	sb.WriteString("Write in English only. Output the revised prompt only, never an explanation.\n")
	return sb.String()
}

func refineUserPrompt(current, instruction string) string {
	return fmt.Sprintf("%s\n\nInstruction: %s", current, instruction)
}

// --- Image styles ---

// StyleAuto lets the composition follow the theme instead of a fixed scene.
const StyleAuto = "auto"

const autoPortraitDirective = "Portrait orientation, 3:4 aspect ratio composition."

// FallbackTheme is used when feedback carries no theme of its own.
const FallbackTheme = "warmth"

const universalNegative = "Strictly no text, no letters, no characters, no numbers, no typography, no logos and no watermarks anywhere in the image."

// imageStyles is the fixed style enumeration; keys are validated, the table
// itself is never mutated at runtime.
var imageStyles = map[string]string{
	StyleAuto: "A soft, emotionally warm illustration whose scenery is chosen freely to express the theme. " +
		"Gentle ambient light, muted harmonious palette, plenty of negative space for overlaid text. " +
		"No people, no faces, no hands.",
	"watercolor": "A delicate watercolor painting on textured paper, translucent washes of color bleeding softly into " +
		"each other, a calm natural scene with soft morning light and generous empty space. " +
		"No people, no faces, no harsh outlines.",
	"pastel": "A soft pastel drawing with powdery texture, rounded gentle shapes, a dreamy sky gradient from peach to " +
		"lavender, small clouds drifting. Tender and quiet mood. No people, no faces, no sharp edges.",
	"oil": "A small impressionist oil painting with visible brush strokes, warm golden-hour light over a peaceful " +
		"landscape, thick soft impasto texture. No people, no faces, no buildings in the foreground.",
	"lineart": "A minimal single-line illustration on an off-white background, one continuous thin line forming a calm " +
		"natural motif, one muted accent color, vast empty space. No people, no faces, no shading, no clutter.",
	"collage": "A handcrafted paper collage of torn colored paper layered with visible fiber edges, simple organic " +
		"shapes forming a serene scene, soft studio light and subtle paper shadows. No people, no faces.",
	"nightsky": "A tranquil night sky filled with soft glowing stars over a dark calm horizon, deep blue and violet " +
		"tones, a faint band of mist, quiet and protective mood. No people, no faces, no moon text motifs.",
	"forest": "A quiet forest clearing in soft diffused light, sunbeams through leaves, moss and gentle undergrowth in " +
		"deep greens, mist between distant trunks. Still, restorative mood. No people, no faces, no animals in focus.",
	"ocean": "A calm sea at dawn, long smooth waves under a pale gradient sky, wet sand reflecting soft light, distant " +
		"haze at the horizon. Wide open and breathing space. No people, no faces, no boats.",
	"warmhome": "A cozy still life by a window: soft blanket, steaming mug, warm lamplight against cool evening " +
		"light outside, shallow depth of field. Safe and comforting mood. No people, no faces, no readable objects.",
}

// ErrUnknownStyle is returned for a style key outside the enumeration.
var ErrUnknownStyle = errors.New("unknown image style")

// StyleKeys returns the style enumeration in presentation order.
func StyleKeys() []string {
	return []string{
		StyleAuto, "watercolor", "pastel", "oil", "lineart",
		"collage", "nightsky", "forest", "ocean", "warmhome",
	}
}

// BuildImagePrompt combines a style template with the theme. The auto style
// carries the portrait aspect directive; the fixed scenes already imply
// their composition.
func BuildImagePrompt(styleKey, theme string) (string, error) {
	template, ok := imageStyles[styleKey]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, styleKey)
	}
	if strings.TrimSpace(theme) == "" {
		theme = FallbackTheme
	}
	var sb strings.Builder
	if styleKey == StyleAuto {
		sb.WriteString(autoPortraitDirective)
		sb.WriteString(" ")
	}
	sb.WriteString(template)
	sb.WriteString(" The overall theme: ")
	sb.WriteString(theme)
	sb.WriteString(".")
	return sb.String(), nil
}

// withUniversalNegative appends the no-text constraint. Applied to every
// prompt sent to the image model, refined overrides included.
func withUniversalNegative(prompt string) string {
	if strings.Contains(prompt, universalNegative) {
		return prompt
	}
	return prompt + " " + universalNegative
}
