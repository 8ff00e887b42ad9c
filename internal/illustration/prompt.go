// Deterministic synthesis of image-generation prompts from story context.

package illustration

import (
	"Chalkboard/internal/entity"
	"fmt"
	"strings"
)

// Base art direction applied to every storytime illustration.
const baseStyle = "Children's storybook illustration, soft watercolor style, warm and friendly"

// Style descriptor picked by the mood reported by the voice agent.
var moodStyles = map[string]string{
	"magical":     "sparkling with enchanted light",
	"adventurous": "bold and full of motion",
	"exciting":    "vivid and energetic",
	"calm":        "gentle and peaceful",
	"mysterious":  "dreamy with soft shadows",
	"happy":       "bright and cheerful",
	"silly":       "playful and cartoonish",
}

// Used when the mood is absent or unrecognized.
const defaultMoodStyle = "whimsical and colorful"

// Scenes longer than this are cut before entering the prompt,
// the voice agent tends to send whole paragraphs.
const maxSceneLength = 100

// BuildPrompt composes the image prompt from the story context.
// Pure function: identical context always yields a byte-identical prompt,
// absent fields fall back to generic phrases and every run of whitespace
// collapses to a single space.
func BuildPrompt(sctx entity.StoryContext) string {
	style, ok := moodStyles[sctx.Mood]
	if !ok {
		style = defaultMoodStyle
	}

	characters := sctx.Characters
	if characters == "" {
		characters = "friendly storybook characters"
	}

	scene := sctx.CurrentScene
	// Cut on runes, a byte slice could split a multi-byte character in half
	if sceneRunes := []rune(scene); len(sceneRunes) > maxSceneLength {
		scene = string(sceneRunes[:maxSceneLength])
	}
	if scene == "" {
		scene = "a charming moment from the story"
	}

	setting := sctx.Setting
	if setting == "" {
		setting = "a cozy storybook world"
	}

	prompt := fmt.Sprintf("%s, %s, featuring %s, showing %s, set in %s",
		baseStyle, style, characters, scene, setting)
	return strings.Join(strings.Fields(prompt), " ")
}
