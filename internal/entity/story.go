// Structure of the storytime illustration models in Chalkboard.

package entity

// StoryContext is the loosely-typed narrative metadata sent by the voice
// platform's webhook. Every field is optional, absent fields fall back to
// generic defaults during prompt synthesis.
type StoryContext struct {
	StoryContent string `json:"story_content,omitempty"`
	Characters   string `json:"characters,omitempty"`
	Setting      string `json:"setting,omitempty"`
	Mood         string `json:"mood,omitempty"`
	CurrentScene string `json:"current_scene,omitempty"`
}

// Event is the single JSON shape broadcast over the event stream.
// Events are ephemeral, constructed per broadcast and never stored.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Data payload of a generation-started event.
type GenerationStartedData struct {
	Message string       `json:"message"`
	Context StoryContext `json:"context"`
}

// Data payload of a story-illustration event.
type IllustrationData struct {
	ImageURL string       `json:"imageUrl"`
	Context  StoryContext `json:"context"`
}

// ConnectedEvent is written once, synchronously, to every freshly opened stream.
func ConnectedEvent() Event {
	return Event{Type: "connected"}
}

// GenerationStartedEvent tells listening clients to show a loading state
// before the slow external image call completes.
func GenerationStartedEvent(sctx StoryContext) Event {
	return Event{
		Type: "generation-started",
		Data: GenerationStartedData{
			Message: "A new illustration is on its way.",
			Context: sctx,
		},
	}
}

// IllustrationEvent carries the generated image URL plus the original story context.
func IllustrationEvent(imageURL string, sctx StoryContext) Event {
	return Event{
		Type: "story-illustration",
		Data: IllustrationData{
			ImageURL: imageURL,
			Context:  sctx,
		},
	}
}
