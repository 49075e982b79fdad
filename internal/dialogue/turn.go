package dialogue

import (
	"time"
	"unicode/utf8"
)

// Speaker is the author of a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message in a transcript. Turns are append-only; only the
// revealed prefix of an assistant reply grows after the turn is added.
type Turn struct {
	ID                  int       `json:"id"`
	Speaker             Speaker   `json:"speaker"`
	Text                string    `json:"text"`
	IsItineraryDocument bool      `json:"is_itinerary_document,omitempty"`
	IsExportPrompt      bool      `json:"is_export_prompt,omitempty"`
	IsError             bool      `json:"is_error,omitempty"`
	CreatedAt           time.Time `json:"created_at"`

	// Revealed is how many runes of Text are visible.
	Revealed int `json:"-"`
}

// Visible returns the revealed prefix of the turn's text.
func (t Turn) Visible() string {
	n := utf8.RuneCountInString(t.Text)
	if t.Revealed >= n {
		return t.Text
	}
	if t.Revealed <= 0 {
		return ""
	}
	r := []rune(t.Text)
	return string(r[:t.Revealed])
}

// Complete reports whether the whole text is visible.
func (t Turn) Complete() bool {
	return t.Revealed >= utf8.RuneCountInString(t.Text)
}

// turnTags carries the optional flags of a new turn.
type turnTags struct {
	itinerary    bool
	exportPrompt bool
	isError      bool
}

// longestItinerary returns the longest turn tagged as an itinerary document.
// A later, shorter itinerary turn is usually a refusal or a partial reply.
func longestItinerary(turns []Turn) (Turn, bool) {
	var best Turn
	found := false
	for _, t := range turns {
		if !t.IsItineraryDocument {
			continue
		}
		if !found || len(t.Text) > len(best.Text) {
			best = t
			found = true
		}
	}
	return best, found
}

// lastAssistant returns the most recent assistant turn.
func lastAssistant(turns []Turn) (Turn, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Speaker == SpeakerAssistant {
			return turns[i], true
		}
	}
	return Turn{}, false
}
