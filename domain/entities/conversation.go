package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Seed greeting shown before any user interaction.
const (
	GreetingUserInput = "Hey there!"
	GreetingAnswer    = "I am ready to help you"
)

// Turn is one completed exchange rendered in the conversation view.
type Turn struct {
	UserInput       string `json:"user_input"`
	GeneratedAnswer string `json:"generated_answer"`
}

// Conversation is the append-only record of one session. The two lists
// stay aligned by index at all times: Past[i] is the user input that
// produced Generated[i]. Entries are never removed or edited.
type Conversation struct {
	ID              string    `json:"id" bson:"_id"`
	SelectedVoiceID string    `json:"selected_voice_id" bson:"selected_voice_id"`
	Past            []string  `json:"past" bson:"past"`
	Generated       []string  `json:"generated" bson:"generated"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	LastTurnAt      time.Time `json:"last_turn_at" bson:"last_turn_at"`
}

// NewConversation creates a session seeded with the greeting pair and the
// fallback voice.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:              uuid.New().String(),
		SelectedVoiceID: FallbackVoiceID,
		Past:            []string{GreetingUserInput},
		Generated:       []string{GreetingAnswer},
		CreatedAt:       now,
		LastTurnAt:      now,
	}
}

// AppendTurn records one completed exchange, appending exactly one entry
// to each list.
func (c *Conversation) AppendTurn(userInput, generatedAnswer string) {
	c.Past = append(c.Past, userInput)
	c.Generated = append(c.Generated, generatedAnswer)
	c.LastTurnAt = time.Now()
}

// SelectVoice sets the active voice. An empty id falls back to the
// hardcoded default so the session never loses its voice entirely.
func (c *Conversation) SelectVoice(voiceID string) {
	if voiceID == "" {
		voiceID = FallbackVoiceID
	}
	c.SelectedVoiceID = voiceID
}

// Turns renders the aligned history in chronological order, greeting first.
func (c *Conversation) Turns() []Turn {
	turns := make([]Turn, 0, len(c.Generated))
	for i := range c.Generated {
		turns = append(turns, Turn{
			UserInput:       c.Past[i],
			GeneratedAnswer: c.Generated[i],
		})
	}
	return turns
}

// Len returns the number of recorded exchanges, greeting included.
func (c *Conversation) Len() int {
	return len(c.Generated)
}

// Validate checks the alignment invariant.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return errors.New("conversation id is required")
	}
	if len(c.Past) != len(c.Generated) {
		return errors.New("past and generated histories are misaligned")
	}
	return nil
}
