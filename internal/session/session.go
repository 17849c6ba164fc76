package session

import (
	"time"

	"github.com/google/uuid"
)

// Chat roles accepted by the chat-completion APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in the context sent to a provider. Each API
// call gets an independently built slice; calls share no memory.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn records one complete question -> answer -> review cycle. It is
// constructed only after both provider calls have succeeded.
type Turn struct {
	Seq       int       `json:"seq"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
}

// Session accumulates turns for one run of the tool. Turns are
// appended in arrival order and never mutated afterwards.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Turns     []Turn    `json:"turns"`
}

// New creates an empty session.
func New(now time.Time) *Session {
	return &Session{ID: uuid.NewString(), StartedAt: now}
}

// Record appends a fully completed turn and returns it. Sequence
// numbers are 1-based and increase by exactly one per recorded turn.
func (s *Session) Record(question, answer, review string, now time.Time) Turn {
	t := Turn{
		Seq:       len(s.Turns) + 1,
		Question:  question,
		Answer:    answer,
		Review:    review,
		CreatedAt: now,
	}
	s.Turns = append(s.Turns, t)
	return t
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	return len(s.Turns)
}
