package chat

import (
	"fmt"
	"time"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one immutable turn of a conversation.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Body      string    `json:"body"`
	Stamp     string    `json:"stamp,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Markup returns the body with its timestamp annotation, as shown in a chat bubble.
func (m Message) Markup() string {
	if m.Stamp == "" {
		return m.Body
	}
	return fmt.Sprintf("%s<small>%s</small>", m.Body, m.Stamp)
}
