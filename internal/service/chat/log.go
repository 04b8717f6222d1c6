package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/talktonic/backend/internal/analysis/transcript"
	"github.com/zhouzirui/talktonic/backend/internal/model/chat"
)

// Log is the ordered message history of one session. It is not safe for
// concurrent use; Session guards it.
type Log struct {
	messages []chat.Message
	now      func() time.Time
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{
		messages: make([]chat.Message, 0, 16),
		now:      time.Now,
	}
}

// Append records body from sender with the current time.
func (l *Log) Append(sender chat.Sender, body string) chat.Message {
	return l.append(chat.Message{Sender: sender, Body: body})
}

func (l *Log) append(message chat.Message) chat.Message {
	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = l.now()
	}
	l.messages = append(l.messages, message)
	return message
}

// Clear drops every message.
func (l *Log) Clear() {
	l.messages = l.messages[:0:0]
}

// All returns a copy of the messages in insertion order.
func (l *Log) All() []chat.Message {
	copied := make([]chat.Message, len(l.messages))
	copy(copied, l.messages)
	return copied
}

// Len returns the number of messages.
func (l *Log) Len() int {
	return len(l.messages)
}

// Export renders one "SENDER: text" line per message with markup stripped.
func (l *Log) Export() string {
	lines := make([]string, 0, len(l.messages))
	for _, m := range l.messages {
		lines = append(lines, strings.ToUpper(string(m.Sender))+": "+transcript.Strip(m.Markup()))
	}
	return strings.Join(lines, "\n")
}
