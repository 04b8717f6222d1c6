package chat

import (
	"time"

	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
)

// State is the position of a session in its submit cycle.
type State string

const (
	StateIdle      State = "idle"
	StateSubmitted State = "submitted"
	StateResolved  State = "resolved"
)

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	ID        string        `json:"id"`
	Theme     theme.ID      `json:"theme"`
	Palette   theme.Palette `json:"palette"`
	State     State         `json:"state"`
	Pending   string        `json:"pending,omitempty"`
	Messages  []Message     `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
}
