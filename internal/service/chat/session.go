package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/talktonic/backend/internal/model/chat"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
)

// ErrBusy is returned when a submission arrives while another one is in flight.
var ErrBusy = errors.New("a message is already being processed")

const stampLayout = "15:04"

// EventKind describes what changed in a session.
type EventKind string

const (
	EventAppended EventKind = "appended"
	EventCleared  EventKind = "cleared"
	EventTheme    EventKind = "theme"
)

// Event is delivered to listeners after the session changed. Message is set
// for EventAppended only.
type Event struct {
	Kind    EventKind
	Message *chat.Message
}

// Session drives one user's conversation: it stages input, asks the completer
// for a reply and records both sides in its log.
type Session struct {
	id        string
	createdAt time.Time
	completer ai.Completer
	now       func() time.Time

	mu         sync.RWMutex
	log        *Log
	pending    string
	state      chat.State
	theme      theme.ID
	generation uint64
	activeAt   time.Time

	listenMu  sync.Mutex
	listeners map[int]*listener
	nextID    int
}

// listener 串行执行回调；removed 置位后不再调用
type listener struct {
	mu      sync.Mutex
	fn      func(Event)
	removed bool
}

func (l *listener) call(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.removed {
		l.fn(event)
	}
}

// NewSession creates an idle session with an empty log and the default theme.
func NewSession(id string, completer ai.Completer) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		createdAt: now.UTC(),
		completer: completer,
		now:       time.Now,
		log:       NewLog(),
		state:     chat.StateIdle,
		theme:     theme.Default,
		activeAt:  now,
		listeners: make(map[int]*listener),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Submit runs one full exchange for text. Blank input is ignored and reported
// as false. The bot reply is recorded even when the completer failed.
func (s *Session) Submit(ctx context.Context, text string) (bool, error) {
	staged := strings.TrimSpace(text)
	if staged == "" {
		return false, nil
	}

	s.mu.Lock()
	if s.state != chat.StateIdle {
		s.mu.Unlock()
		return false, ErrBusy
	}
	s.pending = staged
	s.state = chat.StateSubmitted
	generation := s.generation
	s.activeAt = s.now()
	stamp := s.activeAt.Format(stampLayout)
	userMsg := s.log.append(chat.Message{Sender: chat.SenderUser, Body: staged, Stamp: stamp})
	s.mu.Unlock()

	s.notify(Event{Kind: EventAppended, Message: &userMsg})

	result := s.complete(ctx, staged, generation)

	s.mu.Lock()
	if s.generation != generation {
		// cleared while the request was in flight
		s.mu.Unlock()
		log.Printf("[chat] dropping reply for cleared session=%s", s.id)
		return true, nil
	}
	s.state = chat.StateResolved
	botMsg := s.log.append(chat.Message{
		Sender: chat.SenderBot,
		Body:   result.Text(),
		Stamp:  stamp,
		Failed: result.Failed(),
	})
	s.mu.Unlock()

	if result.Failed() {
		log.Printf("[chat] completion failed for session=%s: %v", s.id, result.Err)
	}
	s.notify(Event{Kind: EventAppended, Message: &botMsg})

	s.settle(generation)
	return true, nil
}

// complete calls the completer; a panic puts the session back to idle before
// it propagates.
func (s *Session) complete(ctx context.Context, prompt string, generation uint64) ai.Result {
	defer func() {
		if r := recover(); r != nil {
			s.settle(generation)
			panic(r)
		}
	}()
	return s.completer.Complete(ctx, prompt)
}

func (s *Session) settle(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		s.pending = ""
		s.state = chat.StateIdle
	}
}

// ClearChat empties the log and staged input from any state.
func (s *Session) ClearChat() {
	s.mu.Lock()
	s.log.Clear()
	s.pending = ""
	s.state = chat.StateIdle
	s.generation++
	s.activeAt = s.now()
	s.mu.Unlock()

	s.notify(Event{Kind: EventCleared})
}

// SetTheme changes the palette used to render this session. Unknown ids are
// stored as the default theme.
func (s *Session) SetTheme(id theme.ID) {
	if !id.Valid() {
		id = theme.Default
	}

	s.mu.Lock()
	s.theme = id
	s.activeAt = s.now()
	s.mu.Unlock()

	s.notify(Event{Kind: EventTheme})
}

// Theme returns the active theme.
func (s *Session) Theme() theme.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// State returns the current submit-cycle state.
func (s *Session) State() chat.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Pending returns the staged input, empty when idle.
func (s *Session) Pending() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Transcript returns a copy of the messages in chronological order.
func (s *Session) Transcript() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.All()
}

// Export returns the plain-text transcript.
func (s *Session) Export() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Export()
}

// Snapshot copies everything a view needs to render the session.
func (s *Session) Snapshot() chat.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chat.Snapshot{
		ID:        s.id,
		Theme:     s.theme,
		Palette:   theme.Resolve(s.theme),
		State:     s.state,
		Pending:   s.pending,
		Messages:  s.log.All(),
		CreatedAt: s.createdAt,
	}
}

// OnChange registers fn to run after every change. Listeners run on the
// goroutine that made the change, one call at a time per listener.
//
// The returned function removes the listener and waits for a call already in
// progress; fn is never invoked after it returns. It must not be called from
// inside fn itself.
func (s *Session) OnChange(fn func(Event)) func() {
	l := &listener{fn: fn}

	s.listenMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenMu.Unlock()

	return func() {
		s.listenMu.Lock()
		delete(s.listeners, id)
		s.listenMu.Unlock()

		l.mu.Lock()
		l.removed = true
		l.mu.Unlock()
	}
}

// touch marks the session as used now.
func (s *Session) touch() {
	s.mu.Lock()
	s.activeAt = s.now()
	s.mu.Unlock()
}

// idleSince reports when the session was last used. ok is false while a
// submission is in flight or a listener is attached.
func (s *Session) idleSince() (since time.Time, ok bool) {
	s.mu.RLock()
	since, busy := s.activeAt, s.state != chat.StateIdle
	s.mu.RUnlock()
	if busy {
		return since, false
	}

	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	return since, len(s.listeners) == 0
}

func (s *Session) notify(event Event) {
	s.listenMu.Lock()
	ls := make([]*listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenMu.Unlock()

	for _, l := range ls {
		l.call(event)
	}
}
