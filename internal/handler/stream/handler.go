package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talktonic/backend/internal/model/chat"
	chatService "github.com/zhouzirui/talktonic/backend/internal/service/chat"
	"github.com/zhouzirui/talktonic/backend/pkg/utils"
)

// Handler runs one exchange per request and reports every transcript change
// as a Server-Sent Event.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string         `json:"event"`
	SessionID string         `json:"sessionId,omitempty"`
	Message   *chat.Message  `json:"message,omitempty"`
	Snapshot  *chat.Snapshot `json:"snapshot,omitempty"`
	Finished  bool           `json:"finished,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	r.With(limit).Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
		log.Printf("[stream] error handling request: %v", err)
	}
}

// HandleStreamRequest submits userMessage to the session and streams its changes.
// Blank input is ignored, so the stream carries only start and end.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	session, err := h.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return err
	}

	utils.SetupSSEHeaders(w)

	var writeMu sync.Mutex
	send := func(resp StreamResponse) {
		writeMu.Lock()
		defer writeMu.Unlock()
		utils.SendSSEEvent(w, flusher, resp.Event, resp)
	}

	start := session.Snapshot()
	send(StreamResponse{Event: "start", SessionID: sessionID, Snapshot: &start})

	unsubscribe := session.OnChange(func(e chatService.Event) {
		switch e.Kind {
		case chatService.EventAppended:
			send(StreamResponse{Event: "message", SessionID: sessionID, Message: e.Message})
		case chatService.EventCleared:
			send(StreamResponse{Event: "cleared", SessionID: sessionID})
		}
	})
	defer unsubscribe()

	if _, err := session.Submit(ctx, userMessage); err != nil {
		send(StreamResponse{Event: "error", SessionID: sessionID, Error: err.Error()})
		return err
	}

	final := session.Snapshot()
	send(StreamResponse{Event: "end", SessionID: sessionID, Snapshot: &final, Finished: true})

	log.Printf("[stream] completed exchange for session=%s", sessionID)
	return nil
}
