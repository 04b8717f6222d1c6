package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	chatService "github.com/zhouzirui/talktonic/backend/internal/service/chat"
	"github.com/zhouzirui/talktonic/backend/pkg/utils"
)

// Handler WebSocket聊天处理器，每次会话变化都推送完整快照
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Theme string `json:"theme,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serialises writes; session listeners may fire from other requests.
type conn struct {
	mu        sync.Mutex
	ws        *websocket.Conn
	sessionID string
}

func (c *conn) send(msgType string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := outgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := c.ws.WriteJSON(payload); err != nil {
		log.Printf("[ws] write failed for session=%s: %v", c.sessionID, err)
	}
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer wsConn.Close()

	c := &conn{ws: wsConn, sessionID: sessionID}
	c.send("snapshot", session.Snapshot())

	unsubscribe := session.OnChange(func(chatService.Event) {
		c.send("snapshot", session.Snapshot())
	})
	defer unsubscribe()

	log.Printf("[ws] connected session=%s", sessionID)
	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error for session=%s: %v", sessionID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.send("error", "invalid message format")
			continue
		}

		if err := h.dispatch(r.Context(), session, msg); err != nil {
			c.send("error", err.Error())
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, session *chatService.Session, msg inboundMessage) error {
	switch msg.Type {
	case "message":
		_, err := session.Submit(ctx, msg.Text)
		return err
	case "clear":
		session.ClearChat()
		return nil
	case "theme":
		id, ok := theme.Parse(msg.Theme)
		if !ok {
			return chatService.ErrUnknownTheme
		}
		session.SetTheme(id)
		return nil
	default:
		return errors.New("unknown message type: " + msg.Type)
	}
}
