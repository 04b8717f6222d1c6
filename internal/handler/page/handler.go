package page

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talktonic/backend/internal/model/chat"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	chatService "github.com/zhouzirui/talktonic/backend/internal/service/chat"
	"github.com/zhouzirui/talktonic/backend/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var chatTemplate = template.Must(template.ParseFS(templateFS, "templates/chat.html"))

const headerTimeLayout = "Jan 02, 2006 - 03:04 PM"

// Handler 渲染聊天页面
type Handler struct {
	chatSvc *chatService.Service
	limit   func(http.Handler) http.Handler
	now     func() time.Time
}

// New 创建页面处理器。limit 包裹表单提交路由，可为 nil。
func New(chatSvc *chatService.Service, limit func(http.Handler) http.Handler) *Handler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{chatSvc: chatSvc, limit: limit, now: time.Now}
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Route("/chat/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleChat)
		r.With(h.limit).Post("/", h.handleSubmit)
		r.Post("/clear", h.handleClear)
		r.Post("/theme", h.handleTheme)
	})
}

type pageData struct {
	ID       string
	Theme    theme.ID
	Themes   []theme.ID
	Palette  theme.Palette
	Messages []chat.Message
	Now      string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context(), "")
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.Redirect(w, r, "/chat/"+session.ID(), http.StatusSeeOther)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap := session.Snapshot()
	data := pageData{
		ID:       snap.ID,
		Theme:    snap.Theme,
		Themes:   theme.All(),
		Palette:  snap.Palette,
		Messages: snap.Messages,
		Now:      h.now().Format(headerTimeLayout),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatTemplate.Execute(w, data); err != nil {
		log.Printf("[page] render failed for session=%s: %v", snap.ID, err)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if _, err := session.Submit(r.Context(), r.FormValue("message")); err != nil {
		if errors.Is(err, chatService.ErrBusy) {
			utils.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.redirectToChat(w, r, session.ID())
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.ClearChat()
	h.redirectToChat(w, r, session.ID())
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	id, valid := theme.Parse(r.FormValue("theme"))
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "unknown theme")
		return
	}
	session.SetTheme(id)
	h.redirectToChat(w, r, session.ID())
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.Session, bool) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (h *Handler) redirectToChat(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.Redirect(w, r, "/chat/"+sessionID, http.StatusSeeOther)
}
