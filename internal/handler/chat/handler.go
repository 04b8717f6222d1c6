package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talktonic/backend/internal/analysis/transcript"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	chatService "github.com/zhouzirui/talktonic/backend/internal/service/chat"
	"github.com/zhouzirui/talktonic/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	limit   func(http.Handler) http.Handler
}

// New 创建聊天处理器。limit 包裹会触发模型调用的路由，可为 nil。
func New(chatSvc *chatService.Service, limit func(http.Handler) http.Handler) *Handler {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		chatSvc: chatSvc,
		limit:   limit,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleDeleteSession)
		r.With(h.limit).Post("/messages", h.handleSubmit)
		r.Delete("/messages", h.handleClear)
		r.Put("/theme", h.handleSetTheme)
		r.Get("/transcript", h.handleTranscript)
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Theme string `json:"theme"`
	}

	// 请求体可以为空
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var themeID theme.ID
	if payload.Theme != "" {
		parsed, ok := theme.Parse(payload.Theme)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "unknown theme")
			return
		}
		themeID = parsed
	}

	session, err := h.chatSvc.CreateSession(r.Context(), themeID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交用户消息并等待模型回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := session.Submit(r.Context(), payload.Message); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

// handleClear 清空聊天记录
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.ClearChat()
	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

func (h *Handler) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, valid := theme.Parse(payload.Theme)
	if !valid {
		utils.RespondError(w, http.StatusBadRequest, "unknown theme")
		return
	}

	session.SetTheme(id)
	utils.RespondJSON(w, http.StatusOK, session.Snapshot())
}

// handleTranscript 下载纯文本聊天记录
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	export := session.Export()
	if export == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.RespondAttachment(w, transcript.Filename, export)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.Session, bool) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return session, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrBusy):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, chatService.ErrUnknownTheme):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
