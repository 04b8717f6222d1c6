package theme

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/pkg/utils"
)

// Handler 主题列表的HTTP处理器
type Handler struct {
	themes theme.Store
}

// New 创建主题处理器
func New(themes theme.Store) *Handler {
	return &Handler{themes: themes}
}

// RegisterRoutes 注册主题相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/themes", h.handleListThemes)
	r.Get("/themes/{themeID}", h.handleGetTheme)
}

func (h *Handler) handleListThemes(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.themes.List())
}

func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.themes.FindByID(chi.URLParam(r, "themeID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "theme not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, entry)
}
