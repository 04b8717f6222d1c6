package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/zhouzirui/talktonic/backend/internal/handler/chat"
	"github.com/zhouzirui/talktonic/backend/internal/handler/page"
	"github.com/zhouzirui/talktonic/backend/internal/handler/stream"
	themeHandler "github.com/zhouzirui/talktonic/backend/internal/handler/theme"
	"github.com/zhouzirui/talktonic/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/talktonic/backend/internal/middleware"
	themeModel "github.com/zhouzirui/talktonic/backend/internal/model/theme"
	chatService "github.com/zhouzirui/talktonic/backend/internal/service/chat"
	"github.com/zhouzirui/talktonic/backend/pkg/utils"
)

// Options tunes the cross-cutting middleware.
type Options struct {
	CORSOrigin         string
	RateLimitPerMinute int
	// Limiter 为空时按 RateLimitPerMinute 新建
	Limiter *middlewarePkg.RateLimiter
}

// NewRouter wires HTTP routes to core services.
func NewRouter(themes themeModel.Store, chatSvc *chatService.Service, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(opts.CORSOrigin))

	// 只限制会触发模型调用的路由
	limiter := opts.Limiter
	if limiter == nil {
		limiter = middlewarePkg.NewRateLimiter(opts.RateLimitPerMinute)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	page.New(chatSvc, limiter.Middleware).RegisterRoutes(r)
	ws.New(chatSvc).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		themeHandler.New(themes).RegisterRoutes(api)
		chatHandler.New(chatSvc, limiter.Middleware).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api, limiter.Middleware)
	})

	return r
}
