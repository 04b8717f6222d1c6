package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
	chatService "github.com/zhouzirui/talktonic/backend/internal/service/chat"
)

func newTestRouter() http.Handler {
	chatSvc := chatService.NewService(ai.CompleterFunc(func(context.Context, string) ai.Result {
		return ai.Reply("ok")
	}))
	return NewRouter(theme.NewMemoryStore(theme.Seed()), chatSvc, Options{RateLimitPerMinute: 1})
}

func TestHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAPIRoutesMounted(t *testing.T) {
	router := newTestRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/themes", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for /api/themes, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/session/missing", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", resp.Code)
	}
}
