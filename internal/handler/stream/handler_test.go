package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/talktonic/backend/internal/service/chat"
)

func setupRouter() (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(ai.CompleterFunc(func(context.Context, string) ai.Result {
		return ai.Reply("hi there")
	}))
	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r, nil)
	return r, chatSvc
}

func TestStreamEmitsEventPerAppend(t *testing.T) {
	r, svc := setupRouter()
	session, err := svc.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/stream/"+session.ID()+"?message=hello", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := resp.Body.String()
	if got := strings.Count(body, "event: message\n"); got != 2 {
		t.Fatalf("expected 2 message events, got %d in %q", got, body)
	}
	startIdx := strings.Index(body, "event: start\n")
	endIdx := strings.Index(body, "event: end\n")
	if startIdx < 0 || endIdx < startIdx {
		t.Fatalf("expected start before end in %q", body)
	}
	if !strings.Contains(body, "hi there") {
		t.Fatalf("expected bot reply in stream, got %q", body)
	}
	if len(session.Transcript()) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(session.Transcript()))
	}
}

func TestStreamBlankMessageIsNoop(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+session.ID()+"?message=%20%20", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if strings.Contains(body, "event: message\n") {
		t.Fatalf("expected no message events, got %q", body)
	}
	if !strings.Contains(body, "event: start\n") || !strings.Contains(body, "event: end\n") {
		t.Fatalf("expected start and end events, got %q", body)
	}
	if len(session.Transcript()) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(session.Transcript()))
	}
}

func TestStreamUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing?message=hi", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
