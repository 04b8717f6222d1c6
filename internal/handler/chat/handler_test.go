package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	modelchat "github.com/zhouzirui/talktonic/backend/internal/model/chat"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/talktonic/backend/internal/service/chat"
)

func setupRouter() (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(ai.CompleterFunc(func(_ context.Context, prompt string) ai.Result {
		return ai.Reply("echo: " + prompt)
	}))
	handler := New(chatSvc, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeSnapshot(t *testing.T, resp *httptest.ResponseRecorder) modelchat.Snapshot {
	t.Helper()
	var snap modelchat.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestCreateSessionDefaultTheme(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/session", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	snap := decodeSnapshot(t, resp)
	if snap.ID == "" || snap.Theme != theme.Dark || snap.State != modelchat.StateIdle {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestCreateSessionInvalidTheme(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/session", map[string]string{"theme": "sepia"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitMessageRunsOneCycle(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")

	resp := doJSON(t, r, http.MethodPost, "/session/"+session.ID()+"/messages", map[string]string{"message": "hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	snap := decodeSnapshot(t, resp)
	if len(snap.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(snap.Messages))
	}
	if snap.Messages[1].Body != "echo: hello" {
		t.Fatalf("unexpected bot body %q", snap.Messages[1].Body)
	}
	if snap.Pending != "" {
		t.Fatalf("expected empty pending input, got %q", snap.Pending)
	}
}

func TestSubmitBlankMessageIsIgnored(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")

	resp := doJSON(t, r, http.MethodPost, "/session/"+session.ID()+"/messages", map[string]string{"message": "   "})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(decodeSnapshot(t, resp).Messages) != 0 {
		t.Fatal("expected no messages for blank input")
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/session/missing/messages", map[string]string{"message": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestClearChat(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")
	session.Submit(context.Background(), "hello")

	resp := doJSON(t, r, http.MethodDelete, "/session/"+session.ID()+"/messages", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(session.Transcript()) != 0 {
		t.Fatal("expected empty transcript after clear")
	}
}

func TestSetTheme(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")

	resp := doJSON(t, r, http.MethodPut, "/session/"+session.ID()+"/theme", map[string]string{"theme": "midnight"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if session.Theme() != theme.Midnight {
		t.Fatalf("expected midnight, got %s", session.Theme())
	}

	resp = doJSON(t, r, http.MethodPut, "/session/"+session.ID()+"/theme", map[string]string{"theme": "neon"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTranscriptDownload(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")

	resp := doJSON(t, r, http.MethodGet, "/session/"+session.ID()+"/transcript", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for empty transcript, got %d", resp.Code)
	}

	session.Submit(context.Background(), "hello")

	resp = doJSON(t, r, http.MethodGet, "/session/"+session.ID()+"/transcript", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "talktonic_chat.txt") {
		t.Fatalf("unexpected disposition %q", resp.Header().Get("Content-Disposition"))
	}

	lines := strings.Split(resp.Body.String(), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "USER: hello") || !strings.HasPrefix(lines[1], "BOT: echo: hello") {
		t.Fatalf("unexpected transcript %q", resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "<small>") {
		t.Fatal("expected markup to be stripped")
	}
}

func TestDeleteSession(t *testing.T) {
	r, svc := setupRouter()
	session, _ := svc.CreateSession(context.Background(), "")

	resp := doJSON(t, r, http.MethodDelete, "/session/"+session.ID(), nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	resp = doJSON(t, r, http.MethodGet, "/session/"+session.ID(), nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
