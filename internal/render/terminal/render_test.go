package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/talktonic/backend/internal/model/chat"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
)

func TestMessageIncludesBodyAndStamp(t *testing.T) {
	r := New(theme.Dark, 60)

	out := r.Message(chat.Message{Sender: chat.SenderBot, Body: "hi there", Stamp: "10:30"})
	if !strings.Contains(out, "hi there") || !strings.Contains(out, "10:30") {
		t.Fatalf("unexpected bubble %q", out)
	}
}

func TestUserMessageIsRightAligned(t *testing.T) {
	r := New(theme.Light, 60)

	out := r.Message(chat.Message{Sender: chat.SenderUser, Body: "hello"})
	if !strings.HasPrefix(out, " ") {
		t.Fatalf("expected padding before user bubble, got %q", out)
	}
	if strings.TrimSpace(out) == "" || !strings.Contains(out, "hello") {
		t.Fatalf("unexpected user bubble %q", out)
	}
}

func TestTranscriptOneBlockPerMessage(t *testing.T) {
	r := New(theme.Midnight, 40)
	msgs := []chat.Message{
		{Sender: chat.SenderUser, Body: "a"},
		{Sender: chat.SenderBot, Body: "b"},
	}

	if got := strings.Count(r.Transcript(msgs), "\n"); got != 1 {
		t.Fatalf("expected 2 lines, got %d newlines", got)
	}
	if r.Transcript(nil) != "" {
		t.Fatal("expected empty transcript for no messages")
	}
}

func TestHeaderShowsTheme(t *testing.T) {
	r := New(theme.Midnight, 80)
	now := time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

	out := r.Header(theme.Midnight, now)
	if !strings.Contains(out, "Theme: Midnight") || !strings.Contains(out, "Mar 05, 2024 - 02:07 PM") {
		t.Fatalf("unexpected header %q", out)
	}
}

func TestColorMapsNamedColours(t *testing.T) {
	if string(color("white")) != "#ffffff" || string(color("#333")) != "#333" {
		t.Fatal("unexpected colour mapping")
	}
}
