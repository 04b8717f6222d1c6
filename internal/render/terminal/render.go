package terminal

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/talktonic/backend/internal/model/chat"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
)

const headerTimeLayout = "Jan 02, 2006 - 03:04 PM"

// named colours used by the palettes that lipgloss cannot parse
var namedColors = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
}

func color(c string) lipgloss.Color {
	if hex, ok := namedColors[strings.ToLower(c)]; ok {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(c)
}

// Renderer draws chat bubbles for one palette at a fixed width.
type Renderer struct {
	width  int
	user   lipgloss.Style
	bot    lipgloss.Style
	stamp  lipgloss.Style
	header lipgloss.Style
}

// New builds a renderer for id. Widths below 20 columns are raised to 20.
func New(id theme.ID, width int) *Renderer {
	if width < 20 {
		width = 20
	}
	p := theme.Resolve(id)
	bubble := lipgloss.NewStyle().Padding(0, 1).MaxWidth(width * 7 / 10)

	return &Renderer{
		width:  width,
		user:   bubble.Background(color(p.UserBg)).Foreground(color(p.UserColor)),
		bot:    bubble.Background(color(p.BotBg)).Foreground(color(p.BotColor)),
		stamp:  lipgloss.NewStyle().Faint(true),
		header: lipgloss.NewStyle().Bold(true).Foreground(color(p.ButtonBg)),
	}
}

// Message renders one bubble; user bubbles are right aligned.
func (r *Renderer) Message(m chat.Message) string {
	text := m.Body
	if m.Stamp != "" {
		text += " " + r.stamp.Render(m.Stamp)
	}

	if m.Sender == chat.SenderUser {
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, r.user.Render(text))
	}
	return r.bot.Render(text)
}

// Transcript renders every message, one bubble per line.
func (r *Renderer) Transcript(messages []chat.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, r.Message(m))
	}
	return strings.Join(lines, "\n")
}

// Header renders the title line with theme and clock.
func (r *Renderer) Header(id theme.ID, now time.Time) string {
	return r.header.Render("TalkTonic") + "  Theme: " + string(id) + "  Bot Status: Online  " + now.Format(headerTimeLayout)
}
