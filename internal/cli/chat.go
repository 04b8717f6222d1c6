package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/zhouzirui/talktonic/backend/internal/analysis/transcript"
	"github.com/zhouzirui/talktonic/backend/internal/model/theme"
	"github.com/zhouzirui/talktonic/backend/internal/render/terminal"
	"github.com/zhouzirui/talktonic/backend/internal/service/chat"
)

// Prompter reads one line of input. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Chat runs an interactive terminal conversation on session until the user
// quits or input ends.
type Chat struct {
	session *chat.Session
	in      Prompter
	out     io.Writer
	width   int
	now     func() time.Time
}

// NewChat binds a session to a prompter and an output writer.
func NewChat(session *chat.Session, in Prompter, out io.Writer, width int) *Chat {
	return &Chat{session: session, in: in, out: out, width: width, now: time.Now}
}

// NewLiner returns a line editor configured for the chat loop.
func NewLiner() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// Run reads lines until /quit, EOF or Ctrl-C.
func (c *Chat) Run(ctx context.Context) error {
	unsubscribe := c.session.OnChange(c.render)
	defer unsubscribe()

	c.redraw()
	for {
		input, err := c.in.Prompt("you> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit, err := c.command(input)
			if err != nil {
				fmt.Fprintf(c.out, "! %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		if _, err := c.session.Submit(ctx, input); err != nil {
			fmt.Fprintf(c.out, "! %v\n", err)
		}
	}
}

func (c *Chat) command(input string) (bool, error) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/clear":
		c.session.ClearChat()
		return false, nil
	case "/theme":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /theme <%s>", joinThemes())
		}
		id, ok := theme.Parse(fields[1])
		if !ok {
			return false, fmt.Errorf("unknown theme %q, choose one of %s", fields[1], joinThemes())
		}
		c.session.SetTheme(id)
		return false, nil
	case "/export":
		path := transcript.Filename
		if len(fields) > 1 {
			path = fields[1]
		}
		export := c.session.Export()
		if export == "" {
			return false, errors.New("nothing to export yet")
		}
		if err := os.WriteFile(path, []byte(export+"\n"), 0o644); err != nil {
			return false, fmt.Errorf("write transcript: %w", err)
		}
		fmt.Fprintf(c.out, "transcript saved to %s\n", path)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s (try /clear, /theme, /export, /quit)", fields[0])
	}
}

func (c *Chat) render(e chat.Event) {
	switch e.Kind {
	case chat.EventAppended:
		r := terminal.New(c.session.Theme(), c.width)
		fmt.Fprintln(c.out, r.Message(*e.Message))
	default:
		c.redraw()
	}
}

func (c *Chat) redraw() {
	id := c.session.Theme()
	r := terminal.New(id, c.width)
	fmt.Fprintln(c.out, r.Header(id, c.now()))
	if body := r.Transcript(c.session.Transcript()); body != "" {
		fmt.Fprintln(c.out, body)
	}
}

func joinThemes() string {
	names := make([]string, 0, 3)
	for _, id := range theme.All() {
		names = append(names, string(id))
	}
	return strings.Join(names, "|")
}
