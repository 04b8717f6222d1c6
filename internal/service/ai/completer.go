package ai

import (
	"context"
	"errors"
)

// MissingKeyText is the reply shown when no API key is configured.
const MissingKeyText = "API key not found."

// ErrMissingAPIKey is reported when the credential lookup comes back empty.
var ErrMissingAPIKey = errors.New("api key not found")

// Completer turns a single user prompt into a model reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) Result
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) Result

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) Result {
	return f(ctx, prompt)
}

// Result is either a reply or the error that prevented one.
type Result struct {
	Reply string
	Err   error
}

// Reply wraps a successful completion.
func Reply(text string) Result {
	return Result{Reply: text}
}

// Failure wraps a failed completion.
func Failure(err error) Result {
	return Result{Err: err}
}

// Failed reports whether the completion did not produce a reply.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Text renders the result as conversational content. Failures become
// "Error: ..." so callers without an error channel can still show them.
func (r Result) Text() string {
	switch {
	case errors.Is(r.Err, ErrMissingAPIKey):
		return MissingKeyText
	case r.Err != nil:
		return "Error: " + r.Err.Error()
	default:
		return r.Reply
	}
}
