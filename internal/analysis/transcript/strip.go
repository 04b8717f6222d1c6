package transcript

import "regexp"

// Filename is the suggested name for a downloaded transcript.
const Filename = "talktonic_chat.txt"

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// Strip removes every angle-bracket tag from text and keeps what lies between them.
func Strip(text string) string {
	return markupPattern.ReplaceAllString(text, "")
}
