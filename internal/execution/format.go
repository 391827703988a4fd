package execution

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

const escape = '\x1b'

// humanizer rewrites server wording. It's lossy: a bare `nt` gains the apostrophe
// and an already contracted `n't` loses its `t` (`didn't` renders as `didn'`).
var humanizer = strings.NewReplacer(
	"repl", "REPL",
	"nt", "n't",
	"n't", "n'",
)

// Humanize formats a server message for display.
func Humanize(s string) string {
	s = humanizer.Replace(s)

	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// CleanOutput returns the displayable text of a program output chunk, chunks starting
// with a control sequence are terminal housekeeping and are dropped.
func CleanOutput(chunk string) string {
	if chunk == "" || chunk[0] == escape {
		return ""
	}
	if strings.IndexByte(chunk, escape) < 0 {
		return chunk
	}
	return ansi.Strip(chunk)
}
