package permission

import (
	"io"
	"os"

	"golang.org/x/term"
)

// NewTerminalPrompter prompts on out and reads from in. Prompts are only
// shown when in is an interactive terminal; otherwise they are denied.
func NewTerminalPrompter(in *os.File, out io.Writer) *Prompter {
	return NewPrompter(in, out, term.IsTerminal(int(in.Fd())))
}
