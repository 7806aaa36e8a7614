package output

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stderr is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// IsInteractive reports whether stdin and stderr are both terminals, so a
// prompt can be shown and answered.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && IsTTY()
}
