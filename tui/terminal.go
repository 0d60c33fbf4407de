package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is used when the writer is not a terminal or
	// width detection fails.
	DefaultTerminalWidth = 80
	// MinTerminalWidth is the minimum width used for rendering.
	MinTerminalWidth = 60
	// MaxTerminalWidth is the maximum width used for rendering.
	MaxTerminalWidth = 200
)

// TerminalWidth returns the rendering width for the given writer,
// clamped to sane bounds. Non-terminal writers get the default.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return DefaultTerminalWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxTerminalWidth {
		return MaxTerminalWidth
	}
	return width
}
