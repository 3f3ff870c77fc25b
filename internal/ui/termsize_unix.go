//go:build unix

package ui

import (
	"os"

	"golang.org/x/sys/unix"
)

// TermWidth returns the column count of the terminal on f, or fallback when
// f is not a terminal.
func TermWidth(f *os.File, fallback int) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return fallback
	}
	return int(ws.Col)
}
