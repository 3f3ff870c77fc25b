package cli

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

var errPromptAborted = errors.New("aborted")

// promptLine reads one line from the terminal with line editing.
// Ctrl-C and Ctrl-D both abort.
func promptLine(prompt string) (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	s, err := line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return "", errPromptAborted
	}
	return s, err
}
