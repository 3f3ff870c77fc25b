package ui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idilsaglam/todosync/internal/ui"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ui.ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ui.ProgressBar(0, 0, 1))
	assert.Equal(t, "█████ 100%", ui.ProgressBar(3, 3, 5))
}

func TestPanelContainsEveryLine(t *testing.T) {
	out := ui.Panel([]string{"first", "second line"})
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second line")
	assert.Len(t, strings.Split(out, "\n"), 4)
}

func TestSetThemeMono(t *testing.T) {
	t.Cleanup(func() { ui.SetTheme("classic") })

	ui.SetTheme("MONO")
	th := ui.Current()
	assert.Equal(t, "[x]", th.BoxChecked)
	assert.Equal(t, "[ ]", th.BoxUnchecked)

	ui.SetTheme("something-else")
	assert.Equal(t, "☑", ui.Current().BoxChecked)
}

func TestOKAndFail(t *testing.T) {
	var out, errOut bytes.Buffer
	ui.OK(&out, "saved")
	ui.Fail(&errOut, "nope")

	assert.Contains(t, out.String(), "saved")
	assert.Contains(t, errOut.String(), "✖ nope")
}
