package view

import (
	"fmt"

	"github.com/idilsaglam/todosync/internal/ui"
)

// MarkAllLabel is the caption of the bulk-complete control.
const MarkAllLabel = "Mark all as complete"

// Toolbar shows how many items are left and offers mark-all.
// A zero ActiveItems is the absent count.
type Toolbar struct {
	ActiveItems        int
	MarkAllAsCompleted func()
}

func (t Toolbar) itemsLeft() int {
	if t.ActiveItems < 0 {
		return 0
	}
	return t.ActiveItems
}

// ItemsLeft is "1 item left" or "N items left".
func (t Toolbar) ItemsLeft() string {
	n := t.itemsLeft()
	noun := "items"
	if n == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%d %s left", n, noun)
}

// MarkAll activates the bulk-complete control.
func (t Toolbar) MarkAll() {
	if t.MarkAllAsCompleted != nil {
		t.MarkAllAsCompleted()
	}
}

// View renders the footer; key is the binding that triggers MarkAll.
func (t Toolbar) View(key string) string {
	th := ui.Current()
	control := MarkAllLabel
	if key != "" {
		control = fmt.Sprintf("[%s] %s", key, MarkAllLabel)
	}
	return th.Pending.Render(t.ItemsLeft()) + "   " + th.Accent.Render(control)
}
