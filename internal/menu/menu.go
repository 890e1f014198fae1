// Package menu derives the question menu for the active item and tracks hover highlighting.
package menu

import (
	"fmt"

	"github.com/myrjola/nai/internal/catalog"
)

// Size is the number of menu entries. Entries beyond the item's question count render empty.
const Size = catalog.MaxQuestions

type Style int

const (
	StyleDefault Style = iota
	StyleHighlighted
)

func (s Style) String() string {
	if s == StyleHighlighted {
		return "highlighted"
	}
	return "default"
}

// Entry is a rendered menu line.
type Entry struct {
	Label string
	Style Style
}

// Menu is the question menu of the active item.
//
// Menu is not safe for concurrent use.
type Menu struct {
	questions []string
	active    bool
	hovered   [Size]bool
}

func New() *Menu {
	return &Menu{}
}

// Label formats the i:th question as shown to the user, e.g. "1. What opens?".
func Label(i int, question string) string {
	return fmt.Sprintf("%d. %s", i+1, question)
}

// Activate shows the questions of item and resets hover state.
func (m *Menu) Activate(item catalog.Item) {
	m.questions = item.Questions[:min(Size, len(item.Questions))]
	m.active = true
	m.hovered = [Size]bool{}
}

// Clear hides all entries and resets hover state.
func (m *Menu) Clear() {
	m.questions = nil
	m.active = false
	m.hovered = [Size]bool{}
}

// Entries returns all Size entries. Entries without a question have an empty label.
func (m *Menu) Entries() [Size]Entry {
	var entries [Size]Entry
	for i := range Size {
		style := StyleDefault
		if m.hovered[i] {
			style = StyleHighlighted
		}
		entries[i].Style = style
		if i < len(m.questions) {
			entries[i].Label = Label(i, m.questions[i])
		}
	}
	return entries
}

// HoverEnter highlights entry i. It returns false if i is not a menu position.
func (m *Menu) HoverEnter(i int) bool {
	return m.setHover(i, true)
}

// HoverExit restores the default style of entry i. It returns false if i is not a menu position.
func (m *Menu) HoverExit(i int) bool {
	return m.setHover(i, false)
}

func (m *Menu) setHover(i int, hovered bool) bool {
	if i < 0 || i >= Size {
		return false
	}
	m.hovered[i] = hovered
	return true
}

// Commit returns the question at entry i. Committing with no active item or beyond the item's questions is a
// no-op that returns ok == false.
func (m *Menu) Commit(i int) (question string, ok bool) {
	if !m.active || i < 0 || i >= len(m.questions) {
		return "", false
	}
	return m.questions[i], true
}

// Active reports whether an item is shown.
func (m *Menu) Active() bool {
	return m.active
}
