// Package presenter owns the strings shown in the query panel: the item name, the question menu labels, the
// question the user asked and the answer.
package presenter

import (
	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/menu"
	"github.com/myrjola/nai/internal/query"
)

// Placeholder is shown as the answer while a question is in flight.
const Placeholder = "Thinking..."

// Display receives every change the presenter makes. Implementations render it however they like.
type Display interface {
	SetItemName(name string)
	SetQuestionLabel(i int, text string, style menu.Style)
	SetYourQuestionText(text string)
	SetAnswerText(text string)
	SetSlotHighlighted(i int, highlighted bool)
}

type State int

const (
	StateEmpty State = iota
	StateItemShown
	StateAwaiting
	StateAnswered
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateItemShown:
		return "item_shown"
	case StateAwaiting:
		return "awaiting"
	case StateAnswered:
		return "answered"
	default:
		return "unknown"
	}
}

type Option func(*Presenter)

// WithStaleGuard discards outcomes whose sequence number is lower than the last applied one, so that a slow
// earlier answer cannot overwrite a newer one. Without it the last delivered outcome wins.
func WithStaleGuard() Option {
	return func(p *Presenter) {
		p.discardStale = true
	}
}

// Presenter is a state holder that mirrors every change to a Display.
//
// Presenter is not safe for concurrent use.
type Presenter struct {
	display Display
	menu    *menu.Menu

	state        State
	itemName     string
	yourQuestion string
	answer       string

	discardStale bool
	lastApplied  uint64
}

func New(display Display, m *menu.Menu, opts ...Option) *Presenter {
	p := &Presenter{display: display, menu: m}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnItemActivated shows item, clears the previous question and answer and refreshes the menu.
func (p *Presenter) OnItemActivated(item catalog.Item) {
	p.menu.Activate(item)
	p.setItemName(item.Name)
	p.setYourQuestion("")
	p.setAnswer("")
	p.RefreshMenu()
	p.state = StateItemShown
}

// OnNoItem clears everything. Calling it repeatedly yields the same state.
func (p *Presenter) OnNoItem() {
	p.menu.Clear()
	p.setItemName("")
	p.setYourQuestion("")
	p.setAnswer("")
	p.RefreshMenu()
	p.state = StateEmpty
}

// OnQuestionCommitted echoes the question and shows the placeholder answer.
func (p *Presenter) OnQuestionCommitted(text string) {
	p.setYourQuestion(text)
	p.setAnswer(Placeholder)
	p.state = StateAwaiting
}

// OnOutcome shows the outcome's display text. It reports whether the outcome was applied; only the stale guard
// rejects outcomes. An outcome arriving after the panel was cleared still sets the answer text but leaves the
// panel empty.
func (p *Presenter) OnOutcome(outcome query.Outcome) bool {
	if p.discardStale && outcome.Seq != 0 {
		if outcome.Seq < p.lastApplied {
			return false
		}
		p.lastApplied = outcome.Seq
	}
	p.setAnswer(outcome.DisplayText())
	if p.state != StateEmpty {
		p.state = StateAnswered
	}
	return true
}

// RefreshMenu pushes the current menu labels and hover styles to the display.
func (p *Presenter) RefreshMenu() {
	for i, entry := range p.menu.Entries() {
		p.display.SetQuestionLabel(i, entry.Label, entry.Style)
	}
}

// OnActiveSlotChanged highlights the active slot among n slots.
func (p *Presenter) OnActiveSlotChanged(active, n int) {
	for i := range n {
		p.display.SetSlotHighlighted(i, i == active)
	}
}

func (p *Presenter) State() State {
	return p.state
}

func (p *Presenter) ItemName() string {
	return p.itemName
}

func (p *Presenter) YourQuestion() string {
	return p.yourQuestion
}

func (p *Presenter) Answer() string {
	return p.answer
}

func (p *Presenter) setItemName(s string) {
	p.itemName = s
	p.display.SetItemName(s)
}

func (p *Presenter) setYourQuestion(s string) {
	p.yourQuestion = s
	p.display.SetYourQuestionText(s)
}

func (p *Presenter) setAnswer(s string) {
	p.answer = s
	p.display.SetAnswerText(s)
}
