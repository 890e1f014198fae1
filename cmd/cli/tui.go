package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/myrjola/nai/internal/inventory"
	"github.com/myrjola/nai/internal/menu"
	"github.com/myrjola/nai/internal/presenter"
	"github.com/myrjola/nai/internal/session"
)

// outcomeAppliedMsg asks for a redraw after an answer reached the display from the query client's goroutine.
type outcomeAppliedMsg struct{}

type styles struct {
	title     lipgloss.Style
	slot      lipgloss.Style
	activeRow lipgloss.Style
	empty     lipgloss.Style
	itemName  lipgloss.Style
	question  lipgloss.Style
	hovered   lipgloss.Style
	label     lipgloss.Style
	answer    lipgloss.Style
	help      lipgloss.Style
	panel     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		slot:      lipgloss.NewStyle().PaddingLeft(2), //nolint:mnd // indent
		activeRow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		empty:     lipgloss.NewStyle().Faint(true),
		itemName:  lipgloss.NewStyle().Bold(true).Underline(true),
		question:  lipgloss.NewStyle(),
		hovered:   lipgloss.NewStyle().Reverse(true),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		answer:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		help:      lipgloss.NewStyle().Faint(true),
		panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(60), //nolint:mnd // columns
	}
}

// playModel renders the session's display and turns key presses into session events.
type playModel struct {
	controller *session.Controller
	display    *presenter.Recorder
	slots      *inventory.Slots
	// hover is the hovered question menu entry or -1.
	hover  int
	input  textinput.Model
	spin   spinner.Model
	styles styles
}

func newPlayModel(slots *inventory.Slots, display *presenter.Recorder) *playModel {
	in := textinput.New()
	in.Placeholder = "Ask your own question"
	in.Prompt = "? "
	in.CharLimit = 200 //nolint:mnd // one sentence
	in.Width = 56      //nolint:mnd // fits the panel

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return &playModel{
		display: display,
		slots:   slots,
		hover:   -1,
		input:   in,
		spin:    s,
		styles:  defaultStyles(),
	}
}

func (m *playModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-8, 10) //nolint:mnd // border and prompt
		return m, nil
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case outcomeAppliedMsg:
		// The display already holds the answer. Returning redraws it.
		return m, nil
	}
	return m, nil
}

func (m *playModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up":
		m.send(session.Scroll{Direction: session.DirectionUp})
		m.hover = -1
	case "down":
		m.send(session.Scroll{Direction: session.DirectionDown})
		m.hover = -1
	case " ", "space":
		m.send(session.PrimaryClick{})
		m.hover = -1
	case "left":
		m.moveHover(-1)
	case "right":
		m.moveHover(1)
	case "enter":
		if m.hover >= 0 {
			m.send(session.RightClick{Index: m.hover})
		}
	case "1", "2", "3":
		m.send(session.RightClick{Index: int(key[0] - '1')})
	case "tab":
		if m.controller.State() != presenter.StateEmpty {
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m *playModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		m.send(session.SubmitText{Text: m.input.Value()})
		m.input.Reset()
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveHover moves the hover cursor over the non-empty menu entries without wrapping.
func (m *playModel) moveHover(delta int) {
	n := 0
	for _, e := range m.display.Snapshot().Labels {
		if e.Label != "" {
			n++
		}
	}
	if n == 0 {
		return
	}
	next := m.hover + delta
	if m.hover < 0 {
		next = 0
		if delta < 0 {
			next = n - 1
		}
	}
	if next < 0 || next >= n || next == m.hover {
		return
	}
	if m.hover >= 0 {
		m.send(session.Hover{Index: m.hover, Enter: false})
	}
	m.hover = next
	m.send(session.Hover{Index: next, Enter: true})
}

func (m *playModel) send(ev session.Event) {
	m.controller.HandleEvent(ev)
}

func (m *playModel) View() string {
	snap := m.display.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Inventory"))
	b.WriteString("\n")
	for i := range m.slots.Len() {
		name := m.styles.empty.Render("(empty)")
		if item, ok := m.slots.At(i); ok {
			name = item.Name
		}
		row := fmt.Sprintf("[%d] %s", i+1, name)
		if i < len(snap.Highlighted) && snap.Highlighted[i] {
			row = m.styles.activeRow.Render("> " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(m.styles.slot.Render(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.panel.Render(m.panelView(snap)))
	b.WriteString("\n")
	if m.input.Focused() {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.styles.help.Render(m.helpView()))
	b.WriteString("\n")
	return b.String()
}

func (m *playModel) panelView(snap presenter.Snapshot) string {
	if snap.ItemName == "" {
		return m.styles.empty.Render("Press space to look at the highlighted item.")
	}
	var b strings.Builder
	b.WriteString(m.styles.itemName.Render(snap.ItemName))
	b.WriteString("\n")
	for _, e := range snap.Labels {
		if e.Label == "" {
			continue
		}
		style := m.styles.question
		if e.Style == menu.StyleHighlighted {
			style = m.styles.hovered
		}
		b.WriteString(style.Render(e.Label))
		b.WriteString("\n")
	}
	if snap.YourQuestion != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.label.Render("Your question: "))
		b.WriteString(snap.YourQuestion)
		b.WriteString("\n")
	}
	if snap.Answer != "" {
		b.WriteString(m.styles.label.Render("Answer: "))
		if m.controller.State() == presenter.StateAwaiting {
			b.WriteString(m.spin.View())
		}
		b.WriteString(m.styles.answer.Render(snap.Answer))
	}
	return b.String()
}

func (m *playModel) helpView() string {
	if m.input.Focused() {
		return "enter ask • esc back • ctrl+c quit"
	}
	return "↑/↓ select • space look • ←/→ hover • enter ask hovered • 1-3 ask • tab own question • q quit"
}
