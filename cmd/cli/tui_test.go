package main

import (
	"io"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/inventory"
	"github.com/myrjola/nai/internal/menu"
	"github.com/myrjola/nai/internal/presenter"
	"github.com/myrjola/nai/internal/query"
	"github.com/myrjola/nai/internal/session"
	"github.com/myrjola/nai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type sentQuestion struct {
	itemType catalog.ItemType
	question string
}

type fakeQuerier struct {
	mu      sync.Mutex
	seq     uint64
	sent    []sentQuestion
	handler query.Handler
}

func (q *fakeQuerier) Send(itemType catalog.ItemType, question string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	q.sent = append(q.sent, sentQuestion{itemType: itemType, question: question})
	return q.seq
}

func (q *fakeQuerier) OnOutcome(h query.Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = h
}

func (q *fakeQuerier) requests() []sentQuestion {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]sentQuestion(nil), q.sent...)
}

func newTestPlayModel(t *testing.T) (*playModel, *fakeQuerier, *int) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	slots, err := inventory.Fill(len(cat.Items()), cat.Items())
	require.NoError(t, err)

	display := presenter.NewRecorder(slots.Len())
	m := newPlayModel(slots, display)
	querier := &fakeQuerier{}
	applied := 0
	m.controller, err = session.Initialize(session.Config{
		Slots:            slots,
		Display:          display,
		Querier:          querier,
		Logger:           testhelpers.NewLogger(io.Discard),
		OnOutcomeApplied: func() { applied++ },
	})
	require.NoError(t, err)
	return m, querier, &applied
}

func press(m *playModel, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlayModel_AskHoveredQuestion(t *testing.T) {
	m, querier, applied := newTestPlayModel(t)
	require.Contains(t, m.View(), "Press space")

	press(m, key(tea.KeySpace))
	snap := m.display.Snapshot()
	require.Equal(t, "Diamond Pickaxe", snap.ItemName)
	require.Equal(t, presenter.StateItemShown, m.controller.State())
	require.Contains(t, m.View(), "1. Who crafted the Diamond Pickaxe?")

	press(m, key(tea.KeyRight), key(tea.KeyRight))
	snap = m.display.Snapshot()
	require.Equal(t, menu.StyleDefault, snap.Labels[0].Style)
	require.Equal(t, menu.StyleHighlighted, snap.Labels[1].Style)

	press(m, key(tea.KeyLeft), key(tea.KeyLeft))
	snap = m.display.Snapshot()
	require.Equal(t, menu.StyleHighlighted, snap.Labels[0].Style, "hover stops at the first entry")
	require.Equal(t, menu.StyleDefault, snap.Labels[1].Style)

	press(m, key(tea.KeyEnter))
	require.Equal(t, []sentQuestion{
		{itemType: catalog.ItemTypeDiamondPickaxe, question: "Who crafted the Diamond Pickaxe?"},
	}, querier.requests())
	snap = m.display.Snapshot()
	require.Equal(t, "Who crafted the Diamond Pickaxe?", snap.YourQuestion)
	require.Equal(t, presenter.Placeholder, snap.Answer)
	require.Equal(t, presenter.StateAwaiting, m.controller.State())

	querier.handler(query.Outcome{Seq: 1, Kind: query.Success, Text: "Steve."})
	_, cmd := m.Update(outcomeAppliedMsg{})
	require.Nil(t, cmd)
	require.Equal(t, 1, *applied)
	require.Equal(t, "Steve.", m.display.Snapshot().Answer)
	require.Contains(t, m.View(), "Steve.")
}

func TestPlayModel_Keys(t *testing.T) {
	tests := []struct {
		name          string
		keys          []tea.KeyMsg
		wantSlot      int
		wantItem      string
		wantQuestions []sentQuestion
	}{
		{
			name:     "scroll down shows the next item",
			keys:     []tea.KeyMsg{key(tea.KeyDown)},
			wantSlot: 1,
			wantItem: "Whisky Glass",
		},
		{
			name:     "scroll up wraps",
			keys:     []tea.KeyMsg{key(tea.KeyUp)},
			wantSlot: 5,
			wantItem: "Key",
		},
		{
			name:     "number commits a question directly",
			keys:     []tea.KeyMsg{key(tea.KeyUp), runes("2")},
			wantSlot: 5,
			wantItem: "Key",
			wantQuestions: []sentQuestion{
				{itemType: catalog.ItemTypeTool, question: "Who owns it?"},
			},
		},
		{
			name:     "number beyond the questions is ignored",
			keys:     []tea.KeyMsg{key(tea.KeyUp), runes("3")},
			wantSlot: 5,
			wantItem: "Key",
		},
		{
			name:     "enter without hover is ignored",
			keys:     []tea.KeyMsg{key(tea.KeySpace), key(tea.KeyEnter)},
			wantSlot: 0,
			wantItem: "Diamond Pickaxe",
		},
		{
			name:     "questions need an item",
			keys:     []tea.KeyMsg{runes("1")},
			wantSlot: 0,
		},
		{
			name:     "own question",
			keys:     append([]tea.KeyMsg{key(tea.KeySpace), key(tea.KeyTab)}, runes("Is it sharp?"), key(tea.KeyEnter)),
			wantSlot: 0,
			wantItem: "Diamond Pickaxe",
			wantQuestions: []sentQuestion{
				{itemType: catalog.ItemTypeDiamondPickaxe, question: "Is it sharp?"},
			},
		},
		{
			name:     "esc leaves the text input without asking",
			keys:     append([]tea.KeyMsg{key(tea.KeySpace), key(tea.KeyTab)}, runes("Is it"), key(tea.KeyEsc), key(tea.KeyDown)),
			wantSlot: 1,
			wantItem: "Whisky Glass",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, querier, _ := newTestPlayModel(t)
			press(m, tt.keys...)
			require.Equal(t, tt.wantSlot, m.controller.ActiveSlot())
			require.Equal(t, tt.wantItem, m.display.Snapshot().ItemName)
			require.Equal(t, tt.wantQuestions, querier.requests())
			require.False(t, m.input.Focused())
		})
	}
}

func TestPlayModel_TabNeedsItem(t *testing.T) {
	m, _, _ := newTestPlayModel(t)
	press(m, key(tea.KeyTab))
	require.False(t, m.input.Focused())

	press(m, key(tea.KeySpace), key(tea.KeyTab))
	require.True(t, m.input.Focused())
	require.Contains(t, m.View(), "esc back")

	// q is text while typing.
	press(m, runes("q"))
	require.Equal(t, "q", m.input.Value())
}

func TestPlayModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), key(tea.KeyCtrlC)} {
		m, _, _ := newTestPlayModel(t)
		cmd := press(m, k)
		require.NotNil(t, cmd)
		require.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestPlayModel_LateAnswerOnEmptySlot(t *testing.T) {
	m, querier, _ := newTestPlayModel(t)
	require.NoError(t, m.slots.Clear(1))

	press(m, key(tea.KeySpace), runes("1"), key(tea.KeyDown))
	require.Empty(t, m.display.Snapshot().ItemName)

	querier.handler(query.Outcome{Seq: 1, Kind: query.Success, Text: "Steve."})
	press(m, key(tea.KeyTab))
	require.False(t, m.input.Focused(), "no item to ask about")
}
