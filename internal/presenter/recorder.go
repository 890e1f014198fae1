package presenter

import (
	"sync"

	"github.com/myrjola/nai/internal/menu"
)

// Snapshot is everything a Display has been told to show.
type Snapshot struct {
	ItemName     string
	Labels       [menu.Size]menu.Entry
	YourQuestion string
	Answer       string
	Highlighted  []bool
}

// Recorder is a Display that keeps the latest values so that a renderer can draw them later. It is safe for
// concurrent use, e.g. writes from outcome delivery and reads from a render loop.
type Recorder struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewRecorder(slots int) *Recorder {
	return &Recorder{snap: Snapshot{Highlighted: make([]bool, slots)}}
}

func (r *Recorder) SetItemName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ItemName = name
}

func (r *Recorder) SetQuestionLabel(i int, text string, style menu.Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= menu.Size {
		return
	}
	r.snap.Labels[i] = menu.Entry{Label: text, Style: style}
}

func (r *Recorder) SetYourQuestionText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.YourQuestion = text
}

func (r *Recorder) SetAnswerText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Answer = text
}

func (r *Recorder) SetSlotHighlighted(i int, highlighted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.snap.Highlighted) {
		return
	}
	r.snap.Highlighted[i] = highlighted
}

// Snapshot returns a copy of the recorded values.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.snap
	snap.Highlighted = append([]bool(nil), r.snap.Highlighted...)
	return snap
}
