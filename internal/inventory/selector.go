package inventory

import (
	"log/slog"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/errors"
)

var ErrMissingSlots = errors.NewSentinel("selector needs slots")

// Selector tracks the active slot. The active index is always in [0, Len()).
//
// Selector is not safe for concurrent use.
type Selector struct {
	slots     *Slots
	active    int
	listeners []func(active int)
}

func NewSelector(slots *Slots) (*Selector, error) {
	if slots == nil {
		return nil, ErrMissingSlots
	}
	if slots.Len() <= 0 {
		return nil, errors.Wrap(ErrInvalidSlotCount, "new selector", slog.Int("n", slots.Len()))
	}
	return &Selector{slots: slots}, nil
}

// OnChange registers fn to be called with the new active index after every selection.
func (s *Selector) OnChange(fn func(active int)) {
	s.listeners = append(s.listeners, fn)
}

// SelectNext moves to the next slot, wrapping from the last slot to the first.
func (s *Selector) SelectNext() {
	s.set((s.active + 1) % s.slots.Len())
}

// SelectPrevious moves to the previous slot, wrapping from the first slot to the last.
func (s *Selector) SelectPrevious() {
	n := s.slots.Len()
	s.set((s.active - 1 + n) % n)
}

// Select jumps to slot i.
func (s *Selector) Select(i int) error {
	if err := s.slots.check(i); err != nil {
		return errors.Wrap(err, "select slot", slog.Int("active", s.active))
	}
	s.set(i)
	return nil
}

// Active returns the active slot index.
func (s *Selector) Active() int {
	return s.active
}

// Len returns the number of slots.
func (s *Selector) Len() int {
	return s.slots.Len()
}

// ActiveItem returns the item in the active slot.
func (s *Selector) ActiveItem() (catalog.Item, bool) {
	return s.slots.At(s.active)
}

func (s *Selector) set(i int) {
	s.active = i
	for _, fn := range s.listeners {
		fn(i)
	}
}
