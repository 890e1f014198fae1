// Package inventory holds the fixed set of inventory slots and tracks which one is active.
package inventory

import (
	"log/slog"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/errors"
)

var (
	ErrInvalidSlotCount = errors.NewSentinel("slot count must be positive")
	ErrSlotOutOfRange   = errors.NewSentinel("slot index out of range")
)

// Slots is a fixed length sequence of optional items.
type Slots struct {
	items []*catalog.Item
}

// NewSlots creates n empty slots.
func NewSlots(n int) (*Slots, error) {
	if n <= 0 {
		return nil, errors.Wrap(ErrInvalidSlotCount, "new slots", slog.Int("n", n))
	}
	return &Slots{items: make([]*catalog.Item, n)}, nil
}

// Fill creates n slots holding items in order. Items beyond n are ignored and the remaining slots stay empty.
func Fill(n int, items []catalog.Item) (*Slots, error) {
	s, err := NewSlots(n)
	if err != nil {
		return nil, err
	}
	for i := range min(n, len(items)) {
		item := items[i]
		s.items[i] = &item
	}
	return s, nil
}

// Len returns the slot count.
func (s *Slots) Len() int {
	return len(s.items)
}

// Assign puts item into slot i.
func (s *Slots) Assign(i int, item catalog.Item) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i] = &item
	return nil
}

// Clear empties slot i.
func (s *Slots) Clear(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.items[i] = nil
	return nil
}

// At returns the item in slot i. ok is false for empty or out of range slots.
func (s *Slots) At(i int) (catalog.Item, bool) {
	if s.check(i) != nil || s.items[i] == nil {
		return catalog.Item{}, false
	}
	return *s.items[i], true
}

func (s *Slots) check(i int) error {
	if i < 0 || i >= len(s.items) {
		return errors.Wrap(ErrSlotOutOfRange, "check slot", slog.Int("index", i), slog.Int("len", len(s.items)))
	}
	return nil
}
