// Package session wires slot selection, the question menu, the presenter and the query client behind two entry
// points: Initialize and HandleEvent.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/myrjola/nai/internal/errors"
	"github.com/myrjola/nai/internal/inventory"
	"github.com/myrjola/nai/internal/menu"
	"github.com/myrjola/nai/internal/presenter"
	"github.com/myrjola/nai/internal/query"
)

var (
	ErrConfiguration  = errors.NewSentinel("configuration error")
	ErrMissingSlots   = errors.NewSentinel("missing inventory slots")
	ErrMissingDisplay = errors.NewSentinel("missing display")
	ErrMissingQuerier = errors.NewSentinel("missing querier")
)

// Querier is the part of [query.Client] the controller needs.
type Querier interface {
	Send(itemType catalog.ItemType, question string) uint64
	OnOutcome(h query.Handler)
}

type Config struct {
	Slots   *inventory.Slots
	Display presenter.Display
	Querier Querier
	Logger  *slog.Logger
	// DiscardStale drops answers older than the last shown answer instead of letting the last delivered one win.
	DiscardStale bool
	// OnOutcomeApplied is called after an answer has been pushed to the display, outside the controller lock.
	OnOutcomeApplied func()
}

// Controller serialises input events and query outcomes so that the presenter only ever has one caller.
type Controller struct {
	mu        sync.Mutex
	selector  *inventory.Selector
	menu      *menu.Menu
	presenter *presenter.Presenter
	querier   Querier
	logger    *slog.Logger
	afterOut  func()

	// current is the item shown in the panel, if any.
	current    catalog.Item
	hasCurrent bool
}

// Initialize validates cfg, registers the outcome handler with the querier and shows the initial empty panel
// with the first slot highlighted.
func Initialize(cfg Config) (*Controller, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("source", "Session")

	var missing []error
	if cfg.Slots == nil {
		missing = append(missing, ErrMissingSlots)
	}
	if cfg.Display == nil {
		missing = append(missing, ErrMissingDisplay)
	}
	if cfg.Querier == nil {
		missing = append(missing, ErrMissingQuerier)
	}
	if len(missing) > 0 {
		err := errors.Wrap(errors.Join(append([]error{ErrConfiguration}, missing...)...), "initialize session")
		logger.LogAttrs(context.Background(), slog.LevelError, "session setup aborted", errors.SlogError(err))
		return nil, err
	}

	selector, err := inventory.NewSelector(cfg.Slots)
	if err != nil {
		err = errors.Wrap(errors.Join(ErrConfiguration, err), "initialize session")
		logger.LogAttrs(context.Background(), slog.LevelError, "session setup aborted", errors.SlogError(err))
		return nil, err
	}

	var opts []presenter.Option
	if cfg.DiscardStale {
		opts = append(opts, presenter.WithStaleGuard())
	}
	m := menu.New()
	c := &Controller{
		selector:  selector,
		menu:      m,
		presenter: presenter.New(cfg.Display, m, opts...),
		querier:   cfg.Querier,
		logger:    logger,
		afterOut:  cfg.OnOutcomeApplied,
	}
	selector.OnChange(c.onActiveSlotChanged)
	cfg.Querier.OnOutcome(c.onOutcome)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.presenter.OnActiveSlotChanged(selector.Active(), selector.Len())
	c.clear()

	logger.LogAttrs(context.Background(), slog.LevelDebug, "session initialized",
		slog.Int("slots", selector.Len()), slog.Bool("discard_stale", cfg.DiscardStale))
	return c, nil
}

// HandleEvent applies one input event. Invalid selections are ignored.
func (c *Controller) HandleEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case Scroll:
		if e.Direction == DirectionUp {
			c.selector.SelectPrevious()
		} else {
			c.selector.SelectNext()
		}
	case SelectSlot:
		if err := c.selector.Select(e.Index); err != nil {
			c.logger.LogAttrs(context.Background(), slog.LevelDebug, "ignored slot selection", errors.SlogError(err))
		}
	case PrimaryClick:
		c.activate()
	case Hover:
		var ok bool
		if e.Enter {
			ok = c.menu.HoverEnter(e.Index)
		} else {
			ok = c.menu.HoverExit(e.Index)
		}
		if ok {
			c.presenter.RefreshMenu()
		}
	case RightClick:
		question, ok := c.menu.Commit(e.Index)
		if !ok {
			c.logger.LogAttrs(context.Background(), slog.LevelDebug, "ignored question selection", slog.Int("index", e.Index))
			return
		}
		c.commit(question)
	case SubmitText:
		question := strings.TrimSpace(e.Text)
		if question == "" || !c.hasCurrent {
			c.logger.LogAttrs(context.Background(), slog.LevelDebug, "ignored free-text question",
				slog.Bool("has_item", c.hasCurrent))
			return
		}
		c.commit(question)
	}
}

// ActiveSlot returns the active slot index.
func (c *Controller) ActiveSlot() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector.Active()
}

// State returns the presenter state.
func (c *Controller) State() presenter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presenter.State()
}

func (c *Controller) onActiveSlotChanged(active int) {
	c.presenter.OnActiveSlotChanged(active, c.selector.Len())
	c.activate()
}

func (c *Controller) activate() {
	item, ok := c.selector.ActiveItem()
	if !ok {
		c.clear()
		return
	}
	c.current, c.hasCurrent = item, true
	c.presenter.OnItemActivated(item)
}

func (c *Controller) clear() {
	c.current, c.hasCurrent = catalog.Item{}, false
	c.presenter.OnNoItem()
}

func (c *Controller) commit(question string) {
	c.presenter.OnQuestionCommitted(question)
	seq := c.querier.Send(c.current.Type, question)
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, "question sent",
		slog.Uint64("seq", seq), slog.String("item", c.current.Name), slog.String("question", question))
}

func (c *Controller) onOutcome(outcome query.Outcome) {
	c.mu.Lock()
	applied := c.presenter.OnOutcome(outcome)
	c.mu.Unlock()

	c.logger.LogAttrs(context.Background(), slog.LevelDebug, "outcome received",
		slog.Uint64("seq", outcome.Seq), slog.String("kind", outcome.Kind.String()), slog.Bool("applied", applied))
	if applied && c.afterOut != nil {
		c.afterOut()
	}
}
