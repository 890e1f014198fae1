package session

// Event is a discrete input from the host application.
type Event interface {
	isEvent()
}

type Direction int

const (
	// DirectionUp moves to the previous slot, like scrolling the wheel forward.
	DirectionUp Direction = iota
	// DirectionDown moves to the next slot.
	DirectionDown
)

// Scroll moves the active slot by one.
type Scroll struct {
	Direction Direction
}

// SelectSlot jumps to a slot directly.
type SelectSlot struct {
	Index int
}

// PrimaryClick activates the active slot: shows its item or clears the panel if the slot is empty.
type PrimaryClick struct{}

// Hover enters or leaves question menu entry Index.
type Hover struct {
	Index int
	Enter bool
}

// RightClick commits question menu entry Index.
type RightClick struct {
	Index int
}

// SubmitText asks a free-form question about the active item.
type SubmitText struct {
	Text string
}

func (Scroll) isEvent()       {}
func (SelectSlot) isEvent()   {}
func (PrimaryClick) isEvent() {}
func (Hover) isEvent()        {}
func (RightClick) isEvent()   {}
func (SubmitText) isEvent()   {}
