package schemas

import "time"

// -- Pointer Interaction Schemas --
// These types are shared between the humanization engine and whatever
// automation driver dispatches the events. They deliberately carry no
// driver specific types.

// MouseEventType defines the type of a mouse event.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
	MouseWheel   MouseEventType = "mouseWheel"
)

// MouseButton defines the mouse button being pressed.
type MouseButton string

const (
	ButtonNone   MouseButton = "none"
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// Bitfield returns the DOM "buttons" mask for the button (1: left, 2: right, 4: middle).
func (b MouseButton) Bitfield() int64 {
	switch b {
	case ButtonLeft:
		return 1
	case ButtonRight:
		return 2
	case ButtonMiddle:
		return 4
	}
	return 0
}

// MouseEventData encapsulates all data for a mouse event.
type MouseEventData struct {
	Type       MouseEventType `json:"type"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Button     MouseButton    `json:"button"`
	Buttons    int64          `json:"buttons"`
	ClickCount int            `json:"clickCount"`
	DeltaX     float64        `json:"deltaX"`
	DeltaY     float64        `json:"deltaY"`
	// Timestamp is optional. When non-zero the driver forwards it so the
	// page observes the synthesized timing instead of dispatch time.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ElementRef is an opaque handle to an element previously resolved by a driver.
// Only the driver that produced it knows how to interpret it.
type ElementRef interface{}
