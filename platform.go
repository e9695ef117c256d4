package gremlin

import "time"

// Platform is the window-system capability the core consumes. Implementations
// own the overlay window and pointer input; the core never calls the OS
// directly.
type Platform interface {
	// CursorPosition returns the pointer position in screen coordinates, or
	// false when it cannot be determined.
	CursorPosition() (Vec2, bool)
	// SetWindowRegion makes r the input-receiving region of instance id. A
	// zero Rect clears the region.
	SetWindowRegion(id ID, r Rect)
	// PollInputEvents returns the pointer events since the previous call.
	PollInputEvents() []RawPointerEvent
	// FrameTick waits for the next frame and returns the time elapsed since
	// the previous one.
	FrameTick() time.Duration
}

// Renderer presents a draw list.
type Renderer interface {
	Render(list DrawList) error
}

// BoundsSource reports the usable screen area, excluding taskbars and docks.
// A Platform that also implements it keeps the scene bounds current.
type BoundsSource interface {
	UsableBounds() Rect
}
