package gremlin

import "time"

// --- Constants ---

const (
	defaultDragDeadZone      = 4.0 // pixels
	defaultDoubleClickWindow = 400 * time.Millisecond
)

// PointerTransition is the edge a raw pointer event reports.
type PointerTransition uint8

const (
	PointerDown PointerTransition = iota // a button was pressed
	PointerMove                          // the pointer moved
	PointerUp                            // a button was released
)

// RawPointerEvent is a pointer sample delivered by the platform layer, in
// screen coordinates.
type RawPointerEvent struct {
	Pos        Vec2
	Button     MouseButton
	Transition PointerTransition
}

// InputKind identifies a semantic input event.
type InputKind uint8

const (
	InputPressOn    InputKind = iota // left button pressed over Target
	InputDragTo                      // captured pointer moved to Pos
	InputReleaseOn                   // captured pointer released after dragging
	InputClick                       // press and release without dragging; see Click
	InputHoverEnter                  // pointer entered Target (and left Left, if set)
	InputHoverLeave                  // pointer left Target onto empty space
)

func (k InputKind) String() string {
	switch k {
	case InputPressOn:
		return "PressOn"
	case InputDragTo:
		return "DragTo"
	case InputReleaseOn:
		return "ReleaseOn"
	case InputClick:
		return "Click"
	case InputHoverEnter:
		return "HoverEnter"
	case InputHoverLeave:
		return "HoverLeave"
	default:
		return "Unknown"
	}
}

// InputEvent is a semantic event produced by the Router and consumed once by
// the behavior machine of Target.
type InputEvent struct {
	Kind   InputKind
	Target ID
	Pos    Vec2
	Button MouseButton
	Click  ClickKind // valid for InputClick
	Left   ID        // valid for InputHoverEnter: the instance the pointer came from
}

// Hitbox is the screen-space bounding box of one instance.
type Hitbox struct {
	ID   ID
	Rect Rect
}

// HitTest returns the topmost instance whose box contains p. boxes are in
// painter order (bottom first), so they are scanned backward and the scan
// stops at the first hit. Returns 0 if nothing is hit.
func HitTest(boxes []Hitbox, p Vec2) ID {
	for i := len(boxes) - 1; i >= 0; i-- {
		if boxes[i].Rect.Contains(p.X, p.Y) {
			return boxes[i].ID
		}
	}
	return 0
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	button   MouseButton // button captured at press time
	start    Vec2
	last     Vec2
	target   ID // instance under the pointer at press time
	dragging bool
}

// Router classifies raw pointer events into semantic InputEvents. It tracks
// one pointer: while an instance holds the capture every move goes to it
// regardless of hit testing, until the matching release.
//
// A Router is owned by a Scene and used from the tick goroutine only.
type Router struct {
	ptr      pointerState
	captured ID
	hover    ID

	dragDeadZone      float64
	doubleClickWindow time.Duration

	clock       time.Duration
	lastClickID ID
	lastClickAt time.Duration
}

// NewRouter creates a router with the default dead zone and double-click
// window.
func NewRouter() *Router {
	r := &Router{}
	r.init()
	return r
}

func (r *Router) init() {
	r.dragDeadZone = defaultDragDeadZone
	r.doubleClickWindow = defaultDoubleClickWindow
}

// SetDragDeadZone sets the minimum movement in pixels before a press counts
// as a drag rather than a click.
func (r *Router) SetDragDeadZone(pixels float64) {
	r.dragDeadZone = pixels
}

// SetDoubleClickWindow sets the maximum time between two clicks on the same
// instance for the second to count as a double click.
func (r *Router) SetDoubleClickWindow(d time.Duration) {
	r.doubleClickWindow = d
}

// Advance moves the router clock forward. The clock only measures
// double-click intervals.
func (r *Router) Advance(dt time.Duration) {
	if dt > 0 {
		r.clock += dt
	}
}

// Capture routes all following moves and the next release to id.
func (r *Router) Capture(id ID) {
	r.captured = id
}

// Release stops routing to the captured instance.
func (r *Router) Release() {
	r.captured = 0
}

// Captured returns the instance holding the capture, or 0.
func (r *Router) Captured() ID {
	return r.captured
}

// Hovered returns the instance under the pointer as of the last move, or 0.
func (r *Router) Hovered() ID {
	return r.hover
}

// Forget drops every reference to id. Call it when the instance is removed so
// no later event is routed to it.
func (r *Router) Forget(id ID) {
	if id == 0 {
		return
	}
	if r.captured == id {
		r.captured = 0
	}
	if r.hover == id {
		r.hover = 0
	}
	if r.ptr.target == id {
		r.ptr.target = 0
	}
	if r.lastClickID == id {
		r.lastClickID = 0
	}
}

// Route classifies ev. hit resolves a screen point to the topmost instance
// (0 for none). At most one semantic event is produced per raw event.
func (r *Router) Route(ev RawPointerEvent, hit func(Vec2) ID) (InputEvent, bool) {
	switch ev.Transition {
	case PointerDown:
		return r.down(ev, hit)
	case PointerMove:
		return r.move(ev, hit)
	case PointerUp:
		return r.up(ev, hit)
	}
	return InputEvent{}, false
}

func (r *Router) down(ev RawPointerEvent, hit func(Vec2) ID) (InputEvent, bool) {
	// A second button while one is held belongs to the running gesture.
	if r.ptr.down {
		return InputEvent{}, false
	}
	target := hit(ev.Pos)
	r.ptr = pointerState{
		down:   true,
		button: ev.Button,
		start:  ev.Pos,
		last:   ev.Pos,
		target: target,
	}
	if target == 0 || ev.Button != MouseButtonLeft {
		return InputEvent{}, false
	}
	return InputEvent{Kind: InputPressOn, Target: target, Pos: ev.Pos, Button: ev.Button}, true
}

func (r *Router) move(ev RawPointerEvent, hit func(Vec2) ID) (InputEvent, bool) {
	if r.ptr.down {
		r.ptr.last = ev.Pos
		if !r.ptr.dragging && ev.Pos.Sub(r.ptr.start).Len() > r.dragDeadZone {
			r.ptr.dragging = true
		}
		if r.captured != 0 {
			return InputEvent{Kind: InputDragTo, Target: r.captured, Pos: ev.Pos, Button: r.ptr.button}, true
		}
	}

	target := hit(ev.Pos)
	if target == r.hover {
		return InputEvent{}, false
	}
	prev := r.hover
	r.hover = target
	if target != 0 {
		return InputEvent{Kind: InputHoverEnter, Target: target, Pos: ev.Pos, Left: prev}, true
	}
	return InputEvent{Kind: InputHoverLeave, Target: prev, Pos: ev.Pos}, true
}

func (r *Router) up(ev RawPointerEvent, hit func(Vec2) ID) (InputEvent, bool) {
	if !r.ptr.down || ev.Button != r.ptr.button {
		return InputEvent{}, false
	}
	ps := r.ptr
	r.ptr = pointerState{}

	if r.captured != 0 {
		id := r.captured
		r.captured = 0
		if ps.dragging {
			return InputEvent{Kind: InputReleaseOn, Target: id, Pos: ev.Pos, Button: ps.button}, true
		}
		return r.click(id, ev.Pos, ps.button), true
	}

	if ps.target == 0 || ps.dragging || hit(ev.Pos) != ps.target {
		return InputEvent{}, false
	}
	switch ps.button {
	case MouseButtonLeft, MouseButtonRight:
		return r.click(ps.target, ev.Pos, ps.button), true
	}
	return InputEvent{}, false
}

// click builds a click event, pairing two left clicks on the same instance
// within the double-click window into a double click.
func (r *Router) click(id ID, pos Vec2, button MouseButton) InputEvent {
	ev := InputEvent{Kind: InputClick, Target: id, Pos: pos, Button: button}
	if button == MouseButtonRight {
		ev.Click = ClickRight
		return ev
	}
	if r.lastClickID == id && r.clock-r.lastClickAt <= r.doubleClickWindow {
		ev.Click = ClickDouble
		r.lastClickID = 0
		return ev
	}
	ev.Click = ClickSingle
	r.lastClickID = id
	r.lastClickAt = r.clock
	return ev
}
