package ebitenplatform

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/gremlin"
)

var buttons = [...]struct {
	ebiten  ebiten.MouseButton
	gremlin gremlin.MouseButton
}{
	{ebiten.MouseButtonLeft, gremlin.MouseButtonLeft},
	{ebiten.MouseButtonRight, gremlin.MouseButtonRight},
	{ebiten.MouseButtonMiddle, gremlin.MouseButtonMiddle},
}

// pointerSnapshot is the polled mouse state of one tick.
type pointerSnapshot struct {
	pos     gremlin.Vec2
	pressed [len(buttons)]bool
	valid   bool
}

func (p *Platform) collectInput() {
	mx, my := ebiten.CursorPosition()
	cur := pointerSnapshot{pos: gremlin.Vec2{X: float64(mx), Y: float64(my)}, valid: true}
	for i, b := range buttons {
		cur.pressed[i] = ebiten.IsMouseButtonPressed(b.ebiten)
	}
	p.events = diffPointer(p.events[:0], p.prev, cur)
	p.prev = cur
}

// diffPointer appends the raw events that lead from prev to cur: a move
// first, then presses, then releases.
func diffPointer(dst []gremlin.RawPointerEvent, prev, cur pointerSnapshot) []gremlin.RawPointerEvent {
	if !prev.valid || prev.pos != cur.pos {
		dst = append(dst, gremlin.RawPointerEvent{Pos: cur.pos, Transition: gremlin.PointerMove})
	}
	for i, b := range buttons {
		if cur.pressed[i] && !prev.pressed[i] {
			dst = append(dst, gremlin.RawPointerEvent{Pos: cur.pos, Button: b.gremlin, Transition: gremlin.PointerDown})
		}
	}
	for i, b := range buttons {
		if !cur.pressed[i] && prev.pressed[i] {
			dst = append(dst, gremlin.RawPointerEvent{Pos: cur.pos, Button: b.gremlin, Transition: gremlin.PointerUp})
		}
	}
	return dst
}
