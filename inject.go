package gremlin

// InjectPress queues a left button press at the given screen coordinates.
// The event is consumed on the next Tick.
func (s *Scene) InjectPress(x, y float64) {
	s.inject(x, y, MouseButtonLeft, PointerDown)
}

// InjectMove queues a pointer move to the given screen coordinates. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (s *Scene) InjectMove(x, y float64) {
	s.inject(x, y, MouseButtonLeft, PointerMove)
}

// InjectRelease queues a left button release at the given screen coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.inject(x, y, MouseButtonLeft, PointerUp)
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two ticks.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDoubleClick queues two clicks at the same coordinates. Consumes four
// ticks, which must fit in the double-click window.
func (s *Scene) InjectDoubleClick(x, y float64) {
	s.InjectClick(x, y)
	s.InjectClick(x, y)
}

// InjectRightClick queues a right button press and release.
func (s *Scene) InjectRightClick(x, y float64) {
	s.inject(x, y, MouseButtonRight, PointerDown)
	s.inject(x, y, MouseButtonRight, PointerUp)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over ticks-2 intermediate ticks, and
// release at (toX, toY). The total sequence consumes `ticks` ticks.
// Minimum ticks is 2 (press + release).
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, ticks int) {
	if ticks < 2 {
		ticks = 2
	}
	s.InjectPress(fromX, fromY)
	steps := ticks - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// Injected reports how many synthetic events are still queued.
func (s *Scene) Injected() int {
	return len(s.injectQueue)
}

func (s *Scene) inject(x, y float64, button MouseButton, tr PointerTransition) {
	s.injectQueue = append(s.injectQueue, RawPointerEvent{
		Pos:        Vec2{X: x, Y: y},
		Button:     button,
		Transition: tr,
	})
}

// processInjectedInput pops one event from the inject queue and routes it
// like real pointer input. Returns true if an event was consumed.
func (s *Scene) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	s.route(evt)
	return true
}
