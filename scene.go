package gremlin

import (
	"cmp"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

const defaultCommandCap = 64

// Scene is the top-level object that owns the live instances, the input
// router and the draw buffers. It is driven by Tick from a single goroutine
// and holds no locks.
type Scene struct {
	instances []*Instance // painter order, bottom first
	byID      map[ID]*Instance
	nextID    ID
	bounds    Rect

	cursor      Vec2
	cursorValid bool
	rng         *rand.Rand

	// Input state
	router    Router
	dragOwner ID
	pending   []InputEvent
	hitBuf    []Hitbox

	// Synthetic input
	injectQueue []RawPointerEvent
	testRunner  *TestRunner
	screenshot  func(label string)

	handlers handlerRegistry
	sink     EventSink
	onError  func(ID, error)

	// Render state
	commands DrawList
	sortBuf  DrawList
	stepBuf  []*Instance

	debug bool
	stats debugStats
}

// NewScene creates an empty scene whose instances roam inside bounds, the
// usable screen area.
func NewScene(bounds Rect) *Scene {
	s := &Scene{
		byID:     make(map[ID]*Instance),
		bounds:   bounds,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		commands: make(DrawList, 0, defaultCommandCap),
		sortBuf:  make(DrawList, 0, defaultCommandCap),
	}
	s.router.init()
	return s
}

// Bounds returns the usable screen area.
func (s *Scene) Bounds() Rect {
	return s.bounds
}

// SetBounds replaces the usable screen area, for example after a monitor
// change. Walking instances that end up outside stop at the new edge.
func (s *Scene) SetBounds(r Rect) {
	s.bounds = r
}

// SetSeed reseeds the random source used for idle durations and wander
// targets, making a scene deterministic.
func (s *Scene) SetSeed(seed uint64) {
	s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SetDragDeadZone sets the minimum movement in pixels before a press counts
// as a drag. Default is 4.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.router.SetDragDeadZone(pixels)
}

// SetDoubleClickWindow sets the maximum interval between the two clicks of a
// double click. Default is 400ms.
func (s *Scene) SetDoubleClickWindow(d time.Duration) {
	s.router.SetDoubleClickWindow(d)
}

// SetCursor records the latest cursor sample; cursor-following definitions
// walk toward it. ok=false marks the sample as unavailable.
func (s *Scene) SetCursor(p Vec2, ok bool) {
	s.cursor = p
	s.cursorValid = ok
}

// SetEventSink sets the optional observer that receives every scene Event.
func (s *Scene) SetEventSink(sink EventSink) {
	s.sink = sink
}

// OnError sets the handler told about instances removed because of a runtime
// error, such as an invalid transition.
func (s *Scene) OnError(fn func(ID, error)) {
	s.onError = fn
}

// Router exposes the scene's input router.
func (s *Scene) Router() *Router {
	return &s.router
}

// --- Instance lifecycle ---

// Spawn adds an instance of def with its top-left corner at pos. When def
// binds an intro clip the instance starts by playing it.
func (s *Scene) Spawn(def *Definition, pos Vec2) (ID, error) {
	if def == nil || def.Sheet == nil || def.Clips.Idle == nil {
		return 0, fmt.Errorf("%w: spawn needs a built definition", ErrInvalidDefinition)
	}
	s.nextID++
	g := &Instance{
		id:     s.nextID,
		def:    def,
		pos:    pos,
		follow: def.FollowCursor,
	}
	if def.Clips.Intro != nil {
		g.state = Reacting{Clip: def.Clips.Intro, Timeout: def.ReactionTimeout}
	} else {
		g.state = Idle{Dwell: s.drawDwell(def)}
	}
	g.applyClip(true)

	s.instances = append(s.instances, g)
	s.byID[g.id] = g
	if s.debug {
		s.debugCheckInstanceCount()
	}
	s.fireInstance(EventSpawn, g)
	return g.id, nil
}

// Despawn removes an instance immediately, releasing any drag it holds.
func (s *Scene) Despawn(id ID) error {
	g, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	s.remove(g)
	return nil
}

// Dismiss plays the instance's outro clip and removes it when the clip ends.
// Without an outro clip the instance is removed immediately.
func (s *Scene) Dismiss(id ID) error {
	g, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	outro := g.def.Clips.Outro
	if outro == nil {
		s.remove(g)
		return nil
	}
	if st, ok := g.state.(Reacting); ok && st.Despawn {
		return nil
	}
	if err := s.transition(g, Reacting{Clip: outro, Timeout: g.def.ReactionTimeout, Despawn: true}); err != nil {
		s.fail(g, err)
		return err
	}
	return nil
}

// Redefine points every instance of old at def instead and resets them to
// Idle, keeping id, position and layer. Instances playing their outro keep
// the old definition until they are removed. It returns the number of
// instances changed. Used to apply reloaded definition files.
func (s *Scene) Redefine(old, def *Definition) int {
	if old == nil || def == nil || old == def {
		return 0
	}
	n := 0
	for _, g := range s.instances {
		if g.def != old {
			continue
		}
		if st, ok := g.state.(Reacting); ok && st.Despawn {
			continue
		}
		s.endDrag(g)
		g.def = def
		g.follow = def.FollowCursor
		g.state = Idle{Dwell: s.drawDwell(def)}
		g.stateElapsed = 0
		g.walk = nil
		g.pos = s.bounds.originSpace(def.Size()).clamp(g.pos)
		g.applyClip(true)
		n++
	}
	return n
}

// remove deletes g from the scene and drops every reference to it.
func (s *Scene) remove(g *Instance) {
	if g.removed {
		return
	}
	g.removed = true
	s.endDrag(g)
	s.router.Forget(g.id)
	delete(s.byID, g.id)
	for i, o := range s.instances {
		if o == g {
			copy(s.instances[i:], s.instances[i+1:])
			s.instances[len(s.instances)-1] = nil
			s.instances = s.instances[:len(s.instances)-1]
			break
		}
	}
	s.fireInstance(EventDespawn, g)
}

// fail removes g after a runtime error. The rest of the scene continues.
func (s *Scene) fail(g *Instance, err error) {
	log.Printf("gremlin: removing instance %d (%s): %v", g.id, g.def.Name, err)
	s.remove(g)
	if s.onError != nil {
		s.onError(g.id, err)
	}
}

// raise moves g to the top of the painter order. The order persists after
// the drag ends.
func (s *Scene) raise(g *Instance) {
	n := len(s.instances)
	for i, o := range s.instances {
		if o == g {
			if i == n-1 {
				return
			}
			copy(s.instances[i:], s.instances[i+1:])
			s.instances[n-1] = g
			return
		}
	}
}

// Instance returns the live instance with the given id.
func (s *Scene) Instance(id ID) (*Instance, bool) {
	g, ok := s.byID[id]
	return g, ok
}

// Instances returns the live instances in painter order, bottom first. The
// slice is a copy.
func (s *Scene) Instances() []*Instance {
	out := make([]*Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Len returns the number of live instances.
func (s *Scene) Len() int {
	return len(s.instances)
}

// SetLayer moves an instance to a draw layer. Higher layers draw above lower
// ones regardless of painter order, except that a dragged instance stays on
// top until it is released. The default layer is 0.
func (s *Scene) SetLayer(id ID, layer int) error {
	g, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstance, id)
	}
	g.layer = layer
	return nil
}

// --- Input ---

// Dispatch queues a semantic event for the next Tick, ahead of routed input.
func (s *Scene) Dispatch(ev InputEvent) {
	s.pending = append(s.pending, ev)
}

// drawLayer returns the layer g is drawn and hit-tested on. The dragged
// instance stays above every layer until the drag ends.
func (s *Scene) drawLayer(g *Instance) int {
	if s.dragOwner != 0 && g.id == s.dragOwner {
		return math.MaxInt
	}
	return g.layer
}

// hitboxes returns the instance boxes in draw order, bottom first: by layer,
// then painter order.
func (s *Scene) hitboxes() []Hitbox {
	s.hitBuf = s.hitBuf[:0]
	layered := false
	for _, g := range s.instances {
		s.hitBuf = append(s.hitBuf, Hitbox{ID: g.id, Rect: g.Bounds()})
		layered = layered || g.layer != 0
	}
	if layered {
		slices.SortStableFunc(s.hitBuf, func(a, b Hitbox) int {
			return cmp.Compare(s.drawLayer(s.byID[a.ID]), s.drawLayer(s.byID[b.ID]))
		})
	}
	return s.hitBuf
}

func (s *Scene) hit(p Vec2) ID {
	return HitTest(s.hitboxes(), p)
}

// route classifies one raw event and delivers the result.
func (s *Scene) route(raw RawPointerEvent) {
	if ev, ok := s.router.Route(raw, s.hit); ok {
		s.deliver(ev)
	}
}

// deliver hands a semantic event to its target. Events for ids that are not
// live are dropped.
func (s *Scene) deliver(ev InputEvent) {
	if ev.Kind == InputHoverEnter && ev.Left != 0 {
		if prev, ok := s.byID[ev.Left]; ok {
			s.apply(prev, InputEvent{Kind: InputHoverLeave, Target: prev.id, Pos: ev.Pos})
		}
	}
	g, ok := s.byID[ev.Target]
	if !ok {
		if s.debug {
			log.Printf("gremlin: dropped %s for unknown instance %d", ev.Kind, ev.Target)
		}
		return
	}
	s.apply(g, ev)
}

func (s *Scene) apply(g *Instance, ev InputEvent) {
	if s.debug {
		s.stats.events++
	}
	s.emit(Event{Type: EventInput, ID: g.id, Position: g.pos, Input: ev})
	if err := s.handleInput(g, ev); err != nil {
		s.fail(g, err)
	}
}

// --- Tick ---

// Tick advances the scene by dt. It routes input (queued Dispatch events,
// then one injected event, then events), steps every instance in painter
// order and returns the draw list. The returned list is reused by the next
// Tick.
func (s *Scene) Tick(dt time.Duration, events []RawPointerEvent) DrawList {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
		s.stats = debugStats{}
	}
	if dt < 0 {
		dt = 0
	}
	s.router.Advance(dt)
	for _, g := range s.instances {
		g.inputTick = false
	}

	pending := s.pending
	s.pending = nil
	for _, ev := range pending {
		s.deliver(ev)
	}
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjectedInput()
	for _, raw := range events {
		s.route(raw)
	}

	var t1 time.Time
	if s.debug {
		t1 = time.Now()
		s.stats.inputTime = t1.Sub(t0)
	}

	s.stepBuf = append(s.stepBuf[:0], s.instances...)
	for _, g := range s.stepBuf {
		if g.removed {
			continue
		}
		if err := s.step(g, dt); err != nil {
			s.fail(g, err)
		}
	}
	clear(s.stepBuf)

	var t2 time.Time
	if s.debug {
		t2 = time.Now()
		s.stats.stepTime = t2.Sub(t1)
	}

	list := s.buildDrawList()

	if s.debug {
		s.stats.buildTime = time.Since(t2)
		s.stats.instanceCount = len(s.instances)
		s.stats.commandCount = len(list)
		s.debugLog(s.stats)
	}
	return list
}
