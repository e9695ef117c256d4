package gremlin

// EventType identifies the kind of a scene Event.
type EventType uint8

const (
	EventSpawn      EventType = iota // an instance was added
	EventDespawn                     // an instance was removed
	EventTransition                  // an instance changed behavior state
	EventInput                       // a semantic input event reached an instance
)

func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventDespawn:
		return "despawn"
	case EventTransition:
		return "transition"
	case EventInput:
		return "input"
	default:
		return "unknown"
	}
}

// EventSink is the interface for optional external observers such as an ECS
// bridge. When set on a Scene, every scene Event is forwarded to it.
type EventSink interface {
	EmitEvent(event Event)
}

// Event carries scene activity to an EventSink.
type Event struct {
	Type     EventType
	ID       ID
	Position Vec2
	// From is valid for EventTransition. To is the state entered, or for
	// EventSpawn and EventDespawn the state at that moment.
	From StateKind
	To   StateKind
	// Input fields (valid for EventInput)
	Input InputEvent
}

// TransitionContext is passed to OnTransition callbacks.
type TransitionContext struct {
	ID       ID
	From     BehaviorState
	To       BehaviorState
	Position Vec2
}

// InstanceContext is passed to OnSpawn and OnDespawn callbacks.
type InstanceContext struct {
	ID         ID
	Definition *Definition
	Position   Vec2
}

// --- Handler registry ---

type transitionHandler struct {
	id uint32
	fn func(TransitionContext)
}

type instanceHandler struct {
	id uint32
	fn func(InstanceContext)
}

type handlerRegistry struct {
	transition []transitionHandler
	spawn      []instanceHandler
	despawn    []instanceHandler
	nextID     uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventTransition:
		h.reg.transition = removeTransitionHandler(h.reg.transition, h.id)
	case EventSpawn:
		h.reg.spawn = removeInstanceHandler(h.reg.spawn, h.id)
	case EventDespawn:
		h.reg.despawn = removeInstanceHandler(h.reg.despawn, h.id)
	}
}

func removeTransitionHandler(s []transitionHandler, id uint32) []transitionHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = transitionHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeInstanceHandler(s []instanceHandler, id uint32) []instanceHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = instanceHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Scene-level registration ---

// OnTransition registers a callback fired after every behavior state change.
func (s *Scene) OnTransition(fn func(TransitionContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.transition = append(s.handlers.transition, transitionHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventTransition}
}

// OnSpawn registers a callback fired after an instance is added.
func (s *Scene) OnSpawn(fn func(InstanceContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.spawn = append(s.handlers.spawn, instanceHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventSpawn}
}

// OnDespawn registers a callback fired after an instance is removed, whether
// by Despawn, a finished outro or an error.
func (s *Scene) OnDespawn(fn func(InstanceContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.despawn = append(s.handlers.despawn, instanceHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDespawn}
}

// --- Firing ---

func (s *Scene) fireTransition(g *Instance, from, to BehaviorState) {
	ctx := TransitionContext{ID: g.id, From: from, To: to, Position: g.pos}
	for _, h := range s.handlers.transition {
		h.fn(ctx)
	}
	s.emit(Event{Type: EventTransition, ID: g.id, Position: g.pos, From: from.Kind(), To: to.Kind()})
}

func (s *Scene) fireInstance(typ EventType, g *Instance) {
	ctx := InstanceContext{ID: g.id, Definition: g.def, Position: g.pos}
	handlers := s.handlers.spawn
	if typ == EventDespawn {
		handlers = s.handlers.despawn
	}
	for _, h := range handlers {
		h.fn(ctx)
	}
	s.emit(Event{Type: typ, ID: g.id, Position: g.pos, To: g.state.Kind()})
}

func (s *Scene) emit(ev Event) {
	if s.sink != nil {
		s.sink.EmitEvent(ev)
	}
}
