package gremlin

import (
	"fmt"
	"time"
)

// StateKind identifies the variant of a BehaviorState.
type StateKind uint8

const (
	StateIdle StateKind = iota
	StateWalking
	StateDragging
	StateReacting
	StateFalling
	numStates
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "Idle"
	case StateWalking:
		return "Walking"
	case StateDragging:
		return "Dragging"
	case StateReacting:
		return "Reacting"
	case StateFalling:
		return "Falling"
	default:
		return fmt.Sprintf("StateKind(%d)", uint8(k))
	}
}

// BehaviorState is the closed set of per-instance behavior states: Idle,
// Walking, Dragging, Reacting and Falling. Use a type switch to read the
// variant's payload.
type BehaviorState interface {
	Kind() StateKind
	behaviorState()
}

// Idle stands still and walks off once Dwell has elapsed.
type Idle struct {
	Dwell time.Duration
}

// Walking moves toward Target at the definition's speed.
type Walking struct {
	Target Vec2
}

// Dragging follows the captured pointer, keeping GrabOffset between the
// pointer and the instance origin.
type Dragging struct {
	GrabOffset Vec2
}

// Reacting plays Clip once and returns to Idle when it finishes or Timeout
// elapses. With Despawn set the instance is removed instead.
type Reacting struct {
	Clip    *Clip
	Timeout time.Duration
	Despawn bool
}

// Falling drops toward the bottom of the usable bounds under gravity.
type Falling struct {
	Velocity Vec2
}

func (Idle) Kind() StateKind     { return StateIdle }
func (Walking) Kind() StateKind  { return StateWalking }
func (Dragging) Kind() StateKind { return StateDragging }
func (Reacting) Kind() StateKind { return StateReacting }
func (Falling) Kind() StateKind  { return StateFalling }

func (Idle) behaviorState()     {}
func (Walking) behaviorState()  {}
func (Dragging) behaviorState() {}
func (Reacting) behaviorState() {}
func (Falling) behaviorState()  {}

// edges is the transition table, indexed [from][to].
var edges = [numStates][numStates]bool{
	StateIdle: {
		StateWalking:  true,
		StateDragging: true,
		StateReacting: true,
	},
	StateWalking: {
		StateIdle:     true,
		StateDragging: true,
		StateReacting: true,
	},
	StateDragging: {
		StateIdle:     true,
		StateReacting: true,
		StateFalling:  true,
	},
	StateReacting: {
		StateIdle:     true,
		StateReacting: true,
	},
	StateFalling: {
		StateIdle:     true,
		StateReacting: true,
	},
}

// CanTransition reports whether from -> to is a defined edge.
func CanTransition(from, to StateKind) bool {
	if from >= numStates || to >= numStates {
		return false
	}
	return edges[from][to]
}

// TransitionError reports a request along an undefined edge. It wraps
// ErrInvalidTransition.
type TransitionError struct {
	ID   ID
	From StateKind
	To   StateKind
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("gremlin: invalid transition %s -> %s for instance %d", e.From, e.To, e.ID)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
