package gremlin

import (
	"fmt"
	"time"
)

// Instance is one live gremlin. Instances are created and owned by a Scene;
// callers read them through the accessors and change them only through Scene
// methods and input.
type Instance struct {
	id    ID
	def   *Definition
	pos   Vec2
	layer int

	state        BehaviorState
	stateElapsed time.Duration
	walk         *walkTween

	clip   *Clip
	play   Playhead
	facing Facing
	flip   bool

	hovered   bool
	follow    bool
	inputTick bool // an input event changed state during the current tick
	removed   bool
}

// ID returns the instance identifier.
func (g *Instance) ID() ID { return g.id }

// Definition returns the definition the instance was spawned from.
func (g *Instance) Definition() *Definition { return g.def }

// Position returns the top-left corner in screen pixels.
func (g *Instance) Position() Vec2 { return g.pos }

// State returns the active behavior state.
func (g *Instance) State() BehaviorState { return g.state }

// StateElapsed returns how long the instance has been in its current state.
func (g *Instance) StateElapsed() time.Duration { return g.stateElapsed }

// Clip returns the clip being played.
func (g *Instance) Clip() *Clip { return g.clip }

// Playhead returns the position within the current clip.
func (g *Instance) Playhead() Playhead { return g.play }

// Facing returns the horizontal direction the instance looks at.
func (g *Instance) Facing() Facing { return g.facing }

// Layer returns the draw layer set by Scene.SetLayer.
func (g *Instance) Layer() int { return g.layer }

// FollowsCursor reports whether the instance walks towards the cursor.
func (g *Instance) FollowsCursor() bool { return g.follow }

// Hovered reports whether the pointer is over the instance.
func (g *Instance) Hovered() bool { return g.hovered }

// Bounds returns the screen rectangle covered by the current frame.
func (g *Instance) Bounds() Rect {
	w, h := g.def.Size()
	return Rect{X: g.pos.X, Y: g.pos.Y, Width: w, Height: h}
}

// selectClip returns the clip the current state plays and whether it is drawn
// mirrored.
func (g *Instance) selectClip() (*Clip, bool) {
	b := &g.def.Clips
	switch st := g.state.(type) {
	case Walking:
		if g.facing == FacingLeft {
			if b.WalkLeft != nil {
				return b.WalkLeft, false
			}
			return b.Walk, true
		}
		return b.Walk, false
	case Dragging:
		return b.Drag, false
	case Falling:
		return b.Fall, false
	case Reacting:
		return st.Clip, false
	default:
		if g.hovered && b.Hover != nil {
			return b.Hover, false
		}
		return b.Idle, false
	}
}

// applyClip switches to the clip of the current state, restarting playback
// when the clip changes or restart is set.
func (g *Instance) applyClip(restart bool) {
	c, flip := g.selectClip()
	g.flip = flip
	if c != g.clip || restart {
		g.clip = c
		g.play = Playhead{}
	}
}

// transition moves g along the edge to the given state and runs its entry
// actions. Undefined edges return a *TransitionError and leave g unchanged.
func (s *Scene) transition(g *Instance, to BehaviorState) error {
	from := g.state
	if !CanTransition(from.Kind(), to.Kind()) {
		return &TransitionError{ID: g.id, From: from.Kind(), To: to.Kind()}
	}
	if from.Kind() == StateDragging {
		s.endDrag(g)
	}

	g.state = to
	g.stateElapsed = 0
	g.walk = nil
	switch st := to.(type) {
	case Walking:
		if st.Target.X < g.pos.X {
			g.facing = FacingLeft
		} else if st.Target.X > g.pos.X {
			g.facing = FacingRight
		}
		g.walk = newWalkTween(g.pos, st.Target, g.def.Speed)
	case Dragging:
		s.dragOwner = g.id
		s.router.Capture(g.id)
		s.raise(g)
	}
	g.applyClip(true)

	if s.debug {
		s.stats.transitions++
	}
	s.fireTransition(g, from, to)
	return nil
}

// endDrag drops the drag ownership and pointer capture held by g.
func (s *Scene) endDrag(g *Instance) {
	if s.dragOwner == g.id {
		s.dragOwner = 0
	}
	if s.router.Captured() == g.id {
		s.router.Release()
	}
}

// handleInput applies one semantic event to its target.
func (s *Scene) handleInput(g *Instance, ev InputEvent) error {
	switch ev.Kind {
	case InputPressOn:
		k := g.state.Kind()
		if k != StateIdle && k != StateWalking {
			return nil
		}
		if s.dragOwner != 0 && s.dragOwner != g.id {
			return nil
		}
		g.inputTick = true
		return s.transition(g, Dragging{GrabOffset: ev.Pos.Sub(g.pos)})

	case InputDragTo:
		if st, ok := g.state.(Dragging); ok {
			g.pos = ev.Pos.Sub(st.GrabOffset)
		}

	case InputReleaseOn:
		st, ok := g.state.(Dragging)
		if !ok {
			return nil
		}
		g.pos = ev.Pos.Sub(st.GrabOffset)
		g.inputTick = true
		return s.drop(g)

	case InputClick:
		if st, ok := g.state.(Reacting); ok && st.Despawn {
			return nil
		}
		if ev.Click == ClickSingle && g.def.ClickToggles {
			g.follow = !g.follow
		}
		clip := g.def.Clips.Reactions[ev.Click]
		if clip == nil {
			// A press that never moved still owns the drag.
			if g.state.Kind() == StateDragging {
				g.inputTick = true
				return s.transition(g, Idle{Dwell: s.drawDwell(g.def)})
			}
			return nil
		}
		g.inputTick = true
		return s.transition(g, Reacting{Clip: clip, Timeout: g.def.ReactionTimeout})

	case InputHoverEnter:
		g.hovered = true
		if g.state.Kind() == StateIdle {
			g.applyClip(false)
		}

	case InputHoverLeave:
		g.hovered = false
		if g.state.Kind() == StateIdle {
			g.applyClip(false)
		}
	}
	return nil
}

// drop ends a drag: the instance is pulled back inside the usable bounds and
// either falls, plays its release reaction or settles.
func (s *Scene) drop(g *Instance) error {
	space := s.bounds.originSpace(g.def.Size())
	g.pos = space.clamp(g.pos)
	switch {
	case g.def.FallOnRelease:
		return s.transition(g, Falling{})
	case g.def.Clips.Release != nil:
		return s.transition(g, Reacting{Clip: g.def.Clips.Release, Timeout: g.def.ReactionTimeout})
	}
	return s.transition(g, Idle{Dwell: s.drawDwell(g.def)})
}

// step advances g by dt: autonomous timers, motion and animation. Instances
// that changed state from input this tick skip their timer transitions.
func (s *Scene) step(g *Instance, dt time.Duration) error {
	if dt < 0 {
		dt = 0
	}
	g.stateElapsed += dt
	auto := !g.inputTick
	space := s.bounds.originSpace(g.def.Size())

	switch st := g.state.(type) {
	case Idle:
		if auto && g.stateElapsed >= st.Dwell {
			if g.def.Speed <= 0 {
				g.state = Idle{Dwell: s.drawDwell(g.def)}
				g.stateElapsed = 0
				break
			}
			if err := s.transition(g, Walking{Target: s.pickWalkTarget(g, space)}); err != nil {
				return err
			}
		}

	case Walking:
		if g.walk == nil {
			g.walk = newWalkTween(g.pos, st.Target, g.def.Speed)
		}
		pos, arrived := g.walk.update(dt)
		clamped := space.clamp(pos)
		g.pos = clamped
		if auto && (arrived || clamped != pos) {
			if err := s.transition(g, Idle{Dwell: s.drawDwell(g.def)}); err != nil {
				return err
			}
		}

	case Falling:
		sec := dt.Seconds()
		v := st.Velocity
		v.Y += g.def.Gravity * sec
		g.pos = g.pos.Add(Vec2{X: v.X * sec, Y: v.Y * sec})
		g.state = Falling{Velocity: v}
		bottom := space.Y + space.Height
		if g.pos.Y >= bottom {
			g.pos = space.clamp(g.pos)
			if auto {
				if err := s.transition(g, Idle{Dwell: s.drawDwell(g.def)}); err != nil {
					return err
				}
			}
		}
	}

	var res PlayResult
	g.play, res = Advance(g.clip, g.play, dt)

	if st, ok := g.state.(Reacting); ok && auto {
		if res != PlayContinue || g.stateElapsed >= st.Timeout {
			if st.Despawn {
				s.remove(g)
				return nil
			}
			if err := s.transition(g, Idle{Dwell: s.drawDwell(g.def)}); err != nil {
				return err
			}
		}
	}

	if g.play.Frame < 0 || g.play.Frame >= g.clip.Len() {
		return fmt.Errorf("gremlin: instance %d frame %d outside clip %q (%d frames)",
			g.id, g.play.Frame, g.clip.Name, g.clip.Len())
	}
	return nil
}

// drawDwell returns an idle duration drawn uniformly from the definition's
// interval.
func (s *Scene) drawDwell(def *Definition) time.Duration {
	span := def.IdleMax - def.IdleMin
	if span <= 0 {
		return def.IdleMin
	}
	return def.IdleMin + time.Duration(s.rng.Int64N(int64(span)+1))
}
