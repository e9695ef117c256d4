package gremlin

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// arriveEpsilon is the distance in pixels at which a walk counts as arrived.
const arriveEpsilon = 0.5

// walkTween moves a position toward a target at constant speed. Each axis is
// a gween tween sharing one duration, so both arrive together.
type walkTween struct {
	x, y   *gween.Tween
	target Vec2
	done   bool
}

// newWalkTween creates a tween from -> to at speed px/s. A zero-length or
// zero-speed walk is done immediately.
func newWalkTween(from, to Vec2, speed float64) *walkTween {
	dist := to.Sub(from).Len()
	w := &walkTween{target: to}
	if dist < arriveEpsilon || speed <= 0 {
		w.done = true
		return w
	}
	dur := float32(dist / speed)
	w.x = gween.New(float32(from.X), float32(to.X), dur, ease.Linear)
	w.y = gween.New(float32(from.Y), float32(to.Y), dur, ease.Linear)
	return w
}

// update advances the tween by dt and returns the new position and whether
// the target was reached. On arrival the exact target is returned.
func (w *walkTween) update(dt time.Duration) (Vec2, bool) {
	if w.done {
		return w.target, true
	}
	sec := float32(dt.Seconds())
	x, doneX := w.x.Update(sec)
	y, doneY := w.y.Update(sec)
	pos := Vec2{X: float64(x), Y: float64(y)}
	if (doneX && doneY) || w.target.Sub(pos).Len() < arriveEpsilon {
		w.done = true
		return w.target, true
	}
	return pos, false
}

// pickWalkTarget chooses where an idle gremlin walks next: the cursor when
// the instance follows it and a sample exists, else a random point within
// the wander radius. The result is clamped to space, the region its origin
// may occupy.
func (s *Scene) pickWalkTarget(g *Instance, space Rect) Vec2 {
	if g.follow && s.cursorValid {
		w, h := g.def.Size()
		return space.clamp(s.cursor.Sub(Vec2{w / 2, h / 2}))
	}
	angle := s.rng.Float64() * 2 * math.Pi
	r := g.def.WanderRadius * math.Sqrt(s.rng.Float64())
	return space.clamp(Vec2{
		X: g.pos.X + r*math.Cos(angle),
		Y: g.pos.Y + r*math.Sin(angle),
	})
}
