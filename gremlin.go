package gremlin

import (
	"errors"
	"math"
)

// Vec2 is a 2D vector used for positions, offsets and velocities in screen
// pixels.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other. A zero
// rectangle is treated as empty.
func (r Rect) Union(other Rect) Rect {
	if r == (Rect{}) {
		return other
	}
	if other == (Rect{}) {
		return r
	}
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.X+r.Width, other.X+other.Width)
	y1 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// originSpace returns the region a w×h box's top-left corner may occupy while
// the whole box stays inside r. Boxes larger than r pin to r's origin.
func (r Rect) originSpace(w, h float64) Rect {
	return Rect{
		X:      r.X,
		Y:      r.Y,
		Width:  math.Max(0, r.Width-w),
		Height: math.Max(0, r.Height-h),
	}
}

// clamp returns p moved to the nearest point inside r.
func (r Rect) clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Min(math.Max(p.X, r.X), r.X+r.Width),
		Y: math.Min(math.Max(p.Y, r.Y), r.Y+r.Height),
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// Facing is the horizontal direction a gremlin looks at.
type Facing int8

const (
	FacingRight Facing = iota
	FacingLeft
)

// ID identifies a live gremlin instance within a Scene. Zero is never assigned.
type ID uint32

// Errors reported by the core. Callers test with errors.Is.
var (
	// ErrMalformedSheet reports a sprite sheet or clip binding that references
	// frames or clips that do not exist.
	ErrMalformedSheet = errors.New("gremlin: malformed sprite sheet")
	// ErrUnreadableImage reports a sheet image that cannot be opened or decoded.
	ErrUnreadableImage = errors.New("gremlin: unreadable image")
	// ErrInvalidDefinition reports movement or timing values that cannot drive
	// the behavior machine.
	ErrInvalidDefinition = errors.New("gremlin: invalid definition")
	// ErrInvalidTransition reports a state change along an undefined edge.
	// It always indicates a bug in the behavior machine.
	ErrInvalidTransition = errors.New("gremlin: invalid transition")
	// ErrUnknownInstance reports an operation on an id that is not live.
	ErrUnknownInstance = errors.New("gremlin: unknown instance")
)
