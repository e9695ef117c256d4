package gremlin

import "time"

// Playhead is a position within a clip: the frame being shown and how long
// it has been shown.
type Playhead struct {
	Frame   int
	Elapsed time.Duration
}

// PlayResult reports what happened to a playhead during Advance.
type PlayResult uint8

const (
	PlayContinue PlayResult = iota // still within the clip
	PlayLooped                     // a looping clip wrapped past its last frame
	PlayFinished                   // a one-shot clip has shown its last frame in full
)

// Advance moves p forward by dt within c. It is a pure function of its
// arguments: dt <= 0 returns p unchanged with PlayContinue (or PlayFinished
// when a one-shot clip is already done).
//
// Looping clips wrap the frame modulo the clip length and report PlayLooped
// when at least one wrap happened. One-shot clips clamp at the last frame and
// report PlayFinished once its duration has fully elapsed, and on every call
// after that.
func Advance(c *Clip, p Playhead, dt time.Duration) (Playhead, PlayResult) {
	last := len(c.Frames) - 1
	d := c.FrameDuration
	if d <= 0 {
		d = DefaultFrameDuration
	}
	if p.Frame < 0 || p.Frame > last {
		p = Playhead{}
	}

	if !c.Loop && p.Frame == last && p.Elapsed >= d {
		return p, PlayFinished
	}
	if dt <= 0 {
		return p, PlayContinue
	}

	result := PlayContinue
	p.Elapsed += dt
	for p.Elapsed >= d {
		if p.Frame == last {
			if !c.Loop {
				p.Elapsed = d
				return p, PlayFinished
			}
			p.Elapsed -= d
			p.Frame = 0
			result = PlayLooped
			continue
		}
		p.Elapsed -= d
		p.Frame++
	}
	return p, result
}
