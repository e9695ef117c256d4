package gremlin

import "image"

// DrawCommand draws one frame of one instance. Source is the frame's
// rectangle within Image; Dest is where it lands on screen, already scaled.
type DrawCommand struct {
	ID     ID
	Image  image.Image
	Source image.Rectangle
	Dest   Rect
	Layer  int // draw layer; math.MaxInt while the instance is dragged
	Z      int // position in the final draw order, bottom first
	FlipX  bool
}

// DrawList is an ordered set of draw commands, bottom first.
type DrawList []DrawCommand

// Regions returns the screen rectangle of every command, keyed by instance.
// Platforms use it to shape input passthrough.
func (l DrawList) Regions() map[ID]Rect {
	out := make(map[ID]Rect, len(l))
	for i := range l {
		out[l[i].ID] = l[i].Dest
	}
	return out
}

// Bounds returns the union of all destination rectangles.
func (l DrawList) Bounds() Rect {
	var r Rect
	for i := range l {
		r = r.Union(l[i].Dest)
	}
	return r
}

// buildDrawList emits one command per instance in painter order and sorts
// them by layer. The sort is stable, so painter order holds within a layer
// and the dragged instance ends up on top.
func (s *Scene) buildDrawList() DrawList {
	s.commands = s.commands[:0]
	for i, g := range s.instances {
		region := g.def.Sheet.Region(g.clip, g.play.Frame)
		s.commands = append(s.commands, DrawCommand{
			ID:     g.id,
			Image:  g.def.Sheet.Page(region.Page),
			Source: region.Rect,
			Dest:   g.Bounds(),
			Layer:  s.drawLayer(g),
			Z:      i,
			FlipX:  g.flip,
		})
	}
	s.mergeSort()
	for i := range s.commands {
		s.commands[i].Z = i
	}
	return s.commands
}

func commandLessOrEqual(a, b DrawCommand) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	return a.Z <= b.Z
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make(DrawList, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst DrawList, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for ; i < mid; i, k = i+1, k+1 {
		dst[k] = src[i]
	}
	for ; j < hi; j, k = j+1, k+1 {
		dst[k] = src[j]
	}
}
