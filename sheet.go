package gremlin

import (
	"fmt"
	"image"
	"os"
	"sort"
	"time"

	_ "image/gif"  // register GIF sheets
	_ "image/jpeg" // register JPEG sheets
	_ "image/png"  // register PNG sheets

	_ "golang.org/x/image/bmp"  // register BMP sheets
	_ "golang.org/x/image/webp" // register WebP sheets
)

// DefaultFrameDuration is the per-frame duration used when a clip declares
// none. It matches the 48 fps pump of the original desktop gremlin packs.
const DefaultFrameDuration = time.Second / 48

// Clip is a named ordered sequence of frames on one sheet page.
type Clip struct {
	Name          string
	Page          int           // page index within the owning SpriteSheet
	Frames        []int         // 0-based row-major frame indices
	FrameDuration time.Duration // time each frame stays on screen
	Loop          bool          // wrap at the end instead of clamping
}

// Len returns the number of frames in the clip.
func (c *Clip) Len() int { return len(c.Frames) }

// Duration returns the total play time of one pass through the clip.
func (c *Clip) Duration() time.Duration {
	return time.Duration(len(c.Frames)) * c.FrameDuration
}

// ClipSpec declares one clip of a SheetGeometry.
type ClipSpec struct {
	Name          string
	Page          int
	Frames        []int
	FrameDuration time.Duration
	Loop          bool
}

// SheetGeometry describes how sheet pages are divided into frames and which
// frames form each clip.
type SheetGeometry struct {
	FrameWidth  int
	FrameHeight int
	// Columns overrides the column count derived from page width / FrameWidth.
	// Zero derives it.
	Columns int
	Clips   []ClipSpec
}

// FrameRegion is the source rectangle of one frame within a sheet page.
type FrameRegion struct {
	Page int
	Rect image.Rectangle
}

// pageGrid is the frame grid of one page.
type pageGrid struct {
	columns int
	rows    int
}

// SpriteSheet holds decoded sheet pages and a validated table of clips.
// A SpriteSheet is never mutated after construction and may be shared by any
// number of instances and goroutines.
type SpriteSheet struct {
	pages       []image.Image
	grids       []pageGrid
	frameWidth  int
	frameHeight int
	clips       map[string]*Clip
}

// LoadSheet decodes the image at path and validates geom against it.
// Decode failures wrap ErrUnreadableImage; geometry that references frames
// outside the image grid wraps ErrMalformedSheet.
func LoadSheet(path string, geom SheetGeometry) (*SpriteSheet, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	return NewSpriteSheet([]image.Image{img}, geom)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	return img, nil
}

// NewSpriteSheet validates geom against already decoded pages.
func NewSpriteSheet(pages []image.Image, geom SheetGeometry) (*SpriteSheet, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrMalformedSheet)
	}
	if geom.FrameWidth <= 0 || geom.FrameHeight <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrMalformedSheet, geom.FrameWidth, geom.FrameHeight)
	}

	s := &SpriteSheet{
		pages:       pages,
		grids:       make([]pageGrid, len(pages)),
		frameWidth:  geom.FrameWidth,
		frameHeight: geom.FrameHeight,
		clips:       make(map[string]*Clip, len(geom.Clips)),
	}

	for i, page := range pages {
		if page == nil {
			return nil, fmt.Errorf("%w: page %d is nil", ErrUnreadableImage, i)
		}
		b := page.Bounds()
		cols := b.Dx() / geom.FrameWidth
		rows := b.Dy() / geom.FrameHeight
		if geom.Columns > 0 {
			if geom.Columns > cols {
				return nil, fmt.Errorf("%w: page %d is %dpx wide, %d columns of %dpx do not fit",
					ErrMalformedSheet, i, b.Dx(), geom.Columns, geom.FrameWidth)
			}
			cols = geom.Columns
		}
		if cols == 0 || rows == 0 {
			return nil, fmt.Errorf("%w: page %d (%dx%d) smaller than one %dx%d frame",
				ErrMalformedSheet, i, b.Dx(), b.Dy(), geom.FrameWidth, geom.FrameHeight)
		}
		s.grids[i] = pageGrid{columns: cols, rows: rows}
	}

	for _, spec := range geom.Clips {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: clip without a name", ErrMalformedSheet)
		}
		if _, dup := s.clips[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate clip %q", ErrMalformedSheet, spec.Name)
		}
		if spec.Page < 0 || spec.Page >= len(pages) {
			return nil, fmt.Errorf("%w: clip %q references page %d of %d",
				ErrMalformedSheet, spec.Name, spec.Page, len(pages))
		}
		if len(spec.Frames) == 0 {
			return nil, fmt.Errorf("%w: clip %q has no frames", ErrMalformedSheet, spec.Name)
		}
		grid := s.grids[spec.Page]
		limit := grid.columns * grid.rows
		for _, f := range spec.Frames {
			if f < 0 || f >= limit {
				return nil, fmt.Errorf("%w: clip %q frame %d outside %dx%d grid (%d frames)",
					ErrMalformedSheet, spec.Name, f, grid.columns, grid.rows, limit)
			}
		}
		d := spec.FrameDuration
		if d <= 0 {
			d = DefaultFrameDuration
		}
		s.clips[spec.Name] = &Clip{
			Name:          spec.Name,
			Page:          spec.Page,
			Frames:        append([]int(nil), spec.Frames...),
			FrameDuration: d,
			Loop:          spec.Loop,
		}
	}

	return s, nil
}

// Clip returns the named clip.
func (s *SpriteSheet) Clip(name string) (*Clip, bool) {
	c, ok := s.clips[name]
	return c, ok
}

// ClipNames returns the clip names in sorted order.
func (s *SpriteSheet) ClipNames() []string {
	names := make([]string, 0, len(s.clips))
	for name := range s.clips {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FrameSize returns the frame width and height in pixels.
func (s *SpriteSheet) FrameSize() (int, int) {
	return s.frameWidth, s.frameHeight
}

// Page returns the decoded image of page i.
func (s *SpriteSheet) Page(i int) image.Image {
	return s.pages[i]
}

// NumPages returns the number of pages.
func (s *SpriteSheet) NumPages() int {
	return len(s.pages)
}

// Region returns the source rectangle of the clip's frame at position
// frame (an index into clip.Frames, not a grid index). The page image's
// bounds origin is honored.
func (s *SpriteSheet) Region(c *Clip, frame int) FrameRegion {
	idx := c.Frames[frame]
	cols := s.grids[c.Page].columns
	origin := s.pages[c.Page].Bounds().Min
	x := origin.X + (idx%cols)*s.frameWidth
	y := origin.Y + (idx/cols)*s.frameHeight
	return FrameRegion{
		Page: c.Page,
		Rect: image.Rect(x, y, x+s.frameWidth, y+s.frameHeight),
	}
}
