package gremlin

import (
	"errors"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSpriteSheet_FrameOutsideGrid(t *testing.T) {
	// 5×5 grid holds frames 0..24.
	_, err := NewSpriteSheet([]image.Image{testPage(5, 5)}, SheetGeometry{
		FrameWidth:  testFrame,
		FrameHeight: testFrame,
		Clips:       []ClipSpec{{Name: "idle", Frames: []int{0, 40}}},
	})
	if !errors.Is(err, ErrMalformedSheet) {
		t.Fatalf("err = %v, want ErrMalformedSheet", err)
	}
}

func TestNewSpriteSheet_Invalid(t *testing.T) {
	page := []image.Image{testPage(4, 2)}
	tests := []struct {
		name  string
		pages []image.Image
		geom  SheetGeometry
		want  error
	}{
		{"no pages", nil, SheetGeometry{FrameWidth: 32, FrameHeight: 32}, ErrMalformedSheet},
		{"zero frame size", page, SheetGeometry{FrameWidth: 0, FrameHeight: 32}, ErrMalformedSheet},
		{"frame larger than page", page, SheetGeometry{FrameWidth: 256, FrameHeight: 32}, ErrMalformedSheet},
		{"columns do not fit", page, SheetGeometry{FrameWidth: 32, FrameHeight: 32, Columns: 5}, ErrMalformedSheet},
		{"nil page", []image.Image{nil}, SheetGeometry{FrameWidth: 32, FrameHeight: 32}, ErrUnreadableImage},
		{"unnamed clip", page, SheetGeometry{
			FrameWidth: 32, FrameHeight: 32,
			Clips: []ClipSpec{{Frames: []int{0}}},
		}, ErrMalformedSheet},
		{"duplicate clip", page, SheetGeometry{
			FrameWidth: 32, FrameHeight: 32,
			Clips: []ClipSpec{{Name: "a", Frames: []int{0}}, {Name: "a", Frames: []int{1}}},
		}, ErrMalformedSheet},
		{"empty clip", page, SheetGeometry{
			FrameWidth: 32, FrameHeight: 32,
			Clips: []ClipSpec{{Name: "a"}},
		}, ErrMalformedSheet},
		{"negative frame", page, SheetGeometry{
			FrameWidth: 32, FrameHeight: 32,
			Clips: []ClipSpec{{Name: "a", Frames: []int{-1}}},
		}, ErrMalformedSheet},
		{"missing page", page, SheetGeometry{
			FrameWidth: 32, FrameHeight: 32,
			Clips: []ClipSpec{{Name: "a", Page: 1, Frames: []int{0}}},
		}, ErrMalformedSheet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpriteSheet(tt.pages, tt.geom)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewSpriteSheet_DefaultFrameDuration(t *testing.T) {
	sheet, err := NewSpriteSheet([]image.Image{testPage(2, 1)}, SheetGeometry{
		FrameWidth:  testFrame,
		FrameHeight: testFrame,
		Clips:       []ClipSpec{{Name: "a", Frames: []int{0, 1}}},
	})
	if err != nil {
		t.Fatalf("NewSpriteSheet: %v", err)
	}
	c, ok := sheet.Clip("a")
	if !ok {
		t.Fatal("clip a missing")
	}
	if c.FrameDuration != DefaultFrameDuration {
		t.Errorf("FrameDuration = %v, want %v", c.FrameDuration, DefaultFrameDuration)
	}
	if c.Duration() != 2*DefaultFrameDuration {
		t.Errorf("Duration = %v, want %v", c.Duration(), 2*DefaultFrameDuration)
	}
}

func TestRegion_RowMajor(t *testing.T) {
	sheet, err := NewSpriteSheet([]image.Image{testPage(10, 2)}, SheetGeometry{
		FrameWidth:  testFrame,
		FrameHeight: testFrame,
		Clips:       []ClipSpec{{Name: "a", Frames: []int{0, 9, 13}}},
	})
	if err != nil {
		t.Fatalf("NewSpriteSheet: %v", err)
	}
	c, _ := sheet.Clip("a")
	tests := []struct {
		frame int
		want  image.Rectangle
	}{
		{0, image.Rect(0, 0, 32, 32)},
		{1, image.Rect(288, 0, 320, 32)},
		{2, image.Rect(96, 32, 128, 64)},
	}
	for _, tt := range tests {
		if got := sheet.Region(c, tt.frame).Rect; got != tt.want {
			t.Errorf("Region(%d) = %v, want %v", tt.frame, got, tt.want)
		}
	}
}

func TestRegion_HonorsImageOrigin(t *testing.T) {
	page := image.NewNRGBA(image.Rect(10, 20, 10+64, 20+32))
	sheet, err := NewSpriteSheet([]image.Image{page}, SheetGeometry{
		FrameWidth:  testFrame,
		FrameHeight: testFrame,
		Clips:       []ClipSpec{{Name: "a", Frames: []int{1}}},
	})
	if err != nil {
		t.Fatalf("NewSpriteSheet: %v", err)
	}
	c, _ := sheet.Clip("a")
	if got, want := sheet.Region(c, 0).Rect, image.Rect(42, 20, 74, 52); got != want {
		t.Errorf("Region = %v, want %v", got, want)
	}
}

func TestRegion_ColumnsOverride(t *testing.T) {
	// A 100px page declared as 2 columns; the rest is padding.
	page := image.NewNRGBA(image.Rect(0, 0, 100, 32))
	sheet, err := NewSpriteSheet([]image.Image{page}, SheetGeometry{
		FrameWidth:  32,
		FrameHeight: 32,
		Columns:     2,
		Clips:       []ClipSpec{{Name: "a", Frames: []int{0, 1}}},
	})
	if err != nil {
		t.Fatalf("NewSpriteSheet: %v", err)
	}
	c, _ := sheet.Clip("a")
	if got := sheet.Region(c, 1).Rect.Min.X; got != 32 {
		t.Errorf("frame 1 x = %d, want 32", got)
	}
	_, err = NewSpriteSheet([]image.Image{page}, SheetGeometry{
		FrameWidth:  32,
		FrameHeight: 32,
		Columns:     2,
		Clips:       []ClipSpec{{Name: "a", Frames: []int{2}}},
	})
	if !errors.Is(err, ErrMalformedSheet) {
		t.Errorf("frame beyond declared columns: err = %v, want ErrMalformedSheet", err)
	}
}

// Every frame a sheet accepts must map to a region inside its page, and
// every frame outside the grid must be rejected.
func TestSpriteSheet_RandomGrids(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 200 {
		cols, rows := 1+rng.IntN(12), 1+rng.IntN(6)
		fw, fh := 1+rng.IntN(48), 1+rng.IntN(48)
		page := image.NewNRGBA(image.Rect(0, 0, cols*fw+rng.IntN(fw), rows*fh+rng.IntN(fh)))

		n := 1 + rng.IntN(10)
		frames := make([]int, n)
		valid := true
		for j := range frames {
			frames[j] = rng.IntN(cols*rows + 4)
			if frames[j] >= cols*rows {
				valid = false
			}
		}

		sheet, err := NewSpriteSheet([]image.Image{page}, SheetGeometry{
			FrameWidth:  fw,
			FrameHeight: fh,
			Clips:       []ClipSpec{{Name: "c", Frames: frames}},
		})
		if !valid {
			if !errors.Is(err, ErrMalformedSheet) {
				t.Fatalf("case %d: %dx%d grid, frames %v: err = %v, want ErrMalformedSheet", i, cols, rows, frames, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %d: %dx%d grid, frames %v: %v", i, cols, rows, frames, err)
		}
		c, _ := sheet.Clip("c")
		for j := range c.Frames {
			r := sheet.Region(c, j).Rect
			if !r.In(page.Bounds()) {
				t.Fatalf("case %d: frame %d region %v outside page %v", i, c.Frames[j], r, page.Bounds())
			}
			if r.Dx() != fw || r.Dy() != fh {
				t.Fatalf("case %d: region %v is not %dx%d", i, r, fw, fh)
			}
		}
	}
}

func TestLoadSheet_Unreadable(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	geom := SheetGeometry{FrameWidth: 32, FrameHeight: 32}
	for _, path := range []string{filepath.Join(dir, "missing.png"), garbage} {
		if _, err := LoadSheet(path, geom); !errors.Is(err, ErrUnreadableImage) {
			t.Errorf("LoadSheet(%s) err = %v, want ErrUnreadableImage", filepath.Base(path), err)
		}
	}
}

func TestLoadSheet_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.png")
	writePNG(t, path, testPage(4, 2))
	sheet, err := LoadSheet(path, SheetGeometry{
		FrameWidth:  testFrame,
		FrameHeight: testFrame,
		Clips:       []ClipSpec{{Name: "idle", Frames: []int{0, 7}, Loop: true}},
	})
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if w, h := sheet.FrameSize(); w != 32 || h != 32 {
		t.Errorf("FrameSize = %dx%d, want 32x32", w, h)
	}
	if sheet.NumPages() != 1 {
		t.Errorf("NumPages = %d, want 1", sheet.NumPages())
	}
	if names := sheet.ClipNames(); len(names) != 1 || names[0] != "idle" {
		t.Errorf("ClipNames = %v, want [idle]", names)
	}
}
