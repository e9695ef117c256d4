package gremlin

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"
)

const testFrame = 32

// testPage returns a cols×rows grid of 32px frames.
func testPage(cols, rows int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols*testFrame, rows*testFrame))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	return img
}

// writePNG encodes img to path, failing the test on error.
func writePNG(t testing.TB, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func frames(start, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// testSheet is an 8×4 grid with one clip per behavior.
func testSheet(t testing.TB) *SpriteSheet {
	t.Helper()
	d := 50 * time.Millisecond
	sheet, err := NewSpriteSheet([]image.Image{testPage(8, 4)}, SheetGeometry{
		FrameWidth:  testFrame,
		FrameHeight: testFrame,
		Clips: []ClipSpec{
			{Name: "idle", Frames: frames(0, 4), FrameDuration: d, Loop: true},
			{Name: "hover", Frames: frames(4, 2), FrameDuration: d, Loop: true},
			{Name: "walk", Frames: frames(8, 4), FrameDuration: d, Loop: true},
			{Name: "walk_left", Frames: frames(12, 4), FrameDuration: d, Loop: true},
			{Name: "grab", Frames: frames(16, 2), FrameDuration: d, Loop: true},
			{Name: "fall", Frames: frames(20, 2), FrameDuration: d, Loop: true},
			{Name: "poke", Frames: frames(24, 4), FrameDuration: d},
			{Name: "pat", Frames: frames(28, 2), FrameDuration: d},
			{Name: "intro", Frames: frames(30, 2), FrameDuration: d},
			{Name: "outro", Frames: frames(30, 2), FrameDuration: d},
		},
	})
	if err != nil {
		t.Fatalf("NewSpriteSheet: %v", err)
	}
	return sheet
}

// testSpec binds idle, walk, grab, fall and a click reaction. The idle
// interval is long so instances stay put unless a test shortens it.
func testSpec() DefinitionSpec {
	return DefinitionSpec{
		Name: "test",
		States: StateBindings{
			Idle: "idle",
			Walk: "walk",
			Drag: "grab",
			Fall: "fall",
		},
		Reactions: ReactionBindings{
			Click:      "poke",
			RightClick: "pat",
		},
		Movement: MovementSpec{
			IdleMinMS: int(time.Hour / time.Millisecond),
			IdleMaxMS: int(time.Hour / time.Millisecond),
		},
	}
}

func testDefinition(t testing.TB, mutate func(*DefinitionSpec)) *Definition {
	t.Helper()
	spec := testSpec()
	if mutate != nil {
		mutate(&spec)
	}
	def, err := NewDefinition(spec, testSheet(t))
	if err != nil {
		t.Fatalf("NewDefinition: %v", err)
	}
	return def
}

var testBounds = Rect{Width: 800, Height: 600}

func testScene() *Scene {
	s := NewScene(testBounds)
	s.SetSeed(1)
	return s
}

func mustSpawn(t testing.TB, s *Scene, def *Definition, pos Vec2) *Instance {
	t.Helper()
	id, err := s.Spawn(def, pos)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	g, ok := s.Instance(id)
	if !ok {
		t.Fatalf("spawned instance %d not found", id)
	}
	return g
}

const tick = 16 * time.Millisecond

func tickN(s *Scene, n int, dt time.Duration) DrawList {
	var list DrawList
	for range n {
		list = s.Tick(dt, nil)
	}
	return list
}
