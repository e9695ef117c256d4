package gremlin

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePlatform struct {
	cursor  Vec2
	events  [][]RawPointerEvent
	regions map[ID]Rect
	sets    int
	bounds  Rect
	ticks   int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{regions: make(map[ID]Rect), bounds: testBounds}
}

func (p *fakePlatform) CursorPosition() (Vec2, bool) { return p.cursor, true }

func (p *fakePlatform) SetWindowRegion(id ID, r Rect) {
	p.sets++
	if r == (Rect{}) {
		delete(p.regions, id)
		return
	}
	p.regions[id] = r
}

func (p *fakePlatform) PollInputEvents() []RawPointerEvent {
	if len(p.events) == 0 {
		return nil
	}
	ev := p.events[0]
	p.events = p.events[1:]
	return ev
}

func (p *fakePlatform) FrameTick() time.Duration {
	p.ticks++
	return tick
}

func (p *fakePlatform) UsableBounds() Rect { return p.bounds }

type fakeRenderer struct {
	frames int
	last   DrawList
	err    error
}

func (r *fakeRenderer) Render(list DrawList) error {
	r.frames++
	r.last = list
	return r.err
}

func TestDriver_Step(t *testing.T) {
	s := testScene()
	p := newFakePlatform()
	r := &fakeRenderer{}
	d := NewDriver(s, p, r)
	g := mustSpawn(t, s, testDefinition(t, nil), Vec2{10, 10})

	p.events = [][]RawPointerEvent{{press(15, 15), move(100, 100)}}
	p.cursor = Vec2{300, 200}
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.frames != 1 || len(r.last) != 1 {
		t.Fatalf("frames = %d commands = %d", r.frames, len(r.last))
	}
	if g.State().Kind() != StateDragging {
		t.Errorf("state = %v, want Dragging", g.State().Kind())
	}
	if !s.cursorValid || s.cursor != (Vec2{300, 200}) {
		t.Errorf("cursor = %v valid = %v", s.cursor, s.cursorValid)
	}
	if want := g.Bounds(); p.regions[g.ID()] != want {
		t.Errorf("region = %v, want %v", p.regions[g.ID()], want)
	}
}

func TestDriver_RegionsOnlyPushedOnChange(t *testing.T) {
	s := testScene()
	p := newFakePlatform()
	d := NewDriver(s, p, &fakeRenderer{})
	g := mustSpawn(t, s, testDefinition(t, nil), Vec2{10, 10})

	for range 3 {
		if err := d.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if p.sets != 1 {
		t.Errorf("SetWindowRegion calls = %d, want 1 for a still instance", p.sets)
	}
	if err := s.Despawn(g.ID()); err != nil {
		t.Fatal(err)
	}
	if err := d.Step(); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.regions[g.ID()]; ok || p.sets != 2 {
		t.Errorf("region not cleared: regions = %v sets = %d", p.regions, p.sets)
	}
}

func TestDriver_FollowsBounds(t *testing.T) {
	s := NewScene(Rect{})
	p := newFakePlatform()
	d := NewDriver(s, p, &fakeRenderer{})
	p.bounds = Rect{X: 0, Y: 0, Width: 1024, Height: 700}
	if err := d.Step(); err != nil {
		t.Fatal(err)
	}
	if s.Bounds() != p.bounds {
		t.Errorf("Bounds = %v, want %v", s.Bounds(), p.bounds)
	}
}

func TestDriver_UpdateFunc(t *testing.T) {
	s := testScene()
	r := &fakeRenderer{}
	d := NewDriver(s, newFakePlatform(), r)
	def := testDefinition(t, nil)
	calls := 0
	d.SetUpdateFunc(func() error {
		calls++
		if calls == 1 {
			_, err := s.Spawn(def, Vec2{})
			return err
		}
		return nil
	})
	if err := d.Step(); err != nil {
		t.Fatal(err)
	}
	if len(r.last) != 1 {
		t.Errorf("instance spawned by the update func not drawn on the same step")
	}

	stop := errors.New("stop")
	d.SetUpdateFunc(func() error { return stop })
	if err := d.Step(); !errors.Is(err, stop) {
		t.Errorf("err = %v, want update error", err)
	}
}

func TestDriver_RenderError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDriver(testScene(), newFakePlatform(), &fakeRenderer{err: boom})
	if err := d.Step(); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped render error", err)
	}
}

func TestDriver_CursorSampler(t *testing.T) {
	s := testScene()
	p := newFakePlatform()
	d := NewDriver(s, p, &fakeRenderer{})
	c := NewCursorSampler(func() (Vec2, bool) { return Vec2{7, 8}, true }, 0)
	d.SetCursorSampler(c)

	if err := d.Step(); err != nil {
		t.Fatal(err)
	}
	if s.cursorValid {
		t.Error("cursor should be invalid before the first sample")
	}
	c.Sample()
	if err := d.Step(); err != nil {
		t.Fatal(err)
	}
	if !s.cursorValid || s.cursor != (Vec2{7, 8}) {
		t.Errorf("cursor = %v valid = %v, want (7,8)", s.cursor, s.cursorValid)
	}
}

func TestDriver_RunStopsOnCancel(t *testing.T) {
	p := newFakePlatform()
	r := &fakeRenderer{}
	d := NewDriver(testScene(), p, r)
	ctx, cancel := context.WithCancel(context.Background())
	d.SetUpdateFunc(func() error {
		if p.ticks == 5 {
			cancel()
		}
		return nil
	})
	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}
	if r.frames != 5 {
		t.Errorf("frames = %d, want 5", r.frames)
	}
}
