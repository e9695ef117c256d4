// Package ebitenplatform runs a gremlin scene in a transparent, undecorated,
// always-on-top Ebitengine window that covers the monitor. Clicks outside
// every gremlin pass through to the windows below.
package ebitenplatform

import (
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/gremlin"
)

// Config holds window and loop options. Zero values take the defaults noted
// on each field.
type Config struct {
	// Title is the window title, mostly visible in task switchers.
	// Default "gremlin".
	Title string
	// TPS is the tick rate. Default 60.
	TPS int
	// Debug draws an FPS/TPS readout and outlines every instance region.
	Debug bool
	// ScreenshotDir is where script "screenshot" steps write PNGs.
	// Default "screenshots".
	ScreenshotDir string
	// Bounds overrides the usable screen area. Default is the whole monitor.
	Bounds gremlin.Rect
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "gremlin"
	}
	if c.TPS <= 0 {
		c.TPS = 60
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "screenshots"
	}
}

// Platform implements gremlin.Platform, gremlin.Renderer,
// gremlin.BoundsSource and ebiten.Game.
type Platform struct {
	cfg     Config
	driver  *gremlin.Driver
	update  func() error
	sampler *gremlin.CursorSampler

	quit    atomic.Bool
	leaving bool // outros started, waiting for the scene to empty

	width, height int

	// Input state
	prev    pointerSnapshot
	events  []gremlin.RawPointerEvent
	regions map[gremlin.ID]gremlin.Rect

	passthrough bool

	// Render state
	list            gremlin.DrawList
	pages           map[image.Image]*cachedPage
	frame           uint64
	screenshotQueue []string
	fps             *fpsOverlay
}

// New creates a platform. Call Run to open the window.
func New(cfg Config) *Platform {
	cfg.applyDefaults()
	return &Platform{
		cfg:     cfg,
		regions: make(map[gremlin.ID]gremlin.Rect),
		pages:   make(map[image.Image]*cachedPage),
	}
}

// Run configures the overlay window and blocks running scene until the window
// is closed or a tick fails.
func (p *Platform) Run(scene *gremlin.Scene) error {
	p.width, p.height = ebiten.Monitor().Size()

	ebiten.SetWindowTitle(p.cfg.Title)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowSize(p.width, p.height)
	ebiten.SetWindowPosition(0, 0)
	ebiten.SetTPS(p.cfg.TPS)
	ebiten.SetWindowMousePassthrough(true)
	p.passthrough = true

	scene.SetBounds(p.UsableBounds())
	scene.SetScreenshotHandler(p.Screenshot)
	p.driver = gremlin.NewDriver(scene, p, p)
	p.driver.SetUpdateFunc(p.update)
	if p.sampler != nil {
		p.driver.SetCursorSampler(p.sampler)
	}
	ebiten.SetWindowClosingHandled(true)
	if p.cfg.Debug {
		p.fps = newFPSOverlay()
	}

	if err := ebiten.RunGameWithOptions(p, &ebiten.RunGameOptions{ScreenTransparent: true}); err != nil {
		return fmt.Errorf("ebitenplatform: run: %w", err)
	}
	return nil
}

// SetUpdateFunc sets a function run on the game loop before every scene
// tick. Use it to spawn instances or apply reloaded definitions.
func (p *Platform) SetUpdateFunc(fn func() error) {
	p.update = fn
}

// SetCursorSampler makes the scene read the cursor from c instead of polling
// it every tick. The caller runs c.
func (p *Platform) SetCursorSampler(c *gremlin.CursorSampler) {
	p.sampler = c
}

// Quit asks every gremlin to play its outro and ends Run once all of them
// are gone. Escape and closing the window do the same. Safe to call from any
// goroutine.
func (p *Platform) Quit() {
	p.quit.Store(true)
}

// dismissAll starts the outro of every live instance.
func (p *Platform) dismissAll() {
	p.leaving = true
	scene := p.driver.Scene()
	for _, g := range scene.Instances() {
		_ = scene.Dismiss(g.ID())
	}
}

// --- ebiten.Game ---

// Update samples the pointer and runs one driver step.
func (p *Platform) Update() error {
	if ebiten.IsWindowBeingClosed() || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		p.Quit()
	}
	if p.quit.Load() && !p.leaving {
		p.dismissAll()
	}
	p.collectInput()
	if err := p.driver.Step(); err != nil {
		return err
	}
	if p.leaving && p.driver.Scene().Len() == 0 {
		return ebiten.Termination
	}
	p.updatePassthrough()
	if p.fps != nil {
		p.fps.update(1/float64(p.cfg.TPS), len(p.list))
	}
	return nil
}

// Draw presents the draw list of the last tick.
func (p *Platform) Draw(screen *ebiten.Image) {
	p.drawList(screen)
	if p.cfg.Debug {
		p.drawDebug(screen)
	}
	p.flushScreenshots(screen)
}

// Layout keeps one logical pixel per screen pixel.
func (p *Platform) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// --- gremlin.Platform ---

// CursorPosition returns the cursor in screen coordinates. The window sits at
// the monitor origin, so window and screen coordinates agree.
func (p *Platform) CursorPosition() (gremlin.Vec2, bool) {
	x, y := ebiten.CursorPosition()
	return gremlin.Vec2{X: float64(x), Y: float64(y)}, true
}

// SetWindowRegion records the input region of an instance. A zero Rect
// removes it.
func (p *Platform) SetWindowRegion(id gremlin.ID, r gremlin.Rect) {
	if r == (gremlin.Rect{}) {
		delete(p.regions, id)
		return
	}
	p.regions[id] = r
}

// PollInputEvents returns the events collected at the start of this Update.
func (p *Platform) PollInputEvents() []gremlin.RawPointerEvent {
	return p.events
}

// FrameTick returns the fixed tick duration. Ebitengine paces Update itself.
func (p *Platform) FrameTick() time.Duration {
	return time.Second / time.Duration(p.cfg.TPS)
}

// UsableBounds returns the configured bounds, or the monitor area.
func (p *Platform) UsableBounds() gremlin.Rect {
	if p.cfg.Bounds != (gremlin.Rect{}) {
		return p.cfg.Bounds
	}
	return gremlin.Rect{Width: float64(p.width), Height: float64(p.height)}
}

// updatePassthrough lets clicks through the window unless the cursor is over
// an instance or a drag is running.
func (p *Platform) updatePassthrough() {
	cur, _ := p.CursorPosition()
	captured := p.driver.Scene().Router().Captured() != 0
	want := passthroughWanted(p.regions, cur, captured)
	if want != p.passthrough {
		ebiten.SetWindowMousePassthrough(want)
		p.passthrough = want
	}
}

func passthroughWanted(regions map[gremlin.ID]gremlin.Rect, cur gremlin.Vec2, captured bool) bool {
	if captured {
		return false
	}
	for _, r := range regions {
		if r.Contains(cur.X, cur.Y) {
			return false
		}
	}
	return true
}
