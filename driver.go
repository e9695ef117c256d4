package gremlin

import (
	"context"
	"fmt"
)

// Driver runs the per-frame loop: platform tick, input, Scene.Tick, window
// regions, render.
type Driver struct {
	scene    *Scene
	platform Platform
	renderer Renderer
	bounds   BoundsSource
	cursor   *CursorSampler
	update   func() error

	regions map[ID]Rect
}

// NewDriver creates a driver for scene. When platform implements
// BoundsSource the scene bounds follow it every tick.
func NewDriver(scene *Scene, platform Platform, renderer Renderer) *Driver {
	d := &Driver{
		scene:    scene,
		platform: platform,
		renderer: renderer,
		regions:  make(map[ID]Rect),
	}
	if b, ok := platform.(BoundsSource); ok {
		d.bounds = b
	}
	return d
}

// Scene returns the driven scene.
func (d *Driver) Scene() *Scene {
	return d.scene
}

// SetCursorSampler makes the driver read the cursor from c instead of asking
// the platform on the tick goroutine.
func (d *Driver) SetCursorSampler(c *CursorSampler) {
	d.cursor = c
}

// SetUpdateFunc sets a function called at the start of every Step, on the
// tick goroutine, before the scene is ticked. An error stops the loop.
func (d *Driver) SetUpdateFunc(fn func() error) {
	d.update = fn
}

// Step runs one frame.
func (d *Driver) Step() error {
	dt := d.platform.FrameTick()
	if d.bounds != nil {
		d.scene.SetBounds(d.bounds.UsableBounds())
	}
	if d.update != nil {
		if err := d.update(); err != nil {
			return err
		}
	}
	if d.cursor != nil {
		d.scene.SetCursor(d.cursor.Latest())
	} else {
		d.scene.SetCursor(d.platform.CursorPosition())
	}

	list := d.scene.Tick(dt, d.platform.PollInputEvents())
	d.syncRegions(list)
	if err := d.renderer.Render(list); err != nil {
		return fmt.Errorf("gremlin: render: %w", err)
	}
	return nil
}

// Run calls Step until ctx is cancelled or a step fails.
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.Step(); err != nil {
			return err
		}
	}
}

// syncRegions pushes changed instance regions to the platform and clears the
// regions of instances that are gone.
func (d *Driver) syncRegions(list DrawList) {
	seen := make(map[ID]struct{}, len(list))
	for i := range list {
		id, r := list[i].ID, list[i].Dest
		seen[id] = struct{}{}
		if prev, ok := d.regions[id]; ok && prev == r {
			continue
		}
		d.regions[id] = r
		d.platform.SetWindowRegion(id, r)
	}
	for id := range d.regions {
		if _, ok := seen[id]; !ok {
			delete(d.regions, id)
			d.platform.SetWindowRegion(id, Rect{})
		}
	}
}
