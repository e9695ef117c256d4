package ebitenplatform

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/gremlin"
)

var regionOutline = color.RGBA{R: 255, G: 64, B: 160, A: 255}

// Pages no command has drawn for pageIdleFrames are released, checked every
// pagePruneInterval frames. Reloaded definitions leave their old pages behind.
const (
	pageIdleFrames    = 120
	pagePruneInterval = 60
)

// cachedPage is a sheet page uploaded to the GPU.
type cachedPage struct {
	img      *ebiten.Image
	lastUsed uint64
}

// Render keeps a copy of list for the next Draw. Sheet pages are uploaded to
// the GPU the first time they are seen.
func (p *Platform) Render(list gremlin.DrawList) error {
	p.frame++
	p.list = append(p.list[:0], list...)
	for i := range p.list {
		img := p.list[i].Image
		if img == nil {
			continue
		}
		page, ok := p.pages[img]
		if !ok {
			page = &cachedPage{img: ebiten.NewImageFromImage(img)}
			p.pages[img] = page
		}
		page.lastUsed = p.frame
	}
	if p.frame%pagePruneInterval == 0 {
		p.prunePages()
	}
	return nil
}

// prunePages releases pages that have not been drawn recently.
func (p *Platform) prunePages() {
	for key, page := range p.pages {
		if p.frame-page.lastUsed <= pageIdleFrames {
			continue
		}
		if page.img != nil {
			page.img.Deallocate()
		}
		delete(p.pages, key)
	}
}

func (p *Platform) drawList(screen *ebiten.Image) {
	for i := range p.list {
		cmd := &p.list[i]
		page, ok := p.pages[cmd.Image]
		if !ok || cmd.Source.Empty() {
			continue
		}
		// NewImageFromImage rebases the page to the origin.
		src := cmd.Source.Sub(cmd.Image.Bounds().Min)
		sub := page.img.SubImage(src).(*ebiten.Image)

		op := &ebiten.DrawImageOptions{}
		op.GeoM = commandGeoM(cmd.Source, cmd.Dest, cmd.FlipX)
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(sub, op)
	}
}

// commandGeoM maps a source frame onto its destination rectangle, mirrored
// around the vertical axis when flip is set.
func commandGeoM(src image.Rectangle, dest gremlin.Rect, flip bool) ebiten.GeoM {
	var m ebiten.GeoM
	sx := dest.Width / float64(src.Dx())
	sy := dest.Height / float64(src.Dy())
	if flip {
		m.Scale(-sx, sy)
		m.Translate(dest.X+dest.Width, dest.Y)
		return m
	}
	m.Scale(sx, sy)
	m.Translate(dest.X, dest.Y)
	return m
}

func (p *Platform) drawDebug(screen *ebiten.Image) {
	for _, r := range p.regions {
		vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, regionOutline, false)
	}
	if p.fps != nil {
		p.fps.draw(screen)
	}
}
