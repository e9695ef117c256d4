package gremlin

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Legacy pack layout: every clip is its own sheet image with a fixed column
// count, found by name next to (or below) the config file.
const (
	legacyColumns     = 10
	legacySearchDepth = 5
)

// legacyOneShot lists the legacy clip names that play once instead of looping.
var legacyOneShot = map[string]bool{
	"INTRO": true,
	"OUTRO": true,
	"CLICK": true,
	"PAT":   true,
}

// legacyConfig is the parsed content of a legacy config.txt.
type legacyConfig struct {
	name     string
	counts   map[string]int
	metadata map[string]string
}

// parseLegacyConfig parses "NAME=frameCount" lines. Lines starting with "//"
// are comments, ".name=" sets the display name and other ".key=" lines are
// kept as metadata. Lines that do not split into exactly two parts, and clip
// lines whose count is not a number, are ignored.
func parseLegacyConfig(text string) legacyConfig {
	cfg := legacyConfig{
		counts:   make(map[string]int),
		metadata: make(map[string]string),
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "//") {
			continue
		}
		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			continue
		}
		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if strings.HasPrefix(key, ".") {
			if key == ".name" {
				cfg.name = value
			} else {
				cfg.metadata[key] = value
			}
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			continue
		}
		cfg.counts[strings.ToUpper(key)] = n
	}
	return cfg
}

// findLegacyImages maps upper-cased PNG base names to paths, searching dir
// and up to depth levels of subdirectories. Unreadable subdirectories are
// skipped; an unreadable dir is an error.
func findLegacyImages(dir string, depth int, out map[string]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if depth > 0 {
				_ = findLegacyImages(p, depth-1, out)
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			name := strings.ToUpper(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
			if _, seen := out[name]; !seen {
				out[name] = p
			}
		}
	}
	return nil
}

// LoadLegacyDefinition loads a legacy gremlin pack from its config.txt.
func LoadLegacyDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gremlin: load %s: %w", path, err)
	}
	cfg := parseLegacyConfig(string(data))
	if len(cfg.counts) == 0 {
		return nil, fmt.Errorf("%w: %s declares no clips", ErrMalformedSheet, path)
	}

	images := make(map[string]string)
	if err := findLegacyImages(filepath.Dir(path), legacySearchDepth, images); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}

	names := make([]string, 0, len(cfg.counts))
	for name := range cfg.counts {
		names = append(names, name)
	}
	sort.Strings(names)

	pages := make([]image.Image, 0, len(names))
	loaded := make([]string, 0, len(names))
	for _, name := range names {
		imgPath, ok := images[name]
		if !ok {
			continue
		}
		img, err := decodeImage(imgPath)
		if err != nil {
			return nil, err
		}
		pages = append(pages, img)
		loaded = append(loaded, name)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s: no clip images found", ErrUnreadableImage, path)
	}

	frameMS := metaInt(cfg.metadata, ".frame_ms", 0)
	columns := metaInt(cfg.metadata, ".columns", legacyColumns)
	if columns <= 0 {
		return nil, fmt.Errorf("%w: %s: .columns must be positive", ErrMalformedSheet, path)
	}

	geom := SheetGeometry{Columns: columns}
	for i, name := range loaded {
		count := cfg.counts[name]
		b := pages[i].Bounds()
		rows := (count + columns - 1) / columns
		fw, fh := b.Dx()/columns, b.Dy()/rows
		if i == 0 {
			geom.FrameWidth, geom.FrameHeight = fw, fh
		} else if fw != geom.FrameWidth || fh != geom.FrameHeight {
			return nil, fmt.Errorf("%w: %s: clip %s frames are %dx%d, expected %dx%d",
				ErrMalformedSheet, path, name, fw, fh, geom.FrameWidth, geom.FrameHeight)
		}
		frames := make([]int, count)
		for f := range frames {
			frames[f] = f
		}
		geom.Clips = append(geom.Clips, ClipSpec{
			Name:          name,
			Page:          i,
			Frames:        frames,
			FrameDuration: time.Duration(frameMS) * time.Millisecond,
			Loop:          !legacyOneShot[name],
		})
	}

	sheet, err := NewSpriteSheet(pages, geom)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	spec := legacySpec(cfg, sheet)
	def, err := NewDefinition(spec, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def.Source = path
	return def, nil
}

// legacySpec binds the well-known legacy clip names that are present.
func legacySpec(cfg legacyConfig, sheet *SpriteSheet) DefinitionSpec {
	has := func(name string) string {
		if _, ok := sheet.Clip(name); ok {
			return name
		}
		return ""
	}
	spec := DefinitionSpec{
		Name: cfg.name,
		States: StateBindings{
			Idle:  has("IDLE"),
			Walk:  has("WALK"),
			Drag:  has("GRAB"),
			Fall:  has("FALL"),
			Hover: has("HOVER"),
			Intro: has("INTRO"),
			Outro: has("OUTRO"),
		},
		Reactions: ReactionBindings{
			Click:   has("CLICK"),
			Release: has("PAT"),
		},
	}
	md := cfg.metadata
	if v, ok := md[".speed"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			spec.Movement.Speed = &f
		}
	}
	spec.Movement.IdleMinMS = metaInt(md, ".idle_min", 0)
	spec.Movement.IdleMaxMS = metaInt(md, ".idle_max", 0)
	spec.Movement.FallOnRelease = metaBool(md, ".fall")
	spec.Movement.FollowCursor = metaBool(md, ".follow_cursor")
	// Legacy gremlins start or stop chasing the cursor on every click.
	spec.Movement.ClickTogglesFollow = true
	return spec
}

func metaInt(md map[string]string, key string, def int) int {
	if v, ok := md[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func metaBool(md map[string]string, key string) bool {
	b, _ := strconv.ParseBool(md[key])
	return b
}
