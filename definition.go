package gremlin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default movement and timing values applied when a definition leaves them
// unset.
const (
	DefaultSpeed           = 120.0  // px per second
	DefaultIdleMin         = 2 * time.Second
	DefaultIdleMax         = 6 * time.Second
	DefaultWanderRadius    = 240.0  // px
	DefaultGravity         = 1800.0 // px per second²
	DefaultReactionTimeout = 5 * time.Second
)

// ClickKind classifies a completed click.
type ClickKind uint8

const (
	ClickNone ClickKind = iota
	ClickSingle
	ClickDouble
	ClickRight
)

func (k ClickKind) String() string {
	switch k {
	case ClickSingle:
		return "click"
	case ClickDouble:
		return "double_click"
	case ClickRight:
		return "right_click"
	default:
		return "none"
	}
}

// Bindings maps behavior states to clips. Idle, Walk, Drag and Fall are
// always set once a Definition is built; the rest are optional.
type Bindings struct {
	Idle     *Clip
	Walk     *Clip
	WalkLeft *Clip // used instead of a mirrored Walk when facing left
	Drag     *Clip
	Fall     *Clip
	Hover    *Clip
	Intro    *Clip
	Outro    *Clip
	Release  *Clip // played when a drag ends without a fall
	// Reactions maps a click kind to the clip played in Reacting.
	// Unbound kinds do not react.
	Reactions map[ClickKind]*Clip
}

// Definition is the immutable description of one kind of gremlin. It is
// referenced, never owned, by instances.
type Definition struct {
	Name  string
	Sheet *SpriteSheet
	Clips Bindings

	Speed           float64 // walking speed in px per second; zero never walks
	IdleMin         time.Duration
	IdleMax         time.Duration
	WanderRadius    float64
	Gravity         float64
	FallOnRelease   bool
	FollowCursor    bool // initial follow state of new instances
	ClickToggles    bool // a single click flips the instance's follow state
	ReactionTimeout time.Duration
	Scale           float64 // draw scale; hit boxes follow it

	// Source is the file the definition was loaded from, if any.
	Source string
}

// Size returns the on-screen size of one frame.
func (d *Definition) Size() (float64, float64) {
	w, h := d.Sheet.FrameSize()
	return float64(w) * d.Scale, float64(h) * d.Scale
}

// DefinitionSpec is the file-level description of a definition, shared by the
// YAML and legacy formats. Clip names in States and Reactions must name clips
// of the sheet.
type DefinitionSpec struct {
	Name      string             `yaml:"name"`
	Sheet     string             `yaml:"sheet"`
	FrameW    int                `yaml:"frame_w"`
	FrameH    int                `yaml:"frame_h"`
	Columns   int                `yaml:"columns"`
	Clips     map[string]ClipDef `yaml:"clips"`
	States    StateBindings      `yaml:"states"`
	Reactions ReactionBindings   `yaml:"reactions"`
	Movement  MovementSpec       `yaml:"movement"`
}

// ClipDef declares a clip either by explicit frame list or by a start index
// and a count.
type ClipDef struct {
	Frames  []int `yaml:"frames"`
	Start   int   `yaml:"start"`
	Count   int   `yaml:"count"`
	FrameMS int   `yaml:"frame_ms"`
	Loop    bool  `yaml:"loop"`
	Page    int   `yaml:"-"`
}

func (c ClipDef) frames() []int {
	if len(c.Frames) > 0 {
		return c.Frames
	}
	out := make([]int, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		out = append(out, c.Start+i)
	}
	return out
}

// StateBindings names the clip played in each behavior state.
type StateBindings struct {
	Idle     string `yaml:"idle"`
	Walk     string `yaml:"walk"`
	WalkLeft string `yaml:"walk_left"`
	Drag     string `yaml:"drag"`
	Fall     string `yaml:"fall"`
	Hover    string `yaml:"hover"`
	Intro    string `yaml:"intro"`
	Outro    string `yaml:"outro"`
}

// ReactionBindings names the clip played for each click kind.
type ReactionBindings struct {
	Click       string `yaml:"click"`
	DoubleClick string `yaml:"double_click"`
	RightClick  string `yaml:"right_click"`
	Release     string `yaml:"release"`
}

// MovementSpec holds movement and timing tunables. Zero values take the
// package defaults, except the boolean flags.
type MovementSpec struct {
	Speed              *float64 `yaml:"speed"`
	IdleMinMS          int      `yaml:"idle_min_ms"`
	IdleMaxMS          int      `yaml:"idle_max_ms"`
	WanderRadius       float64  `yaml:"wander_radius"`
	Gravity            float64  `yaml:"gravity"`
	FallOnRelease      bool     `yaml:"fall_on_release"`
	FollowCursor       bool     `yaml:"follow_cursor"`
	ClickTogglesFollow bool     `yaml:"click_toggles_follow"`
	ReactionTimeoutMS  int      `yaml:"reaction_timeout_ms"`
	Scale              float64  `yaml:"scale"`
}

// Geometry converts the clip table into a SheetGeometry.
func (spec *DefinitionSpec) Geometry() SheetGeometry {
	geom := SheetGeometry{
		FrameWidth:  spec.FrameW,
		FrameHeight: spec.FrameH,
		Columns:     spec.Columns,
		Clips:       make([]ClipSpec, 0, len(spec.Clips)),
	}
	for name, c := range spec.Clips {
		geom.Clips = append(geom.Clips, ClipSpec{
			Name:          name,
			Page:          c.Page,
			Frames:        c.frames(),
			FrameDuration: time.Duration(c.FrameMS) * time.Millisecond,
			Loop:          c.Loop,
		})
	}
	return geom
}

// LoadDefinition reads a definition file. Files ending in .yaml or .yml use
// the YAML format; .txt files use the legacy "NAME=frames" format.
func LoadDefinition(path string) (*Definition, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLDefinition(path)
	case ".txt":
		return LoadLegacyDefinition(path)
	default:
		return nil, fmt.Errorf("gremlin: load %s: unsupported definition format", path)
	}
}

func loadYAMLDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gremlin: load %s: %w", path, err)
	}
	var spec DefinitionSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("gremlin: unmarshal %s: %w", path, err)
	}
	if spec.Sheet == "" {
		return nil, fmt.Errorf("%w: %s: no sheet image", ErrMalformedSheet, path)
	}
	sheetPath := spec.Sheet
	if !filepath.IsAbs(sheetPath) {
		sheetPath = filepath.Join(filepath.Dir(path), sheetPath)
	}
	sheet, err := LoadSheet(sheetPath, spec.Geometry())
	if err != nil {
		return nil, err
	}
	def, err := NewDefinition(spec, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def.Source = path
	return def, nil
}

// NewDefinition resolves spec's bindings against sheet and applies defaults.
// Every binding must name a clip of the sheet; the idle binding is required
// and stands in for unbound walk, drag and fall clips.
func NewDefinition(spec DefinitionSpec, sheet *SpriteSheet) (*Definition, error) {
	if sheet == nil {
		return nil, fmt.Errorf("%w: nil sheet", ErrMalformedSheet)
	}
	resolve := func(role, name string) (*Clip, error) {
		if name == "" {
			return nil, nil
		}
		c, ok := sheet.Clip(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s binding names missing clip %q", ErrMalformedSheet, role, name)
		}
		return c, nil
	}

	var b Bindings
	var err error
	bind := func(dst **Clip, role, name string) {
		if err != nil {
			return
		}
		*dst, err = resolve(role, name)
	}
	bind(&b.Idle, "idle", spec.States.Idle)
	bind(&b.Walk, "walk", spec.States.Walk)
	bind(&b.WalkLeft, "walk_left", spec.States.WalkLeft)
	bind(&b.Drag, "drag", spec.States.Drag)
	bind(&b.Fall, "fall", spec.States.Fall)
	bind(&b.Hover, "hover", spec.States.Hover)
	bind(&b.Intro, "intro", spec.States.Intro)
	bind(&b.Outro, "outro", spec.States.Outro)
	bind(&b.Release, "release", spec.Reactions.Release)

	b.Reactions = make(map[ClickKind]*Clip)
	for kind, name := range map[ClickKind]string{
		ClickSingle: spec.Reactions.Click,
		ClickDouble: spec.Reactions.DoubleClick,
		ClickRight:  spec.Reactions.RightClick,
	} {
		var c *Clip
		bind(&c, kind.String(), name)
		if c != nil {
			b.Reactions[kind] = c
		}
	}
	if err != nil {
		return nil, err
	}
	if b.Idle == nil {
		return nil, fmt.Errorf("%w: no idle clip bound", ErrMalformedSheet)
	}
	for _, dst := range []**Clip{&b.Walk, &b.Drag, &b.Fall} {
		if *dst == nil {
			*dst = b.Idle
		}
	}

	m := spec.Movement
	def := &Definition{
		Name:            spec.Name,
		Sheet:           sheet,
		Clips:           b,
		Speed:           DefaultSpeed,
		IdleMin:         DefaultIdleMin,
		IdleMax:         DefaultIdleMax,
		WanderRadius:    DefaultWanderRadius,
		Gravity:         DefaultGravity,
		FallOnRelease:   m.FallOnRelease,
		FollowCursor:    m.FollowCursor,
		ClickToggles:    m.ClickTogglesFollow,
		ReactionTimeout: DefaultReactionTimeout,
		Scale:           1,
	}
	if m.Speed != nil {
		def.Speed = *m.Speed
	}
	if m.IdleMinMS > 0 {
		def.IdleMin = time.Duration(m.IdleMinMS) * time.Millisecond
	}
	if m.IdleMaxMS > 0 {
		def.IdleMax = time.Duration(m.IdleMaxMS) * time.Millisecond
	} else if def.IdleMax < def.IdleMin {
		def.IdleMax = def.IdleMin
	}
	if m.WanderRadius > 0 {
		def.WanderRadius = m.WanderRadius
	}
	if m.Gravity > 0 {
		def.Gravity = m.Gravity
	}
	if m.ReactionTimeoutMS > 0 {
		def.ReactionTimeout = time.Duration(m.ReactionTimeoutMS) * time.Millisecond
	}
	if m.Scale > 0 {
		def.Scale = m.Scale
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func (d *Definition) validate() error {
	switch {
	case d.Speed < 0:
		return fmt.Errorf("%w: negative speed %v", ErrInvalidDefinition, d.Speed)
	case d.IdleMin <= 0:
		return fmt.Errorf("%w: idle interval must be positive", ErrInvalidDefinition)
	case d.IdleMax < d.IdleMin:
		return fmt.Errorf("%w: idle interval [%v, %v] inverted", ErrInvalidDefinition, d.IdleMin, d.IdleMax)
	case d.ReactionTimeout <= 0:
		return fmt.Errorf("%w: reaction timeout must be positive", ErrInvalidDefinition)
	}
	return nil
}
