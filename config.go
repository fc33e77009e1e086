package sunburst

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig holds the render scheduling heuristics.
type SchedulerConfig struct {
	// A Full pass slower than this forces Simplified passes while dragging.
	SimplifyThreshold time.Duration `yaml:"simplify_threshold,omitempty"`
	// A Full pass slower than this moves the next Full pass to the
	// background slot when the view is idle.
	ProgressiveThreshold time.Duration `yaml:"progressive_threshold,omitempty"`
	// Repaint cadence while a background pass is outstanding.
	TickInterval time.Duration `yaml:"tick_interval,omitempty"`
	// Number of Full pass costs kept for FrameStats.
	StatsWindow int `yaml:"stats_window,omitempty"`
}

// InputConfig holds pointer gesture settings.
type InputConfig struct {
	DragDeadZone        float64       `yaml:"drag_dead_zone,omitempty"` // pixels
	DoubleClickInterval time.Duration `yaml:"double_click_interval,omitempty"`
	RecenterDuration    time.Duration `yaml:"recenter_duration,omitempty"` // 0 jumps
}

// ThemeConfig holds colors as hex strings.
type ThemeConfig struct {
	Background string `yaml:"background,omitempty"`
	Contour    string `yaml:"contour,omitempty"`
	Selection  string `yaml:"selection,omitempty"`
	Hover      string `yaml:"hover,omitempty"`
	Label      string `yaml:"label,omitempty"`
}

// Config is the top-level viewer configuration.
type Config struct {
	Projection   string          `yaml:"projection,omitempty"` // sunburst, icicle
	Margin       float64         `yaml:"margin,omitempty"`
	LabelPadding float64         `yaml:"label_padding,omitempty"`
	Scheduler    SchedulerConfig `yaml:"scheduler,omitempty"`
	Input        InputConfig     `yaml:"input,omitempty"`
	Theme        ThemeConfig     `yaml:"theme,omitempty"`
}

// DefaultConfig returns a Config with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Projection:   "sunburst",
		Margin:       4,
		LabelPadding: 4,
		Scheduler: SchedulerConfig{
			SimplifyThreshold:    99 * time.Millisecond,
			ProgressiveThreshold: 33 * time.Millisecond,
			TickInterval:         33 * time.Millisecond,
			StatsWindow:          64,
		},
		Input: InputConfig{
			DragDeadZone:        4,
			DoubleClickInterval: 400 * time.Millisecond,
			RecenterDuration:    250 * time.Millisecond,
		},
		Theme: ThemeConfig{
			Background: "#ffffff",
			Contour:    "#808080",
			Selection:  "#ff0000",
			Hover:      "#000000",
			Label:      "#000000",
		},
	}
}

// LoadConfig reads a YAML config from path on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func SaveConfig(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks value ranges and color syntax.
func (c Config) Validate() error {
	if _, err := ParseProjection(c.Projection); err != nil {
		return fmt.Errorf("config projection: %w", err)
	}
	if c.Margin < 0 {
		return fmt.Errorf("config margin: must be >= 0, got %v", c.Margin)
	}
	s := c.Scheduler
	if s.SimplifyThreshold <= 0 || s.ProgressiveThreshold <= 0 {
		return fmt.Errorf("config scheduler: thresholds must be positive")
	}
	if s.TickInterval <= 0 {
		return fmt.Errorf("config scheduler.tick_interval: must be positive, got %v", s.TickInterval)
	}
	if c.Input.DragDeadZone < 0 {
		return fmt.Errorf("config input.drag_dead_zone: must be >= 0, got %v", c.Input.DragDeadZone)
	}
	for name, hex := range map[string]string{
		"background": c.Theme.Background,
		"contour":    c.Theme.Contour,
		"selection":  c.Theme.Selection,
		"hover":      c.Theme.Hover,
		"label":      c.Theme.Label,
	} {
		if _, err := ParseHexColor(hex); err != nil {
			return fmt.Errorf("config theme.%s: %w", name, err)
		}
	}
	return nil
}

// ProjectionKind returns the parsed projection, defaulting to sunburst.
func (c Config) ProjectionKind() Projection {
	p, err := ParseProjection(c.Projection)
	if err != nil {
		return ProjectionSunburst
	}
	return p
}

// Palette is the parsed theme.
type Palette struct {
	Background, Contour, Selection, Hover, Label Color
}

// Palette parses the theme colors, falling back to the defaults for any
// color that does not parse.
func (c Config) Palette() Palette {
	def := DefaultConfig().Theme
	parse := func(s, fallback string) Color {
		if col, err := ParseHexColor(s); err == nil {
			return col
		}
		col, _ := ParseHexColor(fallback)
		return col
	}
	return Palette{
		Background: parse(c.Theme.Background, def.Background),
		Contour:    parse(c.Theme.Contour, def.Contour),
		Selection:  parse(c.Theme.Selection, def.Selection),
		Hover:      parse(c.Theme.Hover, def.Hover),
		Label:      parse(c.Theme.Label, def.Label),
	}
}
