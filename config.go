package gizmo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Config is the file form of TransformGizmoModule. Keys missing from a file keep their defaults.
type Config struct {
	UseTagFilter    bool        `yaml:"use_tag_filter" toml:"use_tag_filter"`
	SelectionColor  string      `yaml:"selection_color" toml:"selection_color"`
	SelectionButton string      `yaml:"selection_button" toml:"selection_button"`
	DragButton      string      `yaml:"drag_button" toml:"drag_button"`
	Gizmo           GizmoConfig `yaml:"gizmo" toml:"gizmo"`
	Debug           bool        `yaml:"debug" toml:"debug"`
}

type GizmoConfig struct {
	SizeInWorld      float32 `yaml:"size_in_world" toml:"size_in_world"`
	DesiredPixelSize float32 `yaml:"desired_pixel_size" toml:"desired_pixel_size"`
}

func DefaultConfig() Config {
	return Config{
		UseTagFilter:    true,
		SelectionColor:  "#fde047",
		SelectionButton: MouseButtonRight.String(),
		DragButton:      MouseButtonLeft.String(),
		Gizmo: GizmoConfig{
			SizeInWorld:      defaultSizeInWorld,
			DesiredPixelSize: defaultDesiredPixelSize,
		},
	}
}

type ConfigFormat string

const (
	ConfigYAML ConfigFormat = "yaml"
	ConfigTOML ConfigFormat = "toml"
)

var ErrUnknownConfigFormat = errors.New("unknown config format")

// LoadConfig reads a .yaml/.yml or .toml file.
func LoadConfig(path string) (Config, error) {
	var format ConfigFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = ConfigYAML
	case ".toml":
		format = ConfigTOML
	default:
		return Config{}, fmt.Errorf("%s: %w", path, ErrUnknownConfigFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := ParseConfig(f, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a config. Unknown keys are rejected.
func ParseConfig(r io.Reader, format ConfigFormat) (Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	switch format {
	case ConfigYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	case ConfigTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%q: %w", format, ErrUnknownConfigFormat)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := ParseColor(c.SelectionColor); err != nil {
		return fmt.Errorf("selection_color: %w", err)
	}
	if _, err := ParseMouseButton(c.SelectionButton); err != nil {
		return fmt.Errorf("selection_button: %w", err)
	}
	if _, err := ParseMouseButton(c.DragButton); err != nil {
		return fmt.Errorf("drag_button: %w", err)
	}
	if c.Gizmo.SizeInWorld <= 0 {
		return fmt.Errorf("gizmo.size_in_world: must be positive, got %v", c.Gizmo.SizeInWorld)
	}
	if c.Gizmo.DesiredPixelSize <= 0 {
		return fmt.Errorf("gizmo.desired_pixel_size: must be positive, got %v", c.Gizmo.DesiredPixelSize)
	}
	return nil
}

// Module builds the plugin described by the config.
func (c Config) Module() (TransformGizmoModule, error) {
	if err := c.Validate(); err != nil {
		return TransformGizmoModule{}, err
	}
	color, _ := ParseColor(c.SelectionColor)
	selectionButton, _ := ParseMouseButton(c.SelectionButton)
	dragButton, _ := ParseMouseButton(c.DragButton)

	return TransformGizmoModule{
		UseTagFilter:     c.UseTagFilter,
		SelectionColor:   color,
		SelectionButton:  selectionButton,
		DragButton:       dragButton,
		SizeInWorld:      c.Gizmo.SizeInWorld,
		DesiredPixelSize: c.Gizmo.DesiredPixelSize,
	}, nil
}

// ParseColor accepts an SVG/CSS color name ("gold") or #rgb, #rrggbb, #rrggbbaa.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		named, ok := colornames.Map[strings.ToLower(s)]
		if !ok {
			return Color{}, fmt.Errorf("unknown color name %q", s)
		}
		return ColorFrom(named), nil
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("malformed hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("malformed hex color %q: %w", s, err)
	}
	return Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
