// Package config loads and saves mosaic layouts from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/gridmosaic/canvas"
)

// Device places one grid device in the layout.
type Device struct {
	Type     string `yaml:"type"` // "sim" | "nrz" | "preview"
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Rotation string `yaml:"rotation,omitempty"` // none | left | right | upsidedown

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Floor      float64 `yaml:"brightness_floor,omitempty"`
	Serpentine bool    `yaml:"serpentine,omitempty"` // nrz wiring
	SPIDev     string  `yaml:"spi_dev,omitempty"`    // e.g. /dev/spidev0.0
}

// Config is the full mosaic description.
type Config struct {
	LightThreshold float64  `yaml:"light_threshold,omitempty"`
	PollBuffer     int      `yaml:"poll_buffer,omitempty"`
	FPS            int      `yaml:"fps,omitempty"`
	Addr           string   `yaml:"addr,omitempty"`
	Devices        []Device `yaml:"devices"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ParseRotation maps the config spelling onto a canvas.Rotation. The
// empty string means no rotation.
func ParseRotation(s string) (canvas.Rotation, error) {
	switch s {
	case "", "none":
		return canvas.RotationNone, nil
	case "left":
		return canvas.RotationLeft, nil
	case "right":
		return canvas.RotationRight, nil
	case "upsidedown":
		return canvas.RotationUpsideDown, nil
	}
	return canvas.RotationNone, fmt.Errorf("config: unknown rotation %q", s)
}
