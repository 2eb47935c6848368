package carousel

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teranos/carousel/trip"
)

// PauseMode selects how the hover and manual-navigation pause sources combine.
type PauseMode string

const (
	// PauseCounted keeps autoplay paused while any pause source is active.
	PauseCounted PauseMode = "counted"
	// PauseShared uses a single flag written by whichever source acted last,
	// so leaving the container ends a manual-pause window early.
	PauseShared PauseMode = "shared"
)

// Config controls timing, gesture and geometry parameters of the carousel.
//
// Example config file:
//
//	interval: 5s
//	swipe_threshold: 50
//	tilt_max_degrees: 5
//	cell_width_px: 8
//	cell_height_px: 16
//	pause_mode: counted
//	deck: slides.yaml
//	logging:
//	  level: debug
//	  file: carousel.log
type Config struct {
	// Interval between automatic advances; also the length of a manual-pause window.
	Interval time.Duration `yaml:"interval"`
	// SwipeThreshold is the horizontal distance in pixels a gesture must exceed.
	SwipeThreshold float64 `yaml:"swipe_threshold"`
	// TiltMaxDegrees is the rotation applied at the content region's edge.
	TiltMaxDegrees float64 `yaml:"tilt_max_degrees"`
	// CellWidth and CellHeight convert terminal cells to pixels.
	CellWidth  int `yaml:"cell_width_px"`
	CellHeight int `yaml:"cell_height_px"`
	// PauseMode combines pause sources, see PauseCounted and PauseShared.
	PauseMode PauseMode `yaml:"pause_mode"`
	// Deck is an optional path to a YAML deck; empty means the built-in deck.
	Deck string `yaml:"deck"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the log file. The terminal belongs to the widget,
// so logs never go to stdout or stderr.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty disables logging
}

// DefaultConfig returns the stock timing and geometry.
func DefaultConfig() Config {
	return Config{
		Interval:       5000 * time.Millisecond,
		SwipeThreshold: 50,
		TiltMaxDegrees: 5,
		CellWidth:      8,
		CellHeight:     16,
		PauseMode:      PauseCounted,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, trip.Wrap(trip.TypeConfig, err, trip.Context{"path": path})
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	invalid := func(field string, value interface{}) error {
		return trip.NewTrip(trip.TypeConfig, fmt.Sprintf("invalid %s: %v", field, value), trip.Context{
			"field": field,
			"value": value,
		})
	}

	switch {
	case c.Interval <= 0:
		return invalid("interval", c.Interval)
	case c.SwipeThreshold < 0:
		return invalid("swipe_threshold", c.SwipeThreshold)
	case c.TiltMaxDegrees < 0 || c.TiltMaxDegrees > 90:
		return invalid("tilt_max_degrees", c.TiltMaxDegrees)
	case c.CellWidth <= 0:
		return invalid("cell_width_px", c.CellWidth)
	case c.CellHeight <= 0:
		return invalid("cell_height_px", c.CellHeight)
	}

	switch c.PauseMode {
	case PauseCounted, PauseShared:
	default:
		return invalid("pause_mode", c.PauseMode)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("logging.level", c.Logging.Level)
	}

	return nil
}
