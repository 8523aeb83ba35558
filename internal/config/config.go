// Package config reads runtime settings from TILEPAINT_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"tilepaint/internal/history"
)

// Prefix is prepended to every variable name, e.g. TILEPAINT_TILE_SIZE.
const Prefix = "tilepaint"

// Resampler names accepted by RESAMPLER.
var Resamplers = []string{"catmullrom", "bilinear", "approx", "lanczos4"}

// Config holds the engine settings read from TILEPAINT_* variables.
type Config struct {
	TileSize            int          `envconfig:"TILE_SIZE" default:"256"`
	CanvasWidth         int          `envconfig:"CANVAS_WIDTH" default:"1280"`
	CanvasHeight        int          `envconfig:"CANVAS_HEIGHT" default:"720"`
	ExportPadding       int          `envconfig:"EXPORT_PADDING" default:"10"`
	LargeImageThreshold int          `envconfig:"LARGE_IMAGE_THRESHOLD" default:"3000"`
	BrushSize           int          `envconfig:"BRUSH_SIZE" default:"5"`
	BrushMin            int          `envconfig:"BRUSH_MIN" default:"1"`
	BrushMax            int          `envconfig:"BRUSH_MAX" default:"15"`
	Resampler           string       `envconfig:"RESAMPLER" default:"catmullrom"`
	UndoMode            history.Mode `envconfig:"UNDO_MODE" default:"overlay"`
	RenderWorkers       int          `envconfig:"RENDER_WORKERS" default:"0"`
	LogLevel            slog.Level   `envconfig:"LOG_LEVEL" default:"info"`
}

// Default returns the settings used when no variable is set.
func Default() *Config {
	return &Config{
		TileSize:            256,
		CanvasWidth:         1280,
		CanvasHeight:        720,
		ExportPadding:       10,
		LargeImageThreshold: 3000,
		BrushSize:           5,
		BrushMin:            1,
		BrushMax:            15,
		Resampler:           "catmullrom",
		UndoMode:            history.ModeOverlay,
		LogLevel:            slog.LevelInfo,
	}
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.TileSize < 16 || c.TileSize > 4096 {
		errs = append(errs, fmt.Errorf("tile size %d out of range 16..4096", c.TileSize))
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.CanvasWidth, c.CanvasHeight))
	}
	if c.ExportPadding < 0 {
		errs = append(errs, fmt.Errorf("export padding %d is negative", c.ExportPadding))
	}
	if c.LargeImageThreshold <= 0 {
		errs = append(errs, fmt.Errorf("large image threshold %d must be positive", c.LargeImageThreshold))
	}
	if c.BrushMin < 1 || c.BrushMin > c.BrushMax {
		errs = append(errs, fmt.Errorf("brush range %d..%d is invalid", c.BrushMin, c.BrushMax))
	} else if c.BrushSize < c.BrushMin || c.BrushSize > c.BrushMax {
		errs = append(errs, fmt.Errorf("brush size %d outside %d..%d", c.BrushSize, c.BrushMin, c.BrushMax))
	}
	if !validResampler(c.Resampler) {
		errs = append(errs, fmt.Errorf("unknown resampler %q", c.Resampler))
	}
	if !c.UndoMode.Valid() {
		errs = append(errs, fmt.Errorf("unknown undo mode %q", c.UndoMode))
	}
	if c.RenderWorkers < 0 {
		errs = append(errs, fmt.Errorf("render workers %d is negative", c.RenderWorkers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func validResampler(name string) bool {
	for _, r := range Resamplers {
		if r == name {
			return true
		}
	}
	return false
}
