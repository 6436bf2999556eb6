package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/raygrid/raygrid/engine/logger"
	"github.com/raygrid/raygrid/engine/renderer"
)

// Config is the engine's TOML configuration. Every field has a default, so a
// partial file only overrides what it names and a missing file runs the
// engine unchanged.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Engine   LoopConfig     `toml:"engine"`
	Scene    SceneConfig    `toml:"scene"`
}

// WindowConfig configures the platform window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// RendererConfig configures surface presentation.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`

	// ForceSoftware requests a software fallback adapter.
	ForceSoftware bool `toml:"force_software"`
}

// LoopConfig configures the frame loop.
type LoopConfig struct {
	// FrameLimit caps the loop in frames per second; 0 leaves it uncapped.
	FrameLimit float64 `toml:"frame_limit"`

	// Profiling enables the FPS readout in the window title.
	Profiling bool `toml:"profiling"`

	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`
}

// SceneConfig configures procedural chunk generation.
type SceneConfig struct {
	// GenerationRadius is the chunk generation radius around the camera in
	// chunk units; 0 disables generation.
	GenerationRadius int32 `toml:"generation_radius"`

	// Seed selects the procedural terrain; the same seed always yields the
	// same world.
	Seed uint64 `toml:"seed"`

	// Workers overrides the generation worker count; 0 uses the default.
	Workers int `toml:"workers"`
}

// DefaultConfig returns the configuration used when no file overrides it.
//
// Returns:
//   - Config: the defaults
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "raygrid",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
		},
		Scene: SceneConfig{
			GenerationRadius: 4,
			Seed:             1,
		},
	}
}

// LoadConfig reads a TOML configuration file over the defaults. A missing
// file is not an error; a malformed one is.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - Config: the merged configuration
//   - error: a read or parse failure
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}

// PresentModeValue maps the configured present mode string to the renderer
// enum. Unrecognized values fall back to vsync.
//
// Returns:
//   - renderer.PresentMode: the present mode
func (c RendererConfig) PresentModeValue() renderer.PresentMode {
	if c.PresentMode == "uncapped" {
		return renderer.PresentModeUncapped
	}
	return renderer.PresentModeVSync
}
