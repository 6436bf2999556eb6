package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raygrid/raygrid/engine/renderer"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "custom"

[engine]
frame_limit = 144.0
profiling = true

[scene]
seed = 99
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Window.Title)
	// Unset fields keep their defaults.
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "vsync", cfg.Renderer.PresentMode)

	assert.Equal(t, 144.0, cfg.Engine.FrameLimit)
	assert.True(t, cfg.Engine.Profiling)
	assert.Equal(t, uint64(99), cfg.Scene.Seed)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window\ntitle="), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestPresentModeValue(t *testing.T) {
	assert.Equal(t, renderer.PresentModeVSync, RendererConfig{}.PresentModeValue())
	assert.Equal(t, renderer.PresentModeVSync, RendererConfig{PresentMode: "vsync"}.PresentModeValue())
	assert.Equal(t, renderer.PresentModeUncapped, RendererConfig{PresentMode: "uncapped"}.PresentModeValue())
}
