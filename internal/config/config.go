// Package config handles runtime configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Loop     LoopConfig     `yaml:"loop"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
	Debug    DebugConfig    `yaml:"debug"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width        int        `yaml:"width"`
	Height       int        `yaml:"height"`
	Fullscreen   bool       `yaml:"fullscreen"`
	VSync        bool       `yaml:"vsync"`
	ViewportSize float32    `yaml:"viewport_size"` // World units visible horizontally
	WorldDepth   float32    `yaml:"world_depth"`   // Depth range of the orthographic volume
	ClearColor   [4]float32 `yaml:"clear_color"`
}

// LoopConfig holds scheduler timing.
type LoopConfig struct {
	FrameRateCap      float64 `yaml:"frame_rate_cap"`      // Ticks per second driven by the timer
	FixedStepHz       float64 `yaml:"fixed_step_hz"`       // Rate gate for the fixed_step phase
	ZeroDeltaFallback float32 `yaml:"zero_delta_fallback"` // Delta time used when a tick took 0ms
}

// TickInterval returns the timer period for FrameRateCap.
func (l LoopConfig) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / l.FrameRateCap)
}

// FixedStepInterval returns the minimum time between fixed_step phases.
func (l LoopConfig) FixedStepInterval() time.Duration {
	return time.Duration(float64(time.Second) / l.FixedStepHz)
}

// SceneConfig holds demo scene content.
type SceneConfig struct {
	AssetDirs     []string `yaml:"asset_dirs"`     // Searched last to first
	Meshes        []string `yaml:"meshes"`         // Preloaded before the loop starts
	CubeMesh      string   `yaml:"cube_mesh"`      // Mesh used by the block grid
	SpawnMesh     string   `yaml:"spawn_mesh"`     // Mesh loaded lazily by a behavior
	BlockGrid     int      `yaml:"block_grid"`     // Blocks per side
	BlockSize     float32  `yaml:"block_size"`     // Spacing between blocks
	BlockScale    float32  `yaml:"block_scale"`    // Per-block scale
	SpinDegrees   float32  `yaml:"spin_degrees"`   // Spin per unit of loop delta time, in degrees
	DebugAxes     bool     `yaml:"debug_axes"`     // Draw world axes and a floor grid as lines
	MouseFollower bool     `yaml:"mouse_follower"` // Camera follows the pointer
	StatsEvery    uint64   `yaml:"stats_every"`    // Frames between stats log lines, 0 disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DebugConfig holds profiling settings.
type DebugConfig struct {
	Profile    string `yaml:"profile"` // "", "cpu", "mem", "trace"
	ProfileDir string `yaml:"profile_dir"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:        1280,
			Height:       720,
			VSync:        true,
			ViewportSize: 30,
			WorldDepth:   400,
			ClearColor:   [4]float32{0.1, 0.1, 0.15, 1.0},
		},
		Loop: LoopConfig{
			FrameRateCap:      60,
			FixedStepHz:       48,
			ZeroDeltaFallback: 0.5,
		},
		Scene: SceneConfig{
			AssetDirs:   []string{"assets"},
			Meshes:      []string{"cube.obj"},
			CubeMesh:    "cube.obj",
			SpawnMesh:   "cottage.obj",
			BlockGrid:   10,
			BlockSize:   1.0,
			BlockScale:  0.8,
			SpinDegrees: 45,
			StatsEvery:  600,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Debug: DebugConfig{
			ProfileDir: ".",
		},
	}
}

// Validate reports every setting that would prevent the loop from running.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.ViewportSize <= 0 {
		errs = append(errs, fmt.Errorf("graphics: viewport_size must be positive, got %v", c.Graphics.ViewportSize))
	}
	if c.Graphics.WorldDepth <= 0 {
		errs = append(errs, fmt.Errorf("graphics: world_depth must be positive, got %v", c.Graphics.WorldDepth))
	}
	if c.Loop.FrameRateCap <= 0 {
		errs = append(errs, fmt.Errorf("loop: frame_rate_cap must be positive, got %v", c.Loop.FrameRateCap))
	}
	if c.Loop.FixedStepHz <= 0 {
		errs = append(errs, fmt.Errorf("loop: fixed_step_hz must be positive, got %v", c.Loop.FixedStepHz))
	}
	if c.Scene.BlockGrid < 0 {
		errs = append(errs, fmt.Errorf("scene: block_grid must not be negative, got %d", c.Scene.BlockGrid))
	}
	switch c.Debug.Profile {
	case "", "cpu", "mem", "trace":
	default:
		errs = append(errs, fmt.Errorf("debug: unknown profile mode %q", c.Debug.Profile))
	}
	return errors.Join(errs...)
}
