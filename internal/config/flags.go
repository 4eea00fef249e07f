package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and debug axes")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFPS        = flag.Float64("fps", 0, "Frame rate cap for the tick driver")
	flagAssets     = flag.String("assets", "", "Extra asset directory (highest priority)")
	flagProfile    = flag.String("profile", "", "Profile mode: cpu, mem or trace")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Scene.DebugAxes = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagFPS > 0 {
		cfg.Loop.FrameRateCap = *flagFPS
	}
	if *flagAssets != "" {
		cfg.Scene.AssetDirs = append(cfg.Scene.AssetDirs, *flagAssets)
	}
	if *flagProfile != "" {
		cfg.Debug.Profile = *flagProfile
	}
}
