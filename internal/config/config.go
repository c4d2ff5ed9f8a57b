// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ViewerConfig holds reconstruction and interaction settings.
type ViewerConfig struct {
	// LatheSegments is the number of angular steps used to revolve the
	// profile. Must be at least 3.
	LatheSegments int `yaml:"lathe_segments"`

	// AutoSpinSpeed is the idle spin increment per frame, in radians.
	AutoSpinSpeed float64 `yaml:"auto_spin_speed"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
		},
		Viewer: ViewerConfig{
			LatheSegments: 32,
			AutoSpinSpeed: 0.005,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
