// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Render  RenderConfig  `yaml:"render"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	HighDPI    bool   `yaml:"high_dpi"`
	DepthBits  int    `yaml:"depth_bits"`
	Samples    int    `yaml:"samples"` // MSAA samples, 0 disables
}

// CameraConfig holds the fly camera settings.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	FOVDeg      float32    `yaml:"fov_deg"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	Speed       float32    `yaml:"speed"`
	SprintSpeed float32    `yaml:"sprint_speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	FitToModel  bool       `yaml:"fit_to_model"` // place the camera from the model bounds
}

// LightConfig holds the single point light.
type LightConfig struct {
	Color    [4]float32 `yaml:"color"`
	Position [3]float32 `yaml:"position"`
}

// RenderConfig holds rasterizer settings.
type RenderConfig struct {
	ClearColor    [4]float32 `yaml:"clear_color"`
	Wireframe     bool       `yaml:"wireframe"`
	ScreenshotDir string     `yaml:"screenshot_dir"`
}

// ModelConfig selects the scene to load.
type ModelConfig struct {
	Path     string `yaml:"path"`
	RootNode int    `yaml:"root_node"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "gltfview",
			Width:  800,
			Height:    800,
			VSync:     true,
			HighDPI:   true,
			DepthBits: 24,
			Samples:   4,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 2},
			FOVDeg:      45,
			Near:        0.1,
			Far:         1000,
			Speed:       0.1,
			SprintSpeed: 0.4,
			Sensitivity: 100,
		},
		Light: LightConfig{
			Color:    [4]float32{1, 1, 1, 1},
			Position: [3]float32{0.5, 0.5, 0.5},
		},
		Render: RenderConfig{
			ClearColor:    [4]float32{0.07, 0.13, 0.17, 1},
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
