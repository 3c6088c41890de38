package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"gopkg.in/yaml.v3"
)

// Config is the startup configuration read from YAML.
type Config struct {
	// Technique names the technique to run, one of pipeline.Names.
	Technique string `yaml:"technique"`

	// Frames stops the engine after this many frames. Zero runs until the window closes.
	Frames int `yaml:"frames"`

	// FrameLimit caps the frame rate. Zero is uncapped.
	FrameLimit float64 `yaml:"frame_limit"`

	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Camera   CameraConfig   `yaml:"camera"`
	Assets   AssetsConfig   `yaml:"assets"`
	Profiler ProfilerConfig `yaml:"profiler"`
}

// WindowConfig configures the window.
type WindowConfig struct {
	Title   string `yaml:"title"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	VSync   bool   `yaml:"vsync"`
	Samples int    `yaml:"samples"`
	Hidden  bool   `yaml:"hidden"`
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	// Backend is "opengl" or "headless".
	Backend string `yaml:"backend"`

	// ShaderDir loads shaders from disk instead of the built-in copies.
	ShaderDir string `yaml:"shader_dir"`

	// HotReload relinks programs when files in ShaderDir change.
	HotReload bool `yaml:"hot_reload"`

	// MaxFrameErrors is the number of consecutive failed frames before the engine stops.
	MaxFrameErrors int `yaml:"max_frame_errors"`
}

// CameraConfig places the camera.
type CameraConfig struct {
	Position  [3]float32 `yaml:"position"`
	Yaw       float32    `yaml:"yaw"`
	Pitch     float32    `yaml:"pitch"`
	Fov       float32    `yaml:"fov"`
	Near      float32    `yaml:"near"`
	Far       float32    `yaml:"far"`
	MoveSpeed float32    `yaml:"move_speed"`
}

// AssetsConfig names the files the techniques draw with. Empty paths use built-in stand-ins.
type AssetsConfig struct {
	Diffuse     string `yaml:"diffuse"`
	Container   string `yaml:"container"`
	Environment string `yaml:"environment"`
	Model       string `yaml:"model"`

	// Workers is the number of decode workers. Zero uses one per CPU.
	Workers int `yaml:"workers"`

	// Progress draws a progress bar on stderr while assets decode.
	Progress bool `yaml:"progress"`
}

// ProfilerConfig configures the periodic profile record.
type ProfilerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// DefaultConfig returns the configuration used for every field a file leaves out.
func DefaultConfig() Config {
	return Config{
		Technique: "shadow",
		Window: WindowConfig{
			Title:   "oxy-gl",
			Width:   800,
			Height:  600,
			VSync:   true,
			Samples: 4,
		},
		Renderer: RendererConfig{
			Backend:        "opengl",
			MaxFrameErrors: 3,
		},
		Camera: CameraConfig{
			Position:  [3]float32{0, 0, 3},
			Yaw:       -90,
			Fov:       45,
			Near:      0.1,
			Far:       100,
			MoveSpeed: 2.5,
		},
		Profiler: ProfilerConfig{
			Interval: time.Second,
		},
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read, has unknown fields or fails validation
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !slices.Contains(pipeline.Names(), c.Technique) {
		return fmt.Errorf("unknown technique %q (known: %v)", c.Technique, pipeline.Names())
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", c.Frames)
	}
	if c.Camera.Fov < 1 || c.Camera.Fov > 45 {
		return fmt.Errorf("camera fov %v outside 1..45", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("invalid camera clip range %v..%v", c.Camera.Near, c.Camera.Far)
	}
	if c.Profiler.Enabled && c.Profiler.Interval <= 0 {
		return fmt.Errorf("profiler interval must be positive, got %s", c.Profiler.Interval)
	}
	return nil
}
