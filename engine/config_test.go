package engine_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_EmptyUsesDefaults(t *testing.T) {
	cfg, err := engine.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultConfig(), cfg)
	assert.Equal(t, [3]float32{0, 0, 3}, cfg.Camera.Position)
	assert.Equal(t, float32(45), cfg.Camera.Fov)
}

func TestParseConfig_OverridesOnlyGivenFields(t *testing.T) {
	cfg, err := engine.ParseConfig([]byte(`
technique: pbr
frames: 10
window:
  width: 1280
renderer:
  backend: headless
camera:
  position: [1, 2, 3]
profiler:
  enabled: true
  interval: 500ms
`))
	require.NoError(t, err)
	assert.Equal(t, "pbr", cfg.Technique)
	assert.Equal(t, 10, cfg.Frames)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, "oxy-gl", cfg.Window.Title)
	assert.Equal(t, "headless", cfg.Renderer.Backend)
	assert.Equal(t, 3, cfg.Renderer.MaxFrameErrors)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
	assert.Equal(t, 500*time.Millisecond, cfg.Profiler.Interval)
}

func TestParseConfig_Rejects(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"unknown field":     {"windw:\n  width: 10\n", "field windw not found"},
		"unknown technique": {"technique: raytrace\n", `unknown technique "raytrace"`},
		"zero width":        {"window:\n  width: 0\n", "invalid window size"},
		"negative frames":   {"frames: -1\n", "frames must not be negative"},
		"wide fov":          {"camera:\n  fov: 90\n", "outside 1..45"},
		"inverted clip":     {"camera:\n  near: 10\n  far: 1\n", "invalid camera clip range"},
		"zero interval":     {"profiler:\n  enabled: true\n  interval: 0s\n", "profiler interval"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := engine.ParseConfig([]byte(tc.yaml))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxygl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("technique: ssao\n"), 0o644))

	cfg, err := engine.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ssao", cfg.Technique)

	_, err = engine.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromConfig_Headless(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Technique = "deferred"
	cfg.Renderer.Backend = "headless"
	cfg.Frames = 2

	e, err := engine.FromConfig(cfg, slog.Default())
	require.NoError(t, err)
	defer e.Destroy()

	assert.Nil(t, e.Window())
	assert.Equal(t, "deferred", e.Technique().Name())
	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), e.Renderer().Frames())
}

func TestLoadAssets_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := engine.LoadAssets(engine.AssetsConfig{
		Diffuse: filepath.Join(dir, "floor.png"),
		Model:   filepath.Join(dir, "model.obj"),
	}, slog.Default())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "model.obj")
}

func TestLoadAssets_EmptyUsesStandIns(t *testing.T) {
	assets, err := engine.LoadAssets(engine.AssetsConfig{}, slog.Default())
	require.NoError(t, err)
	assert.Nil(t, assets.Diffuse)
	assert.Nil(t, assets.Model)
}
