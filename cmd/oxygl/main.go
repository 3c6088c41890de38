// Command oxygl runs one of the rendering techniques in a window, or headless for a fixed number
// of frames.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/pipeline"
	"github.com/spf13/cobra"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "oxygl",
		Short:        "Run real-time OpenGL rendering techniques",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(newRunCommand(opts), newListCommand())
	return root
}

type runOptions struct {
	headless  bool
	frames    int
	profile   bool
	shaderDir string
	hotReload bool
	model     string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:       "run [technique]",
		Short:     "Run a technique until the window closes",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pipeline.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(root.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Technique = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("headless") && opts.headless {
				cfg.Renderer.Backend = "headless"
			}
			if flags.Changed("frames") {
				cfg.Frames = opts.frames
			}
			if flags.Changed("profile") {
				cfg.Profiler.Enabled = opts.profile
			}
			if flags.Changed("shader-dir") {
				cfg.Renderer.ShaderDir = opts.shaderDir
			}
			if flags.Changed("hot-reload") {
				cfg.Renderer.HotReload = opts.hotReload
			}
			if flags.Changed("model") {
				cfg.Assets.Model = opts.model
			}
			if cfg.Renderer.Backend == "headless" && cfg.Frames == 0 {
				cfg.Frames = 1
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, logger)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.headless, "headless", false, "render with the in-memory driver, without a window")
	f.IntVar(&opts.frames, "frames", 0, "stop after this many frames (0 runs until closed)")
	f.BoolVar(&opts.profile, "profile", false, "log frame rate, draw calls and memory once per interval")
	f.StringVar(&opts.shaderDir, "shader-dir", "", "load shaders from this directory")
	f.BoolVar(&opts.hotReload, "hot-reload", false, "relink programs when files in --shader-dir change")
	f.StringVar(&opts.model, "model", "", "OBJ model drawn by the deferred and ssao techniques")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available techniques",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range pipeline.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func loadConfig(path string) (engine.Config, error) {
	if path == "" {
		return engine.DefaultConfig(), nil
	}
	return engine.LoadConfig(path)
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func run(ctx context.Context, cfg engine.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer e.Destroy()

	go func() {
		<-ctx.Done()
		e.Quit()
	}()
	return e.Run()
}
