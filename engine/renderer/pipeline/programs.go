package pipeline

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
)

//go:embed shaders
var embedded embed.FS

// ShaderFiles returns the names of the embedded GLSL files techniques are built from.
func ShaderFiles() []string {
	entries, err := fs.ReadDir(embedded, "shaders")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// ProgramCache builds programs once per key and owns them. Sources come from the embedded
// shaders unless a directory is configured, in which case programs are read from disk and,
// with a watcher, reloaded on change.
type ProgramCache struct {
	ctx      *gpu.RenderContext
	dir      string
	watcher  *shader.Watcher
	programs map[string]*shader.Program
}

// ProgramCacheOption configures a ProgramCache.
type ProgramCacheOption func(*ProgramCache)

// WithShaderDir reads sources from dir instead of the embedded copies. File names are the same.
func WithShaderDir(dir string) ProgramCacheOption {
	return func(c *ProgramCache) {
		c.dir = dir
	}
}

// WithWatcher registers every file-backed program with w for hot reload.
func WithWatcher(w *shader.Watcher) ProgramCacheOption {
	return func(c *ProgramCache) {
		c.watcher = w
	}
}

// NewProgramCache creates an empty cache.
//
// Parameters:
//   - ctx: the render context programs are created on
//   - opts: cache options
//
// Returns:
//   - *ProgramCache: the cache
func NewProgramCache(ctx *gpu.RenderContext, opts ...ProgramCacheOption) *ProgramCache {
	c := &ProgramCache{
		ctx:      ctx,
		programs: make(map[string]*shader.Program),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Program returns the program cached under key, building it from the named vertex and fragment
// files on first use.
//
// Parameters:
//   - key: the cache key, also used as the program name
//   - vertexFile, fragmentFile: file names under the shader directory
//   - opts: program options applied on first build
//
// Returns:
//   - *shader.Program: the linked program
//   - error: a read, compile, link or uniform validation error
func (c *ProgramCache) Program(key, vertexFile, fragmentFile string, opts ...shader.ProgramBuilderOption) (*shader.Program, error) {
	if p, ok := c.programs[key]; ok && p.Alive() {
		return p, nil
	}
	opts = append([]shader.ProgramBuilderOption{shader.WithName(key)}, opts...)

	var p *shader.Program
	var err error
	if c.dir != "" {
		p, err = shader.NewProgramFromFiles(c.ctx, filepath.Join(c.dir, vertexFile), filepath.Join(c.dir, fragmentFile), opts...)
	} else {
		var vs, fsrc []byte
		if vs, err = embedded.ReadFile("shaders/" + vertexFile); err != nil {
			return nil, fmt.Errorf("program %q: %w", key, err)
		}
		if fsrc, err = embedded.ReadFile("shaders/" + fragmentFile); err != nil {
			return nil, fmt.Errorf("program %q: %w", key, err)
		}
		p, err = shader.NewProgram(c.ctx, string(vs), string(fsrc), opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", key, err)
	}

	if c.watcher != nil && c.dir != "" {
		if err := c.watcher.Watch(p); err != nil {
			c.ctx.Logger().Warn("shader hot reload unavailable", "program", key, "error", err)
		}
	}
	c.programs[key] = p
	return p, nil
}

// Source returns the raw text of a shader file, used for sources that are not a program stage
// such as shared includes.
func (c *ProgramCache) Source(file string) (string, error) {
	var data []byte
	var err error
	if c.dir != "" {
		data, err = os.ReadFile(filepath.Join(c.dir, file))
	} else {
		data, err = embedded.ReadFile("shaders/" + file)
	}
	if err != nil {
		return "", fmt.Errorf("shader source %q: %w", file, err)
	}
	return string(data), nil
}

// Keys returns the cached program keys in sorted order.
func (c *ProgramCache) Keys() []string {
	keys := make([]string, 0, len(c.programs))
	for k := range c.programs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Destroy releases every cached program.
func (c *ProgramCache) Destroy() {
	for key, p := range c.programs {
		p.Destroy()
		delete(c.programs, key)
	}
}
