package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/schollz/progressbar/v3"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	imageCache map[string]*common.ImageData
	modelCache map[string]*common.ImportedModel

	images map[string]imageBackend
	models map[string]modelBackend

	pool   worker.DynamicWorkerPool
	logger *slog.Logger

	// Pre-creation config collected from builder options
	workers  int
	flip     bool
	progress io.Writer
}

// Loader decodes images and models into CPU-side data and caches them by name. It never touches
// the GPU: decoded pixels and meshes are uploaded on the thread that owns the GL context.
// Batch loads decode on a worker pool.
type Loader interface {
	// LoadImage decodes the image file at path and caches it by path.
	// If the image is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the image file
	//
	// Returns:
	//   - *common.ImageData: the decoded image
	//   - error: error if the file cannot be read or its format is unsupported
	LoadImage(path string) (*common.ImageData, error)

	// LoadImageReader decodes an image from r and caches it by name. The format is sniffed from
	// the content, falling back to the extension of name.
	//
	// Parameters:
	//   - name: the cache key, also used for the extension fallback
	//   - r: the encoded image
	//
	// Returns:
	//   - *common.ImageData: the decoded image
	//   - error: error if decoding fails
	LoadImageReader(name string, r io.Reader) (*common.ImageData, error)

	// LoadImages decodes every path on the worker pool and waits for all of them. Images that
	// decode are cached and returned even when others fail.
	//
	// Parameters:
	//   - paths: the image files
	//
	// Returns:
	//   - map[string]*common.ImageData: the decoded images keyed by path
	//   - error: the joined errors of the images that failed
	LoadImages(paths ...string) (map[string]*common.ImageData, error)

	// LoadModel parses the model at path together with its material library and decodes every
	// texture the materials reference into the model's Images. Missing textures are logged and
	// left out; the model is still returned.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *common.ImportedModel: the parsed model
	//   - error: error if the model itself cannot be parsed
	LoadModel(path string) (*common.ImportedModel, error)

	// Image returns a cached image, or nil.
	Image(name string) *common.ImageData

	// Model returns a cached model, or nil.
	Model(name string) *common.ImportedModel

	// Names returns the sorted cache keys of every image and model.
	Names() []string

	// Close stops the worker pool. The caches stay readable.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the image and model backends registered and the worker pool
// started.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		imageCache: make(map[string]*common.ImageData),
		modelCache: make(map[string]*common.ImportedModel),
		logger:     slog.Default(),
		workers:    runtime.NumCPU(),
		flip:       true,
	}
	raster := rasterBackend{}
	l.images = map[string]imageBackend{
		"png":  raster,
		"jpg":  raster,
		"gif":  raster,
		"bmp":  raster,
		"tif":  raster,
		"webp": raster,
		"hdr":  radianceBackend{},
	}
	l.models = map[string]modelBackend{
		"obj": objBackend{},
	}

	for _, option := range options {
		option(l)
	}
	if l.workers < 1 {
		l.workers = 1
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) LoadImage(path string) (*common.ImageData, error) {
	if img := l.Image(path); img != nil {
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	defer f.Close()
	return l.LoadImageReader(path, f)
}

func (l *loader) LoadImageReader(name string, r io.Reader) (*common.ImageData, error) {
	if img := l.Image(name); img != nil {
		return img, nil
	}
	img, err := l.decode(name, r)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.imageCache[name] = img
	l.mu.Unlock()
	return img, nil
}

// decode sniffs the format and runs the matching backend without touching the cache.
func (l *loader) decode(name string, r io.Reader) (*common.ImageData, error) {
	br := bufio.NewReaderSize(r, sniffHeaderSize)
	head, err := br.Peek(sniffHeaderSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	format, err := detectImageFormat(name, head)
	if err != nil {
		return nil, err
	}
	backend, ok := l.images[format]
	if !ok {
		return nil, fmt.Errorf("%s: no decoder for %s", name, format)
	}

	start := time.Now()
	img, err := backend.Decode(name, br, l.flip)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("image decoded", "name", name, "format", format, "width", img.Width,
		"height", img.Height, "channels", img.Channels, "hdr", img.HDR, "elapsed", time.Since(start))
	return img, nil
}

func (l *loader) LoadImages(paths ...string) (map[string]*common.ImageData, error) {
	return l.loadBatch(paths, func(p string) string { return p })
}

// loadBatch decodes every key on the pool, reading the file at resolve(key).
func (l *loader) loadBatch(keys []string, resolve func(string) string) (map[string]*common.ImageData, error) {
	var bar *progressbar.ProgressBar
	if l.progress != nil && len(keys) > 0 {
		bar = progressbar.NewOptions(len(keys),
			progressbar.OptionSetWriter(l.progress),
			progressbar.OptionSetDescription("decoding images"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var (
		mu     sync.Mutex
		result = make(map[string]*common.ImageData, len(keys))
		errs   []error
		wg     sync.WaitGroup
	)
	for id, key := range keys {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID:      id,
			Payload: key,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := l.loadFile(key, resolve(key))

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
				} else {
					result[key] = img
				}
				if bar != nil {
					_ = bar.Add(1)
				}
				return img, err
			},
		})
	}
	// The pool's own Wait only returns once workers idle out.
	wg.Wait()
	if bar != nil {
		_ = bar.Finish()
	}
	return result, errors.Join(errs...)
}

// loadFile decodes the file at path and caches it under key.
func (l *loader) loadFile(key, path string) (*common.ImageData, error) {
	if img := l.Image(key); img != nil {
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	defer f.Close()

	img, err := l.decode(key, f)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.imageCache[key] = img
	l.mu.Unlock()
	return img, nil
}

func (l *loader) LoadModel(path string) (*common.ImportedModel, error) {
	if m := l.Model(path); m != nil {
		return m, nil
	}

	format, err := modelFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	open := func(rel string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	}
	imported, err := l.models[format].Parse(path, f, open)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	// Texture keys stay relative to the model so materials can look them up unchanged.
	textures := imported.TexturePaths()
	images, err := l.loadBatch(textures, func(rel string) string {
		return filepath.Join(dir, filepath.FromSlash(rel))
	})
	if err != nil {
		l.logger.Warn("model textures missing", "model", path, "error", err)
	}
	imported.Images = images

	vertices := 0
	for _, m := range imported.Meshes {
		vertices += len(m.Positions)
	}
	l.logger.Info("model loaded", "name", path, "meshes", len(imported.Meshes), "vertices", vertices,
		"materials", len(imported.Materials), "textures", len(images))

	l.mu.Lock()
	l.modelCache[path] = imported
	l.mu.Unlock()
	return imported, nil
}

func (l *loader) Image(name string) *common.ImageData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.imageCache[name]
}

func (l *loader) Model(name string) *common.ImportedModel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.imageCache)+len(l.modelCache))
	for k := range l.imageCache {
		names = append(names, k)
	}
	for k := range l.modelCache {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (l *loader) Close() {
	l.pool.Stop()
}
