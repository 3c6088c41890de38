package loader

import (
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the maximum number of decode workers. Values below 1 mean one worker.
//
// Parameters:
//   - n: the worker limit
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker limit to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = n
	}
}

// WithProgress draws a progress bar on w during batch loads.
func WithProgress(w io.Writer) LoaderBuilderOption {
	return func(l *loader) {
		l.progress = w
	}
}

// WithFlipVertical controls whether images are stored bottom row first, matching OpenGL texture
// coordinates. It is on by default.
//
// Parameters:
//   - flip: false to keep the file's row order
//
// Returns:
//   - LoaderBuilderOption: a function that applies the flip option to a loader
func WithFlipVertical(flip bool) LoaderBuilderOption {
	return func(l *loader) {
		l.flip = flip
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithImage seeds the image cache, so that later loads of name return img.
//
// Parameters:
//   - name: the cache key
//   - img: the image to serve under name
//
// Returns:
//   - LoaderBuilderOption: a function that adds the image to the loader's cache
func WithImage(name string, img *common.ImageData) LoaderBuilderOption {
	return func(l *loader) {
		l.imageCache[name] = img
	}
}
