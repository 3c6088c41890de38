package shader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads file-backed programs when their sources change on disk. Events are queued by
// a background goroutine; Drain performs the reloads and must run on the thread that owns the
// GL context.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger

	mu       sync.Mutex
	programs map[string][]*Program
	dirs     map[string]bool
	pending  map[string]bool
	errs     []error

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts an fsnotify watcher.
//
// Parameters:
//   - logger: the logger for reload and watch failures, slog.Default when nil
//
// Returns:
//   - *Watcher: the running watcher
//   - error: the fsnotify setup error
func NewWatcher(logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create shader watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		fs:       fw,
		logger:   logger,
		programs: make(map[string][]*Program),
		dirs:     make(map[string]bool),
		pending:  make(map[string]bool),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Watch registers every source file of p. Directories are watched rather than files so editors
// that save by rename still produce events.
func (w *Watcher) Watch(p *Program) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, path := range p.Paths() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		dir := filepath.Dir(abs)
		if !w.dirs[dir] {
			if err := w.fs.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			w.dirs[dir] = true
		}
		if !slices.Contains(w.programs[abs], p) {
			w.programs[abs] = append(w.programs[abs], p)
		}
	}
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.notify(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.errs = append(w.errs, err)
			w.mu.Unlock()
		}
	}
}

// notify queues a changed path if a program depends on it.
func (w *Watcher) notify(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.programs[abs]; ok {
		w.pending[abs] = true
	}
}

// Pending reports whether changes are queued for the next Drain.
func (w *Watcher) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) > 0
}

// Drain reloads every program whose sources changed since the last call, once per program.
//
// Returns:
//   - []error: reload failures and watcher errors collected since the last call
func (w *Watcher) Drain() []error {
	w.mu.Lock()
	var programs []*Program
	for path := range w.pending {
		for _, p := range w.programs[path] {
			if !slices.Contains(programs, p) {
				programs = append(programs, p)
			}
		}
	}
	clear(w.pending)
	errs := w.errs
	w.errs = nil
	w.mu.Unlock()

	for _, p := range programs {
		if err := p.Reload(); err != nil {
			w.logger.Warn("shader hot reload failed", "program", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("reload %q: %w", p.Name(), err))
		}
	}
	return errs
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
