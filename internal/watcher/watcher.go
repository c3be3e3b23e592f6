// Package watcher imports transcripts as they are written into a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/logging"
)

// Config controls which files are imported and when.
type Config struct {
	Dir         string
	Pattern     string
	DebounceDur time.Duration
}

// DefaultConfig watches dir for *.log files with a 500ms quiet period.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		Pattern:     "*.log",
		DebounceDur: 500 * time.Millisecond,
	}
}

// ImportFunc stores the transcript at path.
type ImportFunc func(ctx context.Context, path string) (*db.Log, error)

// Result is published once per debounced file.
type Result struct {
	Path string
	Log  *db.Log
	Err  error
}

// Watcher debounces filesystem events per path and imports each settled file.
type Watcher struct {
	cfg      Config
	importFn ImportFunc
	fsw      *fsnotify.Watcher
	broker   *Broker[Result]

	mu      sync.Mutex
	pending map[string]*pendingFile
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a watcher. Start must be called to begin watching.
func New(cfg Config, importFn ImportFunc) (*Watcher, error) {
	if importFn == nil {
		return nil, errors.New("import function is required")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*.log"
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultConfig(cfg.Dir).DebounceDur
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", cfg.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.Dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		importFn: importFn,
		fsw:      fsw,
		broker:   NewBroker[Result](),
		pending:  make(map[string]*pendingFile),
	}, nil
}

// Broker returns the broker results are published on.
func (w *Watcher) Broker() *Broker[Result] {
	return w.broker
}

// Start begins watching the directory. Imports run with ctx until Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}

	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	logging.Component("watcher").Info("watching directory", "dir", w.cfg.Dir, "pattern", w.cfg.Pattern, "debounce", w.cfg.DebounceDur)

	w.wg.Add(1)
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.schedule(ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Component("watcher").Warn("watcher error", "error", err)
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	ok, _ := filepath.Match(w.cfg.Pattern, filepath.Base(ev.Name))
	return ok
}

type pendingFile struct {
	timer *time.Timer
}

// schedule (re)starts the quiet period for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(w.cfg.DebounceDur)
		return
	}
	p := &pendingFile{}
	p.timer = time.AfterFunc(w.cfg.DebounceDur, func() { w.fire(path, p) })
	w.pending[path] = p
}

func (w *Watcher) fire(path string, p *pendingFile) {
	w.mu.Lock()
	if w.pending[path] == p {
		delete(w.pending, path)
	}
	if w.stopped {
		w.mu.Unlock()
		return
	}
	ctx := w.ctx
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	log, err := w.importFn(ctx, path)
	l := logging.Component("watcher").With("path", path)
	if err != nil {
		l.Warn("import failed", "error", err)
	} else {
		l.Info("imported file", "log_id", log.ID)
	}
	w.broker.Publish(Result{Path: path, Log: log, Err: err})
}

// Stop stops watching, cancels in-flight imports and waits for them to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	w.broker.Shutdown()
	return err
}
