// Package watch re-analyzes source files as they change. Analyses of one
// path may overlap; only the result of the most recent change is delivered
// and results of superseded analyses are dropped.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/glint/pkg/config"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/language"
)

// Result is a delivered analysis.
type Result struct {
	Path       string
	Generation uint64
	Analysis   engine.Analysis
}

// AnalyzeFunc analyzes the contents of one file.
type AnalyzeFunc func(path, code string) engine.Analysis

// Watcher monitors files for changes and triggers analysis.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	analyze   AnalyzeFunc
	callback  func(Result)

	mu      sync.Mutex
	pending map[string]time.Time
	gens    *Generations
	prints  map[string]uint64
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a path must be quiet before it is analyzed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithEngine analyzes files with e.
func WithEngine(e *engine.Engine) Option {
	return func(w *Watcher) {
		w.analyze = engineAnalyzer(e)
	}
}

// WithAnalyzeFunc replaces the analysis run for each change.
func WithAnalyzeFunc(fn AnalyzeFunc) Option {
	return func(w *Watcher) {
		w.analyze = fn
	}
}

func engineAnalyzer(e *engine.Engine) AnalyzeFunc {
	return func(path, code string) engine.Analysis {
		return e.Analyze(code, e.DetectLanguage(path, code))
	}
}

// NewWatcher creates a new file watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  500 * time.Millisecond,
		path:      path,
		analyze:   engineAnalyzer(engine.FromConfig(cfg)),
		pending:   make(map[string]time.Time),
		gens:      NewGenerations(),
		prints:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SetCallback sets the function that receives current results.
func (w *Watcher) SetCallback(cb func(Result)) {
	w.mu.Lock()
	w.callback = cb
	w.mu.Unlock()
}

// Start watches for file changes until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.Walk(w.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		for _, excluded := range w.config.Exclude.Dirs {
			if info.Name() == excluded && path != w.path {
				return filepath.SkipDir
			}
		}
		return w.fsWatcher.Add(path)
	})
	if err != nil {
		return err
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			color.Red("Watch error: %v", err)
		}
	}
}

// handleEvent queues writes and creates of supported, non-excluded files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := event.Name
	if w.config.ShouldExclude(path) {
		return
	}
	if language.DetectFromFilename(path) == language.Auto {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processDebounced processes pending changes after the debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending submits files that have been stable for the debounce period.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.Submit(path)
	}
}

// Submit starts an analysis of path in the background. Any analysis of
// the same path still running is superseded and its result is discarded.
func (w *Watcher) Submit(path string) uint64 {
	gen := w.gens.Next(path)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(path, gen)
	}()
	return gen
}

func (w *Watcher) run(path string, gen uint64) {
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	code := string(content)
	sum := xxhash.Sum64String(code)

	w.mu.Lock()
	last, seen := w.prints[path]
	w.mu.Unlock()
	if seen && last == sum {
		return
	}

	analysis := w.analyze(path, code)

	// Callbacks run under the lock so results reach the caller one at a time.
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.gens.IsCurrent(path, gen) {
		return
	}
	w.prints[path] = sum
	if w.callback != nil {
		w.callback(Result{Path: path, Generation: gen, Analysis: analysis})
	}
}

// Wait blocks until every submitted analysis has finished.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedFiles returns the list of watched directories.
func (w *Watcher) WatchedFiles() []string {
	return w.fsWatcher.WatchList()
}

// Generations hands out increasing generation numbers per key. A result
// computed for a generation is current only while no newer generation has
// been handed out for the same key.
type Generations struct {
	mu  sync.Mutex
	gen map[string]uint64
}

// NewGenerations creates an empty counter.
func NewGenerations() *Generations {
	return &Generations{gen: make(map[string]uint64)}
}

// Next returns a new generation for key, superseding all earlier ones.
func (g *Generations) Next(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[key]++
	return g.gen[key]
}

// IsCurrent reports whether gen is the latest generation for key.
func (g *Generations) IsCurrent(key string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[key] == gen
}
