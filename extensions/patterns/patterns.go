// Package patterns provides an extension that loads extra lane patterns from
// a YAML file and, optionally, reloads the file when it changes.
//
// Lane tables only grow. A reload adds the expressions not seen before and
// ignores removed ones; restart the orchestrator to drop a pattern.
package patterns

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/extension"
	"github.com/tailored-agentic-units/ucf/lane"
)

const (
	Name    = "patterns"
	Version = "1.0.0"

	// DefaultDebounce is how long the file must stay quiet before a reload.
	DefaultDebounce = 250 * time.Millisecond
)

// Option configures an Extension.
type Option func(*Extension)

// WithWatch reloads the pattern file when it is written or replaced.
func WithWatch() Option {
	return func(e *Extension) { e.watch = true }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(e *Extension) { e.debounce = d }
}

// WithLogger reports reloads and reload failures to log.
func WithLogger(log *zap.Logger) Option {
	return func(e *Extension) { e.log = log.Named(Name) }
}

// WithOnReload calls fn after every reload attempt with the number of
// patterns added and the error, if any.
func WithOnReload(fn func(added int, err error)) Option {
	return func(e *Extension) { e.onReload = fn }
}

// Extension feeds a pattern file into the host's lane classifier.
type Extension struct {
	path     string
	watch    bool
	debounce time.Duration
	log      *zap.Logger
	onReload func(int, error)

	mu         sync.Mutex
	classifier *lane.Classifier
	seen       map[protocol.Lane]map[string]bool
	watcher    *fsnotify.Watcher
	stop       chan struct{}
	done       chan struct{}
}

// New creates an extension for the pattern file at path.
func New(path string, opts ...Option) *Extension {
	e := &Extension{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extension) Name() string    { return Name }
func (e *Extension) Version() string { return Version }

// Install loads the file once and starts the watcher when enabled. A missing
// file, or one with any invalid expression, fails the install before a
// pattern reaches the host classifier.
func (e *Extension) Install(_ context.Context, host extension.Host) error {
	set, err := lane.LoadPatternFile(e.path)
	if err != nil {
		e.reported(0, err)
		return err
	}
	if err := set.Validate(); err != nil {
		err = fmt.Errorf("%s: %w", e.path, err)
		e.reported(0, err)
		return err
	}

	e.mu.Lock()
	e.classifier = host.Classifier()
	e.seen = map[protocol.Lane]map[string]bool{
		protocol.LaneStrategic:      {},
		protocol.LaneImplementation: {},
	}
	added, err := e.apply(set)
	e.mu.Unlock()
	e.reported(added, err)
	if err != nil {
		return err
	}

	if !e.watch {
		return nil
	}
	return e.startWatcher()
}

// Uninstall stops the watcher. Patterns already added stay in the tables.
func (e *Extension) Uninstall(_ context.Context, _ extension.Host) error {
	e.mu.Lock()
	watcher, stop, done := e.watcher, e.stop, e.done
	e.watcher, e.stop, e.done = nil, nil, nil
	e.mu.Unlock()

	var err error
	if watcher != nil {
		close(stop)
		<-done
		err = watcher.Close()
	}

	e.mu.Lock()
	e.classifier = nil
	e.mu.Unlock()
	return err
}

// Reload reads the pattern file and adds the expressions not added before.
// It returns how many were added. Expressions that fail to compile are
// reported together; the valid ones in the same file are still added.
func (e *Extension) Reload() (int, error) {
	set, err := lane.LoadPatternFile(e.path)
	if err != nil {
		e.reported(0, err)
		return 0, err
	}

	e.mu.Lock()
	if e.classifier == nil {
		e.mu.Unlock()
		return 0, fmt.Errorf("%s: extension not installed", Name)
	}
	added, err := e.apply(set)
	e.mu.Unlock()

	e.reported(added, err)
	return added, err
}

// apply adds the unseen expressions in set to the classifier. e.mu must be
// held.
func (e *Extension) apply(set *lane.PatternSet) (int, error) {
	added := 0
	var errs []error
	for _, group := range []struct {
		lane  protocol.Lane
		exprs []string
	}{
		{protocol.LaneStrategic, set.Strategic},
		{protocol.LaneImplementation, set.Implementation},
	} {
		for _, expr := range group.exprs {
			if e.seen[group.lane][expr] {
				continue
			}
			if err := e.classifier.AddExpr(group.lane, expr); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", group.lane, err))
				continue
			}
			e.seen[group.lane][expr] = true
			added++
		}
	}

	var reloadErr error
	if len(errs) > 0 {
		reloadErr = fmt.Errorf("%s: %d invalid patterns: %w", e.path, len(errs), errors.Join(errs...))
	}
	return added, reloadErr
}

func (e *Extension) reported(added int, err error) {
	if err != nil {
		e.log.Warn("pattern reload failed", zap.String("path", e.path), zap.Error(err))
	} else {
		e.log.Info("patterns loaded", zap.String("path", e.path), zap.Int("added", added))
	}
	if e.onReload != nil {
		e.onReload(added, err)
	}
}

// startWatcher watches the file's directory so editors that replace the
// file on save are still seen.
func (e *Extension) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(e.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", e.path, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	e.mu.Lock()
	e.watcher, e.stop, e.done = watcher, stop, done
	e.mu.Unlock()

	go e.run(watcher, stop, done)
	return nil
}

func (e *Extension) run(watcher *fsnotify.Watcher, stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(e.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != e.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(e.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			e.Reload()
		}
	}
}
