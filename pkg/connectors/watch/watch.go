// Package watch debounces fsnotify events across a set of connector
// data roots into a single reindex trigger, following the Start/Stop
// goroutine shape the teacher uses for its background health scanner.
package watch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher fans fsnotify events from multiple roots into a single
// debounced OnChange callback.
type Watcher struct {
	roots     []string
	debounce  time.Duration
	onChange  func()
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Watcher over roots. debounce is the quiet period
// required after the last event before onChange fires; if <= 0 it
// defaults to 2 seconds.
func New(roots []string, debounce time.Duration, onChange func(), logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		roots:    roots,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins watching in the background. Returns immediately; a
// non-nil error means no fsnotify watcher could be created and nothing
// is running.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	for _, root := range w.roots {
		if err := fsw.Add(root); err != nil {
			w.logger.Warn("watch: could not watch root, skipping", zap.String("root", root), zap.Error(err))
			continue
		}
	}

	w.running = true
	w.mu.Unlock()

	w.logger.Info("watch: started", zap.Int("roots", len(w.roots)), zap.Duration("debounce", w.debounce))
	go w.run(fsw)
	return nil
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Watcher) run(fsw *fsnotify.Watcher) {
	defer close(w.doneCh)
	defer fsw.Close()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			w.logger.Info("watch: stopped: stop requested")
			return
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch: fsnotify error", zap.Error(err))
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.onChange()
		}
	}
}
