package taxonomy

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// defaultDebounce collapses editor save bursts into a single reload
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a Store when rule files in the user directory change
type Watcher struct {
	store    *Store
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup

	timerMu      sync.Mutex
	pendingTimer *time.Timer
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period between the last file event and the reload
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for dir feeding store
func NewWatcher(store *Store, dir string, opts ...WatcherOption) (*Watcher, error) {
	if dir == "" {
		return nil, ErrNoUserDir
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		store:    store,
		dir:      dir,
		watcher:  fsWatcher,
		debounce: defaultDebounce,
		stopChan: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start begins watching the directory
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.wg.Add(1)

	go w.run()

	log.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("watching taxonomy directory")

	return nil
}

// Stop stops watching and cancels any pending reload
func (w *Watcher) Stop() error {
	close(w.stopChan)
	w.wg.Wait()

	w.timerMu.Lock()
	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}
	w.timerMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			log.Warn().Err(err).Str("dir", w.dir).Msg("taxonomy watcher error")
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isRuleFile(event.Name) {
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	log.Debug().Str("file", filepath.Base(event.Name)).Str("op", event.Op.String()).Msg("taxonomy file changed")

	w.scheduleReload()
}

func (w *Watcher) scheduleReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}

	w.pendingTimer = time.AfterFunc(w.debounce, func() {
		if err := w.store.Reload(); err != nil {
			log.Error().Err(err).Str("dir", w.dir).Msg("taxonomy hot reload failed, keeping previous rules")
		}
	})
}
