package corpus

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
)

// Watcher watches a corpus root for test-data changes and triggers rerun
// callbacks. Changes are debounced so a batch of file writes (a corpus
// regeneration, an rsync) produces one rerun, not dozens.
type Watcher struct {
	root           string
	watcher        *fsnotify.Watcher
	callbacks      []RerunCallback
	mu             sync.RWMutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// RerunCallback is called after the debounce period with a fresh discovery
// of the corpus.
type RerunCallback func([]TestFile) error

// NewWatcher creates a watcher over root and every directory beneath it.
func NewWatcher(root string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	// fsnotify does not recurse; register each subdirectory explicitly.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch corpus root %s", root)
	}

	return &Watcher{
		root:           root,
		watcher:        watcher,
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// OnChange registers a callback to run after corpus changes settle.
func (w *Watcher) OnChange(callback RerunCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching in the background.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				// New directories must be registered to see their files.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						logger.Warnw("Corpus watcher failed to add directory",
							"dir", event.Name,
							"error", err)
					}
					continue
				}
			}

			if !isTestDataEvent(event) {
				continue
			}

			logger.Infow("Corpus watcher detected change",
				"file", event.Name,
				"op", event.Op.String())
			w.scheduleRerun()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Corpus watcher error",
				"error", err)
		}
	}
}

// scheduleRerun debounces rapid changes before rediscovering the corpus.
func (w *Watcher) scheduleRerun() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.rerun(); err != nil {
			logger.Errorw("Corpus rerun failed",
				"error", err)
		}
	})
}

func (w *Watcher) rerun() error {
	files, err := Discover(w.root)
	if err != nil {
		return errors.Wrap(err, "failed to rediscover corpus")
	}

	logger.Infow("Corpus rediscovered",
		"root", w.root,
		"files", len(files))

	w.mu.RLock()
	callbacks := make([]RerunCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(files); err != nil {
			logger.Warnw("Corpus rerun callback error",
				"error", err)
		}
	}
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// isTestDataEvent reports whether the event concerns a test-data file
// being written, created, renamed or removed.
func isTestDataEvent(event fsnotify.Event) bool {
	relevant := fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	if event.Op&relevant == 0 {
		return false
	}
	name := strings.ToLower(event.Name)
	return strings.HasSuffix(name, SuffixText) || strings.HasSuffix(name, SuffixBinary)
}
