package corpus

// #region imports
import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// #endregion imports

// DefaultDebounce is how long the watcher waits after the last write before reloading.
const DefaultDebounce = 250 * time.Millisecond

// #region watcher

// Watcher reloads the corpus when any of its backing files change.
// A reload that fails keeps the previous snapshot.
type Watcher struct {
	src      Source
	store    *Store
	paths    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
	fsw      *fsnotify.Watcher

	// reloaded receives the new size after each successful swap; used by tests.
	reloaded chan int
}

// NewWatcher watches the directories containing paths. Files are matched by
// absolute path so editors that replace files atomically still trigger a reload.
func NewWatcher(src Source, store *Store, paths []string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("corpus watcher: no paths")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("corpus watcher: %w", err)
	}

	w := &Watcher{
		src:      src,
		store:    store,
		paths:    make(map[string]bool, len(paths)),
		debounce: DefaultDebounce,
		logger:   logger,
		fsw:      fsw,
		reloaded: make(chan int, 1),
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("corpus watcher: %w", err)
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("corpus watcher: watch %s: %w", d, err)
		}
	}
	return w, nil
}

// Run blocks until ctx is done, reloading after debounced change bursts.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("[CORPUS] watcher error", zap.Error(err))
		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.paths[abs]
}

func (w *Watcher) reload(ctx context.Context) {
	c, err := Load(ctx, w.src, w.logger)
	if err != nil {
		w.logger.Warn("[CORPUS] reload failed, keeping previous snapshot", zap.Error(err))
		return
	}
	prev := w.store.Swap(c)
	w.logger.Info("[CORPUS] reloaded", zap.Int("previous", prev.Len()), zap.Int("current", c.Len()))
	select {
	case w.reloaded <- c.Len():
	default:
	}
}

// #endregion watcher
