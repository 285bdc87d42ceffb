package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/zots0127/docdesk/internal/domain/entities"
	"github.com/zots0127/docdesk/internal/domain/repository"
)

// FileSnapshotRepository reads the snapshot from a JSON file.
// The parsed file is kept until Watch sees it change.
type FileSnapshotRepository struct {
	path   string
	logger logrus.FieldLogger

	mu       sync.RWMutex
	snapshot *entities.Snapshot
	onChange []func()

	watcher  *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
}

// NewFileSnapshotRepository creates a file-backed snapshot repository
func NewFileSnapshotRepository(path string, logger logrus.FieldLogger) *FileSnapshotRepository {
	return &FileSnapshotRepository{
		path:     path,
		logger:   logger.WithField("component", "file_snapshot"),
		debounce: 500 * time.Millisecond,
	}
}

// Name identifies the source
func (r *FileSnapshotRepository) Name() string {
	return string(repository.SnapshotSourceFile)
}

// Load returns the parsed snapshot, reading the file on first use
func (r *FileSnapshotRepository) Load(ctx context.Context) (*entities.Snapshot, error) {
	r.mu.RLock()
	snap := r.snapshot
	r.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := r.read()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()
	return snap, nil
}

func (r *FileSnapshotRepository) read() (*entities.Snapshot, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", repository.ErrSnapshotUnavailable, r.path)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrSnapshotUnavailable, err)
	}
	defer f.Close()

	snap, err := decodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return snap, nil
}

// OnChange registers a callback run after the file changed on disk
func (r *FileSnapshotRepository) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// Watch starts an fsnotify watcher that drops the parsed snapshot when the
// file is written. It stops when ctx is done.
func (r *FileSnapshotRepository) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce > 0 {
		r.debounce = debounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs, err := filepath.Abs(r.path)
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}
	r.watcher = watcher

	r.logger.Infof("Watching snapshot file %s", abs)
	go r.watchLoop(ctx, abs)
	return nil
}

func (r *FileSnapshotRepository) watchLoop(ctx context.Context, abs string) {
	defer r.watcher.Close()
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				r.scheduleInvalidate()
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Errorf("Snapshot watcher error: %v", err)

		case <-ctx.Done():
			r.mu.Lock()
			if r.timer != nil {
				r.timer.Stop()
			}
			r.mu.Unlock()
			return
		}
	}
}

func (r *FileSnapshotRepository) scheduleInvalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.Invalidate)
}

// Invalidate drops the parsed snapshot and notifies OnChange callbacks
func (r *FileSnapshotRepository) Invalidate() {
	r.mu.Lock()
	r.snapshot = nil
	callbacks := append([]func(){}, r.onChange...)
	r.mu.Unlock()

	r.logger.Info("Snapshot file changed, reloading on next request")
	for _, fn := range callbacks {
		fn()
	}
}
