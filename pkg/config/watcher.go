package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ConfigWatcher reloads the configuration when its file changes
type ConfigWatcher struct {
	configManager *ConfigManager
	watcher       *fsnotify.Watcher
	logger        logrus.FieldLogger
	path          string
	debounceTime  time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewConfigWatcher creates a new configuration watcher
func NewConfigWatcher(configManager *ConfigManager, logger logrus.FieldLogger) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &ConfigWatcher{
		configManager: configManager,
		watcher:       watcher,
		logger:        logger.WithField("component", "config_watcher"),
		debounceTime:  500 * time.Millisecond,
		stopChan:      make(chan struct{}),
	}, nil
}

// SetDebounceTime sets the debounce time for reload events
func (cw *ConfigWatcher) SetDebounceTime(duration time.Duration) {
	cw.debounceTime = duration
}

// Start watches the directory holding the loaded config file
func (cw *ConfigWatcher) Start() error {
	path := cw.configManager.Path()
	if path == "" {
		return fmt.Errorf("no config path set")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	cw.path = abs

	// Editors replace files on save, so watch the parent directory.
	dir := filepath.Dir(abs)
	if err := cw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	cw.logger.Infof("Watching config file %s", abs)
	go cw.watchLoop()
	return nil
}

// Stop stops the configuration watcher
func (cw *ConfigWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		cw.mu.Lock()
		if cw.timer != nil {
			cw.timer.Stop()
		}
		cw.mu.Unlock()
		if err := cw.watcher.Close(); err != nil {
			cw.logger.Warnf("Error closing file watcher: %v", err)
		}
	})
}

func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleFileEvent(event)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Errorf("Config watcher error: %v", err)

		case <-cw.stopChan:
			return
		}
	}
}

func (cw *ConfigWatcher) handleFileEvent(event fsnotify.Event) {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != cw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounceTime, cw.reload)
}

func (cw *ConfigWatcher) reload() {
	select {
	case <-cw.stopChan:
		return
	default:
	}

	if err := cw.configManager.Reload(); err != nil {
		cw.logger.Errorf("Failed to reload configuration: %v", err)
		return
	}
	cw.logger.Info("Configuration reloaded")
}
