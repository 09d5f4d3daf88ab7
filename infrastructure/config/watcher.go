package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	domainconfig "github.com/AlotfyDev/ArchiNote/domain/config"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DomainConfigWatcher reloads the domain config file when it changes
type DomainConfigWatcher struct {
	path        string
	environment string
	watcher     *fsnotify.Watcher
	debounce    time.Duration

	mu       sync.RWMutex
	current  *domainconfig.DomainConfig
	onChange []func(*domainconfig.DomainConfig)

	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewDomainConfigWatcher loads the file once and starts watching it
func NewDomainConfigWatcher(path, environment string, logger *zap.Logger) (*DomainConfigWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Load initial configuration
	cfg, err := LoadDomainConfigFile(path, environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial domain config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory so editors that save via rename are still seen
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &DomainConfigWatcher{
		path:        path,
		environment: environment,
		watcher:     watcher,
		debounce:    100 * time.Millisecond,
		current:     cfg,
		logger:      logger.Named("config_watcher"),
		stopCh:      make(chan struct{}),
	}, nil
}

// Run watches until Stop is called. It blocks.
func (w *DomainConfigWatcher) Run() {
	w.logger.Info("Domain config watcher started", zap.String("path", w.path))

	var debounceTimer *time.Timer
	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// Stop stops watching. It is safe to call more than once.
func (w *DomainConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Domain config watcher stopped")
	})
}

// OnChange registers a callback run after every successful reload
func (w *DomainConfigWatcher) OnChange(handler func(*domainconfig.DomainConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns a copy of the last valid configuration
func (w *DomainConfigWatcher) Current() *domainconfig.DomainConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Clone()
}

// reload keeps the current config when the new file is unreadable or invalid
func (w *DomainConfigWatcher) reload() {
	cfg, err := LoadDomainConfigFile(w.path, w.environment)
	if err != nil {
		w.logger.Error("Invalid domain config, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	old := w.current
	w.current = cfg
	handlers := append([]func(*domainconfig.DomainConfig){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Info("Domain config reloaded",
		zap.Int("rules_before", old.CompatibilityRules().Len()),
		zap.Int("rules_after", cfg.CompatibilityRules().Len()),
		zap.Bool("enforce_path_compatibility", cfg.EnforcePathCompatibility),
	)
	for _, handler := range handlers {
		handler(cfg.Clone())
	}
}
