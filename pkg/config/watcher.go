package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of writes a single "save" in an editor
// triggers into one reload, the same delay steveyegge-beads' file watcher
// uses for its own debounce timer.
const watchDebounce = 500 * time.Millisecond

// watchedFiles are the only files in a config directory whose changes
// justify a reload; editor swap files and unrelated directory entries are
// ignored.
var watchedFiles = map[string]bool{
	"chartpilot.yaml":    true,
	"llm-providers.yaml": true,
}

// Watcher reloads configuration from disk whenever chartpilot.yaml or
// llm-providers.yaml changes underneath configDir, without requiring a
// process restart.
type Watcher struct {
	configDir string
	onReload  func(*Config)
	watcher   *fsnotify.Watcher
	done      chan struct{}
}

// NewWatcher creates a Watcher over configDir. onReload is invoked with a
// freshly loaded and validated Config after each debounced change; it is
// never called concurrently with itself.
func NewWatcher(configDir string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(configDir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	return &Watcher{
		configDir: configDir,
		onReload:  onReload,
		watcher:   fw,
		done:      make(chan struct{}),
	}, nil
}

// Start runs the watch loop in its own goroutine until ctx is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop closes the underlying fsnotify watcher and waits for the watch loop
// to exit.
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var debounce *time.Timer
	reload := func() {
		cfg, err := Initialize(ctx, w.configDir)
		if err != nil {
			slog.Error("config reload failed, keeping previous configuration", "error", err)
			return
		}
		slog.Info("configuration reloaded from disk", "config_dir", w.configDir)
		w.onReload(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !watchedFiles[filepath.Base(event.Name)] {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}
