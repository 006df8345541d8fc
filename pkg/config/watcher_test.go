package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	dir := writeConfigFiles(t, `api:
  listen_addr: ":9090"
`, `llm_providers: {}
`)

	var mu sync.Mutex
	var reloaded []*Config

	w, err := NewWatcher(dir, func(cfg *Config) {
		mu.Lock()
		reloaded = append(reloaded, cfg)
		mu.Unlock()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	defer func() {
		cancel()
		w.Stop()
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "chartpilot.yaml"), []byte(`api:
  listen_addr: ":9191"
`), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) > 0
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, ":9191", reloaded[len(reloaded)-1].API.ListenAddr)
}

func TestWatcher_IgnoresUnwatchedFiles(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "test-key")

	dir := writeConfigFiles(t, `api: {}
`, `llm_providers: {}
`)

	var mu sync.Mutex
	var reloadCount int

	w, err := NewWatcher(dir, func(*Config) {
		mu.Lock()
		reloadCount++
		mu.Unlock()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	defer func() {
		cancel()
		w.Stop()
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	time.Sleep(watchDebounce + 200*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, reloadCount)
}

func TestNewWatcher_MissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "does-not-exist"), func(*Config) {})
	assert.Error(t, err)
}
