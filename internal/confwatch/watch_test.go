package confwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandpile/internal/logging"
	"sandpile/internal/sandpile"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule: bounded\n"), 0o600))

	w, err := New(path, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan sandpile.Config, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(cfg sandpile.Config) { got <- cfg }) }()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("rule: torus\n"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("rule: torus-probabilistic\nprobability: 0.3\n"), 0o600))

	select {
	case cfg := <-got:
		assert.Equal(t, sandpile.ToroidalProbabilistic, cfg.Rule)
		assert.Equal(t, 0.3, cfg.Probability)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule: bounded\n"), 0o600))

	w, err := New(path, 20*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan sandpile.Config, 4)
	go w.Run(ctx, func(cfg sandpile.Config) { got <- cfg })

	require.NoError(t, os.WriteFile(path, []byte("rule: [not, a, rule\n"), 0o600))
	select {
	case cfg := <-got:
		t.Fatalf("unexpected reload %+v", cfg)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("rule: torus\n"), 0o600))
	select {
	case cfg := <-got:
		assert.Equal(t, sandpile.ToroidalDeterministic, cfg.Rule)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "pile.yaml"), 0, logging.Discard())
	assert.Error(t, err)
}
