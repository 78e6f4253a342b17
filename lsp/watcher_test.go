package lsp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherScan(t *testing.T) {
	root := t.TempDir()
	class := filepath.Join(root, "p", "A.class")
	require.NoError(t, os.MkdirAll(filepath.Dir(class), 0o755))
	require.NoError(t, os.WriteFile(class, []byte{0xca, 0xfe}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "p", "A.java"), []byte("class A {}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "X.class"), nil, 0o644))

	w := newWatcher(root, time.Hour, func() {})
	assert.True(t, w.scan(), "first scan sees new files")
	assert.Len(t, w.modTimes, 1)
	assert.False(t, w.scan())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(class, later, later))
	assert.True(t, w.scan())
	assert.False(t, w.scan())

	require.NoError(t, os.WriteFile(filepath.Join(root, "p", "B.java"), nil, 0o644))
	assert.False(t, w.scan(), "source files are ignored")

	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.jar"), nil, 0o644))
	assert.True(t, w.scan())

	require.NoError(t, os.Remove(class))
	assert.True(t, w.scan())
	assert.Len(t, w.modTimes, 1)
}

func TestWatcherStartReportsNewClassFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "p"), 0o755))

	changed := make(chan struct{}, 1)
	w := newWatcher(root, 50*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "p", "q"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "p", "q", "A.class"), []byte{0xca, 0xfe}, 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for a new class file")
	}
}
