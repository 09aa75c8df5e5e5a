package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jsamuelsen11/cleanarch/internal/adapters/watch"
	"github.com/jsamuelsen11/cleanarch/internal/platform/logging"
)

const debounce = 300 * time.Millisecond

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	clock   *clockwork.FakeClock
	batches chan []string
	cancel  context.CancelFunc
	done    chan error
}

func start(t *testing.T, w *watch.Watcher, handlerErr error) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		batches: make(chan []string, 8),
		cancel:  cancel,
		done:    make(chan error, 1),
	}

	go func() {
		h.done <- w.Run(ctx, func(_ context.Context, paths []string) error {
			h.batches <- paths
			return handlerErr
		})
	}()

	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

// settle waits for the debounce timer to be armed, then fires it.
func settle(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1), "debounce timer never armed")
	clock.Advance(debounce)
}

func nextBatch(t *testing.T, h *harness) []string {
	t.Helper()

	select {
	case b := <-h.batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
		return nil
	}
}

func newWatcher(t *testing.T, clock clockwork.Clock, roots ...string) *watch.Watcher {
	t.Helper()

	w, err := watch.New(roots, debounce, clock, logging.Discard())
	require.NoError(t, err)
	return w
}

func TestWatcher_DebouncesPHPChanges(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClock()
	h := start(t, newWatcher(t, clock, dir), nil)

	target := filepath.Join(dir, "Order.php")
	require.NoError(t, os.WriteFile(target, []byte("<?php\n"), 0o644))

	settle(t, clock)

	assert.Equal(t, []string{target}, nextBatch(t, h))
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClock()
	h := start(t, newWatcher(t, clock, dir), nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	target := filepath.Join(dir, "Invoice.php")
	require.NoError(t, os.WriteFile(target, []byte("<?php\n"), 0o644))

	settle(t, clock)

	assert.Equal(t, []string{target}, nextBatch(t, h))
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClock()
	w := newWatcher(t, clock, dir)
	h := start(t, w, nil)

	sub := filepath.Join(dir, "Billing")
	require.NoError(t, os.Mkdir(sub, 0o755))
	target := filepath.Join(sub, "Payment.php")
	require.NoError(t, os.WriteFile(target, []byte("<?php\n"), 0o644))

	settle(t, clock)

	assert.Contains(t, nextBatch(t, h), target)
	assert.Contains(t, w.Watched(), sub)
}

func TestWatcher_HandlerErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClock()
	h := start(t, newWatcher(t, clock, dir), errors.New("rewrite failed"))

	first := filepath.Join(dir, "A.php")
	require.NoError(t, os.WriteFile(first, []byte("<?php\n"), 0o644))
	settle(t, clock)
	assert.Contains(t, nextBatch(t, h), first)

	second := filepath.Join(dir, "B.php")
	require.NoError(t, os.WriteFile(second, []byte("<?php\n"), 0o644))
	settle(t, clock)

	// A late write event for A.php may ride along with B.php.
	assert.Contains(t, nextBatch(t, h), second)
}

func TestNew_SkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()

	w, err := watch.New([]string{filepath.Join(dir, "missing"), dir}, debounce, nil, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, []string{dir}, w.Watched())
}

func TestNew_NoWatchableRoots(t *testing.T) {
	t.Parallel()

	_, err := watch.New([]string{filepath.Join(t.TempDir(), "missing")}, debounce, nil, logging.Discard())

	assert.Error(t, err)
}
