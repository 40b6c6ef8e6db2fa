// internal/browser/context_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type ctxKey string

func TestCombineContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("KeepsPrimaryValues", func(t *testing.T) {
		primary := context.WithValue(context.Background(), ctxKey("k"), "v")
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()
		assert.Equal(t, "v", combined.Value(ctxKey("k")))
	})

	t.Run("CanceledBySecondary", func(t *testing.T) {
		secondary, cancelSecondary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		cancelSecondary()
		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context was not canceled with the secondary")
		}
	})

	t.Run("CanceledByPrimary", func(t *testing.T) {
		primary, cancelPrimary := context.WithCancel(context.Background())
		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		cancelPrimary()
		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context was not canceled with the primary")
		}
	})
}

func TestDetach(t *testing.T) {
	parent, cancel := context.WithTimeout(context.WithValue(context.Background(), ctxKey("k"), "v"), time.Millisecond)
	cancel()
	require.Error(t, parent.Err())

	detached := Detach(parent)
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
	assert.Equal(t, "v", detached.Value(ctxKey("k")))

	// A timeout derived from a detached context is independent of the parent.
	bounded, boundedCancel := context.WithTimeout(detached, time.Minute)
	defer boundedCancel()
	assert.NoError(t, bounded.Err())
}

func TestAwaitFirstRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("ReturnsRunResult", func(t *testing.T) {
		assert.NoError(t, awaitFirstRun(context.Background(), func() error { return nil }))
		assert.EqualError(t, awaitFirstRun(context.Background(), func() error { return errors.New("target crashed") }), "target crashed")
	})

	t.Run("CallerDeadlineStopsWaiting", func(t *testing.T) {
		release := make(chan struct{})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := awaitFirstRun(ctx, func() error {
			<-release
			return nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
		close(release)
	})
}
