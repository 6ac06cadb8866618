package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil", func(t *testing.T) {
		app := New()
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("run returns error", func(t *testing.T) {
		app := New()
		want := errors.New("run failed")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
	})

	t.Run("shutdown hooks run in LIFO order after run returns", func(t *testing.T) {
		app := New()
		var mu sync.Mutex
		var order []string
		record := func(name string) func(context.Context) error {
			return func(context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			}
		}

		app.AddShutdownHook(record("first"))
		app.AddShutdownHook(record("second"))
		err := app.Run(context.Background(), func(ctx context.Context) error {
			app.AddShutdownHook(record("third"))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, order)
	})

	t.Run("hook errors are joined with the run error", func(t *testing.T) {
		app := New()
		runErr := errors.New("run failed")
		closeErr := errors.New("close failed")
		app.AddShutdownHook(func(context.Context) error { return closeErr })

		err := app.Run(context.Background(), func(ctx context.Context) error {
			return runErr
		})
		assert.ErrorIs(t, err, runErr)
		assert.ErrorIs(t, err, closeErr)
	})

	t.Run("hooks run on context cancel", func(t *testing.T) {
		app := New()
		hookCalled := make(chan struct{})
		app.AddShutdownHook(func(context.Context) error {
			close(hookCalled)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		defer close(release)
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-release
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		<-hookCalled
	})
}
