// internal/browser/manager_test.go
package browser_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/browser"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/browser/browsertest"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
)

func newPageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLocateChrome(t *testing.T) {
	assert.Empty(t, browser.LocateChrome("definitely-not-a-browser-binary-xyz"))
}

func TestNewManager_BadExecutable(t *testing.T) {
	cfg := config.NewDefaultConfig().Browser
	cfg.ExecPath = "/nonexistent/chrome-binary"
	cfg.LaunchTimeout = 5 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := browser.NewManager(ctx, cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "failed to launch browser")
}

func TestManager(t *testing.T) {
	fx := browsertest.New(t)
	srv := newPageServer(t, `<html><head><title>probe</title></head><body><h1 id="h">hello</h1></body></html>`)

	t.Run("AcquireRunClose", func(t *testing.T) {
		s, err := fx.Manager.Acquire(fx.Ctx)
		require.NoError(t, err)
		require.NotEmpty(t, s.ID())

		var title string
		require.NoError(t, s.Run(fx.Ctx, chromedp.Navigate(srv.URL), chromedp.Title(&title)))
		assert.Equal(t, "probe", title)

		png, err := s.Screenshot(fx.Ctx)
		require.NoError(t, err)
		require.Greater(t, len(png), 8)
		assert.Equal(t, []byte("\x89PNG"), png[:4])

		require.NoError(t, s.Close(fx.Ctx))
		// Close is idempotent and the session refuses further work.
		require.NoError(t, s.Close(fx.Ctx))
		assert.ErrorIs(t, s.Run(fx.Ctx, chromedp.Navigate(srv.URL)), browser.ErrSessionClosed)
	})

	t.Run("AcquireHonorsCallerDeadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(fx.Ctx, time.Microsecond)
		defer cancel()
		<-ctx.Done()

		start := time.Now()
		s, err := fx.Manager.Acquire(ctx)
		require.Error(t, err)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)

		// The manager still hands out sessions afterwards.
		s, err = fx.Manager.Acquire(fx.Ctx)
		require.NoError(t, err)
		require.NoError(t, s.Close(fx.Ctx))
	})

	t.Run("SessionsAreIsolated", func(t *testing.T) {
		a, err := fx.Manager.Acquire(fx.Ctx)
		require.NoError(t, err)
		defer a.Close(fx.Ctx)
		b, err := fx.Manager.Acquire(fx.Ctx)
		require.NoError(t, err)
		defer b.Close(fx.Ctx)

		assert.NotEqual(t, a.ID(), b.ID())
		require.NoError(t, a.Run(fx.Ctx, chromedp.Navigate(srv.URL)))

		var url string
		require.NoError(t, b.Run(fx.Ctx, chromedp.Location(&url)))
		assert.NotEqual(t, srv.URL+"/", url)
	})

	t.Run("RunHonoursCallerDeadline", func(t *testing.T) {
		s, err := fx.Manager.Acquire(fx.Ctx)
		require.NoError(t, err)
		defer s.Close(fx.Ctx)
		require.NoError(t, s.Run(fx.Ctx, chromedp.Navigate(srv.URL)))

		short, cancel := context.WithTimeout(fx.Ctx, 200*time.Millisecond)
		defer cancel()
		err = s.Run(short, chromedp.WaitVisible("#never-there", chromedp.ByQuery))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		// The tab survives a caller timeout.
		var text string
		require.NoError(t, s.Run(fx.Ctx, chromedp.Text("#h", &text, chromedp.ByQuery)))
		assert.Equal(t, "hello", text)
	})

	t.Run("WithSessionClosesOnError", func(t *testing.T) {
		var captured *browser.Session
		boom := errors.New("boom")
		err := fx.Manager.WithSession(fx.Ctx, func(s *browser.Session) error {
			captured = s
			return boom
		})
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, captured)
		assert.ErrorIs(t, captured.Run(fx.Ctx, chromedp.Navigate(srv.URL)), browser.ErrSessionClosed)
	})

	t.Run("WithSessionClosesOnPanic", func(t *testing.T) {
		var captured *browser.Session
		assert.Panics(t, func() {
			_ = fx.Manager.WithSession(fx.Ctx, func(s *browser.Session) error {
				captured = s
				panic("scenario exploded")
			})
		})
		require.NotNil(t, captured)
		assert.ErrorIs(t, captured.Run(fx.Ctx, chromedp.Navigate(srv.URL)), browser.ErrSessionClosed)
	})
}

func TestManager_AcquireAfterShutdown(t *testing.T) {
	fx := browsertest.New(t)

	shutdownCtx, cancel := context.WithTimeout(fx.Ctx, 15*time.Second)
	defer cancel()
	require.NoError(t, fx.Manager.Shutdown(shutdownCtx))
	// Shutdown is idempotent; the fixture calls it again on cleanup.
	require.NoError(t, fx.Manager.Shutdown(shutdownCtx))

	_, err := fx.Manager.Acquire(fx.Ctx)
	assert.ErrorIs(t, err, browser.ErrManagerClosed)
}
