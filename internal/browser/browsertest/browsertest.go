// internal/browser/browsertest/browsertest.go
// Package browsertest provides a shared fixture for tests that need a real browser.
package browsertest

import (
	"context"
	"os"
	"runtime"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/semaphore"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/browser"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
)

// SkipEnv disables browser tests even when Chrome is installed.
const SkipEnv = "FORMCHECK_SKIP_BROWSER_TESTS"

const (
	maxConcurrency          = 2
	defaultTestTimeout      = 120 * time.Second
	cleanupGracePeriod      = 2 * time.Second
	shutdownTimeout         = 15 * time.Second
	semaphoreAcquireTimeout = 30 * time.Second
)

var (
	processSemaphore     *semaphore.Weighted
	processSemaphoreOnce sync.Once
)

// limiter bounds how many Chrome processes the test binary runs at once.
func limiter() *semaphore.Weighted {
	processSemaphoreOnce.Do(func() {
		n := int64(runtime.GOMAXPROCS(0))
		if n > maxConcurrency {
			n = maxConcurrency
		}
		if n < 1 {
			n = 1
		}
		processSemaphore = semaphore.NewWeighted(n)
	})
	return processSemaphore
}

// Fixture is a running browser manager scoped to one test.
type Fixture struct {
	Manager *browser.Manager
	Config  config.BrowserConfig
	Logger  *zap.Logger
	// Ctx expires shortly before the test's own deadline.
	Ctx context.Context
}

// New launches a headless browser for t, or skips t when no browser is available.
// Shutdown is registered with t.Cleanup.
func New(t *testing.T) *Fixture {
	t.Helper()

	if os.Getenv(SkipEnv) != "" {
		t.Skipf("browser tests disabled by %s", SkipEnv)
	}
	cfg := config.NewDefaultConfig().Browser
	cfg.IgnoreTLSErrors = true
	if browser.LocateChrome(cfg.ExecPath) == "" {
		t.Skip("no Chrome or Chromium executable found on PATH")
	}

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTestTimeout)
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline.Add(-cleanupGracePeriod))
	t.Cleanup(cancel)

	acquireCtx, acquireCancel := context.WithTimeout(ctx, semaphoreAcquireTimeout)
	defer acquireCancel()
	sem := limiter()
	if err := sem.Acquire(acquireCtx, 1); err != nil {
		t.Fatalf("timed out waiting for a browser slot: %v", err)
	}
	t.Cleanup(func() { sem.Release(1) })

	logger := zaptest.NewLogger(t).With(zap.String("test", t.Name()))
	m, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("failed to start browser: %v", err)
	}
	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := m.Shutdown(shutdownCtx); err != nil {
			t.Logf("browser shutdown: %v", err)
		}
	})

	return &Fixture{Manager: m, Config: cfg, Logger: logger, Ctx: ctx}
}
