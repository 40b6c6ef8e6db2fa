// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
)

// ErrManagerClosed is returned by Acquire once Shutdown has started.
var ErrManagerClosed = errors.New("browser manager is shut down")

const (
	sessionCloseTimeout = 10 * time.Second
	defaultLaunchWait   = 30 * time.Second
)

// chromeCandidates are the executable names probed by LocateChrome, in preference order.
var chromeCandidates = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// LocateChrome returns the Chrome executable the manager would launch, or "" if none is installed.
// An explicit configured path wins when it resolves.
func LocateChrome(explicit string) string {
	if explicit != "" {
		if path, err := exec.LookPath(explicit); err == nil {
			return path
		}
		return ""
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// Manager owns the Chrome process and hands out one isolated tab per scenario.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	// allocatorCtx governs the browser process. Every session context derives from it.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// wg tracks live sessions so Shutdown can drain them.
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewManager launches Chrome and verifies it responds before returning.
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}
	if err := m.launch(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

func (m *Manager) launch(ctx context.Context) error {
	m.logger.Info("Launching browser.", zap.Bool("headless", m.cfg.Headless), zap.String("exec_path", m.cfg.ExecPath))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, m.buildAllocatorOptions()...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	wait := m.cfg.LaunchTimeout
	if wait <= 0 {
		wait = defaultLaunchWait
	}

	// Probe with a throwaway tab. Closing it leaves the browser process running.
	probeCtx, cancelProbe := chromedp.NewContext(allocCtx)
	defer cancelProbe()
	probeCtx, cancelTimeout := context.WithTimeout(probeCtx, wait)
	defer cancelTimeout()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return fmt.Errorf("browser failed to start or respond within %s: %w", wait, err)
	}

	m.logger.Info("Browser launched and responsive.")
	return nil
}

// allocatorFlags computes the command line flags added on top of chromedp's defaults.
func allocatorFlags(cfg config.BrowserConfig, goos string) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":                  cfg.Headless,
		"ignore-certificate-errors": cfg.IgnoreTLSErrors,
		"disable-extensions":        true,
		"window-size":               fmt.Sprintf("%d,%d", cfg.Viewport.Width, cfg.Viewport.Height),
	}

	// Containers rarely have a usable sandbox or a large /dev/shm.
	if goos == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
		flags["disable-setuid-sandbox"] = true
	}

	// Custom arguments, "--name=value" or "--name". They override the computed flags.
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if name == "" {
			continue
		}
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}
	return flags
}

func (m *Manager) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range allocatorFlags(m.cfg, runtime.GOOS) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}
	return opts
}

// Acquire opens a new tab sized to the configured viewport. The caller owns the session and
// must Close it; WithSession does this automatically.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.wg.Add(1)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		m.wg.Done()
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(m.allocatorCtx)
	s := newSession(tabCtx, cancel, m.logger, m.wg.Done)

	// The first Run on the tab context creates the target; it must not carry a timeout of its own.
	// The caller's ctx still bounds how long Acquire waits for it.
	err := awaitFirstRun(ctx, func() error {
		return chromedp.Run(tabCtx, chromedp.EmulateViewport(m.cfg.Viewport.Width, m.cfg.Viewport.Height))
	})
	if err != nil {
		// Closing cancels the tab context, which releases a pending first Run.
		closeCtx, closeCancel := context.WithTimeout(Detach(ctx), sessionCloseTimeout)
		defer closeCancel()
		_ = s.Close(closeCtx)
		return nil, fmt.Errorf("failed to open browser tab: %w", err)
	}

	s.logger.Debug("Session acquired.")
	return s, nil
}

// awaitFirstRun waits for run to return or ctx to end, whichever comes first. run keeps going in
// the background after ctx ends and must be released by its own context.
func awaitFirstRun(ctx context.Context, run func() error) error {
	done := make(chan error, 1)
	go func() { done <- run() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithSession runs fn with a fresh session and closes it on every exit path, including panics.
// A close error is reported only when fn itself succeeded.
func (m *Manager) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	s, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(Detach(ctx), sessionCloseTimeout)
		defer cancel()
		if cerr := s.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Shutdown waits for live sessions, bounded by ctx, then terminates the browser process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("Browser manager shutdown initiated. Waiting for active sessions...")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("All sessions have completed.")
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	m.allocatorCancel()
	<-m.allocatorCtx.Done()
	return nil
}
