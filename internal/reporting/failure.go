// internal/reporting/failure.go
// Package reporting persists failure screenshots and writes run reports.
package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/browser"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

// TimestampLayout is the suffix format of screenshot names, e.g. 20250131_142501.
const TimestampLayout = "20060102_150405"

const defaultCaptureTimeout = 10 * time.Second

// FailureReporter captures a screenshot for each failed scenario and writes it to disk in the
// background. Capturing is synchronous because the session is closed right after.
type FailureReporter struct {
	dir            string
	captureTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time

	writers errgroup.Group
	mu      sync.Mutex
	written []string
}

// NewFailureReporter builds a reporter writing to cfg.ScreenshotDir.
func NewFailureReporter(cfg config.ReportConfig, logger *zap.Logger) *FailureReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.CaptureTimeout
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}
	return &FailureReporter{
		dir:            cfg.ScreenshotDir,
		captureTimeout: timeout,
		logger:         logger.Named("failure_reporter"),
		now:            time.Now,
	}
}

// ReportFailure captures c and queues the PNG for writing. Errors are logged; they never affect
// the scenario's verdict.
func (r *FailureReporter) ReportFailure(ctx context.Context, c scenario.Capturer, name string) {
	log := r.logger.With(zap.String("scenario", name))

	// The scenario context may already be expired; the capture gets its own bound.
	captureCtx, cancel := context.WithTimeout(browser.Detach(ctx), r.captureTimeout)
	defer cancel()

	png, err := c.Screenshot(captureCtx)
	if err != nil {
		log.Error("Failed to capture failure screenshot.", zap.Error(err))
		return
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s_%s.png", SafeName(name), r.now().Format(TimestampLayout)))
	r.writers.Go(func() error {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			log.Error("Failed to create screenshot directory.", zap.String("dir", r.dir), zap.Error(err))
			return err
		}
		if err := os.WriteFile(path, png, 0o644); err != nil {
			log.Error("Failed to save screenshot.", zap.String("path", path), zap.Error(err))
			return err
		}
		r.mu.Lock()
		r.written = append(r.written, path)
		r.mu.Unlock()
		log.Info("Screenshot saved.", zap.String("path", path), zap.Int("bytes", len(png)))
		return nil
	})
}

// Wait blocks until queued screenshots are written and returns the first write error.
func (r *FailureReporter) Wait() error {
	return r.writers.Wait()
}

// Written lists the screenshot paths saved so far.
func (r *FailureReporter) Written() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.written...)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName turns a scenario name into a file name component.
func SafeName(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_.")
	if s == "" {
		return "scenario"
	}
	return s
}
