// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by operations on a session after Close.
var ErrSessionClosed = errors.New("browser session is closed")

// Session is a single isolated browser tab.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	onClose  func()
	closeErr error
}

func newSession(ctx context.Context, cancel context.CancelFunc, logger *zap.Logger, onClose func()) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With(zap.String("session_id", id)),
		onClose: onClose,
	}
}

// ID identifies the session in logs and reports.
func (s *Session) ID() string { return s.id }

// Run executes chromedp actions on this tab. ctx bounds the call; the tab's own context
// supplies the chromedp target.
func (s *Session) Run(ctx context.Context, actions ...chromedp.Action) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Report the caller's deadline rather than the derived cancellation.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
		return err
	}
	return nil
}

// Screenshot captures the full page as PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.Run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// Close releases the tab. It is safe to call more than once; later calls return the first result.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.closeErr
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing session.")
	s.cancel()

	var err error
	select {
	case <-s.ctx.Done():
	case <-ctx.Done():
		err = fmt.Errorf("timed out waiting for session %s to close: %w", s.id, ctx.Err())
		s.logger.Warn("Session did not close in time.", zap.Error(err))
	}

	s.mu.Lock()
	s.closeErr = err
	s.mu.Unlock()

	if s.onClose != nil {
		s.onClose()
	}
	return err
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
