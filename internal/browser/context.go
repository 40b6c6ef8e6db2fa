// internal/browser/context.go
package browser

import (
	"context"
	"time"
)

// CombineContext returns a context derived from primary (keeping its values, such as the chromedp
// target) that is also canceled when secondary is done. chromedp needs the tab context's values
// while the caller's context carries the operational deadline.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// valueOnlyContext keeps a parent's values but drops its deadline and cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                     { return nil }
func (valueOnlyContext) Err() error                                { return nil }

// Detach returns a context carrying ctx's values that is never canceled by ctx.
// Cleanup (closing a tab, capturing a failure screenshot) must still run after a scenario's
// context has expired.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
