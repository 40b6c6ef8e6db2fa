// internal/page/wait.go
package page

import "time"

// DefaultWaitTimeout bounds every wait the page performs.
const DefaultWaitTimeout = 15 * time.Second

// Readiness is the predicate a bounded wait polls for.
type Readiness int

const (
	Visible Readiness = iota
	Present
)

func (r Readiness) String() string {
	if r == Present {
		return "present"
	}
	return "visible"
}

// WaitPolicy is created once per page and shared by all of its waits.
type WaitPolicy struct {
	Timeout   time.Duration
	Readiness Readiness
}

// DefaultWaitPolicy waits up to 15 seconds for visibility.
func DefaultWaitPolicy() WaitPolicy {
	return WaitPolicy{Timeout: DefaultWaitTimeout, Readiness: Visible}
}

func (p WaitPolicy) normalized() WaitPolicy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultWaitTimeout
	}
	return p
}
