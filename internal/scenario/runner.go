// internal/scenario/runner.go
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/browser"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/page"
)

const defaultCloseTimeout = 10 * time.Second

// FormPage is the part of the page layer a scenario drives.
type FormPage interface {
	FillIdentity(ctx context.Context, first, last, email, mobile string) error
	SelectGender(ctx context.Context, g page.GenderOption) error
	FillAddress(ctx context.Context, text string) error
	AttachFile(ctx context.Context, path string) error
	Submit(ctx context.Context) error
	SubmissionOutcome(ctx context.Context) page.Observation
	NativeValidationMessage(ctx context.Context, id page.FieldID) (string, bool)
	IsFieldInvalid(ctx context.Context, id page.FieldID) bool
}

// Capturer takes a screenshot of the live session.
type Capturer interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Session is a browser session owned by exactly one scenario.
type Session interface {
	page.Runner
	Capturer
	ID() string
	Close(ctx context.Context) error
}

// Provider hands out a fresh session per scenario.
type Provider interface {
	Acquire(ctx context.Context) (Session, error)
}

// Reporter records failure artifacts. It is called only for failed scenarios, while the session
// is still open.
type Reporter interface {
	ReportFailure(ctx context.Context, c Capturer, name string)
}

// PageOpener constructs the form page on a session.
type PageOpener func(ctx context.Context, r page.Runner) (FormPage, error)

// ManagerProvider adapts a browser manager to Provider.
func ManagerProvider(m *browser.Manager) Provider { return managerProvider{m} }

type managerProvider struct{ m *browser.Manager }

func (p managerProvider) Acquire(ctx context.Context) (Session, error) {
	s, err := p.m.Acquire(ctx)
	if err != nil {
		// Return an untyped nil so callers' nil checks hold.
		return nil, err
	}
	return s, nil
}

// PageOpenerFor opens the real form page with the given options.
func PageOpenerFor(opts ...page.Option) PageOpener {
	return func(ctx context.Context, r page.Runner) (FormPage, error) {
		p, err := page.Open(ctx, r, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Runner executes scenarios one at a time.
type Runner struct {
	provider     Provider
	open         PageOpener
	reporter     Reporter
	logger       *zap.Logger
	closeTimeout time.Duration
}

// NewRunner builds a Runner. reporter may be nil to skip failure artifacts.
func NewRunner(provider Provider, open PageOpener, reporter Reporter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		provider:     provider,
		open:         open,
		reporter:     reporter,
		logger:       logger.Named("scenario_runner"),
		closeTimeout: defaultCloseTimeout,
	}
}

// RunAll runs scenarios sequentially and stops early when ctx is canceled.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) Summary {
	sum := Summary{RunID: uuid.NewString(), Started: time.Now()}
	log := r.logger.With(zap.String("run_id", sum.RunID))
	log.Info("Starting run.", zap.Int("scenarios", len(scenarios)))

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			log.Warn("Run canceled. Remaining scenarios skipped.", zap.Error(ctx.Err()))
			break
		}
		sum.Results = append(sum.Results, r.Run(ctx, sc))
	}

	sum.Duration = time.Since(sum.Started)
	log.Info("Run complete.", zap.Int("passed", sum.Passed()), zap.Int("failed", sum.Failed()), zap.Duration("duration", sum.Duration))
	return sum
}

// Run executes one scenario on a fresh session. The session is released on every exit path and
// a failure artifact is captured before release.
func (r *Runner) Run(ctx context.Context, sc Scenario) (res Result) {
	res = Result{Scenario: sc, Started: time.Now()}
	log := r.logger.With(zap.String("scenario", sc.Name))

	defer func() {
		res.Duration = time.Since(res.Started)
		res.Passed = res.Err == nil && len(res.Failures) == 0
		if res.Passed {
			log.Info("Scenario passed.", zap.Duration("duration", res.Duration))
			return
		}
		log.Warn("Scenario failed.", zap.Strings("failures", res.Failures), zap.Error(res.Err), zap.Duration("duration", res.Duration))
	}()

	sess, err := r.provider.Acquire(ctx)
	if err != nil {
		res.Err = fmt.Errorf("failed to acquire session: %w", err)
		return res
	}
	res.SessionID = sess.ID()
	log = log.With(zap.String("session_id", res.SessionID))

	// Deferred in reverse: the failure capture runs while the session is still open.
	defer func() {
		closeCtx, cancel := context.WithTimeout(browser.Detach(ctx), r.closeTimeout)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			log.Warn("Failed to close session.", zap.Error(err))
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("scenario panicked: %v", rec)
		}
		if (res.Err != nil || len(res.Failures) > 0) && r.reporter != nil {
			r.reporter.ReportFailure(ctx, sess, sc.Name)
		}
	}()

	p, err := r.open(ctx, sess)
	if err != nil {
		res.Err = err
		return res
	}
	if err := r.drive(ctx, p, sc.Input); err != nil {
		res.Err = err
		return res
	}

	res.Observation = p.SubmissionOutcome(ctx)
	res.Failures = r.assert(ctx, p, sc, res.Observation)
	return res
}

// drive performs fill, optional attach and address, then submit.
func (r *Runner) drive(ctx context.Context, p FormPage, in FormInput) error {
	if err := p.FillIdentity(ctx, in.FirstName, in.LastName, in.Email, in.Mobile); err != nil {
		return err
	}
	g, err := page.ParseGender(in.Gender)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCase, err)
	}
	if g != page.Male {
		if err := p.SelectGender(ctx, g); err != nil {
			return err
		}
	}
	if in.FilePath != "" {
		if err := p.AttachFile(ctx, in.FilePath); err != nil {
			return err
		}
	}
	if in.Address != "" {
		if err := p.FillAddress(ctx, in.Address); err != nil {
			return err
		}
	}
	return p.Submit(ctx)
}

func (r *Runner) assert(ctx context.Context, p FormPage, sc Scenario, obs page.Observation) []string {
	var failures []string

	switch {
	case obs.State == page.QueryFailed:
		failures = append(failures, fmt.Sprintf("success modal query failed: %v", obs.Err))
	case sc.Expect.Success && !obs.Shown():
		failures = append(failures, "submission modal did not display")
	case !sc.Expect.Success && obs.Shown():
		failures = append(failures, fmt.Sprintf("form submitted with missing or invalid data: %s", sc.Label))
	}

	if sc.Expect.EmailInvalid && !p.IsFieldInvalid(ctx, page.Email) {
		failures = append(failures, "email field did not show an invalid state")
	}

	if RequiresNativeMessage(sc.Input.Mobile) {
		if msg, ok := p.NativeValidationMessage(ctx, page.Mobile); !ok || msg == "" {
			failures = append(failures, fmt.Sprintf("no native validation message for a %d digit mobile number", len([]rune(sc.Input.Mobile))))
		}
	}
	return failures
}
