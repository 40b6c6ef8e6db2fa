// internal/page/page.go
// Package page drives the practice registration form: it locates controls, waits for them within
// a single bounded policy, performs input actions and reads back the form's outcome signals.
package page

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultURL is the public practice form.
const DefaultURL = "https://demoqa.com/automation-practice-form"

// Runner executes browser actions. *browser.Session satisfies it.
type Runner interface {
	Run(ctx context.Context, actions ...chromedp.Action) error
}

// Option configures Open.
type Option func(*Page)

// WithURL overrides the form address.
func WithURL(url string) Option {
	return func(p *Page) {
		if url != "" {
			p.url = url
		}
	}
}

// WithWaitPolicy overrides the default 15s visibility policy.
func WithWaitPolicy(policy WaitPolicy) Option {
	return func(p *Page) { p.policy = policy.normalized() }
}

// WithLogger sets the page's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Page is a loaded instance of the registration form bound to one browser session.
type Page struct {
	runner Runner
	url    string
	policy WaitPolicy
	logger *zap.Logger
}

// Open navigates runner to the form and blocks until the first name input is ready under the wait
// policy. A page that never becomes ready yields ErrNavigationTimeout.
func Open(ctx context.Context, runner Runner, opts ...Option) (*Page, error) {
	p := &Page{
		runner: runner,
		url:    DefaultURL,
		policy: DefaultWaitPolicy(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("page").With(zap.String("url", p.url))

	if err := p.load(ctx); err != nil {
		return nil, err
	}
	p.logger.Debug("Form ready.")
	return p, nil
}

func (p *Page) load(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, p.policy.Timeout)
	defer cancel()
	if err := p.runner.Run(navCtx, chromedp.Navigate(p.url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return fmt.Errorf("%w: navigating to %s exceeded %s", ErrNavigationTimeout, p.url, p.policy.Timeout)
		}
		return fmt.Errorf("failed to navigate to %s: %w", p.url, err)
	}

	ready := formFields[readyField]
	waitCtx, cancelWait := context.WithTimeout(ctx, p.policy.Timeout)
	defer cancelWait()
	if err := p.runner.Run(waitCtx, ready.await(p.policy.Readiness)); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return fmt.Errorf("%w: %s not %s after %s", ErrNavigationTimeout, ready.Locator, p.policy.Readiness, p.policy.Timeout)
		}
		return fmt.Errorf("failed waiting for %s: %w", ready.Locator, err)
	}
	return nil
}

// URL returns the address the page was opened at.
func (p *Page) URL() string { return p.url }

// Policy returns the wait policy shared by all waits on this page.
func (p *Page) Policy() WaitPolicy { return p.policy }

// FillIdentity types the four identity fields verbatim and selects the Male gender option.
// Empty values are typed as nothing; validation is left to the form.
func (p *Page) FillIdentity(ctx context.Context, first, last, email, mobile string) error {
	for _, w := range []struct {
		id    FieldID
		value string
	}{
		{FirstName, first},
		{LastName, last},
		{Email, email},
		{Mobile, mobile},
	} {
		if err := p.act(ctx, formFields[w.id], VerbWrite, w.value); err != nil {
			return err
		}
	}
	return p.SelectGender(ctx, Male)
}

// SelectGender clicks the label of the given gender option.
func (p *Page) SelectGender(ctx context.Context, g GenderOption) error {
	if _, err := ParseGender(string(g)); err != nil {
		return &ActionError{Field: Gender, Action: VerbActivate, Err: fmt.Errorf("%w: %v", ErrUnsupportedAction, err)}
	}
	field := formFields[Gender]
	field.Locator = genderLocator(g)
	return p.act(ctx, field, VerbActivate, "")
}

// FillAddress types text into the address area exactly as given. Markup is not escaped.
func (p *Page) FillAddress(ctx context.Context, text string) error {
	return p.act(ctx, formFields[Address], VerbWrite, text)
}

// AttachFile sets path on the picture input. The input may be hidden. Relative paths are made
// absolute against the working directory; existence is left for the browser to judge.
func (p *Page) AttachFile(ctx context.Context, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return p.act(ctx, formFields[Picture], VerbAttach, path)
}

// Submit scrolls the submit button into view and clicks it from script. It returns as soon as
// the click is dispatched; the outcome is read with SubmissionOutcome.
func (p *Page) Submit(ctx context.Context) error {
	return p.act(ctx, formFields[Submit], VerbForceActivate, "")
}

// Do performs verb on the registered field id. It is the generic form of the named actions.
func (p *Page) Do(ctx context.Context, id FieldID, v Verb, arg string) error {
	field, ok := formFields[id]
	if !ok {
		return &ActionError{Field: id, Action: v, Err: fmt.Errorf("%w: unknown field", ErrElementNotFound)}
	}
	return p.act(ctx, field, v, arg)
}

// act is the single locate-then-act path: check the kind supports the verb, probe that the element
// exists right now, then run the action bounded by the wait policy.
func (p *Page) act(ctx context.Context, field Field, v Verb, arg string) error {
	action, err := field.action(v, arg)
	if err != nil {
		return &ActionError{Field: field.ID, Action: v, Err: err}
	}

	log := p.logger.With(zap.String("field", string(field.ID)), zap.Stringer("selector", field.Locator), zap.String("action", string(v)))

	opCtx, cancel := context.WithTimeout(ctx, p.policy.Timeout)
	defer cancel()

	present, err := p.present(opCtx, field.Locator)
	if err != nil {
		log.Debug("Presence probe failed.", zap.Error(err))
		return &ActionError{Field: field.ID, Action: v, Err: classify(opCtx, ctx, err)}
	}
	if !present {
		log.Debug("Element not found.")
		return &ActionError{Field: field.ID, Action: v, Err: ErrElementNotFound}
	}

	if err := p.runner.Run(opCtx, action); err != nil {
		log.Debug("Action failed.", zap.Error(err))
		return &ActionError{Field: field.ID, Action: v, Err: classify(opCtx, ctx, err)}
	}
	log.Debug("Action performed.")
	return nil
}

// classify reports an expired wait policy as context.DeadlineExceeded, keeping the cause.
func classify(opCtx, parent context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if opCtx.Err() == context.DeadlineExceeded && parent.Err() == nil {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}
