// internal/page/query.go
package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Class markers the form applies to invalid fields. Different fields use different ones.
const (
	markerFieldError = "field-error"
	markerIsInvalid  = "is-invalid"
)

// OutcomeState is the result of waiting for the success modal.
type OutcomeState int

const (
	// NotShown means the bound elapsed and the modal was confirmed absent.
	NotShown OutcomeState = iota
	// Shown means the modal became ready within the bound.
	Shown
	// QueryFailed means the wait ended for a reason unrelated to the modal itself.
	QueryFailed
)

func (s OutcomeState) String() string {
	switch s {
	case Shown:
		return "shown"
	case QueryFailed:
		return "query_failed"
	default:
		return "not_shown"
	}
}

// Observation is the explicit result of SubmissionOutcome.
type Observation struct {
	State  OutcomeState
	Err    error
	Waited time.Duration
}

// Shown reports whether the submission was accepted.
func (o Observation) Shown() bool { return o.State == Shown }

func (o Observation) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s (%v)", o.State, o.Err)
	}
	return o.State.String()
}

// SubmissionOutcome waits, bounded by the wait policy, for the success modal. It never panics and
// never returns an error; failures are folded into the Observation.
func (p *Page) SubmissionOutcome(ctx context.Context) (obs Observation) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			obs = Observation{State: QueryFailed, Err: fmt.Errorf("panic while waiting for modal: %v", r)}
		}
		obs.Waited = time.Since(start)
		p.logger.Debug("Submission outcome observed.", zap.Stringer("state", obs.State), zap.Duration("waited", obs.Waited), zap.Error(obs.Err))
	}()

	modal := formFields[SuccessModal]
	waitCtx, cancel := context.WithTimeout(ctx, p.policy.Timeout)
	defer cancel()

	err := p.runner.Run(waitCtx, modal.await(p.policy.Readiness))
	switch {
	case err == nil:
		return Observation{State: Shown}
	case waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		return Observation{State: NotShown}
	default:
		return Observation{State: QueryFailed, Err: err}
	}
}

// IsSubmissionSuccessful collapses SubmissionOutcome to a bool; only Shown is true.
func (p *Page) IsSubmissionSuccessful(ctx context.Context) bool {
	return p.SubmissionOutcome(ctx).Shown()
}

// fieldState is a snapshot of one control read from the live document.
type fieldState struct {
	ClassName         string  `json:"className"`
	ValidationMessage *string `json:"validationMessage"`
	Invalid           bool    `json:"invalid"`
	InValidatedForm   bool    `json:"inValidatedForm"`
}

const inspectJS = `(function() {
	const el = %s;
	if (!el) { return null; }
	const cls = typeof el.className === 'string' ? el.className : (el.getAttribute('class') || '');
	return {
		className: cls,
		validationMessage: typeof el.validationMessage === 'string' ? el.validationMessage : null,
		invalid: typeof el.matches === 'function' && el.matches(':invalid'),
		inValidatedForm: typeof el.closest === 'function' && el.closest('.was-validated') !== null,
	};
})()`

// inspect reads the current state of id without waiting. A nil state with a nil error means the
// element is absent.
func (p *Page) inspect(ctx context.Context, id FieldID) (*fieldState, error) {
	field, ok := formFields[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrElementNotFound, id)
	}
	opCtx, cancel := context.WithTimeout(ctx, p.policy.Timeout)
	defer cancel()

	var state *fieldState
	if err := p.runner.Run(opCtx, chromedp.Evaluate(fmt.Sprintf(inspectJS, field.Locator.resolveJS()), &state)); err != nil {
		return nil, err
	}
	return state, nil
}

// presenceCheck evaluates expr once and stores whether it resolved to a node.
type presenceCheck struct {
	expr  string
	found *bool
}

func (a *presenceCheck) Do(ctx context.Context) error {
	return chromedp.Evaluate(a.expr, a.found).Do(ctx)
}

// present probes the document for l without waiting.
func (p *Page) present(ctx context.Context, l Locator) (bool, error) {
	var found bool
	check := &presenceCheck{expr: fmt.Sprintf("(%s) !== null", l.resolveJS()), found: &found}
	if err := p.runner.Run(ctx, check); err != nil {
		return false, err
	}
	return found, nil
}

// NativeValidationMessage returns the browser's constraint validation message for id without
// waiting. An empty message means no current complaint. ok is false when the element is absent or
// could not be read.
func (p *Page) NativeValidationMessage(ctx context.Context, id FieldID) (msg string, ok bool) {
	state, err := p.inspect(ctx, id)
	if err != nil {
		p.logger.Debug("Validation message unreadable.", zap.String("field", string(id)), zap.Error(err))
		return "", false
	}
	if state == nil || state.ValidationMessage == nil {
		return "", false
	}
	return *state.ValidationMessage, true
}

// IsFieldInvalid reports whether id carries either invalid class marker. Absent or unreadable
// fields are not invalid.
func (p *Page) IsFieldInvalid(ctx context.Context, id FieldID) bool {
	state, err := p.inspect(ctx, id)
	if err != nil || state == nil {
		return false
	}
	return hasInvalidMarker(state.ClassName)
}

// IsConstraintInvalid reports whether id fails constraint validation inside a form the page has
// marked as validated (the `.was-validated :invalid` state).
func (p *Page) IsConstraintInvalid(ctx context.Context, id FieldID) bool {
	state, err := p.inspect(ctx, id)
	if err != nil || state == nil {
		return false
	}
	return state.InValidatedForm && state.Invalid
}

func hasInvalidMarker(className string) bool {
	return strings.Contains(className, markerFieldError) || strings.Contains(className, markerIsInvalid)
}
