// internal/page/errors.go
package page

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigationTimeout means the form never became ready within the wait policy.
	ErrNavigationTimeout = errors.New("form page did not become ready in time")
	// ErrElementNotFound means an action's target element is not in the document.
	ErrElementNotFound = errors.New("element not found")
	// ErrUnsupportedAction means the field's kind cannot perform the requested action.
	ErrUnsupportedAction = errors.New("action not supported by field kind")
)

// ActionError records which field and action failed.
type ActionError struct {
	Field  FieldID
	Action Verb
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action, e.Field, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
