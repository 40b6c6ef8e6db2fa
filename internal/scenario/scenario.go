// internal/scenario/scenario.go
// Package scenario runs form scenarios end to end: one fresh browser session per scenario, a fixed
// step sequence against the form page, and assertions on the observed outcome.
package scenario

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/page"
)

// ErrInvalidCase is returned for data-source rows that are malformed.
var ErrInvalidCase = errors.New("invalid scenario case")

// RequiredMobileLength is the number of digits the form accepts.
const RequiredMobileLength = 10

// FormInput is the set of values typed into the form. Values are not validated.
type FormInput struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	// Gender is a radio label; empty means Male.
	Gender   string
	Address  string
	FilePath string
}

// Expectation is what a scenario asserts after submitting.
type Expectation struct {
	Success      bool
	EmailInvalid bool
}

// Scenario is one independent run against a fresh session.
type Scenario struct {
	Name   string
	Label  string
	Input  FormInput
	Expect Expectation
}

// RequiresNativeMessage reports whether a mobile value is partially filled, in which case the
// browser must flag it with a native validation message.
func RequiresNativeMessage(mobile string) bool {
	n := utf8.RuneCountInString(mobile)
	return n >= 1 && n < RequiredMobileLength
}

// Result is the verdict of one scenario. A scenario either passes or fails; there is no partial
// success.
type Result struct {
	Scenario    Scenario
	Passed      bool
	Failures    []string
	Observation page.Observation
	// Err is set when the environment failed: no session, form not ready, or a missing element.
	Err       error
	Started   time.Time
	Duration  time.Duration
	SessionID string
}

// unspecifiedFailure describes a failed result that carries neither an error nor an assertion message.
const unspecifiedFailure = "scenario failed without a recorded reason"

// FailureMessage returns the first assertion failure, or a generic message for failed results
// built without one. Passed results return "".
func (r Result) FailureMessage() string {
	switch {
	case r.Passed:
		return ""
	case len(r.Failures) > 0:
		return r.Failures[0]
	case r.Err != nil:
		return r.Err.Error()
	}
	return unspecifiedFailure
}

// Summary aggregates the results of a run.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Results  []Result
}

func (s Summary) Passed() int {
	n := 0
	for _, r := range s.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

func (s Summary) Failed() int { return len(s.Results) - s.Passed() }

// OK reports whether every scenario passed.
func (s Summary) OK() bool { return s.Failed() == 0 }

// Filter keeps scenarios whose name contains substr, case-insensitively. Labels are searched only
// when no name matches.
func Filter(scenarios []Scenario, substr string) []Scenario {
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return scenarios
	}
	out := matching(scenarios, substr, func(sc Scenario) string { return sc.Name })
	if len(out) == 0 {
		out = matching(scenarios, substr, func(sc Scenario) string { return sc.Label })
	}
	return out
}

func matching(scenarios []Scenario, substr string, field func(Scenario) string) []Scenario {
	var out []Scenario
	for _, sc := range scenarios {
		if strings.Contains(strings.ToLower(field(sc)), substr) {
			out = append(out, sc)
		}
	}
	return out
}
