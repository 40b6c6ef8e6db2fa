// internal/reporting/junit.go
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

// SuiteName names the suite in run reports.
const SuiteName = "formcheck"

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// WriteJUnit writes sum as a JUnit XML document. Assertion failures become <failure> elements and
// environment failures become <error> elements.
func WriteJUnit(w io.Writer, sum scenario.Summary) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	var failures, errs int
	for _, r := range sum.Results {
		switch {
		case r.Err != nil:
			errs++
		case !r.Passed:
			failures++
		}
	}

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", SuiteName)
	suites.CreateAttr("tests", strconv.Itoa(len(sum.Results)))
	suites.CreateAttr("failures", strconv.Itoa(failures))
	suites.CreateAttr("errors", strconv.Itoa(errs))
	suites.CreateAttr("time", seconds(sum.Duration))

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", SuiteName)
	suite.CreateAttr("id", sum.RunID)
	suite.CreateAttr("tests", strconv.Itoa(len(sum.Results)))
	suite.CreateAttr("failures", strconv.Itoa(failures))
	suite.CreateAttr("errors", strconv.Itoa(errs))
	suite.CreateAttr("time", seconds(sum.Duration))
	if !sum.Started.IsZero() {
		suite.CreateAttr("timestamp", sum.Started.UTC().Format(time.RFC3339))
	}

	for _, r := range sum.Results {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", r.Scenario.Name)
		tc.CreateAttr("classname", SuiteName)
		tc.CreateAttr("time", seconds(r.Duration))

		switch {
		case r.Err != nil:
			e := tc.CreateElement("error")
			e.CreateAttr("message", r.Err.Error())
			e.CreateAttr("type", "EnvironmentFailure")
			e.SetText(r.Scenario.Label)
		case !r.Passed:
			f := tc.CreateElement("failure")
			f.CreateAttr("message", r.FailureMessage())
			f.CreateAttr("type", "AssertionFailure")
			f.SetText(strings.Join(r.Failures, "\n"))
		}

		props := tc.CreateElement("properties")
		addProperty(props, "label", r.Scenario.Label)
		addProperty(props, "session_id", r.SessionID)
		addProperty(props, "outcome", r.Observation.State.String())
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write junit report: %w", err)
	}
	return nil
}

func addProperty(parent *etree.Element, name, value string) {
	p := parent.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}
