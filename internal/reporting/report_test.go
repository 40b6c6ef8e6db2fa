// internal/reporting/report_test.go
package reporting

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/page"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

func sampleSummary() scenario.Summary {
	cat := scenario.Catalog("")
	return scenario.Summary{
		RunID:    "run-1",
		Started:  time.Date(2025, 1, 31, 14, 0, 0, 0, time.UTC),
		Duration: 3500 * time.Millisecond,
		Results: []scenario.Result{
			{Scenario: cat[0], Passed: true, Observation: page.Observation{State: page.Shown}, SessionID: "s1", Duration: time.Second},
			{Scenario: cat[3], Failures: []string{"no native validation message for a 5 digit mobile number"}, Observation: page.Observation{State: page.NotShown}, SessionID: "s2", Duration: 2 * time.Second},
			{Scenario: cat[5], Err: errors.New("form page did not become ready in time"), Duration: 500 * time.Millisecond},
		},
	}
}

func TestWriteJUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, sampleSummary()))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	root := doc.SelectElement("testsuites")
	require.NotNil(t, root)
	assert.Equal(t, "3", root.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", root.SelectAttrValue("failures", ""))
	assert.Equal(t, "1", root.SelectAttrValue("errors", ""))
	assert.Equal(t, "3.500", root.SelectAttrValue("time", ""))

	suite := root.SelectElement("testsuite")
	require.NotNil(t, suite)
	assert.Equal(t, "run-1", suite.SelectAttrValue("id", ""))
	assert.Equal(t, "2025-01-31T14:00:00Z", suite.SelectAttrValue("timestamp", ""))

	cases := suite.SelectElements("testcase")
	require.Len(t, cases, 3)

	assert.Equal(t, "valid_submission", cases[0].SelectAttrValue("name", ""))
	assert.Nil(t, cases[0].SelectElement("failure"))
	assert.Nil(t, cases[0].SelectElement("error"))

	failure := cases[1].SelectElement("failure")
	require.NotNil(t, failure)
	assert.Equal(t, "no native validation message for a 5 digit mobile number", failure.SelectAttrValue("message", ""))

	errEl := cases[2].SelectElement("error")
	require.NotNil(t, errEl)
	assert.Equal(t, "EnvironmentFailure", errEl.SelectAttrValue("type", ""))

	outcome := cases[1].FindElement("properties/property[@name='outcome']")
	require.NotNil(t, outcome)
	assert.Equal(t, "not_shown", outcome.SelectAttrValue("value", ""))
}

func TestWriteJUnit_FailureWithoutMessage(t *testing.T) {
	sum := scenario.Summary{RunID: "run-2", Results: []scenario.Result{{Scenario: scenario.Catalog("")[0]}}}

	var buf bytes.Buffer
	require.NotPanics(t, func() { require.NoError(t, WriteJUnit(&buf, sum)) })

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	failure := doc.FindElement("//testcase/failure")
	require.NotNil(t, failure)
	assert.Equal(t, sum.Results[0].FailureMessage(), failure.SelectAttrValue("message", ""))
	assert.NotEmpty(t, failure.SelectAttrValue("message", ""))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleSummary()))

	var got jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Passed)
	assert.Equal(t, 2, got.Failed)
	assert.Equal(t, int64(3500), got.DurationMS)
	require.Len(t, got.Scenarios, 3)
	assert.Equal(t, "shown", got.Scenarios[0].Outcome)
	assert.Empty(t, got.Scenarios[0].Failures)
	assert.Equal(t, "form page did not become ready in time", got.Scenarios[2].Error)
	assert.Contains(t, buf.String(), "\n  \"run_id\"")
}

func TestWriteReportFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.ReportConfig{
		JUnitPath: filepath.Join(dir, "reports", "junit.xml"),
		JSONPath:  filepath.Join(dir, "reports", "summary.json"),
	}
	require.NoError(t, WriteReportFiles(cfg, sampleSummary()))

	for _, p := range []string{cfg.JUnitPath, cfg.JSONPath} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size())
	}

	// Nothing configured, nothing written.
	assert.NoError(t, WriteReportFiles(config.ReportConfig{}, sampleSummary()))
}
