// internal/reporting/json.go
package reporting

import (
	"fmt"
	"io"
	"time"

	json "github.com/json-iterator/go"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

type jsonReport struct {
	RunID      string       `json:"run_id"`
	Started    time.Time    `json:"started"`
	DurationMS int64        `json:"duration_ms"`
	Total      int          `json:"total"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Scenarios  []jsonResult `json:"scenarios"`
}

type jsonResult struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Passed     bool     `json:"passed"`
	Outcome    string   `json:"outcome"`
	Failures   []string `json:"failures,omitempty"`
	Error      string   `json:"error,omitempty"`
	SessionID  string   `json:"session_id,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

// WriteJSON writes sum as an indented JSON document.
func WriteJSON(w io.Writer, sum scenario.Summary) error {
	report := jsonReport{
		RunID:      sum.RunID,
		Started:    sum.Started.UTC(),
		DurationMS: sum.Duration.Milliseconds(),
		Total:      len(sum.Results),
		Passed:     sum.Passed(),
		Failed:     sum.Failed(),
		Scenarios:  make([]jsonResult, 0, len(sum.Results)),
	}
	for _, r := range sum.Results {
		jr := jsonResult{
			Name:       r.Scenario.Name,
			Label:      r.Scenario.Label,
			Passed:     r.Passed,
			Outcome:    r.Observation.State.String(),
			Failures:   r.Failures,
			SessionID:  r.SessionID,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		report.Scenarios = append(report.Scenarios, jr)
	}

	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write json report: %w", err)
	}
	return nil
}
