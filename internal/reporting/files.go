// internal/reporting/files.go
package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

// WriteReportFiles writes the JUnit and JSON reports to the configured paths. Empty paths are
// skipped.
func WriteReportFiles(cfg config.ReportConfig, sum scenario.Summary) error {
	if err := writeFile(cfg.JUnitPath, sum, WriteJUnit); err != nil {
		return err
	}
	return writeFile(cfg.JSONPath, sum, WriteJSON)
}

func writeFile(path string, sum scenario.Summary, write func(io.Writer, scenario.Summary) error) (err error) {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f, sum)
}
