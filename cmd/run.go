// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/browser"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/formsite"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/observability"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/page"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/reporting"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

// errScenariosFailed makes the process exit non-zero when any scenario fails.
var errScenariosFailed = errors.New("scenarios failed")

const shutdownTimeout = 15 * time.Second

func newRunCmd(c *cli) *cobra.Command {
	var local bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the form scenarios in a headless browser",
		Long: `Runs the built-in scenarios, plus any cases from a YAML cases file, each in a fresh
browser session. Failed scenarios leave a timestamped screenshot in the screenshot directory.

Use --local to run against the embedded replica of the form instead of the public site.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), cmd.OutOrStdout(), c.cfg, local)
		},
	}

	flags := runCmd.Flags()
	flags.String("url", "", "form URL (default is the public practice form)")
	flags.String("cases", "", "YAML cases file with additional scenarios")
	flags.String("filter", "", "only run scenarios whose name contains this text (labels are searched when no name matches)")
	flags.String("upload-file", "", "picture attached by the upload scenario (default is a bundled PNG)")
	flags.Bool("skip-builtin", false, "run only the cases file")
	flags.Bool("headless", true, "run the browser headless")
	flags.String("screenshots", "", "directory for failure screenshots")
	flags.String("junit", "", "write a JUnit XML report to this path")
	flags.String("json", "", "write a JSON summary to this path")
	flags.BoolVar(&local, "local", false, "serve the embedded replica form and run against it")
	return runCmd
}

// runScenarios is the body of the run command.
func runScenarios(ctx context.Context, out io.Writer, cfg *config.Config, local bool) error {
	logger := observability.GetLogger()

	formURL := cfg.Form.URL
	if local {
		srv, err := formsite.Start("127.0.0.1:0", logger)
		if err != nil {
			return err
		}
		defer shutdownReplica(srv, logger)
		formURL = srv.FormURL()
	}

	uploadPath := cfg.Run.UploadFile
	if uploadPath == "" && !cfg.Run.SkipBuiltin {
		dir, err := os.MkdirTemp("", "formcheck-")
		if err != nil {
			return fmt.Errorf("failed to create temp dir for upload picture: %w", err)
		}
		defer os.RemoveAll(dir)
		uploadPath = filepath.Join(dir, "dummy.png")
		if err := os.WriteFile(uploadPath, formsite.SamplePicture(), 0o600); err != nil {
			return fmt.Errorf("failed to write upload picture: %w", err)
		}
	}

	scenarios, err := selectScenarios(cfg.Run, uploadPath)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios selected (filter %q)", cfg.Run.Filter)
	}

	mgr, err := browser.NewManager(ctx, cfg.Browser, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(browser.Detach(ctx), shutdownTimeout)
		defer cancel()
		if err := mgr.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown did not complete cleanly.", zap.Error(err))
		}
	}()

	reporter := reporting.NewFailureReporter(cfg.Report, logger)
	opener := scenario.PageOpenerFor(
		page.WithURL(formURL),
		page.WithWaitPolicy(page.WaitPolicy{Timeout: cfg.Form.WaitTimeout, Readiness: page.Visible}),
		page.WithLogger(logger),
	)
	runner := scenario.NewRunner(scenario.ManagerProvider(mgr), opener, reporter, logger)

	logger.Info("Running scenarios.", zap.String("url", formURL), zap.Int("count", len(scenarios)))
	sum := runner.RunAll(ctx, scenarios)

	if err := reporter.Wait(); err != nil {
		logger.Warn("Some failure screenshots were not saved.", zap.Error(err))
	}
	if err := reporting.WriteReportFiles(cfg.Report, sum); err != nil {
		return err
	}
	if err := printSummary(out, sum, reporter.Written()); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if !sum.OK() {
		return fmt.Errorf("%w: %d of %d", errScenariosFailed, sum.Failed(), len(sum.Results))
	}
	return nil
}

// selectScenarios assembles the built-in catalog and the cases file, then applies the filter.
func selectScenarios(rc config.RunConfig, uploadPath string) ([]scenario.Scenario, error) {
	var all []scenario.Scenario
	if !rc.SkipBuiltin {
		all = append(all, scenario.Catalog(uploadPath)...)
	}
	if rc.CasesFile != "" {
		cases, err := scenario.LoadCases(rc.CasesFile)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return scenario.Filter(all, rc.Filter), nil
}

func printSummary(out io.Writer, sum scenario.Summary, screenshots []string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESULT\tSCENARIO\tOUTCOME\tDURATION\tDETAIL")
	for _, r := range sum.Results {
		status, detail := "PASS", ""
		switch {
		case r.Err != nil:
			status, detail = "ERROR", r.Err.Error()
		case !r.Passed:
			status, detail = "FAIL", r.FailureMessage()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", status, r.Scenario.Name, r.Observation.State, r.Duration.Round(time.Millisecond), detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d passed, %d failed in %s (run %s)\n", sum.Passed(), sum.Failed(), sum.Duration.Round(time.Millisecond), sum.RunID)
	for _, s := range screenshots {
		fmt.Fprintf(out, "screenshot: %s\n", s)
	}
	return nil
}

func shutdownReplica(srv *formsite.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Replica server shutdown failed.", zap.Error(err))
	}
}
