// File: cmd/cases.go
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/scenario"
)

func newCasesCmd(c *cli) *cobra.Command {
	var asYAML bool

	casesCmd := &cobra.Command{
		Use:   "cases",
		Short: "List the scenarios a run would execute",
		Long: `Lists the built-in scenarios and any cases-file scenarios after filtering.
With --yaml the list is printed in cases-file format, ready to edit and pass back with --cases.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uploadPath := c.cfg.Run.UploadFile
			if uploadPath == "" {
				uploadPath = "dummy.png"
			}
			scenarios, err := selectScenarios(c.cfg.Run, uploadPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asYAML {
				return scenario.WriteCases(out, scenarios)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tEXPECT")
			for _, sc := range scenarios {
				expect := "rejected"
				if sc.Expect.Success {
					expect = "accepted"
				}
				if sc.Expect.EmailInvalid {
					expect += ", email invalid"
				}
				if scenario.RequiresNativeMessage(sc.Input.Mobile) {
					expect += ", native message"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", sc.Name, sc.Label, expect)
			}
			return tw.Flush()
		},
	}

	casesCmd.Flags().BoolVar(&asYAML, "yaml", false, "print in cases-file format")
	casesCmd.Flags().String("cases", "", "YAML cases file with additional scenarios")
	casesCmd.Flags().String("filter", "", "only list scenarios whose name contains this text (labels are searched when no name matches)")
	casesCmd.Flags().Bool("skip-builtin", false, "list only the cases file")
	return casesCmd
}
