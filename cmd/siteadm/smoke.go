package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/portfolio-site/internal/smoke"
	"github.com/spf13/cobra"
)

func newSmokeCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check that a running site answers its public routes",
		Long: `smoke requests /, /projects, /writing, /admin and a path that does not
exist. Every response must be below 500 and carry a JSON document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := smoke.New(baseURL, timeout).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				for _, r := range report.Results {
					mark := "ok  "
					if !r.OK() {
						mark = "FAIL"
					}
					fmt.Fprintf(out, "%s %3d %-22s %6s %s\n", mark, r.Status, r.Path, r.Took.Round(time.Millisecond), r.Error)
				}
			}
			if !report.Passed() {
				return errors.New("smoke check failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:3000", "site base url")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
