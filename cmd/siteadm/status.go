package main

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/localnerve/portfolio-site/internal/utils"
	"github.com/spf13/cobra"
)

type statusReport struct {
	Health    services.Diagnostics     `json:"health"`
	Bootstrap *gateway.BootstrapStatus `json:"bootstrap,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

func newStatusCmd(c *cli) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print backend health and whether the site has an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			gw, closeDB := services.OpenGateway(c.cfg, false)
			defer closeDB()

			report := statusReport{
				Health: services.Diagnose(ctx, c.cfg, gw, services.NewAuthorizerProvider(c.cfg)),
			}
			if report.Health.SchemaReady() {
				status, err := gw.BootstrapStatus(ctx)
				if err != nil {
					report.Error = utils.SanitizeErr(err)
				} else {
					report.Bootstrap = &status
				}
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Health.Healthy() {
				return errors.New("site is unhealthy")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall check timeout")
	return cmd
}
