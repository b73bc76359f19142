package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables, the settings row and the public settings view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, closeDB, err := c.gateway(true)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := gw.CheckSchema(cmd.Context()); err != nil {
				return fmt.Errorf("schema is incomplete after migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}
