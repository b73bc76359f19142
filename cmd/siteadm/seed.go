package main

import (
	"fmt"

	"github.com/localnerve/portfolio-site/data"
	"github.com/spf13/cobra"
)

func newSeedCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo projects and writing that are not present yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			demo, err := data.LoadDemo()
			if file != "" {
				demo, err = data.LoadDemoFile(file)
			}
			if err != nil {
				return err
			}

			gw, closeDB, err := c.gateway(false)
			if err != nil {
				return err
			}
			defer closeDB()

			counts, err := gw.SeedDemoContent(cmd.Context(), demo)
			if err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), counts)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML content file (default is the embedded demo)")
	return cmd
}
