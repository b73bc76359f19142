package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/spf13/cobra"
)

func newTokenCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the admin bootstrap token",
	}

	hash := &cobra.Command{
		Use:   "hash TOKEN",
		Short: "Print the bcrypt hash stored for TOKEN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := gateway.HashBootstrapToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	var clearToken bool
	set := &cobra.Command{
		Use:   "set [TOKEN]",
		Short: "Require TOKEN to claim the unclaimed site",
		Long: `set stores the hash of TOKEN, or of ADMIN_BOOTSTRAP_TOKEN when no argument
is given. With --clear the token is removed and the first signed-in user may
claim the site. Fails once the site has an administrator.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var h string
			if !clearToken {
				token := os.Getenv("ADMIN_BOOTSTRAP_TOKEN")
				if len(args) == 1 {
					token = args[0]
				}
				if token == "" {
					return errors.New("no token given and ADMIN_BOOTSTRAP_TOKEN is empty")
				}
				var err error
				if h, err = gateway.HashBootstrapToken(token); err != nil {
					return err
				}
			}

			gw, closeDB, err := c.gateway(false)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := gw.SetBootstrapToken(cmd.Context(), h); err != nil {
				return fmt.Errorf("failed to set bootstrap token: %w", err)
			}
			if clearToken {
				fmt.Fprintln(cmd.OutOrStdout(), "bootstrap token cleared")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "bootstrap token set")
			}
			return nil
		},
	}
	set.Flags().BoolVar(&clearToken, "clear", false, "remove the bootstrap token")

	cmd.AddCommand(hash, set)
	return cmd
}
