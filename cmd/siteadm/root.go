// root.go
//
// Personal portfolio site service: public content pages and a single-admin content API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of portfolio-site.
// portfolio-site is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// portfolio-site is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with portfolio-site.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/logging"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/spf13/cobra"
)

// cli carries state shared by every command.
type cli struct {
	envFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "siteadm",
		Short: "Operate a portfolio site deployment",
		Long: `siteadm runs operational tasks for a portfolio site: post-deploy smoke
checks, demo content seeding, admin bootstrap token management and status.
Configuration is read from the environment and an optional .env file, the
same way the server reads it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initializeConfig(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "env file to load (default is ./.env)")

	root.AddCommand(
		newSmokeCmd(),
		newSeedCmd(c),
		newTokenCmd(c),
		newStatusCmd(c),
		newMigrateCmd(c),
	)
	return root
}

func (c *cli) initializeConfig(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := os.Setenv("ENV_FILE", c.envFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	c.cfg = cfg
	return nil
}

// gateway opens the configured backend; commands that write need it configured.
func (c *cli) gateway(migrate bool) (*gateway.Gateway, func(), error) {
	gw, closeDB := services.OpenGateway(c.cfg, migrate)
	if !gw.Configured() {
		closeDB()
		if missing := c.cfg.MissingKeys(); len(missing) > 0 {
			return nil, nil, fmt.Errorf("backend is not configured, missing %v", missing)
		}
		return nil, nil, fmt.Errorf("failed to connect to %s database", c.cfg.DBType)
	}
	return gw, closeDB, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
