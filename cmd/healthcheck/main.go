// main.go
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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/logging"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	gw, closeDB := services.OpenGateway(cfg, false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	result := services.Diagnose(ctx, cfg, gw, services.NewAuthorizerProvider(cfg))
	cancel()
	closeDB()

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logrus.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if !result.Healthy() {
		os.Exit(1)
	}
}
