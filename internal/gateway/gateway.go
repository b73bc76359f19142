// gateway.go
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

// Package gateway is the only code that talks to the relational store. Every
// operation returns (T, error) and the error is always a *types.Error, so
// callers can tell configuration and schema problems from other failures.
// Panics inside an operation are recovered and reported as backend errors.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Gateway wraps a gorm connection.
type Gateway struct {
	db      *gorm.DB
	missing []string
	now     func() time.Time
	log     *logrus.Entry
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New returns a Gateway over db.
func New(db *gorm.DB, opts ...Option) *Gateway {
	g := &Gateway{
		db:  db,
		now: time.Now,
		log: logrus.WithField("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Unconfigured returns a Gateway whose every operation fails with config_missing.
func Unconfigured(missing []string) *Gateway {
	g := New(nil)
	g.missing = missing
	return g
}

// Configured reports whether the gateway has a database.
func (g *Gateway) Configured() bool {
	return g.db != nil
}

// DB exposes the connection for migrations and tooling.
func (g *Gateway) DB() *gorm.DB {
	return g.db
}

// run executes fn with a context-bound session, recovering panics and
// classifying the returned error.
func (g *Gateway) run(ctx context.Context, op string, fn func(tx *gorm.DB) error) (err error) {
	if g.db == nil {
		msg := "backend configuration is missing"
		if len(g.missing) > 0 {
			msg += ": " + strings.Join(g.missing, ", ")
		}
		return types.NewError(types.KindConfigMissing, op, msg, nil)
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.WithFields(logrus.Fields{"op": op, "panic": r}).Error("recovered gateway panic")
			err = types.NewError(types.KindBackend, op, fmt.Sprintf("unexpected failure: %v", r), nil)
		}
	}()

	if err := fn(g.db.WithContext(ctx)); err != nil {
		cerr := classify(op, err)
		g.log.WithFields(logrus.Fields{"op": op, "kind": types.KindOf(cerr)}).Debug(cerr.Error())
		return cerr
	}
	return nil
}

// tagged marks reads with a SQL comment naming the operation.
func tagged(tx *gorm.DB, op string) *gorm.DB {
	return tx.Clauses(hints.Comment("select", "op:"+op))
}

// Ping checks that the database answers.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.run(ctx, "ping", func(tx *gorm.DB) error {
		sqlDB, err := tx.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

// schemaObjects are the tables and views every deployment must have.
var schemaObjects = []string{
	models.PublicSettingsView,
	"site_settings",
	"projects",
	"writing_categories",
	"writing_items",
	"analytics_events",
}

// CheckSchema queries each required table and view once.
func (g *Gateway) CheckSchema(ctx context.Context) error {
	return g.run(ctx, "check_schema", func(tx *gorm.DB) error {
		for _, name := range schemaObjects {
			var n int64
			if err := tagged(tx, "check_schema").Table(name).Count(&n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
