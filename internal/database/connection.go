// connection.go
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

package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	cgosqlite "gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector builds the gorm dialector for the configured DB_TYPE
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return mysql.Open(dsn), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		return cgosqlite.Open(withParams(cfg.DBDatabase, "_foreign_keys=on")), nil

	case "sqlite-pure":
		// Pure Go SQLite, no cgo toolchain required
		return sqlite.Open(withParams(cfg.DBDatabase, "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(logrus.StandardLogger()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	limit := cfg.DBConnectionLimit
	if !cfg.Networked() {
		// One writer for SQLite files
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))

	logrus.WithFields(logrus.Fields{
		"type":     cfg.DBType,
		"database": cfg.DBDatabase,
	}).Info("connected to database")

	return db, nil
}

// NewLogger routes GORM's SQL log through logrus. Slow queries and errors are
// logged at warn; statement tracing follows the logrus debug level.
func NewLogger(l *logrus.Logger) logger.Interface {
	level := logger.Warn
	if l.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return logger.New(l, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs automatic migrations for all models, seeds the singleton
// settings row and (re)creates the public settings view.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	if err := SeedSettingsRow(db); err != nil {
		return err
	}
	if err := db.Exec(PublicViewDDL(db.Dialector.Name())).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", models.PublicSettingsView, err)
	}
	return nil
}

func withParams(path, params string) string {
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}
