//go:build ignore

// inspect_schema prints the SQLite DDL the migrations produce.
//
//	go run tools/inspect_schema.go
package main

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/portfolio-site/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type object struct {
	Type string
	Name string
	SQL  string
}

func main() {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Same path the server takes on startup
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var objects []object
	err = db.Raw(`SELECT type, name, sql FROM sqlite_master
		WHERE type IN ('table', 'view', 'index') AND name NOT LIKE 'sqlite_%' AND sql IS NOT NULL
		ORDER BY CASE type WHEN 'table' THEN 0 WHEN 'index' THEN 1 ELSE 2 END, name`).
		Scan(&objects).Error
	if err != nil {
		log.Fatal(err)
	}

	for _, o := range objects {
		fmt.Printf("\n=== %s: %s ===\n%s;\n", o.Type, o.Name, o.SQL)
	}
}
