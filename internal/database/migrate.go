package database

import (
	"fmt"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSettingsRow is the row migration inserts: default configuration and
// an unclaimed admin.
func DefaultSettingsRow() models.SiteSettings {
	d := siteconfig.DefaultSettings()
	return models.SiteSettings{
		ID:           models.SiteSettingsID,
		NavConfig:    models.MustJSON(d.Nav),
		HomeSections: models.MustJSON(d.HomeSections),
		Theme:        models.MustJSON(d.Theme),
		SEO:          models.MustJSON(d.SEO),
		Pages:        models.MustJSON(d.Pages),
		AdminUserID:  models.UnclaimedAdminID,
	}
}

// SeedSettingsRow inserts the singleton settings row if it does not exist.
func SeedSettingsRow(db *gorm.DB) error {
	row := DefaultSettingsRow()
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed site_settings: %w", err)
	}
	return nil
}

// PublicViewDDL returns the statement creating the public settings view for a
// gorm dialector name.
func PublicViewDDL(dialect string) string {
	const columns = "id, nav_config, home_sections, theme, seo, pages, %s AS bootstrapped, version, updated_at"
	claimed := fmt.Sprintf("admin_user_id <> '%s'", models.UnclaimedAdminID)

	var create, flag string
	switch dialect {
	case "postgres":
		create = "CREATE OR REPLACE VIEW"
		flag = "(" + claimed + ")"
	case "mysql":
		create = "CREATE OR REPLACE VIEW"
		flag = "CASE WHEN " + claimed + " THEN 1 ELSE 0 END"
	case "sqlserver":
		create = "CREATE OR ALTER VIEW"
		flag = "CAST(CASE WHEN " + claimed + " THEN 1 ELSE 0 END AS BIT)"
	default:
		create = "CREATE VIEW IF NOT EXISTS"
		flag = "CASE WHEN " + claimed + " THEN 1 ELSE 0 END"
	}
	return fmt.Sprintf("%s %s AS SELECT "+columns+" FROM site_settings",
		create, models.PublicSettingsView, flag)
}
