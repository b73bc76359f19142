package gateway

import (
	"context"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"gorm.io/gorm"
)

// SettingsPatch holds replacement values for the settings JSON columns.
// Nil fields are left unchanged.
type SettingsPatch struct {
	NavConfig    *models.JSON
	HomeSections *models.JSON
	Theme        *models.JSON
	SEO          *models.JSON
	Pages        *models.JSON
}

func (p SettingsPatch) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	for name, v := range map[string]*models.JSON{
		"nav_config":    p.NavConfig,
		"home_sections": p.HomeSections,
		"theme":         p.Theme,
		"seo":           p.SEO,
		"pages":         p.Pages,
	} {
		if v != nil {
			cols[name] = *v
		}
	}
	return cols
}

// Settings reads the singleton settings row. Admin only.
func (g *Gateway) Settings(ctx context.Context) (models.SiteSettings, error) {
	var row models.SiteSettings
	err := g.run(ctx, "settings", func(tx *gorm.DB) error {
		return tagged(tx, "settings").Where("id = ?", models.SiteSettingsID).First(&row).Error
	})
	return row, err
}

// PublicSettings reads the public settings view.
func (g *Gateway) PublicSettings(ctx context.Context) (models.PublicSettings, error) {
	var row models.PublicSettings
	err := g.run(ctx, "public_settings", func(tx *gorm.DB) error {
		return tagged(tx, "public_settings").Where("id = ?", models.SiteSettingsID).First(&row).Error
	})
	return row, err
}

// UpdateSettings applies patch if the stored version still equals version and
// returns the updated row. A stale version yields a conflict error.
func (g *Gateway) UpdateSettings(ctx context.Context, version uint64, patch SettingsPatch) (models.SiteSettings, error) {
	var row models.SiteSettings
	err := g.run(ctx, "update_settings", func(tx *gorm.DB) error {
		cols := patch.columns()
		if len(cols) == 0 {
			return types.NewError(types.KindValidation, "", "nothing to update", nil)
		}
		cols["version"] = gorm.Expr("version + 1")
		cols["updated_at"] = g.now()

		return tx.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.SiteSettings{}).
				Where("id = ? AND version = ?", models.SiteSettingsID, version).
				Updates(cols)
			if res.Error != nil {
				return res.Error
			}
			if err := tx.Where("id = ?", models.SiteSettingsID).First(&row).Error; err != nil {
				return err
			}
			if res.RowsAffected == 0 {
				return types.NewError(types.KindConflict, "",
					"settings were changed by someone else; reload and retry", nil)
			}
			return nil
		})
	})
	return row, err
}
