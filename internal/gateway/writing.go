package gateway

import (
	"context"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"gorm.io/gorm"
)

// ListCategories returns categories by order index.
func (g *Gateway) ListCategories(ctx context.Context, enabledOnly bool) ([]models.WritingCategory, error) {
	rows := []models.WritingCategory{}
	err := g.run(ctx, "list_categories", func(tx *gorm.DB) error {
		tx = tagged(tx, "list_categories")
		if enabledOnly {
			tx = tx.Where("enabled = ?", true)
		}
		return tx.Order("order_index").Order("id").Find(&rows).Error
	})
	return rows, err
}

// SaveCategory inserts c when it has no id, otherwise replaces it.
func (g *Gateway) SaveCategory(ctx context.Context, c *models.WritingCategory) error {
	return g.run(ctx, "save_category", func(tx *gorm.DB) error {
		if c.ID == 0 {
			return tx.Create(c).Error
		}
		return tx.Transaction(func(tx *gorm.DB) error {
			var existing models.WritingCategory
			if err := tx.Where("id = ?", c.ID).First(&existing).Error; err != nil {
				return err
			}
			c.CreatedAt = existing.CreatedAt
			return tx.Save(c).Error
		})
	})
}

// DeleteCategory removes a category; its items become uncategorised.
func (g *Gateway) DeleteCategory(ctx context.Context, id uint) error {
	return g.run(ctx, "delete_category", func(tx *gorm.DB) error {
		return tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.WritingItem{}).Where("category_id = ?", id).
				Update("category_id", nil).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", id).Delete(&models.WritingCategory{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
	})
}

// ListWritingItems returns items featured-first, then by order index. With
// enabledOnly, items in a disabled category are excluded too.
func (g *Gateway) ListWritingItems(ctx context.Context, enabledOnly bool) ([]models.WritingItem, error) {
	rows := []models.WritingItem{}
	err := g.run(ctx, "list_writing_items", func(tx *gorm.DB) error {
		tx = tagged(tx, "list_writing_items").Model(&models.WritingItem{})
		if enabledOnly {
			tx = tx.Select("writing_items.*").
				Joins("LEFT JOIN writing_categories ON writing_categories.id = writing_items.category_id").
				Where("writing_items.enabled = ?", true).
				Where("writing_items.category_id IS NULL OR writing_categories.enabled = ?", true)
		}
		return tx.Order("writing_items.featured DESC").
			Order("writing_items.order_index").
			Order("writing_items.id").
			Find(&rows).Error
	})
	return rows, err
}

// SaveWritingItem inserts w when it has no id, otherwise replaces it. A set
// category must exist.
func (g *Gateway) SaveWritingItem(ctx context.Context, w *models.WritingItem) error {
	return g.run(ctx, "save_writing_item", func(tx *gorm.DB) error {
		return tx.Transaction(func(tx *gorm.DB) error {
			if w.CategoryID != nil {
				var n int64
				if err := tx.Model(&models.WritingCategory{}).Where("id = ?", *w.CategoryID).Count(&n).Error; err != nil {
					return err
				}
				if n == 0 {
					return types.NewError(types.KindValidation, "", "category does not exist", nil)
				}
			}
			if w.ID == 0 {
				return tx.Omit("Category").Create(w).Error
			}
			var existing models.WritingItem
			if err := tx.Where("id = ?", w.ID).First(&existing).Error; err != nil {
				return err
			}
			w.CreatedAt = existing.CreatedAt
			return tx.Omit("Category").Save(w).Error
		})
	})
}

// DeleteWritingItem removes an item by id.
func (g *Gateway) DeleteWritingItem(ctx context.Context, id uint) error {
	return g.run(ctx, "delete_writing_item", func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.WritingItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
