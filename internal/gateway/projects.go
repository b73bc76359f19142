package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"gorm.io/gorm"
)

// ProjectQuery filters ListProjects.
type ProjectQuery struct {
	PublishedOnly bool
	// Limit <= 0 means no limit.
	Limit int
}

// ListProjects returns projects featured-first, then most recently updated.
func (g *Gateway) ListProjects(ctx context.Context, q ProjectQuery) ([]models.Project, error) {
	rows := []models.Project{}
	err := g.run(ctx, "list_projects", func(tx *gorm.DB) error {
		tx = tagged(tx, "list_projects")
		if q.PublishedOnly {
			tx = tx.Where("published = ?", true)
		}
		if q.Limit > 0 {
			tx = tx.Limit(q.Limit)
		}
		return tx.Order("featured DESC").Order("updated_at DESC").Order("id").Find(&rows).Error
	})
	return rows, err
}

// ProjectBySlug finds a project; publishedOnly hides drafts as not found.
func (g *Gateway) ProjectBySlug(ctx context.Context, slug string, publishedOnly bool) (models.Project, error) {
	var row models.Project
	err := g.run(ctx, "project_by_slug", func(tx *gorm.DB) error {
		tx = tagged(tx, "project_by_slug").Where("slug = ?", slug)
		if publishedOnly {
			tx = tx.Where("published = ?", true)
		}
		return tx.First(&row).Error
	})
	return row, err
}

// ProjectByID finds a project by id, published or not.
func (g *Gateway) ProjectByID(ctx context.Context, id string) (models.Project, error) {
	var row models.Project
	err := g.run(ctx, "project_by_id", func(tx *gorm.DB) error {
		return tagged(tx, "project_by_id").Where("id = ?", id).First(&row).Error
	})
	return row, err
}

// SaveProject inserts p when it has no id, otherwise replaces the stored row.
// The slug of a published project cannot change.
func (g *Gateway) SaveProject(ctx context.Context, p *models.Project) error {
	return g.run(ctx, "save_project", func(tx *gorm.DB) error {
		if p.ID == "" {
			p.ID = uuid.NewString()
			p.CreatedAt = g.now()
			p.UpdatedAt = p.CreatedAt
			return tx.Create(p).Error
		}

		return tx.Transaction(func(tx *gorm.DB) error {
			var existing models.Project
			if err := tx.Where("id = ?", p.ID).First(&existing).Error; err != nil {
				return err
			}
			if existing.Published && existing.Slug != p.Slug {
				return types.NewError(types.KindConflict, "",
					"the slug of a published project cannot change", nil)
			}
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = g.now()
			return tx.Save(p).Error
		})
	})
}

// DeleteProject removes a project by id.
func (g *Gateway) DeleteProject(ctx context.Context, id string) error {
	return g.run(ctx, "delete_project", func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
