package gateway

import (
	"context"
	"time"

	"github.com/localnerve/portfolio-site/internal/models"
	"gorm.io/gorm"
)

// KindCount is the number of events of one kind.
type KindCount struct {
	Kind  string `json:"kind"`
	Total int64  `json:"total"`
}

// PathCount is the number of events of one kind on one path.
type PathCount struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Total int64  `json:"total"`
}

// AnalyticsSummary aggregates events since a point in time.
type AnalyticsSummary struct {
	Since    time.Time   `json:"since"`
	Total    int64       `json:"total"`
	Sessions int64       `json:"sessions"`
	ByKind   []KindCount `json:"byKind"`
	TopPaths []PathCount `json:"topPaths"`
}

// topPathsLimit bounds the TopPaths list.
const topPathsLimit = 20

// RecordEvent appends an analytics event.
func (g *Gateway) RecordEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	return g.run(ctx, "record_event", func(tx *gorm.DB) error {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = g.now()
		}
		return tx.Create(e).Error
	})
}

// AnalyticsSummary counts events by kind and by (kind, path) since since.
func (g *Gateway) AnalyticsSummary(ctx context.Context, since time.Time) (AnalyticsSummary, error) {
	sum := AnalyticsSummary{Since: since, ByKind: []KindCount{}, TopPaths: []PathCount{}}
	err := g.run(ctx, "analytics_summary", func(tx *gorm.DB) error {
		scope := func() *gorm.DB {
			return tagged(tx, "analytics_summary").Model(&models.AnalyticsEvent{}).Where("created_at >= ?", since)
		}
		if err := scope().Count(&sum.Total).Error; err != nil {
			return err
		}
		if err := scope().Distinct("session_id").Count(&sum.Sessions).Error; err != nil {
			return err
		}
		if err := scope().Select("kind, COUNT(*) AS total").Group("kind").
			Order("total DESC").Order("kind").Scan(&sum.ByKind).Error; err != nil {
			return err
		}
		return scope().Select("kind, path, COUNT(*) AS total").Group("kind, path").
			Order("total DESC").Order("kind").Order("path").Limit(topPathsLimit).Scan(&sum.TopPaths).Error
	})
	return sum, err
}
