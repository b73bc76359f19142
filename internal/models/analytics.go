package models

import "time"

// AnalyticsEvent is an append-only visitor event.
type AnalyticsEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Kind      string    `gorm:"size:32;not null;index"`
	Path      string    `gorm:"size:2048;not null"`
	Referrer  string    `gorm:"size:2048"`
	SessionID string    `gorm:"size:36;not null;index"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName overrides the table name for AnalyticsEvent
func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// All returns every migrated model in dependency order.
func All() []interface{} {
	return []interface{}{
		&SiteSettings{},
		&Project{},
		&WritingCategory{},
		&WritingItem{},
		&AnalyticsEvent{},
	}
}
