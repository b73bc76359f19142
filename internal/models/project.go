package models

import "time"

// Project is a portfolio case study. Slug is unique and frozen once published.
type Project struct {
	ID             string `gorm:"primaryKey;size:36"`
	Slug           string `gorm:"uniqueIndex;size:100;not null"`
	Title          string `gorm:"size:200;not null"`
	Summary        string `gorm:"size:2000"`
	Tags           JSON   `gorm:"column:tags"`
	Status         string `gorm:"size:16;not null"`
	DetailLevel    string `gorm:"size:16;not null"`
	Featured       bool   `gorm:"not null;index:idx_projects_listing,priority:2"`
	Published      bool   `gorm:"not null;index:idx_projects_listing,priority:1"`
	SectionsConfig JSON   `gorm:"column:sections_config"`
	Content        JSON   `gorm:"column:content"`
	Media          JSON   `gorm:"column:media"`
	Metrics        JSON   `gorm:"column:metrics"`
	DecisionLog    JSON   `gorm:"column:decision_log"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}
