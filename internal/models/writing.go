package models

import "time"

// WritingCategory groups writing items.
type WritingCategory struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"size:200;not null"`
	OrderIndex int    `gorm:"not null"`
	Enabled    bool   `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for WritingCategory
func (WritingCategory) TableName() string {
	return "writing_categories"
}

// WritingItem links to a piece published elsewhere.
type WritingItem struct {
	ID             uint             `gorm:"primaryKey;autoIncrement"`
	CategoryID     *uint            `gorm:"index"`
	Category       *WritingCategory `gorm:"constraint:OnDelete:SET NULL;" json:"-"`
	Title          string           `gorm:"size:200;not null"`
	URL            string           `gorm:"column:url;size:2048;not null"`
	Platform       string           `gorm:"size:200"`
	Language       string           `gorm:"size:8;not null"`
	Featured       bool             `gorm:"not null"`
	Enabled        bool             `gorm:"not null"`
	OrderIndex     int              `gorm:"not null"`
	WhyThisMatters string           `gorm:"size:2000"`
	ShowWhy        bool             `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the table name for WritingItem
func (WritingItem) TableName() string {
	return "writing_items"
}
