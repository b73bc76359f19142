package models

import "time"

const (
	// SiteSettingsID is the primary key of the singleton settings row.
	SiteSettingsID = 1
	// UnclaimedAdminID marks a site whose admin has not been claimed yet.
	UnclaimedAdminID = "00000000-0000-0000-0000-000000000000"
)

// SiteSettings is the singleton row holding site-wide configuration and the
// admin identity. It is created by migration and never deleted.
type SiteSettings struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement:false"`
	NavConfig          JSON   `gorm:"column:nav_config"`
	HomeSections       JSON   `gorm:"column:home_sections"`
	Theme              JSON   `gorm:"column:theme"`
	SEO                JSON   `gorm:"column:seo"`
	Pages              JSON   `gorm:"column:pages"`
	AdminUserID        string `gorm:"column:admin_user_id;size:64;not null"`
	BootstrapTokenHash string `gorm:"column:bootstrap_token_hash;size:255;not null"`
	Version            uint64 `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the table name for SiteSettings
func (SiteSettings) TableName() string {
	return "site_settings"
}

// Claimed reports whether an admin has been assigned.
func (s SiteSettings) Claimed() bool {
	return s.AdminUserID != "" && s.AdminUserID != UnclaimedAdminID
}

// PublicSettings maps the read-only site_settings_public view. It never
// carries the admin id or the bootstrap token hash.
type PublicSettings struct {
	ID           uint
	NavConfig    JSON `gorm:"column:nav_config"`
	HomeSections JSON `gorm:"column:home_sections"`
	Theme        JSON `gorm:"column:theme"`
	SEO          JSON `gorm:"column:seo"`
	Pages        JSON `gorm:"column:pages"`
	Bootstrapped bool `gorm:"column:bootstrapped"`
	Version      uint64
	UpdatedAt    time.Time
}

// TableName overrides the table name for PublicSettings
func (PublicSettings) TableName() string {
	return PublicSettingsView
}

// PublicSettingsView is the name of the public settings view.
const PublicSettingsView = "site_settings_public"
