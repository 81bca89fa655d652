package models

import "gorm.io/gorm"

// ComponentBinding associates a status page with an externally monitored
// target, with page-specific display metadata.
type ComponentBinding struct {
	gorm.Model

	StatusPageID uint   `gorm:"not null;uniqueIndex:idx_page_monitor"`
	MonitorID    string `gorm:"not null;uniqueIndex:idx_page_monitor"` // owned by the monitoring service
	DisplayName  string `gorm:"not null"`
	Visible      bool   `gorm:"default:true"`
	SortOrder    int    `gorm:"default:0"`
	GroupLabel   string

	// Relationships
	StatusPage StatusPage `gorm:"foreignKey:StatusPageID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
