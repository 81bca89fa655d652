package models

import "gorm.io/gorm"

// IncidentUpdate is one entry in an incident's append-only timeline.
type IncidentUpdate struct {
	gorm.Model

	IncidentID uint   `gorm:"not null;index"`
	Status     string `gorm:"not null"` // incident status at the time of the update
	Message    string `gorm:"not null"`
	Author     *string // nil for system-generated updates

	// Relationships
	Incident Incident `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
