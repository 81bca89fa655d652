package models

import "gorm.io/gorm"

type StatusPage struct {
	gorm.Model

	OwnerID     uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"` // public identifier, immutable once assigned
	Description string
	Theme       string `gorm:"default:default"`
	Published   bool   `gorm:"default:true"`

	DiscordWebhook string
	SlackWebhook   string

	// Relationships
	Bindings  []ComponentBinding `gorm:"foreignKey:StatusPageID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Incidents []Incident         `gorm:"foreignKey:StatusPageID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
