package models

import (
	"encoding/json"
	"time"

	"github.com/beacon-dev/beacon/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Incident struct {
	gorm.Model

	UniqueID     string `gorm:"uniqueIndex;not null"`
	StatusPageID uint   `gorm:"not null;index"`
	Title        string `gorm:"not null"`
	Status       string `gorm:"not null"` // investigating, identified, monitoring, resolved
	Impact       string `gorm:"not null"` // minor, major, critical

	// AffectedComponents holds each monitor's state inside this incident,
	// serialized as a list of types.AffectedComponent.
	AffectedComponents datatypes.JSON `gorm:"type:jsonb"`

	Resolved   bool `gorm:"default:false;index"`
	ResolvedAt *time.Time
	CreatedBy  *uint // nil for incidents opened by the reconciler

	// Relationships
	StatusPage StatusPage       `gorm:"foreignKey:StatusPageID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Updates    []IncidentUpdate `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// Components decodes the affected-components list. A missing list decodes as
// empty rather than failing.
func (i *Incident) Components() ([]types.AffectedComponent, error) {
	if len(i.AffectedComponents) == 0 {
		return nil, nil
	}

	var components []types.AffectedComponent

	if err := json.Unmarshal(i.AffectedComponents, &components); err != nil {
		return nil, err
	}

	return components, nil
}

func (i *Incident) SetComponents(components []types.AffectedComponent) error {
	raw, err := json.Marshal(components)

	if err != nil {
		return err
	}

	i.AffectedComponents = datatypes.JSON(raw)
	return nil
}

// References reports whether this incident's affected-components list
// includes the given monitor.
func (i *Incident) References(monitorID string) bool {
	components, err := i.Components()

	if err != nil {
		return false
	}

	for _, component := range components {
		if component.MonitorID == monitorID {
			return true
		}
	}

	return false
}

// AllOperational reports whether every affected component has recovered.
func (i *Incident) AllOperational() bool {
	components, err := i.Components()

	if err != nil || len(components) == 0 {
		return false
	}

	for _, component := range components {
		if component.Status != types.ComponentOperational {
			return false
		}
	}

	return true
}
