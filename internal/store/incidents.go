package store

import (
	"errors"
	"strconv"
	"time"

	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IncidentStore is the single owner of incident mutation. Timestamp stamping
// and the resolution flag are set explicitly inside its operations.
type IncidentStore struct {
	db *gorm.DB
}

func NewIncidentStore(db *gorm.DB) *IncidentStore {
	return &IncidentStore{db}
}

// FindOpenIncident returns the unresolved incident on the given page whose
// affected-components list includes the monitor, or ErrNotFound. The dedup
// invariant guarantees at most one such incident exists.
func (s *IncidentStore) FindOpenIncident(pageID uint, monitorID string) (*models.Incident, error) {
	var incidents []models.Incident

	if err := s.db.Where("status_page_id = ? AND resolved = ?", pageID, false).
		Find(&incidents).Error; err != nil {
		return nil, err
	}

	for i := range incidents {
		if incidents[i].References(monitorID) {
			return &incidents[i], nil
		}
	}

	return nil, ErrNotFound
}

// CreateIncident inserts the incident together with a first update mirroring
// its initial status and message. The open-incident check runs inside the
// same transaction so a concurrent create for any affected monitor surfaces
// as ErrConflict instead of a duplicate.
func (s *IncidentStore) CreateIncident(incident *models.Incident, message string) (*models.Incident, error) {
	if incident.UniqueID == "" {
		incident.UniqueID = uuid.NewString()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		components, err := incident.Components()

		if err != nil {
			return err
		}

		inTx := &IncidentStore{tx}

		for _, component := range components {
			_, err := inTx.FindOpenIncident(incident.StatusPageID, component.MonitorID)

			if err == nil {
				return ErrConflict
			}

			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		if err := tx.Create(incident).Error; err != nil {
			return err
		}

		first := models.IncidentUpdate{
			IncidentID: incident.ID,
			Status:     incident.Status,
			Message:    message,
		}

		if incident.CreatedBy != nil {
			author := "user:" + strconv.FormatUint(uint64(*incident.CreatedBy), 10)
			first.Author = &author
		}

		if err := tx.Create(&first).Error; err != nil {
			return err
		}

		incident.Updates = append(incident.Updates, first)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return incident, nil
}

// AppendUpdate atomically appends to the update timeline and moves the
// incident's current status to the update's status. A transition into
// "resolved" sets the resolution flag and timestamp exactly once; further
// resolved updates still append for audit purposes but never touch
// ResolvedAt.
func (s *IncidentStore) AppendUpdate(incidentID uint, update models.IncidentUpdate) (*models.Incident, error) {
	var incident models.Incident

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&incident, incidentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		update.IncidentID = incident.ID

		if err := tx.Create(&update).Error; err != nil {
			return err
		}

		incident.Status = update.Status

		if update.Status == string(types.IncidentResolved) && !incident.Resolved {
			now := time.Now()
			incident.Resolved = true
			incident.ResolvedAt = &now
		}

		return tx.Save(&incident).Error
	})

	if err != nil {
		return nil, err
	}

	return &incident, nil
}

// SetComponentStatus updates one monitor's entry in the affected-components
// list without touching the incident status or timeline.
func (s *IncidentStore) SetComponentStatus(incidentID uint, monitorID string, status types.ComponentStatus) (*models.Incident, error) {
	var incident models.Incident

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&incident, incidentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		components, err := incident.Components()

		if err != nil {
			return err
		}

		for i := range components {
			if components[i].MonitorID == monitorID {
				components[i].Status = status
			}
		}

		if err := incident.SetComponents(components); err != nil {
			return err
		}

		return tx.Save(&incident).Error
	})

	if err != nil {
		return nil, err
	}

	return &incident, nil
}

// FindByID returns the incident scoped to the page, with its timeline.
func (s *IncidentStore) FindByID(pageID uint, incidentID uint) (*models.Incident, error) {
	var incident models.Incident

	if err := s.db.Preload("Updates").
		Where("id = ? AND status_page_id = ?", incidentID, pageID).
		First(&incident).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &incident, nil
}

// ListActiveIncidents returns open incidents, most recently created first.
func (s *IncidentStore) ListActiveIncidents(pageID uint) ([]models.Incident, error) {
	var incidents []models.Incident

	if err := s.db.Preload("Updates").
		Where("status_page_id = ? AND resolved = ?", pageID, false).
		Order("created_at DESC").
		Find(&incidents).Error; err != nil {
		return nil, err
	}

	return incidents, nil
}

// ListResolvedIncidents returns the most recently resolved incidents, capped
// at limit, ordered by resolution time descending.
func (s *IncidentStore) ListResolvedIncidents(pageID uint, limit int) ([]models.Incident, error) {
	if limit <= 0 {
		limit = types.DefaultResolvedLimit
	}

	var incidents []models.Incident

	if err := s.db.Preload("Updates").
		Where("status_page_id = ? AND resolved = ?", pageID, true).
		Order("resolved_at DESC").
		Limit(limit).
		Find(&incidents).Error; err != nil {
		return nil, err
	}

	return incidents, nil
}
