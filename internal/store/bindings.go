package store

import (
	"errors"

	"github.com/beacon-dev/beacon/internal/models"
	"gorm.io/gorm"
)

// BindingRegistry maps status pages to the monitors they display. The
// reconciler and aggregator only read it; page administration mutates it.
type BindingRegistry struct {
	db *gorm.DB
}

func NewBindingRegistry(db *gorm.DB) *BindingRegistry {
	return &BindingRegistry{db}
}

// BindingsForMonitor returns every binding referencing the monitor, across
// all pages.
func (r *BindingRegistry) BindingsForMonitor(monitorID string) ([]models.ComponentBinding, error) {
	var bindings []models.ComponentBinding

	if err := r.db.Where("monitor_id = ?", monitorID).Find(&bindings).Error; err != nil {
		return nil, err
	}

	return bindings, nil
}

// BindingsForPage returns the page's bindings in display order.
func (r *BindingRegistry) BindingsForPage(pageID uint) ([]models.ComponentBinding, error) {
	var bindings []models.ComponentBinding

	if err := r.db.Where("status_page_id = ?", pageID).
		Order("sort_order ASC, id ASC").
		Find(&bindings).Error; err != nil {
		return nil, err
	}

	return bindings, nil
}

// CreateBinding inserts the binding, failing with ErrDuplicateBinding when
// the (page, monitor) pair is already bound. The check runs inside the
// transaction and is backed by the composite unique index.
func (r *BindingRegistry) CreateBinding(binding *models.ComponentBinding) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ComponentBinding

		err := tx.Where("status_page_id = ? AND monitor_id = ?",
			binding.StatusPageID, binding.MonitorID).First(&existing).Error

		if err == nil {
			return ErrDuplicateBinding
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(binding).Error
	})
}

// UpdateBinding saves display metadata changes. The (page, monitor) pair is
// not changeable; rebinding a different monitor is a delete plus create.
func (r *BindingRegistry) UpdateBinding(binding *models.ComponentBinding) error {
	return r.db.Save(binding).Error
}

// FindBinding returns a binding scoped to its page.
func (r *BindingRegistry) FindBinding(pageID uint, bindingID uint) (*models.ComponentBinding, error) {
	var binding models.ComponentBinding

	if err := r.db.Where("id = ? AND status_page_id = ?", bindingID, pageID).
		First(&binding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &binding, nil
}

// DeleteBinding removes the binding and prunes the monitor's entry from any
// open incident on the page, so no incident keeps referencing a component
// that is no longer tracked.
func (r *BindingRegistry) DeleteBinding(pageID uint, bindingID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var binding models.ComponentBinding

		if err := tx.Where("id = ? AND status_page_id = ?", bindingID, pageID).
			First(&binding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Delete(&binding).Error; err != nil {
			return err
		}

		var incidents []models.Incident

		if err := tx.Where("status_page_id = ? AND resolved = ?", pageID, false).
			Find(&incidents).Error; err != nil {
			return err
		}

		for i := range incidents {
			incident := &incidents[i]

			if !incident.References(binding.MonitorID) {
				continue
			}

			components, err := incident.Components()

			if err != nil {
				return err
			}

			pruned := components[:0]

			for _, component := range components {
				if component.MonitorID != binding.MonitorID {
					pruned = append(pruned, component)
				}
			}

			if err := incident.SetComponents(pruned); err != nil {
				return err
			}

			if err := tx.Save(incident).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
