package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/store"
	"github.com/beacon-dev/beacon/internal/types"
)

// IncidentStore is the slice of the incident store the reconciler needs.
type IncidentStore interface {
	FindOpenIncident(pageID uint, monitorID string) (*models.Incident, error)
	CreateIncident(incident *models.Incident, message string) (*models.Incident, error)
	AppendUpdate(incidentID uint, update models.IncidentUpdate) (*models.Incident, error)
	SetComponentStatus(incidentID uint, monitorID string, status types.ComponentStatus) (*models.Incident, error)
}

// BindingSource resolves which pages display a monitor.
type BindingSource interface {
	BindingsForMonitor(monitorID string) ([]models.ComponentBinding, error)
}

const (
	ActionCreated  = "created"
	ActionResolved = "resolved"
	ActionNoAction = "no_action"
)

// PageResult is the outcome of applying one transition to one bound page.
// Failures are carried here instead of aborting sibling pages.
type PageResult struct {
	StatusPageID uint   `json:"status_page_id"`
	Action       string `json:"action"`
	IncidentID   string `json:"incident_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Reconciler turns monitor state transitions into incident mutations. Events
// for the same (page, monitor) key serialize through a per-key lock so the
// test-and-create step is atomic; different keys proceed in parallel.
type Reconciler struct {
	bindings  BindingSource
	incidents IncidentStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(bindings BindingSource, incidents IncidentStore) *Reconciler {
	return &Reconciler{
		bindings:  bindings,
		incidents: incidents,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Apply processes one transition event against every page bound to the
// monitor. Pages are processed independently; a failure on one page is
// reported in its result entry and never aborts the others.
func (r *Reconciler) Apply(ctx context.Context, event types.TransitionEvent) ([]PageResult, error) {
	bindings, err := r.bindings.BindingsForMonitor(event.MonitorID)

	if err != nil {
		return nil, err
	}

	results := make([]PageResult, 0, len(bindings))

	for _, binding := range bindings {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := r.applyToPage(binding, event)

		if result.Error != "" {
			log.Printf("Reconciliation failed for page %d monitor %s: %s",
				binding.StatusPageID, event.MonitorID, result.Error)
		}

		results = append(results, result)
	}

	return results, nil
}

func (r *Reconciler) applyToPage(binding models.ComponentBinding, event types.TransitionEvent) PageResult {
	unlock := r.lock(binding.StatusPageID, event.MonitorID)
	defer unlock()

	result, err := r.reconcile(binding, event)

	// A conflict means another attempt won the test-and-create race; retry
	// once so the losing event is applied against the fresh state.
	if errors.Is(err, store.ErrConflict) {
		result, err = r.reconcile(binding, event)
	}

	if err != nil {
		return PageResult{
			StatusPageID: binding.StatusPageID,
			Action:       ActionNoAction,
			Error:        err.Error(),
		}
	}

	return result
}

func (r *Reconciler) reconcile(binding models.ComponentBinding, event types.TransitionEvent) (PageResult, error) {
	pageID := binding.StatusPageID

	incident, err := r.incidents.FindOpenIncident(pageID, event.MonitorID)
	open := err == nil

	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return PageResult{}, err
	}

	switch event.Status {
	case types.MonitorDown, types.MonitorDegraded:
		if open {
			// Repeated failures for an already-open incident are no-ops; this
			// upholds the dedup invariant under duplicate delivery.
			return PageResult{
				StatusPageID: pageID,
				Action:       ActionNoAction,
				IncidentID:   incident.UniqueID,
			}, nil
		}

		created, err := r.openIncident(binding, event)

		if err != nil {
			return PageResult{}, err
		}

		return PageResult{
			StatusPageID: pageID,
			Action:       ActionCreated,
			IncidentID:   created.UniqueID,
		}, nil

	case types.MonitorUp:
		if !open {
			return PageResult{StatusPageID: pageID, Action: ActionNoAction}, nil
		}

		return r.recover(incident, event)

	default:
		return PageResult{}, fmt.Errorf("unsupported transition status: %s", event.Status)
	}
}

func (r *Reconciler) openIncident(binding models.ComponentBinding, event types.TransitionEvent) (*models.Incident, error) {
	componentStatus := types.ComponentMajorOutage
	verb := "down"

	if event.Status == types.MonitorDegraded {
		componentStatus = types.ComponentPartialOutage
		verb = "degraded"
	}

	message := event.Message

	if message == "" {
		message = fmt.Sprintf("%s is %s", binding.DisplayName, verb)
	}

	incident := models.Incident{
		StatusPageID: binding.StatusPageID,
		Title:        fmt.Sprintf("%s is %s", binding.DisplayName, verb),
		Status:       string(types.IncidentInvestigating),
		Impact:       string(types.ImpactMinor),
	}

	err := incident.SetComponents([]types.AffectedComponent{
		{
			MonitorID:   binding.MonitorID,
			DisplayName: binding.DisplayName,
			Status:      componentStatus,
		},
	})

	if err != nil {
		return nil, err
	}

	return r.incidents.CreateIncident(&incident, message)
}

func (r *Reconciler) recover(incident *models.Incident, event types.TransitionEvent) (PageResult, error) {
	updated, err := r.incidents.SetComponentStatus(incident.ID, event.MonitorID, types.ComponentOperational)

	if err != nil {
		return PageResult{}, err
	}

	message := event.Message

	if message == "" {
		message = "Service has recovered"
	}

	if updated.AllOperational() {
		_, err := r.incidents.AppendUpdate(updated.ID, models.IncidentUpdate{
			Status:  string(types.IncidentResolved),
			Message: message,
		})

		if err != nil {
			return PageResult{}, err
		}

		return PageResult{
			StatusPageID: updated.StatusPageID,
			Action:       ActionResolved,
			IncidentID:   updated.UniqueID,
		}, nil
	}

	// Partial recovery: the component entry is updated and the timeline gets
	// an audit entry, but the incident stays open with its status unchanged
	// until every affected component is confirmed healthy.
	_, err = r.incidents.AppendUpdate(updated.ID, models.IncidentUpdate{
		Status:  updated.Status,
		Message: message,
	})

	if err != nil {
		return PageResult{}, err
	}

	return PageResult{
		StatusPageID: updated.StatusPageID,
		Action:       ActionNoAction,
		IncidentID:   updated.UniqueID,
	}, nil
}

// lock serializes reconciliation per (page, monitor) key. Locks are never
// removed; the key space is bounded by the binding registry.
func (r *Reconciler) lock(pageID uint, monitorID string) func() {
	key := fmt.Sprintf("%d/%s", pageID, monitorID)

	r.mu.Lock()
	l, ok := r.locks[key]

	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}
