package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/monitorclient"
	"github.com/beacon-dev/beacon/internal/types"
)

// MonitorSource fetches live monitor state from the monitoring service.
type MonitorSource interface {
	GetMonitor(ctx context.Context, monitorID string) (*monitorclient.MonitorState, error)
}

// BindingSource lists a page's bindings in display order.
type BindingSource interface {
	BindingsForPage(pageID uint) ([]models.ComponentBinding, error)
}

// IncidentSource reads the page's incident lists.
type IncidentSource interface {
	ListActiveIncidents(pageID uint) ([]models.Incident, error)
	ListResolvedIncidents(pageID uint, limit int) ([]models.Incident, error)
}

type ComponentView struct {
	MonitorID   string                `json:"monitor_id"`
	DisplayName string                `json:"display_name"`
	GroupLabel  string                `json:"group_label,omitempty"`
	Status      types.ComponentStatus `json:"status"`
	LastChecked *time.Time            `json:"last_checked,omitempty"`
}

type UpdateView struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Author    *string   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type IncidentView struct {
	ID         string                    `json:"id"`
	Title      string                    `json:"title"`
	Status     string                    `json:"status"`
	Impact     string                    `json:"impact"`
	Components []types.AffectedComponent `json:"components"`
	Updates    []UpdateView              `json:"updates"`
	CreatedAt  time.Time                 `json:"created_at"`
	ResolvedAt *time.Time                `json:"resolved_at"`
}

// PageStatus is the public view of one status page.
type PageStatus struct {
	OverallStatus     types.AggregateStatus `json:"overall_status"`
	Components        []ComponentView       `json:"components"`
	ActiveIncidents   []IncidentView        `json:"active_incidents"`
	ResolvedIncidents []IncidentView        `json:"resolved_incidents"`
}

// Aggregator derives the page-level status from live component states and
// open incidents. Live state is fetched because a component can be down with
// no incident recorded yet.
type Aggregator struct {
	bindings      BindingSource
	incidents     IncidentSource
	monitors      MonitorSource
	ResolvedLimit int
}

func New(bindings BindingSource, incidents IncidentSource, monitors MonitorSource) *Aggregator {
	return &Aggregator{
		bindings:      bindings,
		incidents:     incidents,
		monitors:      monitors,
		ResolvedLimit: types.DefaultResolvedLimit,
	}
}

// Aggregate computes the page status. Precedence, highest first: any
// component in major_outage wins outage; any degraded, partial_outage,
// pending, or unknown component, or any open incident, wins degraded;
// otherwise the page is operational. This order is fixed since it determines
// the publicly visible severity.
func (a *Aggregator) Aggregate(ctx context.Context, pageID uint) (*PageStatus, error) {
	bindings, err := a.bindings.BindingsForPage(pageID)

	if err != nil {
		return nil, err
	}

	components := make([]ComponentView, 0, len(bindings))

	for _, binding := range bindings {
		if !binding.Visible {
			continue
		}

		components = append(components, a.componentView(ctx, binding))
	}

	active, err := a.incidents.ListActiveIncidents(pageID)

	if err != nil {
		return nil, err
	}

	resolved, err := a.incidents.ListResolvedIncidents(pageID, a.ResolvedLimit)

	if err != nil {
		return nil, err
	}

	return &PageStatus{
		OverallStatus:     overallStatus(components, len(active) > 0),
		Components:        components,
		ActiveIncidents:   incidentViews(active),
		ResolvedIncidents: incidentViews(resolved),
	}, nil
}

func (a *Aggregator) componentView(ctx context.Context, binding models.ComponentBinding) ComponentView {
	view := ComponentView{
		MonitorID:   binding.MonitorID,
		DisplayName: binding.DisplayName,
		GroupLabel:  binding.GroupLabel,
		Status:      types.ComponentUnknown,
	}

	state, err := a.monitors.GetMonitor(ctx, binding.MonitorID)

	if err != nil {
		// Best effort: an unreachable monitoring service degrades this
		// component to unknown rather than failing the page.
		log.Printf("Failed to fetch monitor %s: %v", binding.MonitorID, err)
		return view
	}

	view.Status = componentStatus(types.MonitorStatus(state.Status))
	view.LastChecked = state.LastChecked
	return view
}

func componentStatus(status types.MonitorStatus) types.ComponentStatus {
	switch status {
	case types.MonitorUp:
		return types.ComponentOperational
	case types.MonitorDown:
		return types.ComponentMajorOutage
	case types.MonitorDegraded:
		return types.ComponentPartialOutage
	case types.MonitorPending:
		return types.ComponentPending
	default:
		return types.ComponentUnknown
	}
}

func overallStatus(components []ComponentView, hasOpenIncidents bool) types.AggregateStatus {
	degraded := hasOpenIncidents

	for _, component := range components {
		switch component.Status {
		case types.ComponentMajorOutage:
			return types.AggregateOutage
		case types.ComponentOperational:
		default:
			degraded = true
		}
	}

	if degraded {
		return types.AggregateDegraded
	}

	return types.AggregateOperational
}

func incidentViews(incidents []models.Incident) []IncidentView {
	views := make([]IncidentView, 0, len(incidents))

	for i := range incidents {
		incident := &incidents[i]

		components, err := incident.Components()

		if err != nil {
			log.Printf("Failed to decode components for incident %s: %v", incident.UniqueID, err)
		}

		updates := make([]UpdateView, 0, len(incident.Updates))

		for _, update := range incident.Updates {
			updates = append(updates, UpdateView{
				Status:    update.Status,
				Message:   update.Message,
				Author:    update.Author,
				CreatedAt: update.CreatedAt,
			})
		}

		views = append(views, IncidentView{
			ID:         incident.UniqueID,
			Title:      incident.Title,
			Status:     incident.Status,
			Impact:     incident.Impact,
			Components: components,
			Updates:    updates,
			CreatedAt:  incident.CreatedAt,
			ResolvedAt: incident.ResolvedAt,
		})
	}

	return views
}
