package types

// MonitorStatus is the health state reported by the monitoring service.
type MonitorStatus string

const (
	MonitorUp       MonitorStatus = "up"
	MonitorDown     MonitorStatus = "down"
	MonitorDegraded MonitorStatus = "degraded"
	MonitorPending  MonitorStatus = "pending"
	MonitorUnknown  MonitorStatus = "unknown"
)

// ComponentStatus is the state of a single component as shown on a status page.
type ComponentStatus string

const (
	ComponentOperational   ComponentStatus = "operational"
	ComponentDegraded      ComponentStatus = "degraded"
	ComponentPartialOutage ComponentStatus = "partial_outage"
	ComponentMajorOutage   ComponentStatus = "major_outage"
	ComponentPending       ComponentStatus = "pending"
	ComponentUnknown       ComponentStatus = "unknown"
)

// IncidentStatus values in progression order. "resolved" is terminal,
// the others may be re-entered by manual updates.
type IncidentStatus string

const (
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentIdentified    IncidentStatus = "identified"
	IncidentMonitoring    IncidentStatus = "monitoring"
	IncidentResolved      IncidentStatus = "resolved"
)

type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactMajor    Impact = "major"
	ImpactCritical Impact = "critical"
)

// AggregateStatus is the single page-level severity value.
type AggregateStatus string

const (
	AggregateOperational AggregateStatus = "operational"
	AggregateDegraded    AggregateStatus = "degraded"
	AggregateOutage      AggregateStatus = "outage"
)

// TransitionEvent is the inbound notification that a monitor changed state.
type TransitionEvent struct {
	MonitorID string        `json:"monitor_id" binding:"required"`
	Status    MonitorStatus `json:"status" binding:"required"`
	Message   string        `json:"message"`
}

// AffectedComponent is a single monitor's state inside an incident's
// affected-components list.
type AffectedComponent struct {
	MonitorID   string          `json:"monitor_id"`
	DisplayName string          `json:"display_name"`
	Status      ComponentStatus `json:"status"`
}

func ValidIncidentStatus(s IncidentStatus) bool {
	switch s {
	case IncidentInvestigating, IncidentIdentified, IncidentMonitoring, IncidentResolved:
		return true
	}
	return false
}

func ValidImpact(i Impact) bool {
	switch i {
	case ImpactMinor, ImpactMajor, ImpactCritical:
		return true
	}
	return false
}

func ValidTransitionStatus(s MonitorStatus) bool {
	switch s {
	case MonitorUp, MonitorDown, MonitorDegraded:
		return true
	}
	return false
}
