package store

import (
	"errors"
	"testing"

	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/types"
)

func newOutageIncident(t *testing.T, pageID uint, monitorID string) *models.Incident {
	t.Helper()

	incident := &models.Incident{
		StatusPageID: pageID,
		Title:        "API is down",
		Status:       string(types.IncidentInvestigating),
		Impact:       string(types.ImpactMinor),
	}

	err := incident.SetComponents([]types.AffectedComponent{
		{MonitorID: monitorID, DisplayName: "API", Status: types.ComponentMajorOutage},
	})

	if err != nil {
		t.Fatalf("Expected no error encoding components, got %v", err)
	}

	return incident
}

func TestCreateIncidentInitializesTimeline(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_create_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "create-page")

	created, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, "mon-1"), "API is down")

	if err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	if created.UniqueID == "" {
		t.Fatal("Expected a unique ID to be assigned")
	}

	if len(created.Updates) != 1 {
		t.Fatalf("Expected one initial update, got %d", len(created.Updates))
	}

	first := created.Updates[0]

	if first.Status != string(types.IncidentInvestigating) || first.Message != "API is down" {
		t.Fatalf("Unexpected initial update: %+v", first)
	}

	if first.Author != nil {
		t.Fatalf("Expected system-generated update to have no author, got %v", *first.Author)
	}
}

func TestCreateIncidentConflictsWithOpenIncident(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_conflict_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "conflict-page")

	if _, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, "mon-1"), "down"); err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	_, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, "mon-1"), "down again")

	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict for second open incident, got %v", err)
	}
}

func TestFindOpenIncident(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_find_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "find-page")

	created, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, "mon-1"), "down")

	if err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	found, err := tester.incidents.FindOpenIncident(page.ID, "mon-1")

	if err != nil {
		t.Fatalf("Expected to find open incident, got %v", err)
	}

	if found.UniqueID != created.UniqueID {
		t.Fatalf("Expected incident %s, got %s", created.UniqueID, found.UniqueID)
	}

	if _, err := tester.incidents.FindOpenIncident(page.ID, "mon-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unbound monitor, got %v", err)
	}
}

func TestFindOpenIncidentIgnoresResolved(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_resolved_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "resolved-page")

	created, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, "mon-1"), "down")

	if err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	_, err = tester.incidents.AppendUpdate(created.ID, models.IncidentUpdate{
		Status:  string(types.IncidentResolved),
		Message: "Service has recovered",
	})

	if err != nil {
		t.Fatalf("Expected no error resolving incident, got %v", err)
	}

	if _, err := tester.incidents.FindOpenIncident(page.ID, "mon-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after resolution, got %v", err)
	}
}

func TestAppendUpdateResolvesExactlyOnce(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_resolve_once_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "resolve-once-page")

	created, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, "mon-1"), "down")

	if err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	resolved, err := tester.incidents.AppendUpdate(created.ID, models.IncidentUpdate{
		Status:  string(types.IncidentResolved),
		Message: "Service has recovered",
	})

	if err != nil {
		t.Fatalf("Expected no error resolving incident, got %v", err)
	}

	if !resolved.Resolved || resolved.ResolvedAt == nil {
		t.Fatal("Expected incident to be marked resolved with a timestamp")
	}

	firstResolvedAt := *resolved.ResolvedAt

	// A second resolve is a no-op for the resolution timestamp but still
	// appends to the audit log.
	again, err := tester.incidents.AppendUpdate(created.ID, models.IncidentUpdate{
		Status:  string(types.IncidentResolved),
		Message: "Still recovered",
	})

	if err != nil {
		t.Fatalf("Expected appending to a resolved incident to succeed, got %v", err)
	}

	if !again.ResolvedAt.Equal(firstResolvedAt) {
		t.Fatalf("Expected ResolvedAt to be set exactly once, got %v then %v", firstResolvedAt, *again.ResolvedAt)
	}

	full, err := tester.incidents.FindByID(page.ID, created.ID)

	if err != nil {
		t.Fatalf("Expected no error loading incident, got %v", err)
	}

	if len(full.Updates) != 3 {
		t.Fatalf("Expected 3 timeline entries (create, resolve, audit), got %d", len(full.Updates))
	}
}

func TestAppendUpdateUnknownIncident(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_unknown_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	_, err := tester.incidents.AppendUpdate(9999, models.IncidentUpdate{
		Status:  string(types.IncidentMonitoring),
		Message: "checking",
	})

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown incident, got %v", err)
	}
}

func TestSetComponentStatus(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_component_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "component-page")

	incident := &models.Incident{
		StatusPageID: page.ID,
		Title:        "Multiple components down",
		Status:       string(types.IncidentInvestigating),
		Impact:       string(types.ImpactMajor),
	}

	err := incident.SetComponents([]types.AffectedComponent{
		{MonitorID: "mon-1", DisplayName: "API", Status: types.ComponentMajorOutage},
		{MonitorID: "mon-2", DisplayName: "Web", Status: types.ComponentMajorOutage},
	})

	if err != nil {
		t.Fatalf("Expected no error encoding components, got %v", err)
	}

	created, err := tester.incidents.CreateIncident(incident, "everything is down")

	if err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	updated, err := tester.incidents.SetComponentStatus(created.ID, "mon-1", types.ComponentOperational)

	if err != nil {
		t.Fatalf("Expected no error updating component, got %v", err)
	}

	if updated.AllOperational() {
		t.Fatal("Expected incident to stay unhealthy while mon-2 is down")
	}

	updated, err = tester.incidents.SetComponentStatus(created.ID, "mon-2", types.ComponentOperational)

	if err != nil {
		t.Fatalf("Expected no error updating component, got %v", err)
	}

	if !updated.AllOperational() {
		t.Fatal("Expected all components to be operational")
	}
}

func TestListResolvedIncidentsOrderAndCap(t *testing.T) {
	tester := &tester{dbFileName: "./incidents_list_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "list-page")

	for i := 0; i < 3; i++ {
		monitorID := "mon-" + string(rune('a'+i))

		created, err := tester.incidents.CreateIncident(newOutageIncident(t, page.ID, monitorID), "down")

		if err != nil {
			t.Fatalf("Expected no error creating incident, got %v", err)
		}

		_, err = tester.incidents.AppendUpdate(created.ID, models.IncidentUpdate{
			Status:  string(types.IncidentResolved),
			Message: "recovered",
		})

		if err != nil {
			t.Fatalf("Expected no error resolving incident, got %v", err)
		}
	}

	resolved, err := tester.incidents.ListResolvedIncidents(page.ID, 2)

	if err != nil {
		t.Fatalf("Expected no error listing resolved incidents, got %v", err)
	}

	if len(resolved) != 2 {
		t.Fatalf("Expected the resolved list to be capped at 2, got %d", len(resolved))
	}

	if resolved[0].ResolvedAt.Before(*resolved[1].ResolvedAt) {
		t.Fatal("Expected resolved incidents ordered by resolution time descending")
	}
}
