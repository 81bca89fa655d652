package store

import (
	"errors"
	"testing"

	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/types"
)

func TestCreateBindingRejectsDuplicates(t *testing.T) {
	tester := &tester{dbFileName: "./bindings_duplicate_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "dup-page")

	binding := &models.ComponentBinding{
		StatusPageID: page.ID,
		MonitorID:    "mon-1",
		DisplayName:  "API",
		Visible:      true,
	}

	if err := tester.bindings.CreateBinding(binding); err != nil {
		t.Fatalf("Expected no error creating binding, got %v", err)
	}

	duplicate := &models.ComponentBinding{
		StatusPageID: page.ID,
		MonitorID:    "mon-1",
		DisplayName:  "API copy",
		Visible:      true,
	}

	if err := tester.bindings.CreateBinding(duplicate); !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("Expected ErrDuplicateBinding, got %v", err)
	}

	// The same monitor on a different page is fine.
	other := createTestPage(tester, t, "other-page")

	if err := tester.bindings.CreateBinding(&models.ComponentBinding{
		StatusPageID: other.ID,
		MonitorID:    "mon-1",
		DisplayName:  "API",
		Visible:      true,
	}); err != nil {
		t.Fatalf("Expected no error binding the monitor to another page, got %v", err)
	}
}

func TestBindingsForMonitorSpansPages(t *testing.T) {
	tester := &tester{dbFileName: "./bindings_monitor_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	p1 := createTestPage(tester, t, "page-one")
	p2 := createTestPage(tester, t, "page-two")

	for _, pageID := range []uint{p1.ID, p2.ID} {
		if err := tester.bindings.CreateBinding(&models.ComponentBinding{
			StatusPageID: pageID,
			MonitorID:    "mon-shared",
			DisplayName:  "Shared",
			Visible:      true,
		}); err != nil {
			t.Fatalf("Expected no error creating binding, got %v", err)
		}
	}

	bindings, err := tester.bindings.BindingsForMonitor("mon-shared")

	if err != nil {
		t.Fatalf("Expected no error listing bindings, got %v", err)
	}

	if len(bindings) != 2 {
		t.Fatalf("Expected 2 bindings for the shared monitor, got %d", len(bindings))
	}
}

func TestBindingsForPageOrdered(t *testing.T) {
	tester := &tester{dbFileName: "./bindings_order_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "order-page")

	for i, monitorID := range []string{"mon-c", "mon-a", "mon-b"} {
		if err := tester.bindings.CreateBinding(&models.ComponentBinding{
			StatusPageID: page.ID,
			MonitorID:    monitorID,
			DisplayName:  monitorID,
			Visible:      true,
			SortOrder:    3 - i,
		}); err != nil {
			t.Fatalf("Expected no error creating binding, got %v", err)
		}
	}

	bindings, err := tester.bindings.BindingsForPage(page.ID)

	if err != nil {
		t.Fatalf("Expected no error listing bindings, got %v", err)
	}

	if bindings[0].MonitorID != "mon-b" || bindings[2].MonitorID != "mon-c" {
		t.Fatalf("Expected bindings ordered by sort order, got %s, %s, %s",
			bindings[0].MonitorID, bindings[1].MonitorID, bindings[2].MonitorID)
	}
}

func TestDeleteBindingPrunesOpenIncidents(t *testing.T) {
	tester := &tester{dbFileName: "./bindings_prune_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "prune-page")

	binding := &models.ComponentBinding{
		StatusPageID: page.ID,
		MonitorID:    "mon-1",
		DisplayName:  "API",
		Visible:      true,
	}

	if err := tester.bindings.CreateBinding(binding); err != nil {
		t.Fatalf("Expected no error creating binding, got %v", err)
	}

	incident := &models.Incident{
		StatusPageID: page.ID,
		Title:        "Mixed outage",
		Status:       string(types.IncidentInvestigating),
		Impact:       string(types.ImpactMinor),
	}

	err := incident.SetComponents([]types.AffectedComponent{
		{MonitorID: "mon-1", DisplayName: "API", Status: types.ComponentMajorOutage},
		{MonitorID: "mon-2", DisplayName: "Web", Status: types.ComponentPartialOutage},
	})

	if err != nil {
		t.Fatalf("Expected no error encoding components, got %v", err)
	}

	created, err := tester.incidents.CreateIncident(incident, "down")

	if err != nil {
		t.Fatalf("Expected no error creating incident, got %v", err)
	}

	if err := tester.bindings.DeleteBinding(page.ID, binding.ID); err != nil {
		t.Fatalf("Expected no error deleting binding, got %v", err)
	}

	reloaded, err := tester.incidents.FindByID(page.ID, created.ID)

	if err != nil {
		t.Fatalf("Expected no error loading incident, got %v", err)
	}

	components, err := reloaded.Components()

	if err != nil {
		t.Fatalf("Expected no error decoding components, got %v", err)
	}

	if len(components) != 1 || components[0].MonitorID != "mon-2" {
		t.Fatalf("Expected only mon-2 to remain in affected components, got %+v", components)
	}
}

func TestDeleteBindingNotFound(t *testing.T) {
	tester := &tester{dbFileName: "./bindings_missing_test.db"}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	page := createTestPage(tester, t, "missing-page")

	if err := tester.bindings.DeleteBinding(page.ID, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
