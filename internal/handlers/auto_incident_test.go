package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/reconciler"
	"github.com/beacon-dev/beacon/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAutoIncidentTest(t *testing.T) *gin.Engine {
	t.Helper()

	dbFileName := "./auto_incident_test.db"

	gdb, err := gorm.Open(sqlite.Open(dbFileName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		os.Remove(dbFileName)
	})

	require.NoError(t, gdb.AutoMigrate(
		&models.StatusPage{},
		&models.ComponentBinding{},
		&models.Incident{},
		&models.IncidentUpdate{},
	))

	db.DB = gdb
	rec = reconciler.New(store.NewBindingRegistry(gdb), store.NewIncidentStore(gdb))

	page := &models.StatusPage{OwnerID: 1, Name: "API Status", Slug: "api-status", Published: true}
	require.NoError(t, gdb.Create(page).Error)
	require.NoError(t, gdb.Create(&models.ComponentBinding{
		StatusPageID: page.ID,
		MonitorID:    "m1",
		DisplayName:  "API",
		Visible:      true,
	}).Error)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/internal/incidents/auto", AutoIncident)
	return r
}

func postEvent(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/internal/incidents/auto", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAutoIncidentLifecycle(t *testing.T) {
	r := setupAutoIncidentTest(t)

	w := postEvent(t, r, `{"monitor_id": "m1", "status": "down", "message": "probe timeout"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response AutoIncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, reconciler.ActionCreated, response.Results[0].Action)
	assert.NotEmpty(t, response.Results[0].IncidentID)

	// Duplicate delivery stays a no-op.
	w = postEvent(t, r, `{"monitor_id": "m1", "status": "down"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, reconciler.ActionNoAction, response.Results[0].Action)

	w = postEvent(t, r, `{"monitor_id": "m1", "status": "up"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, reconciler.ActionResolved, response.Results[0].Action)
}

func TestAutoIncidentUnboundMonitor(t *testing.T) {
	r := setupAutoIncidentTest(t)

	w := postEvent(t, r, `{"monitor_id": "unbound", "status": "down"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response AutoIncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Results)
}

func TestAutoIncidentValidation(t *testing.T) {
	r := setupAutoIncidentTest(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing monitor_id", body: `{"status": "down"}`},
		{name: "missing status", body: `{"monitor_id": "m1"}`},
		{name: "unknown status", body: `{"monitor_id": "m1", "status": "flapping"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postEvent(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
