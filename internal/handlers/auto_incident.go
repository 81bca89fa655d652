package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/reconciler"
	"github.com/beacon-dev/beacon/internal/services"
	"github.com/beacon-dev/beacon/internal/store"
	"github.com/beacon-dev/beacon/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AutoIncidentResponse struct {
	Results []reconciler.PageResult `json:"results"`
}

// The reconciler is process-wide so its per-key locks serialize concurrent
// deliveries for the same page and monitor.
var (
	recMu sync.Mutex
	rec   *reconciler.Reconciler
)

func getReconciler() *reconciler.Reconciler {
	recMu.Lock()
	defer recMu.Unlock()

	if rec == nil {
		rec = reconciler.New(store.NewBindingRegistry(db.DB), store.NewIncidentStore(db.DB))
	}

	return rec
}

// AutoIncident consumes a monitor state transition from the monitoring
// service and reconciles incidents on every bound page. The response is
// always 200 with per-page outcomes; individual page failures are reported
// in their result entries, never as a request failure.
func AutoIncident(ctx *gin.Context) {
	var event types.TransitionEvent

	if err := ctx.ShouldBindJSON(&event); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.ValidTransitionStatus(event.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of up, down, degraded"})
		return
	}

	results, err := getReconciler().Apply(ctx.Request.Context(), event)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile transition"})
		return
	}

	for _, result := range results {
		if result.Action == reconciler.ActionNoAction {
			continue
		}

		notifyPage(result)
	}

	ctx.JSON(http.StatusOK, AutoIncidentResponse{Results: results})
}

// notifyPage fires webhooks and the live-status stream for a page whose
// incident set changed. Notification failures are logged; they never affect
// the reconciliation outcome.
func notifyPage(result reconciler.PageResult) {
	var page models.StatusPage

	if err := db.DB.First(&page, result.StatusPageID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to load page %d for notification: %v", result.StatusPageID, err)
		}
		return
	}

	var incident models.Incident

	if err := db.DB.Where("unique_id = ?", result.IncidentID).First(&incident).Error; err != nil {
		log.Printf("Failed to load incident %s for notification: %v", result.IncidentID, err)
		return
	}

	var err error

	switch result.Action {
	case reconciler.ActionCreated:
		err = services.SendIncidentCreatedNotification(page, incident)
	case reconciler.ActionResolved:
		err = services.SendIncidentResolvedNotification(page, incident)
	}

	if err != nil {
		log.Printf("Failed to send notification for page %d: %v", page.ID, err)
	}

	BroadcastRefresh(page.Slug)
}
