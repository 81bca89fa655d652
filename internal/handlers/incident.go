package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/services"
	"github.com/beacon-dev/beacon/internal/store"
	"github.com/beacon-dev/beacon/internal/types"
	"github.com/beacon-dev/beacon/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateIncidentRequest struct {
	Title      string   `json:"title" binding:"required"`
	Status     string   `json:"status"`
	Impact     string   `json:"impact"`
	Message    string   `json:"message" binding:"required"`
	MonitorIDs []string `json:"monitor_ids" binding:"required"`
}

type AppendUpdateRequest struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type IncidentResponse struct {
	ID         string                    `json:"id"`
	Title      string                    `json:"title"`
	Status     string                    `json:"status"`
	Impact     string                    `json:"impact"`
	Resolved   bool                      `json:"resolved"`
	Components []types.AffectedComponent `json:"components"`
}

func incidentResponse(incident *models.Incident) IncidentResponse {
	components, err := incident.Components()

	if err != nil {
		log.Printf("Failed to decode components for incident %s: %v", incident.UniqueID, err)
	}

	return IncidentResponse{
		ID:         incident.UniqueID,
		Title:      incident.Title,
		Status:     incident.Status,
		Impact:     incident.Impact,
		Resolved:   incident.Resolved,
		Components: components,
	}
}

// CreateIncident is the manual creation path for authenticated page owners.
// The automatic path lives in the reconciler.
func CreateIncident(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateIncidentRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := body.Status

	if status == "" {
		status = string(types.IncidentInvestigating)
	}

	impact := body.Impact

	if impact == "" {
		impact = string(types.ImpactMinor)
	}

	if !types.ValidIncidentStatus(types.IncidentStatus(status)) || status == string(types.IncidentResolved) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident status"})
		return
	}

	if !types.ValidImpact(types.Impact(impact)) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid impact"})
		return
	}

	registry := store.NewBindingRegistry(db.DB)
	bindings, err := registry.BindingsForPage(page.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bindings"})
		return
	}

	byMonitor := make(map[string]models.ComponentBinding, len(bindings))

	for _, binding := range bindings {
		byMonitor[binding.MonitorID] = binding
	}

	components := make([]types.AffectedComponent, 0, len(body.MonitorIDs))

	for _, monitorID := range body.MonitorIDs {
		binding, ok := byMonitor[monitorID]

		if !ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Monitor " + monitorID + " is not bound to this page"})
			return
		}

		components = append(components, types.AffectedComponent{
			MonitorID:   binding.MonitorID,
			DisplayName: binding.DisplayName,
			Status:      types.ComponentPartialOutage,
		})
	}

	incident := models.Incident{
		StatusPageID: page.ID,
		Title:        body.Title,
		Status:       status,
		Impact:       impact,
		CreatedBy:    &userID,
	}

	if err := incident.SetComponents(components); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode components"})
		return
	}

	incidents := store.NewIncidentStore(db.DB)
	created, err := incidents.CreateIncident(&incident, body.Message)

	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "An open incident already covers one of these components"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create incident"})
		}
		return
	}

	if err := services.SendIncidentCreatedNotification(*page, *created); err != nil {
		log.Printf("Failed to send incident notification for page %d: %v", page.ID, err)
	}

	BroadcastRefresh(page.Slug)
	ctx.JSON(http.StatusCreated, incidentResponse(created))
}

func ListIncidents(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	incidents := store.NewIncidentStore(db.DB)

	active, err := incidents.ListActiveIncidents(page.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	resolved, err := incidents.ListResolvedIncidents(page.ID, resolvedLimit(ctx))

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	activeViews := make([]IncidentResponse, 0, len(active))

	for i := range active {
		activeViews = append(activeViews, incidentResponse(&active[i]))
	}

	resolvedViews := make([]IncidentResponse, 0, len(resolved))

	for i := range resolved {
		resolvedViews = append(resolvedViews, incidentResponse(&resolved[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"active":   activeViews,
		"resolved": resolvedViews,
	})
}

// AppendIncidentUpdate appends to an incident's timeline. A "resolved"
// update resolves the incident; appending to an already-resolved incident is
// allowed for audit purposes.
func AppendIncidentUpdate(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	incidentID, err := utils.GetIncidentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body AppendUpdateRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.ValidIncidentStatus(types.IncidentStatus(body.Status)) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid incident status"})
		return
	}

	incidents := store.NewIncidentStore(db.DB)

	existing, err := incidents.FindByID(page.ID, uint(incidentID))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incident"})
		}
		return
	}

	wasResolved := existing.Resolved
	author := user.Email

	updated, err := incidents.AppendUpdate(existing.ID, models.IncidentUpdate{
		Status:  body.Status,
		Message: body.Message,
		Author:  &author,
	})

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to append update"})
		return
	}

	if updated.Resolved && !wasResolved {
		if err := services.SendIncidentResolvedNotification(*page, *updated); err != nil {
			log.Printf("Failed to send resolution notification for page %d: %v", page.ID, err)
		}
	}

	BroadcastRefresh(page.Slug)
	ctx.JSON(http.StatusOK, incidentResponse(updated))
}
