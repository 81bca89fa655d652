package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/aggregator"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/monitorclient"
	"github.com/beacon-dev/beacon/internal/store"
	"github.com/beacon-dev/beacon/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PublicStatusResponse struct {
	Name              string                     `json:"name"`
	Description       string                     `json:"description"`
	Theme             string                     `json:"theme"`
	OverallStatus     types.AggregateStatus      `json:"overall_status"`
	Components        []aggregator.ComponentView `json:"components"`
	ActiveIncidents   []aggregator.IncidentView  `json:"active_incidents"`
	ResolvedIncidents []aggregator.IncidentView  `json:"resolved_incidents"`
}

// GetPublicStatus serves the public view of a status page by slug.
// Unpublished pages are indistinguishable from missing ones.
func GetPublicStatus(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var page models.StatusPage

	if err := db.DB.Where("slug = ? AND published = ?", slug, true).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve page"})
		}
		return
	}

	agg := aggregator.New(
		store.NewBindingRegistry(db.DB),
		store.NewIncidentStore(db.DB),
		monitorclient.NewClient(os.Getenv("MONITOR_API_URL")),
	)
	agg.ResolvedLimit = resolvedLimit(ctx)

	status, err := agg.Aggregate(ctx.Request.Context(), page.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate status"})
		return
	}

	ctx.JSON(http.StatusOK, PublicStatusResponse{
		Name:              page.Name,
		Description:       page.Description,
		Theme:             page.Theme,
		OverallStatus:     status.OverallStatus,
		Components:        status.Components,
		ActiveIncidents:   status.ActiveIncidents,
		ResolvedIncidents: status.ResolvedIncidents,
	})
}

func resolvedLimit(ctx *gin.Context) int {
	raw := ctx.Query("resolved_limit")

	if raw == "" {
		return types.DefaultResolvedLimit
	}

	limit, err := strconv.Atoi(raw)

	if err != nil || limit <= 0 {
		return types.DefaultResolvedLimit
	}

	if limit > types.MaxResolvedLimit {
		return types.MaxResolvedLimit
	}

	return limit
}
