package handlers

import (
	"errors"
	"net/http"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/store"
	"github.com/beacon-dev/beacon/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateBindingRequest struct {
	MonitorID   string `json:"monitor_id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Visible     *bool  `json:"visible"`
	SortOrder   int    `json:"sort_order"`
	GroupLabel  string `json:"group_label"`
}

type UpdateBindingRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Visible     *bool  `json:"visible"`
	SortOrder   int    `json:"sort_order"`
	GroupLabel  string `json:"group_label"`
}

type BindingResponse struct {
	ID          uint   `json:"id"`
	MonitorID   string `json:"monitor_id"`
	DisplayName string `json:"display_name"`
	Visible     bool   `json:"visible"`
	SortOrder   int    `json:"sort_order"`
	GroupLabel  string `json:"group_label,omitempty"`
}

func bindingResponse(binding models.ComponentBinding) BindingResponse {
	return BindingResponse{
		ID:          binding.ID,
		MonitorID:   binding.MonitorID,
		DisplayName: binding.DisplayName,
		Visible:     binding.Visible,
		SortOrder:   binding.SortOrder,
		GroupLabel:  binding.GroupLabel,
	}
}

func CreateBinding(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	var body CreateBindingRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visible := true

	if body.Visible != nil {
		visible = *body.Visible
	}

	binding := models.ComponentBinding{
		StatusPageID: page.ID,
		MonitorID:    body.MonitorID,
		DisplayName:  body.DisplayName,
		Visible:      visible,
		SortOrder:    body.SortOrder,
		GroupLabel:   body.GroupLabel,
	}

	registry := store.NewBindingRegistry(db.DB)

	if err := registry.CreateBinding(&binding); err != nil {
		if errors.Is(err, store.ErrDuplicateBinding) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Monitor is already bound to this page"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create binding"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, bindingResponse(binding))
}

func ListBindings(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	registry := store.NewBindingRegistry(db.DB)
	bindings, err := registry.BindingsForPage(page.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bindings"})
		return
	}

	response := make([]BindingResponse, 0, len(bindings))

	for _, binding := range bindings {
		response = append(response, bindingResponse(binding))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateBinding(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	bindingID, err := utils.GetBindingID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body UpdateBindingRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registry := store.NewBindingRegistry(db.DB)
	binding, err := registry.FindBinding(page.ID, uint(bindingID))

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Binding not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve binding"})
		}
		return
	}

	binding.DisplayName = body.DisplayName
	binding.SortOrder = body.SortOrder
	binding.GroupLabel = body.GroupLabel

	if body.Visible != nil {
		binding.Visible = *body.Visible
	}

	if err := registry.UpdateBinding(binding); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update binding"})
		return
	}

	ctx.JSON(http.StatusOK, bindingResponse(*binding))
}

func DeleteBinding(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	bindingID, err := utils.GetBindingID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registry := store.NewBindingRegistry(db.DB)

	if err := registry.DeleteBinding(page.ID, uint(bindingID)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Binding not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete binding"})
		}
		return
	}

	BroadcastRefresh(page.Slug)
	ctx.Status(http.StatusNoContent)
}
