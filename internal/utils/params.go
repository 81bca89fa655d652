package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetPageID(ctx *gin.Context) (uint64, error) {
	return parseIDParam(ctx, "page_id", "Page")
}

func GetBindingID(ctx *gin.Context) (uint64, error) {
	return parseIDParam(ctx, "binding_id", "Binding")
}

func GetIncidentID(ctx *gin.Context) (uint64, error) {
	return parseIDParam(ctx, "incident_id", "Incident")
}

func parseIDParam(ctx *gin.Context, name string, label string) (uint64, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(label + " ID not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label + " ID")
	}

	return id, nil
}
