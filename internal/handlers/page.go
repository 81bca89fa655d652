package handlers

import (
	"errors"
	"net/http"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreatePageRequest struct {
	Name           string `json:"name" binding:"required"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	Theme          string `json:"theme"`
	Published      *bool  `json:"published"`
	DiscordWebhook string `json:"discord_webhook"`
	SlackWebhook   string `json:"slack_webhook"`
}

type UpdatePageRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	Theme          string `json:"theme"`
	Published      *bool  `json:"published"`
	DiscordWebhook string `json:"discord_webhook"`
	SlackWebhook   string `json:"slack_webhook"`
}

type PageResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	Published   bool   `json:"published"`
	OwnerID     uint   `json:"owner_id"`
}

func pageResponse(page models.StatusPage) PageResponse {
	return PageResponse{
		ID:          page.ID,
		Name:        page.Name,
		Slug:        page.Slug,
		Description: page.Description,
		Theme:       page.Theme,
		Published:   page.Published,
		OwnerID:     page.OwnerID,
	}
}

func CreatePage(ctx *gin.Context) {
	var body CreatePageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	slug := body.Slug

	if slug == "" {
		slug, err = utils.Slugify(body.Name)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := utils.ValidateSlug(slug); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.StatusPage

	if err := db.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Slug already taken"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check slug"})
		return
	}

	published := true

	if body.Published != nil {
		published = *body.Published
	}

	theme := body.Theme

	if theme == "" {
		theme = "default"
	}

	page := models.StatusPage{
		OwnerID:        userID,
		Name:           body.Name,
		Slug:           slug,
		Description:    body.Description,
		Theme:          theme,
		Published:      published,
		DiscordWebhook: body.DiscordWebhook,
		SlackWebhook:   body.SlackWebhook,
	}

	if err := db.DB.Create(&page).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create page"})
		return
	}

	ctx.JSON(http.StatusCreated, pageResponse(page))
}

func ListPages(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var pages []models.StatusPage

	if err := db.DB.Where("owner_id = ?", userID).Find(&pages).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pages"})
		return
	}

	response := make([]PageResponse, 0, len(pages))

	for _, page := range pages {
		response = append(response, pageResponse(page))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetPage(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, pageResponse(*page))
}

func UpdatePage(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	var body UpdatePageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Slug stays immutable once assigned; it is deliberately absent from the
	// update request.
	page.Name = body.Name
	page.Description = body.Description
	page.DiscordWebhook = body.DiscordWebhook
	page.SlackWebhook = body.SlackWebhook

	if body.Theme != "" {
		page.Theme = body.Theme
	}

	if body.Published != nil {
		page.Published = *body.Published
	}

	if err := db.DB.Save(page).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update page"})
		return
	}

	ctx.JSON(http.StatusOK, pageResponse(*page))
}

func DeletePage(ctx *gin.Context) {
	page, ok := ownedPage(ctx)

	if !ok {
		return
	}

	if err := db.DB.Delete(page).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete page"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ownedPage loads the page from the path parameter and verifies ownership,
// writing the error response itself when either fails.
func ownedPage(ctx *gin.Context) (*models.StatusPage, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	pageID, err := utils.GetPageID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	var page models.StatusPage

	if err := db.DB.Where("id = ? AND owner_id = ?", pageID, userID).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve page"})
		}
		return nil, false
	}

	return &page, true
}
