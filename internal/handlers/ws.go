package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/beacon-dev/beacon/db"
	"github.com/beacon-dev/beacon/internal/models"
	"github.com/beacon-dev/beacon/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var (
	pageClients   = make(map[string]map[*websocket.Conn]bool)
	pageClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastRefresh tells every subscriber of a page that its incident set or
// components changed and the view should be refetched.
func BroadcastRefresh(slug string) {
	pageClientsMu.RLock()
	clients, exists := pageClients[slug]
	if !exists || len(clients) == 0 {
		pageClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	pageClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    "refresh",
			"message": "Status page updated",
			"slug":    slug,
		})

		if err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			pageClientsMu.Lock()
			if clients, exists := pageClients[slug]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(pageClients, slug)
				}
			}
			pageClientsMu.Unlock()
			conn.Close()
		}
	}
}

// WebSocket subscribes a public viewer to live updates for a page.
func WebSocket(c *gin.Context) {
	slug := c.Param("slug")

	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Page slug is required"})
		return
	}

	var page models.StatusPage

	if err := db.DB.Where("slug = ? AND published = ?", slug, true).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve page"})
		}
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	pageClientsMu.Lock()
	if pageClients[slug] == nil {
		pageClients[slug] = make(map[*websocket.Conn]bool)
	}
	pageClients[slug][conn] = true
	pageClientsMu.Unlock()

	defer func() {
		pageClientsMu.Lock()

		if clients, exists := pageClients[slug]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(pageClients, slug)
			}
		}

		pageClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for page %s", slug)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
		"slug":    slug,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for page %s: %v", slug, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for page %s: %v", slug, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for page %s: %v", slug, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for page %s: %v", slug, err)
			}
			break
		}
	}
}
