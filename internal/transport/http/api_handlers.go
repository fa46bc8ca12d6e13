package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akarimov/chatbroker/internal/store"
)

// APIHandlers provides HTTP handlers for the read-only REST surface.
type APIHandlers struct {
	store        store.Store
	historyLimit int
	log          *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(st store.Store, historyLimit int, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		store:        st,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserCount int       `json:"userCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health reports server liveness.
// GET /api/health
func (h *APIHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Chat server is running"})
}

// ListRooms returns all rooms with their cached occupancy counts.
// GET /api/rooms
func (h *APIHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch rooms"})
		return
	}

	resp := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, RoomResponse{
			ID:        room.ID,
			Name:      room.Name,
			UserCount: room.UserCount,
			CreatedAt: room.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// RoomMessages returns the last N messages for a room, oldest first.
// GET /api/rooms/:roomId/messages?limit=N
func (h *APIHandlers) RoomMessages(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.store.ListMessages(c.Request.Context(), roomID, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", roomID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch messages"})
		return
	}

	// Newest-first fetch, delivered oldest first.
	resp := make([]MessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		resp = append(resp, MessageResponse{
			ID:        msg.ID,
			Username:  msg.Username,
			Text:      msg.Text,
			Timestamp: msg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}
