package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thereayou/ephroom/internal/database"
	"github.com/thereayou/ephroom/internal/handlers/dto"
	"github.com/thereayou/ephroom/internal/middleware"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

type RoomHandler struct {
	db  *database.Database
	hub *realtime.Hub
}

func NewRoomHandler(db *database.Database, hub *realtime.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// GetRooms возвращает комнаты школы, отсортированные по имени
func (h *RoomHandler) GetRooms(c *gin.Context) {
	schoolID := c.Query("school_id")
	if schoolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "school_id is required"})
		return
	}

	if _, err := uuid.Parse(schoolID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid school id"})
		return
	}

	rooms, err := h.db.GetRoomsBySchool(schoolID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// UpdateOccupancy применяет целевое состояние занятости.
// Запись одна, условие только по id — при гонке побеждает последняя.
func (h *RoomHandler) UpdateOccupancy(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if _, err := h.db.GetRoom(roomID.String()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	var req dto.OccupancyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inconsistent occupancy fields"})
		return
	}

	room, err := h.db.UpdateOccupancy(roomID, req.IsOccupied, req.OccupiedBy, req.OccupiedSince, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update room status"})
		return
	}

	h.publishRoomUpdate(room)

	c.JSON(http.StatusOK, room)
}

// GetHistory возвращает журнал занятий комнаты, новые записи первыми
func (h *RoomHandler) GetHistory(c *gin.Context) {
	roomID := c.Param("id")

	if _, err := uuid.Parse(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	entries, err := h.db.GetRoomHistory(roomID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (h *RoomHandler) publishRoomUpdate(room *models.Room) {
	evt, err := realtime.NewEvent(realtime.EventUpdate, realtime.TableRooms, room, map[string]string{
		"id":        room.ID.String(),
		"school_id": room.SchoolID.String(),
	})
	if err != nil {
		log.Printf("failed to build room event: %v", err)
		return
	}
	h.hub.Publish(evt)
}
