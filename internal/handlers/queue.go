package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/thereayou/ephroom/internal/database"
	"github.com/thereayou/ephroom/internal/middleware"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

type QueueHandler struct {
	db  *database.Database
	hub *realtime.Hub
}

func NewQueueHandler(db *database.Database, hub *realtime.Hub) *QueueHandler {
	return &QueueHandler{db: db, hub: hub}
}

// GetQueue возвращает очередь комнаты по позициям
func (h *QueueHandler) GetQueue(c *gin.Context) {
	roomID := c.Param("id")

	if _, err := uuid.Parse(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	entries, err := h.db.GetQueue(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue": entries})
}

// JoinQueue ставит пользователя в конец очереди.
// Повторная попытка встать в ту же очередь — 409.
func (h *QueueHandler) JoinQueue(c *gin.Context) {
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

	entry, err := h.db.JoinQueue(roomID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "you are already in the queue"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join queue"})
		return
	}

	h.publishQueueEvent(realtime.EventInsert, entry)

	c.JSON(http.StatusCreated, entry)
}

// LeaveQueue убирает пользователя из очереди; если его там нет — no-op
func (h *QueueHandler) LeaveQueue(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	removed, err := h.db.LeaveQueue(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave queue"})
		return
	}

	if removed != nil {
		h.publishQueueEvent(realtime.EventDelete, removed)
	}

	c.Status(http.StatusOK)
}

func (h *QueueHandler) publishQueueEvent(typ realtime.EventType, entry *models.QueueEntry) {
	evt, err := realtime.NewEvent(typ, realtime.TableQueue, entry, map[string]string{
		"id":      entry.ID.String(),
		"room_id": entry.RoomID.String(),
	})
	if err != nil {
		log.Printf("failed to build queue event: %v", err)
		return
	}
	h.hub.Publish(evt)
}
