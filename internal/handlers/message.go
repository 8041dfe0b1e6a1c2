package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/thereayou/ephroom/internal/database"
	"github.com/thereayou/ephroom/internal/handlers/dto"
	"github.com/thereayou/ephroom/internal/middleware"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

type MessageHandler struct {
	db  *database.Database
	hub *realtime.Hub
}

func NewMessageHandler(db *database.Database, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{db: db, hub: hub}
}

// GetRoomMessages возвращает лог чата комнаты от старых к новым
func (h *MessageHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("id")

	if _, err := uuid.Parse(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	messages, err := h.db.GetRoomMessages(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage добавляет сообщение в лог комнаты и публикует событие
func (h *MessageHandler) SendMessage(c *gin.Context) {
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

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		return
	}

	message := &models.RoomMessage{
		RoomID:   roomID,
		SenderID: userID,
		Message:  text,
		SentAt:   time.Now().UTC(),
	}

	if err := h.db.SaveMessage(message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	evt, err := realtime.NewEvent(realtime.EventInsert, realtime.TableMessages, message, map[string]string{
		"id":      message.ID.String(),
		"room_id": message.RoomID.String(),
	})
	if err != nil {
		log.Printf("failed to build message event: %v", err)
	} else {
		h.hub.Publish(evt)
	}

	go h.db.UpdateLastSeen(userID.String())

	c.JSON(http.StatusCreated, message)
}
