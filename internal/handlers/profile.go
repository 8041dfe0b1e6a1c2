package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/ephroom/internal/database"
	"github.com/thereayou/ephroom/internal/handlers/dto"
	"github.com/thereayou/ephroom/internal/middleware"
	"github.com/thereayou/ephroom/internal/models"
)

type ProfileHandler struct {
	db *database.Database
}

func NewProfileHandler(db *database.Database) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile возвращает профиль текущего пользователя
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	profile, err := h.db.GetProfile(userID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile сохраняет выбранную школу
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := &models.Profile{
		ID:        userID,
		SchoolID:  req.SchoolID,
		UpdatedAt: time.Now().UTC(),
	}

	if err := h.db.UpsertProfile(profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update school preference"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
