package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/ephroom/internal/database"
)

type SchoolHandler struct {
	db *database.Database
}

func NewSchoolHandler(db *database.Database) *SchoolHandler {
	return &SchoolHandler{db: db}
}

// GetSchools возвращает список школ по алфавиту
func (h *SchoolHandler) GetSchools(c *gin.Context) {
	schools, err := h.db.GetSchools()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get schools"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schools": schools})
}
