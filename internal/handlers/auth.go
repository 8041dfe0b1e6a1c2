package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/thereayou/ephroom/internal/database"
	"github.com/thereayou/ephroom/internal/handlers/dto"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/pkg/auth"
)

type AuthHandler struct {
	db     *database.Database
	tokens *auth.TokenManager
	redis  *redis.Client
}

func NewAuthHandler(db *database.Database, tokens *auth.TokenManager, rdb *redis.Client) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens, redis: rdb}
}

// validatePassword — та же политика, что проверяет клиент до запроса
func validatePassword(password string) string {
	if len(password) < 6 {
		return "password must be at least 6 characters long"
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return "password must contain at least one uppercase letter"
	}
	if !lower {
		return "password must contain at least one lowercase letter"
	}
	if !digit {
		return "password must contain at least one number"
	}
	return ""
}

// Register создает пользователя и пустой профиль
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validatePassword(req.Password); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot hash password"})
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := h.db.SaveUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "this email is already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create user"})
		return
	}

	if err := h.db.UpsertProfile(&models.Profile{ID: user.ID, UpdatedAt: time.Now()}); err != nil {
		log.Printf("failed to create profile for %s: %v", user.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
}

// Login выдает JWT и обновляет last_seen
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.FindUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.db.UpdateLastSeen(user.ID.String()); err != nil {
		log.Printf("failed to update last seen for %s: %v", user.ID, err)
	}

	token, err := h.tokens.Issue(user.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.UserInfo{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt},
	})
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken, err := auth.ExtractToken(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttl, err := h.tokens.TTLRemaining(rawToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	h.redis.Set(context.Background(), "blacklist:"+rawToken, 1, ttl)

	c.Status(http.StatusOK)
}
