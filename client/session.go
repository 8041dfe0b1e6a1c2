package client

import (
	"context"
	"sync"
	"unicode"

	"github.com/thereayou/ephroom/internal/models"
)

// Session — реактивная личность процесса: текущий пользователь плюс
// подписчики на его смену. Явный init (вход) и teardown (выход).
type Session struct {
	api AuthAPI

	mu        sync.RWMutex
	user      *models.User
	listeners []func(*models.User)
}

func NewSession(api AuthAPI) *Session {
	return &Session{api: api}
}

// ValidatePassword — политика пароля, проверяется до любого запроса
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return &ValidationError{Reason: "Password must be at least 6 characters long"}
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
		return &ValidationError{Reason: "Password must contain at least one uppercase letter"}
	}
	if !lower {
		return &ValidationError{Reason: "Password must contain at least one lowercase letter"}
	}
	if !digit {
		return &ValidationError{Reason: "Password must contain at least one number"}
	}
	return nil
}

func (s *Session) SignUp(ctx context.Context, email, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	return s.api.SignUp(ctx, email, password)
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.setUser(user)
	return user, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	err := s.api.SignOut(ctx)
	s.setUser(nil)
	return err
}

// Current возвращает текущего пользователя либо nil
func (s *Session) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// OnChange регистрирует подписчика на смену пользователя
func (s *Session) OnChange(fn func(*models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) setUser(user *models.User) {
	s.mu.Lock()
	s.user = user
	listeners := make([]func(*models.User), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}
