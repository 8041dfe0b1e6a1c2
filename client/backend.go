package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

var (
	// ErrAuthRequired — действие требует входа; запись не выполняется
	ErrAuthRequired = errors.New("sign in required")

	// ErrAlreadyQueued — пользователь уже стоит в очереди этой комнаты
	ErrAlreadyQueued = errors.New("you are already in the queue")

	// ErrEmptyMessage — пустой текст отбрасывается без похода в сеть
	ErrEmptyMessage = errors.New("message is empty")

	// ErrConflict — бэкенд сообщил о нарушении уникальности
	ErrConflict = errors.New("conflict")
)

// ValidationError — локально отклоненный ввод
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// FetchError — не удалось прочитать данные; восстановимая, без авто-повтора
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string { return "fetch " + e.Op + ": " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// WriteError — не удалось записать; восстановимая, без авто-повтора
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string { return "write " + e.Op + ": " + e.Err.Error() }
func (e *WriteError) Unwrap() error { return e.Err }

// OccupancyUpdate — целевое состояние занятости комнаты
type OccupancyUpdate struct {
	IsOccupied    bool       `json:"is_occupied"`
	OccupiedBy    *uuid.UUID `json:"occupied_by"`
	OccupiedSince *time.Time `json:"occupied_since"`
}

// Backend — CRUD и подписки хранилища. Единственный источник истины;
// клиент держит только проекции, сверяемые через fetch и события.
type Backend interface {
	Schools(ctx context.Context) ([]models.School, error)
	Rooms(ctx context.Context, schoolID uuid.UUID) ([]models.Room, error)
	UpdateOccupancy(ctx context.Context, roomID uuid.UUID, upd OccupancyUpdate) error

	Queue(ctx context.Context, roomID uuid.UUID) ([]models.QueueEntry, error)
	JoinQueue(ctx context.Context, roomID, userID uuid.UUID) error
	LeaveQueue(ctx context.Context, roomID, userID uuid.UUID) error

	Messages(ctx context.Context, roomID uuid.UUID) ([]models.RoomMessage, error)
	SendMessage(ctx context.Context, roomID, senderID uuid.UUID, text string) error

	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error

	Subscribe(table string, filter realtime.Filter) (*realtime.Subscription, error)
}

// AuthAPI — коллаборатор сессии
type AuthAPI interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	SignOut(ctx context.Context) error
}
