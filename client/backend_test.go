package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

// fakeBackend — управляемая реализация Backend и AuthAPI для тестов.
// Подписки настоящие: тесты эмитят события прямо в них.
type fakeBackend struct {
	mu sync.Mutex

	schools []models.School
	rooms   []models.Room
	fetchErr error

	queue      []models.QueueEntry
	joinErr    error
	joinCalls  int
	leaveErr   error
	leaveCalls int

	messages      []models.RoomMessage
	messagesFails int
	messagesErr   error
	messagesCalls int
	sendErr       error
	sentTexts     []string

	occupancyErr   error
	occupancySeen  []OccupancyUpdate
	profilesSaved  []*models.Profile

	user    *models.User
	authErr error

	subs []*realtime.Subscription
}

func (f *fakeBackend) Schools(ctx context.Context) ([]models.School, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schools, f.fetchErr
}

func (f *fakeBackend) Rooms(ctx context.Context, schoolID uuid.UUID) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	matched := make([]models.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		if room.SchoolID == schoolID {
			matched = append(matched, room)
		}
	}
	return matched, nil
}

func (f *fakeBackend) UpdateOccupancy(ctx context.Context, roomID uuid.UUID, upd OccupancyUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.occupancySeen = append(f.occupancySeen, upd)
	return f.occupancyErr
}

func (f *fakeBackend) Queue(ctx context.Context, roomID uuid.UUID) ([]models.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]models.QueueEntry, len(f.queue))
	copy(entries, f.queue)
	return entries, f.fetchErr
}

func (f *fakeBackend) JoinQueue(ctx context.Context, roomID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinCalls++
	return f.joinErr
}

func (f *fakeBackend) LeaveQueue(ctx context.Context, roomID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaveCalls++
	return f.leaveErr
}

func (f *fakeBackend) Messages(ctx context.Context, roomID uuid.UUID) ([]models.RoomMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messagesCalls++
	if f.messagesFails > 0 {
		f.messagesFails--
		return nil, f.messagesErr
	}

	messages := make([]models.RoomMessage, len(f.messages))
	copy(messages, f.messages)
	return messages, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, roomID, senderID uuid.UUID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentTexts = append(f.sentTexts, text)
	return f.sendErr
}

func (f *fakeBackend) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return nil, nil
}

func (f *fakeBackend) SaveProfile(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profilesSaved = append(f.profilesSaved, profile)
	return nil
}

func (f *fakeBackend) Subscribe(table string, filter realtime.Filter) (*realtime.Subscription, error) {
	sub := realtime.NewSubscription(table, filter, nil)

	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

// lastSub — последняя открытая подписка
func (f *fakeBackend) lastSub() *realtime.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[len(f.subs)-1]
}

func (f *fakeBackend) setQueue(entries []models.QueueEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = entries
}

func (f *fakeBackend) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	texts := make([]string, len(f.sentTexts))
	copy(texts, f.sentTexts)
	return texts
}

func (f *fakeBackend) calls() (join, leave, messages int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joinCalls, f.leaveCalls, f.messagesCalls
}

func (f *fakeBackend) SignUp(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authErr
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.user, nil
}

func (f *fakeBackend) SignOut(ctx context.Context) error {
	return nil
}

var (
	_ Backend = (*fakeBackend)(nil)
	_ AuthAPI = (*fakeBackend)(nil)
)
