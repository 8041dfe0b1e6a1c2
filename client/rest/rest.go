// Package rest реализует клиентские интерфейсы поверх HTTP API сервера
// и его websocket-ленты изменений.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/thereayou/ephroom/client"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

type Client struct {
	http    *resty.Client
	baseURL string

	mu    sync.Mutex
	token string
	feed  *feed
}

func New(baseURL string) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(baseURL),
		baseURL: baseURL,
	}
}

type apiError struct {
	Message string `json:"error"`
}

func decodeError(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusConflict {
		return client.ErrConflict
	}

	var body apiError
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Message != "" {
		return errors.New(body.Message)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode())
}

// --- AuthAPI ---

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/auth/register")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	var out loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}

	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	c.http.SetAuthToken(out.Token)

	return &out.User, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/auth/logout")

	c.mu.Lock()
	c.token = ""
	if c.feed != nil {
		c.feed.close()
		c.feed = nil
	}
	c.mu.Unlock()
	c.http.SetAuthToken("")

	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

// --- Backend ---

func (c *Client) Schools(ctx context.Context) ([]models.School, error) {
	var out struct {
		Schools []models.School `json:"schools"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/v1/schools")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	return out.Schools, nil
}

func (c *Client) Rooms(ctx context.Context, schoolID uuid.UUID) ([]models.Room, error) {
	var out struct {
		Rooms []models.Room `json:"rooms"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("school_id", schoolID.String()).
		SetResult(&out).
		Get("/api/v1/rooms")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	return out.Rooms, nil
}

func (c *Client) UpdateOccupancy(ctx context.Context, roomID uuid.UUID, upd client.OccupancyUpdate) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(upd).
		Patch("/api/v1/rooms/" + roomID.String() + "/occupancy")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) Queue(ctx context.Context, roomID uuid.UUID) ([]models.QueueEntry, error) {
	var out struct {
		Queue []models.QueueEntry `json:"queue"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/rooms/" + roomID.String() + "/queue")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	return out.Queue, nil
}

func (c *Client) JoinQueue(ctx context.Context, roomID, _ uuid.UUID) error {
	// пользователь определяется токеном
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/api/v1/rooms/" + roomID.String() + "/queue")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) LeaveQueue(ctx context.Context, roomID, _ uuid.UUID) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/v1/rooms/" + roomID.String() + "/queue")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) Messages(ctx context.Context, roomID uuid.UUID) ([]models.RoomMessage, error) {
	var out struct {
		Messages []models.RoomMessage `json:"messages"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/rooms/" + roomID.String() + "/messages")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	return out.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, roomID, _ uuid.UUID, text string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"message": text}).
		Post("/api/v1/rooms/" + roomID.String() + "/messages")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) Profile(ctx context.Context, _ uuid.UUID) (*models.Profile, error) {
	var out models.Profile
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/v1/profile")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	return &out, nil
}

func (c *Client) SaveProfile(ctx context.Context, profile *models.Profile) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"school_id": profile.SchoolID}).
		Put("/api/v1/profile")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) Subscribe(table string, filter realtime.Filter) (*realtime.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return nil, client.ErrAuthRequired
	}

	if c.feed == nil || c.feed.isClosed() {
		f, err := dialFeed(c.baseURL, c.token)
		if err != nil {
			return nil, err
		}
		c.feed = f
	}

	return c.feed.subscribe(table, filter)
}

var (
	_ client.Backend = (*Client)(nil)
	_ client.AuthAPI = (*Client)(nil)
)
