// Package api is a thin HTTP client for the to-do API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// ErrUnavailable wraps transport failures: the server could not be reached.
var ErrUnavailable = errors.New("server unavailable")

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

type Task struct {
	ID          int64             `json:"id"`
	Text        string            `json:"text"`
	Description string            `json:"description"`
	Tag         string            `json:"tag"`
	Checklist   []json.RawMessage `json:"checklist"`
	Completed   bool              `json:"completed"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type NewTask struct {
	Text        string `json:"text"`
	Description string `json:"description,omitempty"`
	Tag         string `json:"tag,omitempty"`
}

// TaskPatch mirrors the server's partial update: nil fields are not sent.
type TaskPatch struct {
	Text        *string `json:"text,omitempty"`
	Description *string `json:"description,omitempty"`
	Tag         *string `json:"tag,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

type Profile struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every later request. An empty
// token logs the client out.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) Register(ctx context.Context, username, email string, password []byte) error {
	body := map[string]string{"username": username, "email": email, "password": string(password)}
	return c.do(ctx, http.MethodPost, "/api/auth/register", body, nil)
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username string, password []byte) (string, error) {
	var res struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	body := map[string]string{"username": username, "password": string(password)}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res); err != nil {
		return "", err
	}
	c.token = res.Token
	return res.Username, nil
}

func (c *Client) UserInfo(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/userinfo", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var list []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", t, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &Error{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
