package shiftdesksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal ShiftDesk HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// User represents an API account (digest never leaves the server).
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Shift    int    `json:"shift"`
}

// Attendance represents one day's record for a user.
type Attendance struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	CheckIn  string  `json:"check_in"`
	CheckOut *string `json:"check_out,omitempty"`
	IsLate   bool    `json:"is_late"`
}

// EditEvent is one audited change in a record's history.
type EditEvent struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Timestamp  string  `json:"timestamp"`
	Action     string  `json:"action"`
	Reason     string  `json:"reason,omitempty"`
	Approved   *bool   `json:"approved,omitempty"`
	ApprovedBy *string `json:"approved_by,omitempty"`
}

// Task represents the API task model.
type Task struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Completed    bool        `json:"completed"`
	Date         string      `json:"date"`
	Shift        int         `json:"shift"`
	EditHistory  []EditEvent `json:"edit_history"`
	LastModified string      `json:"last_modified,omitempty"`
}

// StockItem represents an inventory item.
type StockItem struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Quantity     int         `json:"quantity"`
	Unit         string      `json:"unit"`
	LastUpdated  string      `json:"last_updated"`
	EditHistory  []EditEvent `json:"edit_history"`
	LastModified string      `json:"last_modified,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	body := map[string]any{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "v0/login", body, &resp); err != nil {
		return User{}, err
	}
	c.BearerToken = resp.Token
	return resp.User, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodGet, "v0/me", nil, &resp)
	return resp, err
}

// CheckIn opens today's attendance record.
func (c *Client) CheckIn(ctx context.Context) (Attendance, error) {
	var resp Attendance
	err := c.do(ctx, http.MethodPost, "v0/attendance/check-in", nil, &resp)
	return resp, err
}

// CheckOut closes today's attendance record.
func (c *Client) CheckOut(ctx context.Context) (Attendance, error) {
	var resp Attendance
	err := c.do(ctx, http.MethodPost, "v0/attendance/check-out", nil, &resp)
	return resp, err
}

// Attendances lists the caller's attendance history.
func (c *Client) Attendances(ctx context.Context) ([]Attendance, error) {
	var resp []Attendance
	err := c.do(ctx, http.MethodGet, "v0/attendance", nil, &resp)
	return resp, err
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, title, description string) (Task, error) {
	body := map[string]any{"title": title, "description": description}
	var resp Task
	err := c.do(ctx, http.MethodPost, "v0/tasks", body, &resp)
	return resp, err
}

// Tasks lists all tasks.
func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, "v0/tasks", nil, &resp)
	return resp, err
}

// EditTask updates a task's title and description with a mandatory reason.
func (c *Client) EditTask(ctx context.Context, taskID, title, description, reason string) (Task, error) {
	body := map[string]any{"title": title, "description": description, "reason": reason}
	var resp Task
	endpoint := fmt.Sprintf("v0/tasks/%s", url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPatch, endpoint, body, &resp)
	return resp, err
}

// ToggleTask flips a task's completion state.
func (c *Client) ToggleTask(ctx context.Context, taskID string) (Task, error) {
	var resp Task
	endpoint := fmt.Sprintf("v0/tasks/%s/toggle", url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// AddUser creates an account (manager only).
func (c *Client) AddUser(ctx context.Context, username, password, name, role string, shift int) (User, error) {
	body := map[string]any{
		"username": username,
		"password": password,
		"name":     name,
		"role":     role,
		"shift":    shift,
	}
	var resp User
	err := c.do(ctx, http.MethodPost, "v0/users", body, &resp)
	return resp, err
}

// Users lists accounts (manager only).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var resp []User
	err := c.do(ctx, http.MethodGet, "v0/users", nil, &resp)
	return resp, err
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]any{"current_password": currentPassword, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "v0/users/me/password", body, nil)
}

// Stock lists inventory (supervisor or manager).
func (c *Client) Stock(ctx context.Context) ([]StockItem, error) {
	var resp []StockItem
	err := c.do(ctx, http.MethodGet, "v0/stock", nil, &resp)
	return resp, err
}

// AddStockItem registers an inventory item (supervisor or manager).
func (c *Client) AddStockItem(ctx context.Context, name string, quantity int, unit string) (StockItem, error) {
	body := map[string]any{"name": name, "quantity": quantity, "unit": unit}
	var resp StockItem
	err := c.do(ctx, http.MethodPost, "v0/stock", body, &resp)
	return resp, err
}

// AdjustStock sets an item's quantity with a mandatory reason.
func (c *Client) AdjustStock(ctx context.Context, itemID string, quantity int, reason string) (StockItem, error) {
	body := map[string]any{"quantity": quantity, "reason": reason}
	var resp StockItem
	endpoint := fmt.Sprintf("v0/stock/%s", url.PathEscape(itemID))
	err := c.do(ctx, http.MethodPatch, endpoint, body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
