// Package client is a typed HTTP client for the taskpilot API, used by the
// CLI.
package client

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

	"github.com/taskpilot/taskpilot/internal/interpreter"
	"github.com/taskpilot/taskpilot/internal/task"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// SetToken attaches the bearer token used for authenticated endpoints.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type AuthResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func (c *Client) Register(ctx context.Context, email, displayName, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":        email,
		"display_name": displayName,
		"password":     password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type ChatResult struct {
	Response       string              `json:"response"`
	ConversationID string              `json:"conversation_id"`
	Result         *interpreter.Result `json:"result,omitempty"`
}

func (c *Client) Chat(ctx context.Context, userID, message string) (*ChatResult, error) {
	var out ChatResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%s/chat", url.PathEscape(userID)), map[string]string{
		"message": message,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type taskResponse struct {
	Task *task.Task `json:"task"`
}

type taskListResponse struct {
	Tasks []*task.Task `json:"tasks"`
	Count int          `json:"count"`
}

type AddTaskParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

func (c *Client) AddTask(ctx context.Context, userID string, p AddTaskParams) (*task.Task, error) {
	var out taskResponse
	err := c.do(ctx, http.MethodPost, c.tasksPath(userID, ""), p, &out)
	if err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) ListTasks(ctx context.Context, userID, status, priority string) ([]*task.Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if priority != "" {
		q.Set("priority", priority)
	}
	path := c.tasksPath(userID, "")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out taskListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CompleteTask(ctx context.Context, userID, taskID string, completed bool) (*task.Task, error) {
	var out taskResponse
	err := c.do(ctx, http.MethodPost, c.tasksPath(userID, taskID)+"/complete", map[string]bool{
		"completed": completed,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) (string, error) {
	var out map[string]string
	if err := c.do(ctx, http.MethodDelete, c.tasksPath(userID, taskID), nil, &out); err != nil {
		return "", err
	}
	return out["message"], nil
}

func (c *Client) tasksPath(userID, taskID string) string {
	p := fmt.Sprintf("/api/users/%s/tasks", url.PathEscape(userID))
	if taskID != "" {
		p += "/" + url.PathEscape(taskID)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, apiErr); err != nil && len(data) > 0 {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
