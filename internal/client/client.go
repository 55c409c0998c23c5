// Package client talks to the task API over HTTP and unwraps its envelope.
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

	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

const (
	msgFetchTasksFailed = "Failed to fetch tasks"
	msgFetchTaskFailed  = "Failed to fetch task"
	msgCreateFailed     = "Failed to create task"
	msgUpdateFailed     = "Failed to update task"
	msgDeleteFailed     = "Failed to delete task"
)

// TaskInput is the payload for create and update. An empty Status lets the
// server apply its default on create.
type TaskInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      domain.Status `json:"status,omitempty"`
}

// APIError is returned when the server answers with a failure envelope or a
// non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *logger.Logger
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

func (c *Client) ListTasks(ctx context.Context, status domain.Status) ([]domain.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	tasks := []domain.Task{}
	if err := c.do(ctx, http.MethodGet, path, nil, msgFetchTasksFailed, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, msgFetchTaskFailed, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, msgCreateFailed, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, input TaskInput) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), input, msgUpdateFailed, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, msgDeleteFailed, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// do sends one request and decodes the envelope's data into out. fallback is
// the error message used when the server does not supply one.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, fallback string, out interface{}) error {
	start := time.Now()

	var body io.Reader
	var size int
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
		size = len(raw)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	c.logger.Debugw("task_api_request", "method", method, "url", target, "payload_bytes", size)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("task_api_network_error", "method", method, "url", target, "error", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debugw("task_api_response",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"resp_bytes", len(respBody),
	)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if !ok {
			return &APIError{StatusCode: resp.StatusCode, Message: fallback}
		}
		c.logger.Warnw("task_api_parse_error", "url", target, "error", err)
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !ok || !env.Success {
		message := env.Message
		if message == "" {
			message = fallback
		}
		c.logger.Warnw("task_api_bad_status", "url", target, "status", resp.StatusCode, "message", message)
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}
