// Package backend is the HTTP client for the prediction and interpretation service
package backend

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

	"github.com/google/uuid"
	"github.com/kartoza/ecmo-explorer/internal/models"
	"github.com/kartoza/ecmo-explorer/internal/trajectory"
)

const (
	predictPath   = "/api/predict"
	interpretPath = "/api/interpret"
	healthPath    = "/api/health"

	// RequestIDHeader carries a per-call id so backend logs can be correlated
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 8 << 20
)

// ErrInvalidResponse is returned when a 2xx body cannot be decoded
var ErrInvalidResponse = errors.New("invalid backend response")

// NetworkError wraps a transport failure
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response from the backend
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client calls the prediction backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient uses a client with a 60s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict requests the trajectory for one parameter edit
func (c *Client) Predict(ctx context.Context, req models.PredictRequest) ([]trajectory.Point, error) {
	var points []trajectory.Point
	if err := c.post(ctx, predictPath, req, &points, "Failed to fetch predictions"); err != nil {
		return nil, err
	}
	return points, nil
}

// Interpret requests a narrative explanation of a trajectory
func (c *Client) Interpret(ctx context.Context, req models.InterpretRequest) (string, error) {
	var resp models.InterpretResponse
	if err := c.post(ctx, interpretPath, req, &resp, "Failed to get interpretation"); err != nil {
		return "", err
	}
	return resp.Interpretation, nil
}

// Health probes the backend and returns its reported status
func (c *Client) Health(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return "", fmt.Errorf("build health request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	var resp models.HealthResponse
	if err := c.do(httpReq, "health", &resp, "Backend unhealthy"); err != nil {
		return "", err
	}
	if resp.Status == "" {
		resp.Status = "ok"
	}
	return resp.Status, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}, fallback string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	return c.do(httpReq, path, out, fallback)
}

func (c *Client) do(req *http.Request, op string, out interface{}, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fallback
		var errResp models.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, op, err)
	}
	return nil
}
