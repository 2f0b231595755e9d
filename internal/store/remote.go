package store

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

	"github.com/mixelka/emailtriage/pkg/models"
)

// RemoteConfig for the remote store client
type RemoteConfig struct {
	BaseURL string // e.g., http://triage.internal:5000
	APIKey  string // Sent as X-API-Key when set
	Timeout time.Duration
}

// RemoteStore is a Store backed by another triage instance's /store API
type RemoteStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// BatchRequest is the body of a batch call
type BatchRequest struct {
	Op  BatchOp  `json:"op"`
	IDs []string `json:"ids"`
}

// envelope mirrors the API response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewRemoteStore creates a new remote store client
func NewRemoteStore(cfg RemoteConfig) *RemoteStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// List returns all messages
func (c *RemoteStore) List(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.do(ctx, http.MethodGet, "/store/messages", nil, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// Get returns a message by id
func (c *RemoteStore) Get(ctx context.Context, id string) (models.Message, error) {
	var msg models.Message
	if err := c.do(ctx, http.MethodGet, messagePath(id), nil, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// Insert creates a message; the server assigns Seq
func (c *RemoteStore) Insert(ctx context.Context, msg *models.Message) error {
	var created models.Message
	if err := c.do(ctx, http.MethodPost, "/store/messages", msg, &created); err != nil {
		return err
	}
	msg.Seq = created.Seq
	return nil
}

// Update replaces a message
func (c *RemoteStore) Update(ctx context.Context, msg models.Message) error {
	return c.do(ctx, http.MethodPut, messagePath(msg.ID), msg, nil)
}

// Delete removes a message
func (c *RemoteStore) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, messagePath(id), nil, nil)
}

// ApplyBatch forwards the batch; the server applies it atomically
func (c *RemoteStore) ApplyBatch(ctx context.Context, op BatchOp, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/store/messages/batch", BatchRequest{Op: op, IDs: ids}, nil)
}

// Close releases idle connections
func (c *RemoteStore) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *RemoteStore) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("%w: unexpected response (status %d)", ErrUnavailable, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, env.Error)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, env.Error)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s (status %d)", ErrUnavailable, env.Error, resp.StatusCode)
	case !env.Success || resp.StatusCode >= 300:
		return fmt.Errorf("API error: %s (status %d)", env.Error, resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func messagePath(id string) string {
	return "/store/messages/" + url.PathEscape(id)
}
