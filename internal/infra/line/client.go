package line

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
)

// DefaultAPIBase is the LINE Messaging API base URL
const DefaultAPIBase = "https://api.line.me/v2/bot"

var (
	// ErrEmptyReplyToken is returned when replying without a reply token
	ErrEmptyReplyToken = errors.New("line: empty reply token")

	// ErrEmptyTarget is returned when pushing without a target id
	ErrEmptyTarget = errors.New("line: empty push target")
)

// APIError is returned for non-2xx responses from the LINE API
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("line: %s HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client is the LINE Messaging API client
type Client struct {
	accessToken string
	apiBase     string
	httpClient  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithAPIBase overrides the API base URL
func WithAPIBase(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new LINE client authenticated with a channel access token
func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		accessToken: accessToken,
		apiBase:     DefaultAPIBase,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reply sends text messages using a reply token
func (c *Client) Reply(ctx context.Context, replyToken string, texts ...string) error {
	if strings.TrimSpace(replyToken) == "" {
		return ErrEmptyReplyToken
	}
	req := ReplyRequest{ReplyToken: replyToken, Messages: textMessages(texts)}
	return c.post(ctx, "/message/reply", req)
}

// Push sends text messages to a user, group or room
func (c *Client) Push(ctx context.Context, to string, texts ...string) error {
	if strings.TrimSpace(to) == "" {
		return ErrEmptyTarget
	}
	req := PushRequest{To: to, Messages: textMessages(texts)}
	return c.post(ctx, "/message/push", req)
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func textMessages(texts []string) []TextMessage {
	msgs := make([]TextMessage, 0, len(texts))
	for _, t := range texts {
		msgs = append(msgs, NewTextMessage(t))
	}
	return msgs
}
