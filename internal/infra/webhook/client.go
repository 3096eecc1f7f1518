package webhook

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

	"github.com/yanqian/ai-tripplanner/internal/domain/export"
	"github.com/yanqian/ai-tripplanner/internal/infra/httpx"
)

const maxResponseBytes = 64 << 10

// Client posts exports to an automation webhook such as n8n.
type Client struct {
	url        string
	httpClient *http.Client
	retry      httpx.RetryPolicy
}

// NewClient builds a webhook client.
func NewClient(url string, timeout time.Duration, retry httpx.RetryPolicy) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("webhook url cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: url, httpClient: &http.Client{Timeout: timeout}, retry: retry}, nil
}

// Deliver implements export.Webhook.
func (c *Client) Deliver(ctx context.Context, payload export.Payload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode webhook payload: %w", err)
	}
	resp, err := httpx.Do(ctx, c.httpClient, c.retry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read webhook response: %w", err)
	}
	return string(text), nil
}

var _ export.Webhook = (*Client)(nil)
