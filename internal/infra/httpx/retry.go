package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// RetryPolicy bounds retries of outbound collaborator calls.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

// DefaultRetryPolicy is used when a client is built without an explicit policy.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseBackoff: 200 * time.Millisecond}

// StatusError is returned for non-2xx responses. Body is truncated to 4 KiB.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status=%d body=%s", e.Code, e.Body)
}

// Do sends the request built by makeReq, retrying network errors, 429 and 5xx with exponential backoff.
// The caller owns the returned response body.
func Do(ctx context.Context, client *http.Client, policy RetryPolicy, makeReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy
	}
	backoff := policy.BaseBackoff

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := do(client, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == policy.MaxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}

func do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	return resp, nil
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
