package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/ai-tripplanner/internal/infra/config"
)

const retryBodyLimit = 1 << 20

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// withConflictRetry replays POST requests whose handler answered 409, which the trip
// service returns when another replica committed the same trip first.
func withConflictRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || r.Method != http.MethodPost {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := readRequestBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			if attempt > 1 {
				timer := time.NewTimer(cfg.BaseBackoff * time.Duration(1<<(attempt-2)))
				select {
				case <-r.Context().Done():
					timer.Stop()
					http.Error(w, r.Context().Err().Error(), http.StatusServiceUnavailable)
					return
				case <-timer.C:
				}
			}

			recorder := newBufferedResponse()
			replay := r.Clone(r.Context())
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))

			handler.ServeHTTP(recorder, replay)
			if recorder.status != http.StatusConflict || attempt == cfg.MaxAttempts {
				recorder.flushTo(w)
				return
			}
			logger.Warn("trip conflict, replaying request", "path", r.URL.Path, "attempt", attempt)
		}
	})
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// bufferedResponse holds a handler's output until the retry loop decides to keep it.
type bufferedResponse struct {
	header    http.Header
	body      bytes.Buffer
	status    int
	wroteHead bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHead {
		return
	}
	b.status = status
	b.wroteHead = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, values := range b.header {
		dst[k] = append([]string(nil), values...)
	}
	w.WriteHeader(b.status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
