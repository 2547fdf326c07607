package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quartergroup/survey/backend/internal/logger"
	"github.com/quartergroup/survey/backend/internal/models"
	"github.com/quartergroup/survey/backend/internal/validation"
)

// ActionFormSubmission names the dispatcher's own throttle window.
const ActionFormSubmission = "form_submission"

// ErrRateLimited is returned before any network call when the dispatch
// action window is exhausted.
var ErrRateLimited = errors.New("too many requests, try again later")

// DispatchError describes a failed delivery: transport failure, non-2xx
// status, or an application-level rejection. Submissions are never retried
// automatically — without an idempotency key beyond the CSRF token, a retry
// could duplicate the remote side effect.
type DispatchError struct {
	Cause string
}

func (e *DispatchError) Error() string {
	return e.Cause
}

// ServerAck is the upstream acknowledgement payload.
type ServerAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DispatchService performs the outbound submission request behind its own
// named-action rate limiter.
type DispatchService struct {
	endpoint    string
	limiter     *RateLimitService
	log         *SecurityLogService
	client      *http.Client
	maxAttempts int
	window      time.Duration
	development bool
}

// NewDispatchService wires the dispatcher. The client timeout is explicit:
// the transport default is unbounded and an in-flight submission should not
// hang the caller indefinitely.
func NewDispatchService(endpoint string, limiter *RateLimitService, log *SecurityLogService,
	maxAttempts int, window, timeout time.Duration, development bool) *DispatchService {
	return &DispatchService{
		endpoint:    endpoint,
		limiter:     limiter,
		log:         log,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		window:      window,
		development: development,
	}
}

// Submit delivers the record upstream exactly once. The record is serialized
// as a plain body without a Content-Type header: the receiving endpoint
// cannot answer a CORS preflight, so structured content types are off-limits
// for the browser path and the server mirrors that contract.
func (s *DispatchService) Submit(ctx context.Context, meta RequestMeta, record validation.Record) (*ServerAck, error) {
	if !s.limiter.Allow(ActionFormSubmission, s.maxAttempts, s.window) {
		return nil, ErrRateLimited
	}

	if s.endpoint == "" {
		if s.development {
			// Development stand-in for the upstream acceptor.
			logger.WithFields(map[string]interface{}{"record_fields": len(record)}).
				Debug("development mode: skipping upstream dispatch")
			return &ServerAck{Success: true}, nil
		}
		return nil, s.fail(meta, "submission endpoint is not configured", nil)
	}

	body, err := json.Marshal(record)
	if err != nil {
		return nil, s.fail(meta, fmt.Sprintf("serialize submission: %v", err), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, s.fail(meta, fmt.Sprintf("build submission request: %v", err), nil)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.fail(meta, fmt.Sprintf("send submission: %v", err), map[string]interface{}{
			"dataSize": len(body),
		})
	}
	defer resp.Body.Close()

	if s.development {
		logger.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"url":    s.endpoint,
		}).Debug("upstream response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, s.fail(meta, fmt.Sprintf("upstream returned status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)), map[string]interface{}{
			"status": resp.StatusCode,
		})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, s.fail(meta, fmt.Sprintf("read upstream response: %v", err), nil)
	}

	var ack ServerAck
	if err := json.Unmarshal(raw, &ack); err != nil {
		return nil, s.fail(meta, fmt.Sprintf("parse upstream response: %v", err), nil)
	}
	if !ack.Success {
		cause := ack.Error
		if cause == "" {
			cause = "upstream rejected the submission"
		}
		return nil, s.fail(meta, cause, nil)
	}

	return &ack, nil
}

// fail journals the dispatch error (forwarded to the remote sink when one is
// configured) and returns the user-facing DispatchError.
func (s *DispatchService) fail(meta RequestMeta, cause string, extra map[string]interface{}) error {
	details := map[string]interface{}{
		"context": "dispatch",
		"message": cause,
	}
	for k, v := range extra {
		details[k] = v
	}
	s.log.RecordAndForward(meta, models.EventAPIError, models.LevelError, details)

	return &DispatchError{Cause: cause}
}
