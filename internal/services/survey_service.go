package services

import (
	"context"
	"fmt"

	"github.com/quartergroup/survey/backend/internal/metrics"
	"github.com/quartergroup/survey/backend/internal/sanitize"
	"github.com/quartergroup/survey/backend/internal/validation"
)

// Post-submission views.
const (
	ViewThankYou       = "thank_you"
	ViewReviewRedirect = "review_redirect"
)

// ReviewRatingThreshold is the lowest rating that routes to the
// review-redirect view.
const ReviewRatingThreshold = 4

// SubmitRequest is the raw submission as collected by the UI shell.
type SubmitRequest struct {
	Entries []validation.Entry
	Meta    RequestMeta
}

// Outcome tells the UI shell which post-submission view to render.
type Outcome struct {
	View          string            `json:"view"`
	Rating        int               `json:"rating"`
	ReviewURL     string            `json:"reviewUrl,omitempty"`
	ReviewComment string            `json:"reviewComment,omitempty"`
	Record        validation.Record `json:"record"`
}

// BlockedError is returned when the anti-abuse gate denies a submission.
type BlockedError struct {
	Reason      string
	WaitSeconds int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("submission blocked (%s), retry in %d seconds", e.Reason, e.WaitSeconds)
}

// SurveyService runs the submission pipeline: required-field check, collect,
// gate, CSRF attach, record, dispatch, view selection.
type SurveyService struct {
	validator  *validation.Validator
	log        *SecurityLogService
	sessions   *SessionService
	tokens     *TokenService
	dispatcher *DispatchService
	reviewURLs map[string]string
}

// NewSurveyService wires the pipeline's collaborators.
func NewSurveyService(log *SecurityLogService, sessions *SessionService, tokens *TokenService,
	dispatcher *DispatchService, reviewURLs map[string]string) *SurveyService {
	return &SurveyService{
		validator:  validation.NewValidator(),
		log:        log,
		sessions:   sessions,
		tokens:     tokens,
		dispatcher: dispatcher,
		reviewURLs: reviewURLs,
	}
}

// Submit runs one submission attempt end to end. Failures are typed:
// *validation.ValidationError, *BlockedError, ErrRateLimited, or
// *DispatchError.
func (s *SurveyService) Submit(ctx context.Context, req SubmitRequest) (*Outcome, error) {
	// Required-field policy sits in front of the collector: a missing store
	// or rating never reaches sanitization.
	if err := checkRequired(req.Entries); err != nil {
		metrics.IncValidationFailure()
		return nil, err
	}

	collector := validation.NewCollector(sanitize.New(s.log.Bound(req.Meta)), s.validator)
	record, err := collector.Collect(req.Entries)
	if err != nil {
		metrics.IncValidationFailure()
		return nil, err
	}

	gate := s.sessions.CanSubmit()
	if !gate.Allowed {
		metrics.IncBlocked()
		return nil, &BlockedError{Reason: gate.Reason, WaitSeconds: gate.WaitSeconds}
	}

	record["csrfToken"] = s.tokens.GetToken()

	// Recorded before dispatch: a failed delivery still counts against the
	// window, matching the double-click deterrent this gate exists for.
	s.sessions.RecordSubmission()

	if _, err := s.dispatcher.Submit(ctx, req.Meta, record); err != nil {
		metrics.IncDispatchFailure()
		return nil, err
	}
	metrics.IncAccepted()

	return s.outcome(record), nil
}

// checkRequired enforces the store and rating selections.
func checkRequired(entries []validation.Entry) error {
	present := map[string]bool{}
	for _, e := range entries {
		if e.Value != "" {
			present[e.Key] = true
		}
	}

	fields := map[string][]string{}
	if !present["store"] {
		fields["store"] = []string{"please select a store"}
	}
	if !present["rating"] {
		fields["rating"] = []string{"please select a rating"}
	}
	if len(fields) > 0 {
		return &validation.ValidationError{Fields: fields}
	}
	return nil
}

// outcome branches the post-submission view on the rating value.
func (s *SurveyService) outcome(record validation.Record) *Outcome {
	rating := record.Rating()
	out := &Outcome{View: ViewThankYou, Rating: rating, Record: record}

	if rating >= ReviewRatingThreshold {
		out.View = ViewReviewRedirect
		out.ReviewURL = s.reviewURLs[record.Store()]
		out.ReviewComment = record.ReviewComment()
	}
	return out
}

// Sessions exposes the gate for the session endpoints.
func (s *SurveyService) Sessions() *SessionService {
	return s.sessions
}

// Tokens exposes the token store for the token endpoint.
func (s *SurveyService) Tokens() *TokenService {
	return s.tokens
}
