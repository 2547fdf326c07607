package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/quartergroup/survey/backend/internal/validation"
)

func newTestDispatcher(db *gorm.DB, endpoint string, development bool) *DispatchService {
	log := NewSecurityLogService(db, "")
	limiter := NewRateLimitService(db, log)
	return NewDispatchService(endpoint, limiter, log, 3, time.Minute, 5*time.Second, development)
}

func TestDispatch_SuccessfulDelivery(t *testing.T) {
	var gotContentType string
	var gotBody validation.Record
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(ServerAck{Success: true})
	}))
	defer upstream.Close()

	db := setupTestDB(t)
	svc := newTestDispatcher(db, upstream.URL, false)

	ack, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{"store": "iL", "rating": "4"})
	assert.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Equal(t, "iL", gotBody["store"])
	// The upstream acceptor cannot answer a CORS preflight, so the request
	// must go out without a Content-Type header.
	assert.Empty(t, gotContentType)
}

func TestDispatch_UpstreamErrorStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	db := setupTestDB(t)
	svc := newTestDispatcher(db, upstream.URL, false)

	_, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{})
	var de *DispatchError
	assert.ErrorAs(t, err, &de)
	assert.Contains(t, de.Cause, "500")
}

func TestDispatch_UpstreamRejection(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ServerAck{Success: false, Error: "quota exceeded"})
	}))
	defer upstream.Close()

	db := setupTestDB(t)
	svc := newTestDispatcher(db, upstream.URL, false)

	_, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{})
	var de *DispatchError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, "quota exceeded", de.Cause)
}

func TestDispatch_RateLimitShortCircuitsNetwork(t *testing.T) {
	var calls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(ServerAck{Success: true})
	}))
	defer upstream.Close()

	db := setupTestDB(t)
	svc := newTestDispatcher(db, upstream.URL, false)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{})
		assert.NoError(t, err)
	}

	_, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, calls)
}

func TestDispatch_DevelopmentStubWithoutEndpoint(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDispatcher(db, "", true)

	ack, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{"rating": "3"})
	assert.NoError(t, err)
	assert.True(t, ack.Success)
}

func TestDispatch_MissingEndpointFailsOutsideDevelopment(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestDispatcher(db, "", false)

	_, err := svc.Submit(context.Background(), RequestMeta{}, validation.Record{})
	var de *DispatchError
	assert.ErrorAs(t, err, &de)
}
