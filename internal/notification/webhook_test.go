package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSink_PostsJSONWithToken(t *testing.T) {
	var got Message
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "secret", httpclient.NewStandardClient(time.Second))
	msg := Message{Kind: KindOwnerNotification, To: "owner@portfolio.dev", From: "jo@example.com", Subject: "Hi", Body: "Body"}

	require.NoError(t, sink.Send(context.Background(), msg))
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, msg, got)
}

func TestWebhookSink_Non2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "", httpclient.NewStandardClient(time.Second))
	err := sink.Send(context.Background(), Message{Kind: KindOwnerNotification})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookSink_RespectsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	sink := NewWebhookSink(srv.URL, "", httpclient.NewStandardClient(5*time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := sink.Send(ctx, Message{Kind: KindOwnerNotification})

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWebhookSink_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, "", httpclient.NewStandardClient(time.Second))
	for i := 0; i < 7; i++ {
		assert.Error(t, sink.Send(context.Background(), Message{Kind: KindOwnerNotification}))
	}

	assert.Equal(t, int32(5), calls.Load(), "open breaker must short-circuit further sends")
}
