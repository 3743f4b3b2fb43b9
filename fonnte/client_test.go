package fonnte

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tht-digital/theo-relay/config"
	"go.uber.org/zap/zaptest"
)

func testConfig(endpoint string) config.FonnteConfig {
	return config.FonnteConfig{
		Token:    "test-token",
		Endpoint: endpoint,
		Timeout:  5 * time.Second,
	}
}

func TestSend_Success(t *testing.T) {
	var gotAuth, gotTarget, gotMessage, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotTarget = r.PostFormValue("target")
		gotMessage = r.PostFormValue("message")
		w.Write([]byte(`{"status":true}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zaptest.NewLogger(t))
	ok := c.Send(context.Background(), "628123", "Tonsilitis adalah...")

	assert.True(t, ok)
	assert.Equal(t, "test-token", gotAuth)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "628123", gotTarget)
	assert.Equal(t, "Tonsilitis adalah...", gotMessage)
}

func TestSend_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zaptest.NewLogger(t))
	assert.False(t, c.Send(context.Background(), "628123", "halo"))
}

func TestSend_MissingToken(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = ""
	c := NewClient(cfg, zaptest.NewLogger(t))

	assert.False(t, c.Send(context.Background(), "628123", "halo"))
	assert.Zero(t, requests, "missing token must not reach the network")
}

func TestSend_TransportError(t *testing.T) {
	// Point at a closed server so the POST fails at the transport layer.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(testConfig(srv.URL), zaptest.NewLogger(t))
	assert.False(t, c.Send(context.Background(), "628123", "halo"))
}

func TestSend_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(testConfig(srv.URL), zaptest.NewLogger(t))
	assert.False(t, c.Send(ctx, "628123", "halo"))
}
