package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tht-digital/theo-relay/config"
	"github.com/tht-digital/theo-relay/server/handlers"
	"github.com/tht-digital/theo-relay/server/metrics"
	"github.com/tht-digital/theo-relay/server/mocks"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T, generator *mocks.MockGenerator, sender *mocks.MockSender) *Router {
	t.Helper()
	logger := zaptest.NewLogger(t)
	m := metrics.NewMetrics()
	webhook := handlers.NewWebhookHandler(generator, sender, m, logger)
	return NewRouter(config.DefaultConfig(), webhook, m, logger)
}

// TestRouter_EndToEnd exercises the full HTTP surface through the router
// and middleware stack rather than the bare handler.
func TestRouter_EndToEnd(t *testing.T) {
	sender := mocks.NewMockSender()
	generator := mocks.NewMockGenerator(func(ctx context.Context, userText string) (string, error) {
		return "Tonsilitis adalah...", nil
	})
	router := newTestRouter(t, generator, sender)

	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("liveness root", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics exposition", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("webhook verification", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/webhook")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("webhook relay round trip", func(t *testing.T) {
		body, err := json.Marshal(handlers.InboundEvent{
			Sender:  "628123",
			Message: "apa itu tonsilitis?",
		})
		require.NoError(t, err)

		resp, err := http.Post(srv.URL+"/webhook", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		sent := sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "628123", sent[0].Target)
		assert.Equal(t, "Tonsilitis adalah...", sent[0].Message)
	})

	t.Run("unsupported method", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/webhook", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestServer_StartAndShutdown(t *testing.T) {
	sender := mocks.NewMockSender()
	router := newTestRouter(t, mocks.NewMockGenerator(nil), sender)

	cfg := config.DefaultConfig().Server
	cfg.Port = 0 // Any free port; we only exercise the lifecycle.

	srv := NewServer(cfg, router, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	cancel()
	assert.NoError(t, <-errCh)
}
