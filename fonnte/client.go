// Package fonnte wraps the Fonnte WhatsApp send API. The client is the
// single choke point for all outbound text: it never returns an error,
// converting every failure into a logged boolean result, and makes at most
// one delivery attempt per call.
package fonnte

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tht-digital/theo-relay/config"
	"go.uber.org/zap"
)

// maxResponseLog caps how much of the Fonnte response body ends up in logs.
const maxResponseLog = 2048

// Client sends messages through the Fonnte API.
type Client struct {
	token    string
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient builds a Fonnte client from configuration. A missing token is
// tolerated here; Send will fail fast until one is configured.
func NewClient(cfg config.FonnteConfig, logger *zap.Logger) *Client {
	if strings.TrimSpace(cfg.Token) == "" {
		logger.Error("fonnte token not set, outbound sends will fail")
	}

	return &Client{
		token:    cfg.Token,
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Send delivers one message to the given target. It returns true only when
// Fonnte acknowledged the request with a 2xx status. Every failure path is
// logged and reported as false; nothing is retried and no error escapes.
func (c *Client) Send(ctx context.Context, target, message string) bool {
	if strings.TrimSpace(c.token) == "" {
		c.logger.Error("fonnte token not set, cannot send reply",
			zap.String("target", target),
		)
		return false
	}

	form := url.Values{}
	form.Set("target", target)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error("failed to build fonnte request",
			zap.String("target", target),
			zap.Error(err),
		)
		return false
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("failed to send reply via fonnte",
			zap.String("target", target),
			zap.Error(err),
		)
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseLog))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("fonnte rejected send",
			zap.String("target", target),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return false
	}

	c.logger.Info("sent reply via fonnte",
		zap.String("target", target),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("response", body),
	)
	return true
}
