// Package handlers provides the HTTP handlers for the Theo webhook relay.
// The webhook handler implements the whole relay contract: it discriminates
// status callbacks from genuine inbound messages, calls the completion API
// for real messages, and relays the reply (or a fixed fallback) back to the
// sender through the outbound send client.
//
// The package follows these design principles:
//  1. Consistent error handling using the errors package
//  2. Structured logging with request IDs
//  3. Injected interface-typed dependencies so tests substitute fakes
//  4. No failure escapes the handler; the caller always gets the fixed
//     status/message envelope and the user always gets some reply
package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/tht-digital/theo-relay/completion"
	"github.com/tht-digital/theo-relay/errors"
	"github.com/tht-digital/theo-relay/server/metrics"
	"github.com/tht-digital/theo-relay/server/middleware"
	"go.uber.org/zap"
)

// Fixed response texts of the webhook contract.
const (
	verificationMessage = "Webhook is active and ready for POST requests."
	statusAckMessage    = "Status update received"
	badRequestMessage   = "Request must be JSON"
	notAllowedMessage   = "Method not allowed"
)

// Fixed fallback replies sent to the user when no generated answer is
// possible. The user is never left without a response once their payload
// was classified as a real message.
const (
	// FallbackUnavailable is sent when the completion client failed to
	// configure at startup.
	FallbackUnavailable = "Maaf, layanan chatbot sedang mengalami gangguan. Silakan coba lagi nanti."

	// FallbackError is sent when a completion call fails.
	FallbackError = "Maaf, terjadi kesalahan saat memproses permintaan Anda."
)

// Sender delivers one outbound message. It never returns an error: delivery
// failures are logged by the implementation and reported as false.
type Sender interface {
	Send(ctx context.Context, target, message string) bool
}

// InboundEvent is the payload Fonnte posts to the webhook. A present,
// non-empty Message marks a genuine chat message; its absence marks a
// delivery/status callback. Device and Name ride along for logging only.
type InboundEvent struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Device  string `json:"device,omitempty"`
	Name    string `json:"name,omitempty"`
}

// WebhookHandler handles Fonnte webhook callbacks.
type WebhookHandler struct {
	generator completion.Generator
	sender    Sender
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewWebhookHandler creates a webhook handler with the given completion
// client, outbound sender, metrics, and logger. All parameters must be
// non-nil; an unavailable completion client is still a valid Generator.
func NewWebhookHandler(generator completion.Generator, sender Sender, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		generator: generator,
		sender:    sender,
		metrics:   m,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
//
// GET is the platform's read-only verification probe and is always
// acknowledged. POST carries content and goes through classification. Any
// other method gets the fixed 405 envelope.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.logger.Info("webhook verification probe",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
		errors.WriteResponse(w, http.StatusOK, errors.Response{
			Status:  errors.StatusSuccess,
			Message: verificationMessage,
		})

	case http.MethodPost:
		h.handleEvent(w, r)

	default:
		errors.ErrorWithType(w, notAllowedMessage, errors.BadRequestError, http.StatusMethodNotAllowed)
	}
}

// handleEvent processes one content-bearing callback. Classification comes
// first; only payloads carrying a non-empty message ever reach the
// completion or send legs.
func (h *WebhookHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var event InboundEvent
	if !decodeJSON(r, &event) {
		h.metrics.WebhookEventsTotal.WithLabelValues("invalid").Inc()
		h.logger.Warn("webhook POST without JSON body",
			zap.String("request_id", requestID),
			zap.String("content_type", r.Header.Get("Content-Type")),
		)
		errors.WriteError(w, errors.NewBadRequestError(requestID, badRequestMessage))
		return
	}

	if event.Message == "" {
		h.metrics.WebhookEventsTotal.WithLabelValues("status").Inc()
		h.logger.Info("status callback received, ignoring",
			zap.String("request_id", requestID),
			zap.String("device", event.Device),
		)
		errors.WriteResponse(w, http.StatusOK, errors.Response{
			Status:  errors.StatusOK,
			Message: statusAckMessage,
		})
		return
	}

	h.metrics.WebhookEventsTotal.WithLabelValues("message").Inc()
	h.logger.Info("inbound message received",
		zap.String("request_id", requestID),
		zap.String("sender", event.Sender),
		zap.Int("message_length", len(event.Message)),
	)

	if !h.generator.Ready() {
		h.logger.Error("completion client unavailable, sending fallback",
			zap.String("request_id", requestID),
			zap.String("sender", event.Sender),
		)
		h.sendReply(r, event.Sender, FallbackUnavailable, "fallback")
		errors.WriteError(w, errors.NewUnavailableError(requestID, nil))
		return
	}

	reply, err := h.generator.Generate(r.Context(), event.Message)
	if err != nil {
		h.metrics.CompletionsTotal.WithLabelValues("error").Inc()
		errors.LogError(h.logger, errors.NewUpstreamError(requestID, "completion failed", err), requestID)
		h.sendReply(r, event.Sender, FallbackError, "fallback")
		errors.WriteError(w, errors.NewInternalError(requestID, err))
		return
	}

	h.metrics.CompletionsTotal.WithLabelValues("success").Inc()
	h.logger.Info("completion generated",
		zap.String("request_id", requestID),
		zap.Int("reply_length", len(reply)),
	)

	// Delivery success or failure is logged but does not change the HTTP
	// response: generation already succeeded.
	h.sendReply(r, event.Sender, reply, "reply")

	errors.WriteResponse(w, http.StatusOK, errors.Response{Status: errors.StatusSuccess})
}

// sendReply pushes text through the outbound sender, recording the result.
// It never fails upward.
func (h *WebhookHandler) sendReply(r *http.Request, target, text, kind string) {
	requestID := middleware.GetRequestID(r.Context())

	if h.sender.Send(r.Context(), target, text) {
		h.metrics.SendsTotal.WithLabelValues(kind, "success").Inc()
		return
	}

	h.metrics.SendsTotal.WithLabelValues(kind, "failure").Inc()
	errors.LogError(h.logger, errors.NewSendError(requestID, target, nil), requestID)
}

// decodeJSON reports whether the request carries a JSON content type and a
// decodable JSON body. Anything else never reaches classification.
func decodeJSON(r *http.Request, v interface{}) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return false
	}
	return json.NewDecoder(r.Body).Decode(v) == nil
}
