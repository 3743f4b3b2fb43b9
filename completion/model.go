// Package completion wraps the hosted language-model API behind a small
// client with an explicit availability sentinel. A client that failed to
// configure at startup stays constructible and reports itself as not ready,
// so the process keeps running in a degraded state instead of crashing.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"
	"github.com/tht-digital/theo-relay/config"
	"go.uber.org/zap"
)

// ErrNotReady is returned by Generate when the client failed to configure
// at startup. Callers should check Ready before generating; this error is
// the backstop for callers that do not.
var ErrNotReady = errors.New("completion client not configured")

// ErrMissingAPIKey marks the specific configuration failure of a missing
// provider API key.
var ErrMissingAPIKey = errors.New("completion API key not set")

// Generator produces a reply for a single user message. It is satisfied by
// *Model and substituted with a deterministic fake in handler tests.
type Generator interface {
	// Ready reports whether the client configured successfully and can
	// serve Generate calls.
	Ready() bool

	// Generate produces reply text for one user message under the fixed
	// system instruction. It performs no retries; any failure is returned
	// to the caller.
	Generate(ctx context.Context, userText string) (string, error)
}

// Model is the completion client. It is either ready (llm is set, err is
// nil) or unavailable (err records why). The zero-value distinction is
// deliberate: an unavailable Model is still a valid value whose Generate
// fails fast, which is how the relay keeps serving status callbacks and
// verification probes with a broken completion configuration.
type Model struct {
	llm     gollm.LLM
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
	err     error
}

// New builds the completion client from configuration. It never fails:
// configuration errors (missing API key, unknown provider) are retained on
// the returned Model, which then reports Ready() == false.
func New(cfg config.LLMConfig, logger *zap.Logger) *Model {
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Error("completion API key not set, running degraded",
			zap.String("provider", cfg.Provider),
			zap.String("model", cfg.Model),
		)
		return &Model{logger: logger, err: ErrMissingAPIKey}
	}

	client, err := gollm.NewLLM(
		gollm.SetProvider(cfg.Provider),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(cfg.APIKey),
	)
	if err != nil {
		logger.Error("failed to configure completion client, running degraded",
			zap.String("provider", cfg.Provider),
			zap.String("model", cfg.Model),
			zap.Error(err),
		)
		return &Model{logger: logger, err: fmt.Errorf("configure completion client: %w", err)}
	}

	client.SetSystemPrompt(config.SystemInstruction, llm.CacheTypeEphemeral)
	logger.Info("completion client configured",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
	)

	return newFromLLM(client, cfg, logger)
}

// NewFromLLM builds a ready Model around an existing LLM client. It exists
// for wiring pre-built clients and test doubles.
func NewFromLLM(client gollm.LLM, cfg config.LLMConfig, logger *zap.Logger) *Model {
	return newFromLLM(client, cfg, logger)
}

func newFromLLM(client gollm.LLM, cfg config.LLMConfig, logger *zap.Logger) *Model {
	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "completion",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("completion circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Model{
		llm:     client,
		breaker: breaker,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Ready reports whether the client configured successfully.
func (m *Model) Ready() bool {
	return m.err == nil
}

// Err returns the retained configuration error, or nil when ready.
func (m *Model) Err() error {
	return m.err
}

// Generate sends one user message to the completion API and returns the
// reply text. The call is bounded by the configured timeout and guarded by
// the circuit breaker; with the breaker open it fails fast without touching
// the network. No retries are performed.
func (m *Model) Generate(ctx context.Context, userText string) (string, error) {
	if m.err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotReady, m.err)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	result, err := m.breaker.Execute(func() (interface{}, error) {
		return m.llm.Generate(ctx, gollm.NewPrompt(userText))
	})
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}

	reply, ok := result.(string)
	if !ok || strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("generate completion: empty reply")
	}
	return reply, nil
}
