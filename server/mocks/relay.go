package mocks

import (
	"context"
	"sync"
)

// SentMessage records one call to MockSender.Send.
type SentMessage struct {
	Target  string
	Message string
}

// MockSender implements the handlers.Sender interface. It records every
// send so tests can assert the exactly-one-attempt invariant, and returns
// a configurable result.
type MockSender struct {
	mu     sync.Mutex
	sent   []SentMessage
	Result bool
}

// NewMockSender creates a MockSender that reports success.
func NewMockSender() *MockSender {
	return &MockSender{Result: true}
}

// Send records the call and returns the configured result.
func (s *MockSender) Send(ctx context.Context, target, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentMessage{Target: target, Message: message})
	return s.Result
}

// Sent returns a copy of all recorded sends.
func (s *MockSender) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	out := make([]SentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// MockGenerator implements the completion.Generator interface with a
// configurable readiness flag and generate function.
type MockGenerator struct {
	ReadyVal     bool
	GenerateFunc func(ctx context.Context, userText string) (string, error)
}

// NewMockGenerator creates a ready MockGenerator with the given generate
// function. If generateFunc is nil, Generate returns an empty string.
func NewMockGenerator(generateFunc func(ctx context.Context, userText string) (string, error)) *MockGenerator {
	return &MockGenerator{
		ReadyVal:     true,
		GenerateFunc: generateFunc,
	}
}

// Ready reports the configured readiness.
func (g *MockGenerator) Ready() bool {
	return g.ReadyVal
}

// Generate delegates to GenerateFunc when set.
func (g *MockGenerator) Generate(ctx context.Context, userText string) (string, error) {
	if g.GenerateFunc != nil {
		return g.GenerateFunc(ctx, userText)
	}
	return "", nil
}
