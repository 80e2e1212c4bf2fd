package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender is a no-op email sender for development and testing.
// It logs sends and keeps the last request but does not deliver anything.
type NoopSender struct {
	mu   sync.Mutex
	last *SendRequest
}

var _ Sender = (*NoopSender)(nil)

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject, "attachments", len(req.Attachments))
	s.mu.Lock()
	s.last = &req
	s.mu.Unlock()
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Last returns the most recent request, if any.
func (s *NoopSender) Last() (SendRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return SendRequest{}, false
	}
	return *s.last, true
}
