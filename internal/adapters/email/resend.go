package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNoRecipients is returned when a request has no To addresses.
var ErrNoRecipients = errors.New("email has no recipients")

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

var _ Sender = (*ResendSender)(nil)

// NewResendSender creates a new ResendSender with the given API key and default addresses.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		replyTo: replyTo,
	}
}

// Send sends a single email via Resend.
// PRE: req has at least one recipient and a subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}

	sent, err := s.client.Emails.SendWithContext(ctx, s.buildParams(req))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", req.To, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	slog.Info("resend_sent", "message_id", sent.Id, "to", req.To, "attachments", len(req.Attachments))
	return SendResult{
		MessageID: sent.Id,
		SentAt:    time.Now(),
	}, nil
}

func (s *ResendSender) buildParams(req SendRequest) *resend.SendEmailRequest {
	from := req.From
	if from == "" {
		from = s.from
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		ReplyTo: s.replyTo,
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}
	for _, a := range req.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Content:     a.Content,
			Filename:    a.Filename,
			ContentType: a.ContentType,
		})
	}
	return params
}
