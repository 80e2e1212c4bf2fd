package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	emailAdapter "evenex/internal/adapters/email"
	"evenex/internal/adapters/http/perf"
	"evenex/internal/adapters/markdown"
	"evenex/internal/domain/calendar"
)

// ErrInvalidRecipient is returned when the invite address cannot be parsed.
var ErrInvalidRecipient = errors.New("a valid email address is required")

var inviteTemplate = template.Must(template.New("invite").Parse(`<!doctype html>
<html><body style="font-family:sans-serif;color:#1f2937">
<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>You're registered for <strong>{{.Title}}</strong>.</p>
<p>{{.When}}<br>{{.Location}}</p>
{{if .URL}}<p><a href="{{.URL}}">View event</a></p>{{end}}
<div>{{.Description}}</div>
<p style="color:#6b7280">The attached {{.Filename}} adds this event to your calendar.</p>
</body></html>`))

type inviteView struct {
	Name        string
	Title       string
	When        string
	Location    string
	URL         string
	Description template.HTML
	Filename    string
}

// SendCalendarInviteInput carries input for the invite mail.
type SendCalendarInviteInput struct {
	Slug   string
	Email  string
	Name   string
	Origin string
}

// SendCalendarInviteDeps holds dependencies for SendCalendarInvite.
type SendCalendarInviteDeps struct {
	Events      EventLookup
	Encoder     *calendar.Encoder
	Sender      emailAdapter.Sender
	DisplayZone *time.Location
	Perf        *perf.Collector // optional
	FromAddress string          // optional; the sender's default is used when empty
}

// ExecuteSendCalendarInvite emails the event's calendar artifact to one attendee.
// PRE: deps.Events, deps.Encoder and deps.Sender are set
// POST: one email with a single .ics attachment is handed to the sender, or an error is returned
func ExecuteSendCalendarInvite(ctx context.Context, input SendCalendarInviteInput, deps SendCalendarInviteDeps) (emailAdapter.SendResult, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return emailAdapter.SendResult{}, ErrInvalidRecipient
	}

	ev, artifact, err := resolveEventCalendar(ctx, GetEventCalendarInput{Slug: input.Slug, Origin: input.Origin}, GetEventCalendarDeps{
		Events:      deps.Events,
		Encoder:     deps.Encoder,
		DisplayZone: deps.DisplayZone,
		Perf:        deps.Perf,
	})
	if err != nil {
		return emailAdapter.SendResult{}, err
	}

	start := ev.StartDate
	if deps.DisplayZone != nil {
		start = start.In(deps.DisplayZone)
	}
	var body bytes.Buffer
	err = inviteTemplate.Execute(&body, inviteView{
		Name:        strings.TrimSpace(input.Name),
		Title:       ev.Title,
		When:        start.Format("Monday 2 January 2006, 3:04 PM"),
		Location:    ev.ServerLocation(),
		URL:         EventURL(input.Origin, ev),
		Description: markdown.ToHTML(ev.Description),
		Filename:    artifact.Filename,
	})
	if err != nil {
		return emailAdapter.SendResult{}, fmt.Errorf("render invite: %w", err)
	}

	res, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{addr.Address},
		From:    deps.FromAddress,
		Subject: "You're going to " + ev.Title,
		HTML:    body.String(),
		Attachments: []emailAdapter.Attachment{{
			Filename:    artifact.Filename,
			ContentType: artifact.ContentType,
			Content:     []byte(artifact.Body),
		}},
	})
	if err != nil {
		return emailAdapter.SendResult{}, fmt.Errorf("send invite for %s: %w", ev.Slug, err)
	}

	slog.Info("calendar_invite_sent", "event_id", ev.ID, "slug", ev.Slug, "message_id", res.MessageID)
	return res, nil
}
