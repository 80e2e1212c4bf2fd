package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"evenex/internal/adapters/http/perf"
	"evenex/internal/domain/calendar"
	eventDomain "evenex/internal/domain/event"
)

// Calendar errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrEncodeFailed  = errors.New("failed to generate calendar")
)

// EventLookup resolves an event by its slug.
// GetBySlug returns event.ErrNotFound when nothing matches.
type EventLookup interface {
	GetBySlug(ctx context.Context, slug string) (eventDomain.Event, error)
}

// GetEventCalendarInput carries input for the calendar download.
type GetEventCalendarInput struct {
	Slug   string // may carry a trailing ".ics"
	Origin string // scheme://host used to build the event URL
}

// GetEventCalendarDeps holds dependencies for GetEventCalendar.
type GetEventCalendarDeps struct {
	Events      EventLookup
	Encoder     *calendar.Encoder
	DisplayZone *time.Location  // nil renders the stored instants unchanged
	Perf        *perf.Collector // optional
}

// ExecuteGetEventCalendar resolves an event and renders its calendar artifact in memory.
// PRE: deps.Events and deps.Encoder are set
// POST: returns the artifact, ErrEventNotFound, or an error wrapping ErrEncodeFailed or the lookup cause
func ExecuteGetEventCalendar(ctx context.Context, input GetEventCalendarInput, deps GetEventCalendarDeps) (calendar.Artifact, error) {
	_, artifact, err := resolveEventCalendar(ctx, input, deps)
	return artifact, err
}

func resolveEventCalendar(ctx context.Context, input GetEventCalendarInput, deps GetEventCalendarDeps) (eventDomain.Event, calendar.Artifact, error) {
	slug := strings.TrimSuffix(strings.TrimSpace(input.Slug), calendar.FileExtension)
	if slug == "" {
		return eventDomain.Event{}, calendar.Artifact{}, ErrEventNotFound
	}

	ev, err := deps.Events.GetBySlug(ctx, slug)
	if errors.Is(err, eventDomain.ErrNotFound) {
		return eventDomain.Event{}, calendar.Artifact{}, ErrEventNotFound
	}
	if err != nil {
		return eventDomain.Event{}, calendar.Artifact{}, fmt.Errorf("lookup event %q: %w", slug, err)
	}

	in := buildCalendarInput(ev, ev.ServerLocation(), EventURL(input.Origin, ev), deps.DisplayZone)

	start := time.Now()
	body, err := deps.Encoder.Encode(in)
	deps.Perf.Since(perf.KindEncode, "calendar.Encode", start)
	if err != nil {
		return ev, calendar.Artifact{}, fmt.Errorf("%w: event %s: %w", ErrEncodeFailed, ev.ID, err)
	}

	slog.Debug("calendar_encoded", "event_id", ev.ID, "slug", ev.Slug, "bytes", len(body))
	return ev, calendar.Artifact{
		Filename:    calendar.Filename(ev.Slug, ev.Title),
		ContentType: calendar.ContentType,
		Body:        body,
	}, nil
}
