package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	eventDomain "evenex/internal/domain/event"
)

// Event creation errors.
var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrSlugTaken    = errors.New("could not allocate a unique event slug")
)

const (
	slugSuffixLen  = 8
	slugMaxAttempt = 3
)

// EventStoreForOrchestrator defines the store interface needed by event orchestrators.
type EventStoreForOrchestrator interface {
	Save(ctx context.Context, e eventDomain.Event) error
	GetBySlug(ctx context.Context, slug string) (eventDomain.Event, error)
}

// CreateEventInput carries input for creating an event.
type CreateEventInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	LocationType string    `json:"locationType"`
	Venue        string    `json:"venue"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	Capacity     int       `json:"capacity"`
	TicketType   string    `json:"ticketType"`
	OrganizerID  string    `json:"organizerId"`
}

// CreateEventDeps holds dependencies for CreateEvent.
type CreateEventDeps struct {
	Events     EventStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateEvent validates and stores a new event under a generated slug.
// PRE: deps are all set
// POST: returns the saved event, an error wrapping ErrInvalidEvent, ErrSlugTaken, or a storage error
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (eventDomain.Event, error) {
	ev := eventDomain.Event{
		ID:           deps.GenerateID(),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Category:     strings.TrimSpace(input.Category),
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		LocationType: input.LocationType,
		Venue:        strings.TrimSpace(input.Venue),
		Address:      strings.TrimSpace(input.Address),
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		Country:      strings.TrimSpace(input.Country),
		Capacity:     input.Capacity,
		TicketType:   input.TicketType,
		OrganizerID:  input.OrganizerID,
		CreatedAt:    deps.Now(),
	}
	if ev.EndDate.IsZero() {
		ev.EndDate = ev.StartDate
	}
	if ev.TicketType == "" {
		ev.TicketType = eventDomain.TicketFree
	}

	slug, err := allocateSlug(ctx, ev.Title, deps)
	if err != nil {
		return eventDomain.Event{}, err
	}
	ev.Slug = slug

	if err := ev.Validate(); err != nil {
		return eventDomain.Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := deps.Events.Save(ctx, ev); err != nil {
		return eventDomain.Event{}, err
	}

	slog.Info("event_created", "event_id", ev.ID, "slug", ev.Slug)
	return ev, nil
}

// allocateSlug appends a short random suffix to the title's slug base until it is unused.
func allocateSlug(ctx context.Context, title string, deps CreateEventDeps) (string, error) {
	base := eventDomain.SlugBase(title)
	if base == "" {
		base = "event"
	}
	for i := 0; i < slugMaxAttempt; i++ {
		slug := base + "-" + slugSuffix(deps.GenerateID())
		_, err := deps.Events.GetBySlug(ctx, slug)
		if errors.Is(err, eventDomain.ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", slug, err)
		}
	}
	return "", ErrSlugTaken
}

// slugSuffix keeps the first lowercase alphanumerics of an ID.
func slugSuffix(id string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == slugSuffixLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
