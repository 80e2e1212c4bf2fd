package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	eventDomain "evenex/internal/domain/event"
)

// SeedEventsDeps holds dependencies for SeedEvents.
type SeedEventsDeps struct {
	Events EventStoreForOrchestrator
	Now    func() time.Time
}

// SeedEventData represents a sample event to be seeded.
type SeedEventData struct {
	Slug         string
	Title        string
	Description  string
	Category     string
	DaysAhead    int
	Hour         int
	Hours        int
	LocationType string
	Venue        string
	Address      string
	City         string
	State        string
	Country      string
	Capacity     int
	TicketType   string
}

// SampleEvents is the development seed data.
var SampleEvents = []SeedEventData{
	{
		Slug:         "go-meetup-spring",
		Title:        "Go Meetup: Spring, 2026",
		Description:  "Lightning talks; pizza, drinks\n\nBring a laptop if you want to **hack along**.",
		Category:     "Technology",
		DaysAhead:    14,
		Hour:         18,
		Hours:        3,
		LocationType: eventDomain.LocationPhysical,
		Venue:        "The Loft",
		Address:      "12 Queen Street",
		City:         "Auckland",
		Country:      "New Zealand",
		Capacity:     80,
		TicketType:   eventDomain.TicketFree,
	},
	{
		Slug:         "calendar-formats-webinar",
		Title:        `Calendar formats \ a webinar`,
		Description:  "RFC 5545 in an hour: escaping, UIDs and timestamps.",
		Category:     "Education",
		DaysAhead:    21,
		Hour:         9,
		Hours:        1,
		LocationType: eventDomain.LocationOnline,
		Capacity:     500,
		TicketType:   eventDomain.TicketFree,
	},
	{
		Slug:         "harbour-food-festival",
		Title:        "Harbour Food Festival",
		Description:  "Street food, live music and a night market.",
		Category:     "Food & Drink",
		DaysAhead:    30,
		Hour:         11,
		Hours:        10,
		LocationType: eventDomain.LocationPhysical,
		Venue:        "Wynyard Quarter",
		Address:      "Jellicoe Street",
		City:         "Auckland",
		State:        "Auckland",
		Country:      "New Zealand",
		Capacity:     2000,
		TicketType:   eventDomain.TicketPaid,
	},
}

// ExecuteSeedEvents stores the sample events.
// It is idempotent: events whose slug already exists are skipped.
// PRE: deps are set
// POST: every sample slug resolves to an event; returns the number inserted
func ExecuteSeedEvents(ctx context.Context, deps SeedEventsDeps) (int, error) {
	now := deps.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	inserted := 0
	for _, s := range SampleEvents {
		_, err := deps.Events.GetBySlug(ctx, s.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, eventDomain.ErrNotFound) {
			return inserted, err
		}

		start := today.AddDate(0, 0, s.DaysAhead).Add(time.Duration(s.Hour) * time.Hour)
		ev := eventDomain.Event{
			ID:           "seed-" + s.Slug,
			Slug:         s.Slug,
			Title:        s.Title,
			Description:  s.Description,
			Category:     s.Category,
			StartDate:    start,
			EndDate:      start.Add(time.Duration(s.Hours) * time.Hour),
			LocationType: s.LocationType,
			Venue:        s.Venue,
			Address:      s.Address,
			City:         s.City,
			State:        s.State,
			Country:      s.Country,
			Capacity:     s.Capacity,
			TicketType:   s.TicketType,
			CreatedAt:    now,
		}
		if err := ev.Validate(); err != nil {
			return inserted, err
		}
		if err := deps.Events.Save(ctx, ev); err != nil {
			return inserted, err
		}
		inserted++
	}

	if inserted > 0 {
		slog.Info("events_seeded", "count", inserted)
	}
	return inserted, nil
}
