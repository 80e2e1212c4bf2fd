package event

import (
	"strings"
	"testing"
	"time"
)

func validEvent() Event {
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	return Event{
		ID:           "e1",
		Slug:         "go-meetup-1a2b3c4d",
		Title:        "Go Meetup",
		StartDate:    start,
		EndDate:      start.Add(3 * time.Hour),
		LocationType: LocationPhysical,
		Venue:        "Hall A",
		Address:      "1 Main St",
		City:         "Springfield",
		Country:      "USA",
	}
}

// TestEvent_Validate tests Event validation rules.
func TestEvent_Validate(t *testing.T) {
	valid := validEvent()
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid event, got: %v", err)
	}

	tests := []struct {
		name    string
		modify  func(e *Event)
		wantErr string
	}{
		{"empty title", func(e *Event) { e.Title = "  " }, "title cannot be empty"},
		{"title too long", func(e *Event) { e.Title = strings.Repeat("x", MaxTitleLength+1) }, "title cannot exceed"},
		{"empty slug", func(e *Event) { e.Slug = "" }, "slug cannot be empty"},
		{"bad slug", func(e *Event) { e.Slug = "Go Meetup" }, "slug must be"},
		{"double hyphen slug", func(e *Event) { e.Slug = "go--meetup" }, "slug must be"},
		{"missing start", func(e *Event) { e.StartDate = time.Time{} }, "start date is required"},
		{"end before start", func(e *Event) { e.EndDate = e.StartDate.Add(-time.Hour) }, "end date cannot be before"},
		{"bad location type", func(e *Event) { e.LocationType = "hybrid" }, "location type must be"},
		{"description too long", func(e *Event) { e.Description = strings.Repeat("x", MaxDescriptionLength+1) }, "description cannot exceed"},
		{"bad ticket type", func(e *Event) { e.TicketType = "vip" }, "ticket type must be"},
		{"negative capacity", func(e *Event) { e.Capacity = -1 }, "capacity cannot be negative"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.modify(&e)
			err := e.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

// TestEvent_ServerLocation tests the download endpoint's location text.
func TestEvent_ServerLocation(t *testing.T) {
	e := validEvent()
	if got := e.ServerLocation(); got != "Hall A 1 Main St, Springfield" {
		t.Errorf("ServerLocation = %q", got)
	}

	e.Venue = ""
	if got := e.ServerLocation(); got != "1 Main St, Springfield" {
		t.Errorf("ServerLocation without venue = %q", got)
	}

	e.Address = ""
	if got := e.ServerLocation(); got != ", Springfield" {
		t.Errorf("ServerLocation with city only = %q", got)
	}
}

// TestEvent_ClientLocation tests the local export's location text.
func TestEvent_ClientLocation(t *testing.T) {
	e := validEvent()
	if got := e.ClientLocation(); got != "Hall A 1 Main St, Springfield, USA" {
		t.Errorf("ClientLocation = %q", got)
	}

	e.State = "IL"
	if got := e.ClientLocation(); got != "Hall A 1 Main St, Springfield, IL" {
		t.Errorf("ClientLocation with state = %q", got)
	}
}

// TestEvent_OnlineLocation verifies online events ignore venue fields.
func TestEvent_OnlineLocation(t *testing.T) {
	e := validEvent()
	e.LocationType = LocationOnline
	if got := e.ServerLocation(); got != OnlineLocation {
		t.Errorf("ServerLocation = %q, want %q", got, OnlineLocation)
	}
	if got := e.ClientLocation(); got != OnlineLocation {
		t.Errorf("ClientLocation = %q, want %q", got, OnlineLocation)
	}
}

// TestSlugBase tests title to slug conversion.
func TestSlugBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Go Meetup", "go-meetup"},
		{"  Rock & Roll Night!! ", "rock-roll-night"},
		{"Ünïcode", "n-code"},
		{"!!!", ""},
	}
	for _, tc := range tests {
		if got := SlugBase(tc.in); got != tc.want {
			t.Errorf("SlugBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := SlugBase(strings.Repeat("a", 500)); len(got) > MaxSlugLength-9 {
		t.Errorf("SlugBase length = %d, exceeds limit", len(got))
	}
}
