package event

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Location type constants.
const (
	LocationOnline   = "online"
	LocationPhysical = "physical"
)

// Ticket type constants.
const (
	TicketFree = "free"
	TicketPaid = "paid"
)

// OnlineLocation is the location text used for online events.
const OnlineLocation = "Online Event"

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxSlugLength        = 120
)

// Domain errors.
var (
	ErrNotFound = errors.New("event not found")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Event is a stored event record.
// PRE: Title and Slug are non-empty. StartDate is set.
// INVARIANT: EndDate >= StartDate.
type Event struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category,omitempty"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	LocationType string    `json:"locationType"`
	Venue        string    `json:"venue,omitempty"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country"`
	Capacity     int       `json:"capacity,omitempty"`
	TicketType   string    `json:"ticketType,omitempty"`
	OrganizerID  string    `json:"organizerId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("event title cannot be empty")
	}
	if len(e.Title) > MaxTitleLength {
		return errors.New("event title cannot exceed 200 characters")
	}
	if e.Slug == "" {
		return errors.New("event slug cannot be empty")
	}
	if len(e.Slug) > MaxSlugLength || !slugPattern.MatchString(e.Slug) {
		return errors.New("event slug must be lowercase letters, digits and single hyphens")
	}
	if e.StartDate.IsZero() {
		return errors.New("event start date is required")
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return errors.New("event end date cannot be before start date")
	}
	if e.LocationType != LocationOnline && e.LocationType != LocationPhysical {
		return errors.New("event location type must be 'online' or 'physical'")
	}
	if len(e.Description) > MaxDescriptionLength {
		return errors.New("event description cannot exceed 5000 characters")
	}
	if e.TicketType != "" && e.TicketType != TicketFree && e.TicketType != TicketPaid {
		return errors.New("event ticket type must be 'free' or 'paid'")
	}
	if e.Capacity < 0 {
		return errors.New("event capacity cannot be negative")
	}
	return nil
}

// IsOnline reports whether the event has no physical venue.
func (e *Event) IsOnline() bool {
	return e.LocationType == LocationOnline
}

// ServerLocation composes the location text used by the download endpoint.
// PRE: none
// POST: "Online Event" for online events, "<venue> <address>, <city>" trimmed otherwise
func (e *Event) ServerLocation() string {
	if e.IsOnline() {
		return OnlineLocation
	}
	return strings.TrimSpace(e.Venue + " " + e.Address + ", " + e.City)
}

// ClientLocation composes the location text used by the local export,
// which also carries the state (or the country when no state is set).
// PRE: none
// POST: "Online Event" for online events, "<venue> <address>, <city>, <region>" trimmed otherwise
func (e *Event) ClientLocation() string {
	if e.IsOnline() {
		return OnlineLocation
	}
	region := e.State
	if region == "" {
		region = e.Country
	}
	return strings.TrimSpace(e.Venue + " " + e.Address + ", " + e.City + ", " + region)
}

// PagePath returns the site-relative path of the event page.
func (e *Event) PagePath() string {
	return "/events/" + e.Slug
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// SlugBase turns a title into the readable part of a slug.
// PRE: none
// POST: returns lowercase [a-z0-9-], no leading/trailing hyphen, possibly empty
func SlugBase(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength-9 {
		s = strings.Trim(s[:MaxSlugLength-9], "-")
	}
	return s
}
