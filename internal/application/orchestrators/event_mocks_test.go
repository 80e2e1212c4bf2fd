package orchestrators

import (
	"context"
	"errors"
	"sync"
	"time"

	emailAdapter "evenex/internal/adapters/email"
	"evenex/internal/domain/calendar"
	eventDomain "evenex/internal/domain/event"
)

// --- Mock event store ---

type mockEventStore struct {
	mu      sync.Mutex
	events  map[string]eventDomain.Event // keyed by slug
	err     error                        // returned by GetBySlug when set
	saveErr error
	lookups int
}

func newMockEventStore(events ...eventDomain.Event) *mockEventStore {
	m := &mockEventStore{events: make(map[string]eventDomain.Event)}
	for _, e := range events {
		m.events[e.Slug] = e
	}
	return m
}

// GetBySlug retrieves a mock event by slug.
// PRE: none
// POST: Returns the event, the injected error, or ErrNotFound
func (m *mockEventStore) GetBySlug(_ context.Context, slug string) (eventDomain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.err != nil {
		return eventDomain.Event{}, m.err
	}
	e, ok := m.events[slug]
	if !ok {
		return eventDomain.Event{}, eventDomain.ErrNotFound
	}
	return e, nil
}

// Save persists a mock event.
// PRE: e has a slug
// POST: Event stored in map unless saveErr is set
func (m *mockEventStore) Save(_ context.Context, e eventDomain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.events[e.Slug] = e
	return nil
}

// --- Fake file saver and notifier ---

type fakeSaver struct {
	name        string
	contentType string
	data        []byte
	err         error
	panicWith   any
}

func (f *fakeSaver) Save(name, contentType string, data []byte) (string, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return "", f.err
	}
	f.name, f.contentType, f.data = name, contentType, data
	return "/tmp/" + name, nil
}

type fakeNotifier struct {
	successes []string
	errors    []string
}

func (f *fakeNotifier) Success(msg string) { f.successes = append(f.successes, msg) }
func (f *fakeNotifier) Error(msg string)   { f.errors = append(f.errors, msg) }

// --- Fake email sender ---

type fakeSender struct {
	reqs []emailAdapter.SendRequest
	err  error
}

func (f *fakeSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if f.err != nil {
		return emailAdapter.SendResult{}, f.err
	}
	f.reqs = append(f.reqs, req)
	return emailAdapter.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

// --- Helpers ---

var errStoreDown = errors.New("store down")

func fixedEncoder() *calendar.Encoder {
	return &calendar.Encoder{
		TimestampMode: calendar.TimestampLiteral,
		NewToken:      func() string { return "token-1" },
	}
}

func meetupEvent() eventDomain.Event {
	start := time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC)
	return eventDomain.Event{
		ID:           "e1",
		Slug:         "go-meetup",
		Title:        "Go Meetup",
		Description:  "Talks; pizza, fun",
		StartDate:    start,
		EndDate:      start.Add(2 * time.Hour),
		LocationType: eventDomain.LocationPhysical,
		Venue:        "Hall A",
		Address:      "1 Main St",
		City:         "Springfield",
		State:        "IL",
		Country:      "USA",
	}
}

func onlineEvent() eventDomain.Event {
	e := meetupEvent()
	e.ID = "e2"
	e.Slug = "webinar"
	e.Title = "Webinar"
	e.LocationType = eventDomain.LocationOnline
	e.Venue, e.Address, e.City = "", "", ""
	return e
}

func idSequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}
