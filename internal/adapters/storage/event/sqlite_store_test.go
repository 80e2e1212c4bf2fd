package event

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"evenex/internal/adapters/storage"
	domain "evenex/internal/domain/event"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return NewSQLiteStore(db)
}

func sampleEvent(id, slug string, start time.Time) domain.Event {
	return domain.Event{
		ID:           id,
		Slug:         slug,
		Title:        "Go Meetup",
		Description:  "Talks, pizza; fun\nfor all",
		StartDate:    start,
		EndDate:      start.Add(2 * time.Hour),
		LocationType: domain.LocationPhysical,
		Venue:        "Hall A",
		Address:      "1 Main St",
		City:         "Springfield",
		Country:      "USA",
		Capacity:     50,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TestSQLiteStore_SaveAndGetBySlug verifies a round trip through the table.
func TestSQLiteStore_SaveAndGetBySlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	e := sampleEvent("e1", "go-meetup", start)

	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.GetBySlug(ctx, "go-meetup")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != "e1" || got.Title != e.Title || got.Description != e.Description {
		t.Errorf("got %+v", got)
	}
	if !got.StartDate.Equal(start) || !got.EndDate.Equal(e.EndDate) {
		t.Errorf("times = %v..%v, want %v..%v", got.StartDate, got.EndDate, start, e.EndDate)
	}
	if got.TicketType != domain.TicketFree {
		t.Errorf("TicketType = %q, want default free", got.TicketType)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
}

// TestSQLiteStore_GetBySlug_NotFound verifies the not-found sentinel.
func TestSQLiteStore_GetBySlug_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetBySlug(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_Save_Upsert verifies saving the same ID updates in place.
func TestSQLiteStore_Save_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := sampleEvent("e1", "go-meetup", time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC))
	s.Save(ctx, e)

	e.Title = "Go Meetup (moved)"
	e.LocationType = domain.LocationOnline
	if err := s.Save(ctx, e); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	got, _ := s.GetBySlug(ctx, "go-meetup")
	if got.Title != "Go Meetup (moved)" || got.LocationType != domain.LocationOnline {
		t.Errorf("update not applied: %+v", got)
	}
}

// TestSQLiteStore_Save_DuplicateSlug verifies slugs are unique.
func TestSQLiteStore_Save_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	if err := s.Save(ctx, sampleEvent("e1", "dup", start)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, sampleEvent("e2", "dup", start)); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

// TestSQLiteStore_ListUpcoming verifies ordering and the time filter.
func TestSQLiteStore_ListUpcoming(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Save(ctx, sampleEvent("late", "late", base.Add(48*time.Hour)))
	s.Save(ctx, sampleEvent("past", "past", base.Add(-48*time.Hour)))
	s.Save(ctx, sampleEvent("soon", "soon", base.Add(time.Hour)))

	f := ListFilter{From: base.UnixMilli()}
	events, err := s.ListUpcoming(ctx, f, 10, 0)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].ID != "soon" || events[1].ID != "late" {
		t.Errorf("order = %s, %s", events[0].ID, events[1].ID)
	}

	page2, err := s.ListUpcoming(ctx, f, 1, 1)
	if err != nil || len(page2) != 1 || page2[0].ID != "late" {
		t.Errorf("offset page = %+v, err = %v", page2, err)
	}
	if n, err := s.CountUpcoming(ctx, f); err != nil || n != 2 {
		t.Errorf("CountUpcoming = %d, %v; want 2", n, err)
	}
}

// TestSQLiteStore_ListUpcoming_Filters verifies category and search matching.
func TestSQLiteStore_ListUpcoming_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tech := sampleEvent("tech", "tech", base.Add(time.Hour))
	tech.Category = "tech"
	music := sampleEvent("music", "music", base.Add(2*time.Hour))
	music.Category = "music"
	music.Title = "Jazz Night"
	music.City = "Auckland"
	odd := sampleEvent("odd", "odd", base.Add(3*time.Hour))
	odd.Title = "100% Go_lang"
	for _, e := range []domain.Event{tech, music, odd} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save %s: %v", e.ID, err)
		}
	}

	tests := []struct {
		name string
		f    ListFilter
		want []string
	}{
		{"category", ListFilter{Category: "music"}, []string{"music"}},
		{"title search is case-insensitive", ListFilter{Search: "JAZZ"}, []string{"music"}},
		{"city search", ListFilter{Search: "auck"}, []string{"music"}},
		{"both filters", ListFilter{Category: "tech", Search: "meetup"}, []string{"tech"}},
		{"percent is literal", ListFilter{Search: "100%"}, []string{"odd"}},
		{"underscore is literal", ListFilter{Search: "o_l"}, []string{"odd"}},
		{"no match", ListFilter{Search: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.f.From = base.UnixMilli()
			events, err := s.ListUpcoming(ctx, tt.f, 10, 0)
			if err != nil {
				t.Fatalf("ListUpcoming: %v", err)
			}
			var ids []string
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", ids, tt.want)
				}
			}
			n, _ := s.CountUpcoming(ctx, tt.f)
			if n != len(tt.want) {
				t.Errorf("CountUpcoming = %d, want %d", n, len(tt.want))
			}
		})
	}
}

// TestSQLiteStore_Delete verifies removal.
func TestSQLiteStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Save(ctx, sampleEvent("e1", "go-meetup", time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)))

	if err := s.Delete(ctx, "e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetBySlug(ctx, "go-meetup"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}
