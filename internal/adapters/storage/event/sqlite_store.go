package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"evenex/internal/adapters/storage"
	domain "evenex/internal/domain/event"
)

const eventColumns = `id, slug, title, description, category, start_ms, end_ms, location_type,
	venue, address, city, state, country, capacity, ticket_type, organizer_id, created_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db is a valid, open database connection with InitDB applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates an event, keyed by ID.
// PRE: e is a valid Event (Validate() returns nil)
// POST: event is persisted; slug uniqueness enforced by the schema
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	endMs := e.EndDate.UnixMilli()
	if e.EndDate.IsZero() {
		endMs = e.StartDate.UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   slug=excluded.slug, title=excluded.title, description=excluded.description,
		   category=excluded.category, start_ms=excluded.start_ms, end_ms=excluded.end_ms,
		   location_type=excluded.location_type, venue=excluded.venue, address=excluded.address,
		   city=excluded.city, state=excluded.state, country=excluded.country,
		   capacity=excluded.capacity, ticket_type=excluded.ticket_type`,
		e.ID, e.Slug, e.Title, e.Description, e.Category,
		e.StartDate.UnixMilli(), endMs, e.LocationType,
		e.Venue, e.Address, e.City, e.State, e.Country,
		e.Capacity, ticketTypeOrDefault(e.TicketType), e.OrganizerID,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save event %s: %w", e.ID, err)
	}
	return nil
}

// GetBySlug retrieves an event by its slug.
// PRE: none (an empty slug simply matches nothing)
// POST: returns the event, domain.ErrNotFound if absent, or a wrapped driver error
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM event WHERE slug = ?`, slug)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("get event %q: %w", slug, err)
	}
	return e, nil
}

// ListUpcoming returns matching events, soonest first.
// PRE: limit > 0, offset >= 0
// POST: returns at most limit events sorted by start ascending
func (s *SQLiteStore) ListUpcoming(ctx context.Context, f ListFilter, limit, offset int) ([]domain.Event, error) {
	where, args := f.where()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM event`+where+` ORDER BY start_ms ASC, id ASC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountUpcoming returns the number of events ListUpcoming can page through.
func (s *SQLiteStore) CountUpcoming(ctx context.Context, f ListFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f ListFilter) where() (string, []any) {
	clauses := []string{"end_ms >= ?"}
	args := []any{f.From}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		clauses = append(clauses, `(lower(title) LIKE ? ESCAPE '\' OR lower(city) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Delete removes an event by ID.
// PRE: id is non-empty
// POST: event is removed from storage
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM event WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (domain.Event, error) {
	var e domain.Event
	var startMs, endMs int64
	var createdAt string
	err := sc.Scan(&e.ID, &e.Slug, &e.Title, &e.Description, &e.Category,
		&startMs, &endMs, &e.LocationType,
		&e.Venue, &e.Address, &e.City, &e.State, &e.Country,
		&e.Capacity, &e.TicketType, &e.OrganizerID, &createdAt)
	if err != nil {
		return e, err
	}
	e.StartDate = time.UnixMilli(startMs).UTC()
	e.EndDate = time.UnixMilli(endMs).UTC()
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return e, nil
}

func ticketTypeOrDefault(t string) string {
	if t == "" {
		return domain.TicketFree
	}
	return t
}
