package event

import (
	"context"

	domain "evenex/internal/domain/event"
)

// ListFilter narrows ListUpcoming and CountUpcoming.
type ListFilter struct {
	From     int64  // unix ms; events that ended before From are excluded
	Category string // exact match when non-empty
	Search   string // case-insensitive substring of title or city
}

// Store persists Event state.
// GetBySlug returns domain.ErrNotFound when no record matches.
type Store interface {
	Save(ctx context.Context, e domain.Event) error
	GetBySlug(ctx context.Context, slug string) (domain.Event, error)
	ListUpcoming(ctx context.Context, f ListFilter, limit, offset int) ([]domain.Event, error)
	CountUpcoming(ctx context.Context, f ListFilter) (int, error)
	Delete(ctx context.Context, id string) error
}
