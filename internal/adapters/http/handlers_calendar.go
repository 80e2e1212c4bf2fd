package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"evenex/internal/application/orchestrators"
)

// Calendar endpoint error bodies.
const (
	msgEventNotFound     = "Event not found"
	msgCalendarFailed    = "Failed to generate calendar"
	msgInviteFailed      = "Failed to send invite"
	msgInvalidJSON       = "Invalid JSON body"
	msgInvalidRecipient  = "A valid email address is required"
	msgCreateEventFailed = "Failed to create event"
)

func (h *Handler) calendarDeps() orchestrators.GetEventCalendarDeps {
	return orchestrators.GetEventCalendarDeps{
		Events:      h.deps.Events,
		Encoder:     h.deps.Encoder,
		DisplayZone: h.deps.DisplayZone,
		Perf:        h.deps.Perf,
	}
}

// handleCalendar serves GET /calendar/{slug} and GET /api/calendar/{slug}.
// The artifact is fully encoded before any byte of the response is written.
func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	art, err := orchestrators.ExecuteGetEventCalendar(r.Context(), orchestrators.GetEventCalendarInput{
		Slug:   slug,
		Origin: h.requestOrigin(r),
	}, h.calendarDeps())
	if errors.Is(err, orchestrators.ErrEventNotFound) {
		slog.Info("calendar_not_found", "slug", slug)
		writeJSONError(w, http.StatusNotFound, msgEventNotFound)
		return
	}
	if err != nil {
		slog.Error("calendar_failed", "slug", slug, "error", err)
		writeJSONError(w, http.StatusInternalServerError, msgCalendarFailed)
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", attachmentHeader(art.Filename))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, art.Body)
	slog.Info("calendar_served", "slug", slug, "file", art.Filename)
}
