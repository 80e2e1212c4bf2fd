package orchestrators

import (
	"strings"
	"time"

	"evenex/internal/domain/calendar"
	eventDomain "evenex/internal/domain/event"
)

// EventURL joins a site origin and the event page path.
// An empty origin yields an empty URL, which drops the URL line from the artifact.
// So does a line break in the origin or slug.
func EventURL(origin string, ev eventDomain.Event) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" || ev.Slug == "" || strings.ContainsAny(origin+ev.Slug, "\r\n") {
		return ""
	}
	return origin + ev.PagePath()
}

// buildCalendarInput maps a stored event onto the encoder input.
// zone selects the wall clock the timestamps are rendered in; nil keeps the stored location.
func buildCalendarInput(ev eventDomain.Event, location, url string, zone *time.Location) calendar.EventInput {
	start, end := ev.StartDate, ev.EndDate
	if zone != nil {
		if !start.IsZero() {
			start = start.In(zone)
		}
		if !end.IsZero() {
			end = end.In(zone)
		}
	}
	return calendar.EventInput{
		Title:       ev.Title,
		Description: ev.Description,
		Start:       start,
		End:         end,
		Location:    location,
		URL:         url,
	}
}
