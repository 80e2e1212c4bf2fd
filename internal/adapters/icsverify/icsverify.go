package icsverify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// Verification errors.
var (
	ErrNoEvent         = errors.New("calendar has no VEVENT")
	ErrMultipleEvents  = errors.New("calendar has more than one VEVENT")
	ErrMissingProperty = errors.New("VEVENT is missing a required property")
)

// Summary describes the single event carried by a calendar blob.
type Summary struct {
	ProductID   string
	UID         string
	Title       string
	Description string
	Location    string
	URL         string
	Status      string
	Start       time.Time
	End         time.Time
}

// Verify decodes blob as RFC 5545 and checks it carries exactly one complete event.
// PRE: none
// POST: returns the event summary, or a decode error, ErrNoEvent, ErrMultipleEvents or ErrMissingProperty
func Verify(blob string) (Summary, error) {
	if !strings.HasSuffix(blob, "\r\n") {
		blob += "\r\n"
	}
	cal, err := ical.NewDecoder(strings.NewReader(blob)).Decode()
	if err != nil {
		return Summary{}, fmt.Errorf("decode calendar: %w", err)
	}

	events := cal.Events()
	switch {
	case len(events) == 0:
		return Summary{}, ErrNoEvent
	case len(events) > 1:
		return Summary{}, fmt.Errorf("%w: found %d", ErrMultipleEvents, len(events))
	}
	ev := events[0]

	for _, name := range []string{ical.PropUID, ical.PropDateTimeStart, ical.PropDateTimeEnd, ical.PropSummary} {
		if ev.Props.Get(name) == nil {
			return Summary{}, fmt.Errorf("%w: %s", ErrMissingProperty, name)
		}
	}

	s := Summary{}
	if p := cal.Props.Get(ical.PropProductID); p != nil {
		s.ProductID = p.Value
	}
	if s.UID, err = ev.Props.Text(ical.PropUID); err != nil {
		return Summary{}, err
	}
	if s.Title, err = ev.Props.Text(ical.PropSummary); err != nil {
		return Summary{}, err
	}
	if s.Description, err = ev.Props.Text(ical.PropDescription); err != nil {
		return Summary{}, err
	}
	if s.Location, err = ev.Props.Text(ical.PropLocation); err != nil {
		return Summary{}, err
	}
	if p := ev.Props.Get(ical.PropURL); p != nil {
		s.URL = p.Value
	}
	if p := ev.Props.Get(ical.PropStatus); p != nil {
		s.Status = p.Value
	}
	if s.Start, err = ev.DateTimeStart(time.UTC); err != nil {
		return Summary{}, fmt.Errorf("parse DTSTART: %w", err)
	}
	if s.End, err = ev.DateTimeEnd(time.UTC); err != nil {
		return Summary{}, fmt.Errorf("parse DTEND: %w", err)
	}
	return s, nil
}
