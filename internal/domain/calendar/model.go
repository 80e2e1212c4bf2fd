package calendar

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Calendar format constants.
const (
	ProductID   = "-//EveNex//Event Calendar//EN"
	UIDDomain   = "evenex.com"
	ContentType = "text/calendar"

	// DownloadContentType is the type attached to locally saved files.
	DownloadContentType = "text/calendar;charset=utf-8"

	FileExtension = ".ics"
)

// Timestamp modes.
const (
	// TimestampLiteral formats the instant's own wall-clock fields and appends Z.
	TimestampLiteral = "literal"
	// TimestampUTC converts the instant to UTC before formatting.
	TimestampUTC = "utc"
)

// Domain errors.
var (
	ErrMissingTitle = errors.New("calendar event title is required")
	ErrMissingStart = errors.New("calendar event start time is required")
	ErrMissingEnd   = errors.New("calendar event end time is required")
)

// EventInput is the single shape both the server and the client build before encoding.
// PRE: Title non-empty, Start and End set. End before Start is accepted as-is.
// INVARIANT: never mutated after construction; URL empty means absent.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	URL         string // optional
	UID         string // optional override, minted by the encoder when empty
}

// Validate checks that the required fields are present.
// PRE: none
// POST: returns nil if encodable, the first missing-field error otherwise
func (in EventInput) Validate() error {
	if in.Title == "" {
		return ErrMissingTitle
	}
	if in.Start.IsZero() {
		return ErrMissingStart
	}
	if in.End.IsZero() {
		return ErrMissingEnd
	}
	return nil
}

// Artifact is a generated calendar file ready to be served or saved.
type Artifact struct {
	Filename    string
	ContentType string
	Body        string
}

var nonFilenameChars = regexp.MustCompile(`[^a-z0-9]`)

// Filename derives the download name for an event.
// The slug wins when present; otherwise every non-alphanumeric rune of the title becomes '-'.
// PRE: none
// POST: returns a name ending in ".ics"
func Filename(slug, title string) string {
	if slug != "" {
		return slug + FileExtension
	}
	base := nonFilenameChars.ReplaceAllString(strings.ToLower(title), "-")
	if base == "" {
		base = "event"
	}
	return base + FileExtension
}

// ValidTimestampMode reports whether mode is a known timestamp mode.
func ValidTimestampMode(mode string) bool {
	return mode == TimestampLiteral || mode == TimestampUTC
}
