package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const lineBreak = "\r\n"

// Encoder renders EventInput values as single-event iCalendar text.
// Safe for concurrent use: it holds no mutable state.
type Encoder struct {
	// TimestampMode is TimestampLiteral (default) or TimestampUTC.
	TimestampMode string
	// NewToken mints the opaque part of generated UIDs. Defaults to a random UUID.
	NewToken func() string
}

// NewEncoder creates an Encoder using the given timestamp mode.
// PRE: mode is "", TimestampLiteral or TimestampUTC
// POST: returns an encoder that mints UUID-based UIDs
func NewEncoder(mode string) *Encoder {
	if mode == "" {
		mode = TimestampLiteral
	}
	return &Encoder{TimestampMode: mode, NewToken: uuid.NewString}
}

// Encode renders the input as an ICS blob.
// PRE: in.Validate() == nil
// POST: returns the full CRLF-joined artifact, or a missing-field error and no output
func (e *Encoder) Encode(in EventInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	uid := in.UID
	if uid == "" {
		uid = e.MintUID()
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTART:" + e.FormatTimestamp(in.Start),
		"DTEND:" + e.FormatTimestamp(in.End),
		"SUMMARY:" + EscapeText(in.Title),
		"DESCRIPTION:" + EscapeText(in.Description),
		"LOCATION:" + EscapeText(in.Location),
	}
	if url := lineBreakStripper.Replace(in.URL); url != "" {
		lines = append(lines, "URL:"+url)
	}
	lines = append(lines,
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	return strings.Join(lines, lineBreak), nil
}

// MintUID returns a fresh "<token>@evenex.com" identifier.
func (e *Encoder) MintUID() string {
	token := ""
	if e.NewToken != nil {
		token = e.NewToken()
	}
	if token == "" {
		token = uuid.NewString()
	}
	return token + "@" + UIDDomain
}

// FormatTimestamp renders t as YYYYMMDDTHHMMSSZ.
// In literal mode the wall-clock fields are used unchanged, whatever t's location.
func (e *Encoder) FormatTimestamp(t time.Time) string {
	if e.TimestampMode == TimestampUTC {
		t = t.UTC()
	}
	return fmt.Sprintf("%04d%02d%02dT%02d%02d%02dZ",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// lineBreakStripper keeps a URI value on its own content line.
var lineBreakStripper = strings.NewReplacer("\r", "", "\n", "")

// textEscaper runs backslash first so inserted escapes are never re-escaped.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\n", `\n`,
)

// EscapeText applies the TEXT escaping rules to a property value.
// CRLF and bare CR are folded to LF first so no raw line terminator reaches the output.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return textEscaper.Replace(s)
}

// UnescapeText reverses EscapeText.
// Unknown escape pairs are kept verbatim.
func UnescapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch next {
		case '\\', ';', ',':
			b.WriteByte(next)
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(c)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}
